package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// 支持的 LLM 后端
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// 支持的存储驱动
const (
	DriverNone     = "none"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config 项目配置结构体
type Config struct {
	LLM     LLMConfig     `yaml:"llm"`
	Search  SearchConfig  `yaml:"search"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Report  ReportConfig  `yaml:"report"`
}

// LLMConfig LLM 相关配置
type LLMConfig struct {
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	Timeout  int    `yaml:"timeout"` // 秒，由底层传输负责
}

// SearchConfig 搜索相关配置，仅 openai 后端使用
type SearchConfig struct {
	Provider   string        `yaml:"provider"`
	MaxResults int           `yaml:"max_results"`
	Tavily     TavilyConfig  `yaml:"tavily"`
	SearXNG    SearXNGConfig `yaml:"searxng"`
	RSS        RSSConfig     `yaml:"rss"`
}

// TavilyConfig Tavily 配置
type TavilyConfig struct {
	APIKey         string   `yaml:"api_key"`
	IncludeDomains []string `yaml:"include_domains"` // 只检索这些站点，留空不限
}

// SearXNGConfig SearXNG 配置
type SearXNGConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"`
}

// RSSConfig RSS 新闻源配置
type RSSConfig struct {
	Feeds       []string `yaml:"feeds"`
	MaxAgeHours int      `yaml:"max_age_hours"`
}

// StorageConfig 持久化配置
type StorageConfig struct {
	KV       KVConfig      `yaml:"kv"`
	History  HistoryConfig `yaml:"history"`
	Postgres DBConfig      `yaml:"postgres"`
}

// KVConfig 持仓数据的键值存储
type KVConfig struct {
	Driver string `yaml:"driver"` // file | sqlite
	Path   string `yaml:"path"`   // file: 目录; sqlite: 数据库文件
}

// HistoryConfig 分析历史记录
type HistoryConfig struct {
	Driver string `yaml:"driver"` // none | sqlite | postgres
	DSN    string `yaml:"dsn"`    // sqlite 文件路径
}

// DBConfig 数据库相关配置
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// ConnString 构造 lib/pq 连接串
func (c DBConfig) ConnString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name)
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ReportConfig 报告导出配置
type ReportConfig struct {
	HTMLPath string `yaml:"html_path"`
}

// LoadConfig 从指定路径加载配置，文件不存在时仅使用默认值与环境变量
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	return cfg, nil
}

// applyEnvOverrides 环境变量优先于配置文件
func applyEnvOverrides(cfg *Config) {
	for _, key := range []string{"LLM_API_KEY", "GEMINI_API_KEY", "API_KEY"} {
		if v := os.Getenv(key); v != "" {
			cfg.LLM.APIKey = v
			break
		}
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("TAVILY_API_KEY"); v != "" {
		cfg.Search.Tavily.APIKey = v
	}
	if v := os.Getenv("SEARXNG_BASE_URL"); v != "" {
		cfg.Search.SearXNG.BaseURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("PG_PASSWORD"); v != "" {
		cfg.Storage.Postgres.Password = v
	}
	if v := os.Getenv("PG_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Storage.Postgres.Port = port
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = ProviderGemini
	}
	if cfg.LLM.Model == "" && cfg.LLM.Provider == ProviderGemini {
		cfg.LLM.Model = "gemini-2.5-flash"
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 120
	}
	if cfg.Search.Provider == "" {
		cfg.Search.Provider = "tavily"
	}
	if cfg.Search.MaxResults == 0 {
		cfg.Search.MaxResults = 5
	}
	if cfg.Search.RSS.MaxAgeHours == 0 {
		cfg.Search.RSS.MaxAgeHours = 24
	}
	if cfg.Storage.KV.Driver == "" {
		cfg.Storage.KV.Driver = DriverFile
	}
	if cfg.Storage.KV.Path == "" {
		cfg.Storage.KV.Path = "data"
	}
	if cfg.Storage.History.Driver == "" {
		cfg.Storage.History.Driver = DriverSQLite
	}
	if cfg.Storage.History.DSN == "" {
		cfg.Storage.History.DSN = "data/alpha_insight.db"
	}
	if cfg.Storage.Postgres.Port == 0 {
		cfg.Storage.Postgres.Port = 5432
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Report.HTMLPath == "" {
		cfg.Report.HTMLPath = "alpha_insight.html"
	}
}

// Validate 检查必填项与枚举值
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required")
	}
	switch c.LLM.Provider {
	case ProviderGemini:
	case ProviderOpenAI:
		if c.LLM.Model == "" {
			return fmt.Errorf("llm.model is required for openai provider")
		}
	default:
		return fmt.Errorf("unknown llm provider: %s", c.LLM.Provider)
	}
	switch c.Storage.KV.Driver {
	case DriverFile, DriverSQLite:
	default:
		return fmt.Errorf("unknown kv driver: %s", c.Storage.KV.Driver)
	}
	switch c.Storage.History.Driver {
	case DriverNone, DriverSQLite:
	case DriverPostgres:
		if c.Storage.Postgres.Host == "" {
			return fmt.Errorf("storage.postgres.host is required for postgres history")
		}
	default:
		return fmt.Errorf("unknown history driver: %s", c.Storage.History.Driver)
	}
	return nil
}
