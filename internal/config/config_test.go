package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"LLM_API_KEY", "GEMINI_API_KEY", "API_KEY", "LLM_PROVIDER", "LLM_BASE_URL",
		"LLM_MODEL", "TAVILY_API_KEY", "SEARXNG_BASE_URL", "LOG_LEVEL", "PG_PASSWORD", "PG_PORT"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.LLM.Provider != ProviderGemini {
		t.Errorf("LLM.Provider = %q, want %q", cfg.LLM.Provider, ProviderGemini)
	}
	if cfg.LLM.Model != "gemini-2.5-flash" {
		t.Errorf("LLM.Model = %q", cfg.LLM.Model)
	}
	if cfg.Storage.KV.Driver != DriverFile || cfg.Storage.KV.Path != "data" {
		t.Errorf("Storage.KV = %+v", cfg.Storage.KV)
	}
	if cfg.Storage.History.Driver != DriverSQLite {
		t.Errorf("Storage.History.Driver = %q", cfg.Storage.History.Driver)
	}
	if cfg.Search.MaxResults != 5 {
		t.Errorf("Search.MaxResults = %d, want 5", cfg.Search.MaxResults)
	}
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
llm:
  provider: openai
  base_url: https://api.deepseek.com/v1
  api_key: from-file
  model: deepseek-chat
search:
  provider: searxng
  searxng:
    base_url: http://localhost:8888
storage:
  history:
    driver: none
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LLM_API_KEY", "from-env")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.LLM.APIKey != "from-env" {
		t.Errorf("LLM.APIKey = %q, want env override", cfg.LLM.APIKey)
	}
	if cfg.LLM.Provider != ProviderOpenAI || cfg.LLM.Model != "deepseek-chat" {
		t.Errorf("LLM = %+v", cfg.LLM)
	}
	if cfg.Search.SearXNG.BaseURL != "http://localhost:8888" {
		t.Errorf("Search.SearXNG.BaseURL = %q", cfg.Search.SearXNG.BaseURL)
	}
	if cfg.Storage.History.Driver != DriverNone {
		t.Errorf("Storage.History.Driver = %q", cfg.Storage.History.Driver)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadConfig_OpenAIWithoutModel(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", ProviderOpenAI)
	t.Setenv("LLM_API_KEY", "k")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.LLM.Model != "" {
		t.Errorf("LLM.Model = %q, want no gemini default for openai", cfg.LLM.Model)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() expected error for openai without model")
	}
}

func TestLoadConfig_BadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("llm: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig() expected error for malformed yaml")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		c := &Config{}
		applyDefaults(c)
		c.LLM.APIKey = "k"
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"ok", func(c *Config) {}, false},
		{"missing key", func(c *Config) { c.LLM.APIKey = "" }, true},
		{"bad provider", func(c *Config) { c.LLM.Provider = "claude" }, true},
		{"openai without model", func(c *Config) {
			c.LLM.Provider = ProviderOpenAI
			c.LLM.Model = ""
		}, true},
		{"openai with model", func(c *Config) {
			c.LLM.Provider = ProviderOpenAI
			c.LLM.Model = "deepseek-chat"
		}, false},
		{"bad kv driver", func(c *Config) { c.Storage.KV.Driver = "redis" }, true},
		{"postgres without host", func(c *Config) { c.Storage.History.Driver = DriverPostgres }, true},
		{"postgres with host", func(c *Config) {
			c.Storage.History.Driver = DriverPostgres
			c.Storage.Postgres.Host = "db"
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDBConfig_ConnString(t *testing.T) {
	c := DBConfig{Host: "h", Port: 5432, User: "u", Password: "p", Name: "n"}
	want := "host=h port=5432 user=u password=p dbname=n sslmode=disable"
	if got := c.ConnString(); got != want {
		t.Errorf("ConnString() = %q, want %q", got, want)
	}
}
