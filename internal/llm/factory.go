package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/iWorld-y/alpha_insight/internal/config"
	"github.com/iWorld-y/alpha_insight/internal/logger"
	"github.com/iWorld-y/alpha_insight/internal/search"
	"github.com/iWorld-y/alpha_insight/internal/search/factory"
)

// NewGenerator 根据配置创建模型后端
func NewGenerator(ctx context.Context, cfg *config.Config) (Generator, error) {
	timeout := time.Duration(cfg.LLM.Timeout) * time.Second

	switch cfg.LLM.Provider {
	case config.ProviderGemini:
		return NewGeminiGenerator(ctx, cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model, timeout)

	case config.ProviderOpenAI:
		var searcher search.Searcher
		s, err := factory.NewSearcher(cfg.Search)
		if err != nil {
			// 没有可用的搜索后端时仍可生成，只是缺少实时资讯
			logger.Log.Warnf("搜索客户端初始化失败，市场分析将不含联网资讯: %v", err)
		} else {
			searcher = s
		}
		return NewOpenAIGenerator(ctx, cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, timeout, searcher, cfg.Search.MaxResults)

	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.LLM.Provider)
	}
}
