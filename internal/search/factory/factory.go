package factory

import (
	"fmt"

	"github.com/iWorld-y/alpha_insight/internal/config"
	"github.com/iWorld-y/alpha_insight/internal/search"
	"github.com/iWorld-y/alpha_insight/internal/search/rss"
	"github.com/iWorld-y/alpha_insight/internal/search/searxng"
	"github.com/iWorld-y/alpha_insight/internal/search/tavily"
)

// NewSearcher 根据配置创建搜索实例
func NewSearcher(cfg config.SearchConfig) (search.Searcher, error) {
	switch cfg.Provider {
	case "tavily":
		if cfg.Tavily.APIKey == "" {
			return nil, fmt.Errorf("tavily api key is missing")
		}
		return tavily.NewClient(cfg.Tavily.APIKey, tavily.WithDomains(cfg.Tavily.IncludeDomains...)), nil

	case "searxng":
		if cfg.SearXNG.BaseURL == "" {
			return nil, fmt.Errorf("searxng base url is missing")
		}
		return searxng.NewClient(cfg.SearXNG.BaseURL, cfg.SearXNG.Timeout), nil

	case "rss":
		if len(cfg.RSS.Feeds) == 0 {
			return nil, fmt.Errorf("rss feeds are missing")
		}
		return rss.NewClient(cfg.RSS.Feeds, cfg.RSS.MaxAgeHours), nil

	case "":
		return nil, fmt.Errorf("search provider not configured")

	default:
		return nil, fmt.Errorf("unknown search provider: %s", cfg.Provider)
	}
}
