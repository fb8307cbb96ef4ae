package rss

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/iWorld-y/alpha_insight/internal/logger"
	"github.com/iWorld-y/alpha_insight/internal/search"
)

// Client 基于 RSS/Atom 订阅源的关键词检索
type Client struct {
	feeds  []string
	maxAge time.Duration
	parser *gofeed.Parser
	now    func() time.Time
}

// NewClient 创建 RSS 检索客户端，maxAgeHours 之前发布的条目会被忽略
func NewClient(feeds []string, maxAgeHours int) *Client {
	if maxAgeHours <= 0 {
		maxAgeHours = 24
	}
	return &Client{
		feeds:  feeds,
		maxAge: time.Duration(maxAgeHours) * time.Hour,
		parser: gofeed.NewParser(),
		now:    time.Now,
	}
}

var _ search.Searcher = (*Client)(nil)

// Search 拉取全部订阅源，返回标题或摘要命中任一关键词的近期条目
func (c *Client) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	terms := strings.Fields(req.Query)
	cutoff := c.now().Add(-c.maxAge)

	var results []search.Result
	for _, url := range c.feeds {
		feed, err := c.parser.ParseURLWithContext(url, ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Log.Warnf("解析 RSS 失败 [%s]: %v", url, err)
			continue
		}

		for _, item := range feed.Items {
			// 没有发布时间的条目默认保留
			if item.PublishedParsed != nil && item.PublishedParsed.Before(cutoff) {
				continue
			}
			text := item.Title + " " + item.Description
			hits := matchCount(text, terms)
			if len(terms) > 0 && hits == 0 {
				continue
			}

			content := item.Description
			if item.Content != "" {
				content = item.Content
			}
			results = append(results, search.Result{
				Title:         item.Title,
				URL:           item.Link,
				Content:       content,
				Score:         float64(hits),
				PublishedDate: item.Published,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if req.MaxResults > 0 && len(results) > req.MaxResults {
		results = results[:req.MaxResults]
	}

	return &search.Response{Results: results}, nil
}

func matchCount(text string, terms []string) int {
	lower := strings.ToLower(text)
	n := 0
	for _, t := range terms {
		if strings.Contains(lower, strings.ToLower(t)) {
			n++
		}
	}
	return n
}
