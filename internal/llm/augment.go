package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"golang.org/x/sync/errgroup"

	"github.com/iWorld-y/alpha_insight/internal/logger"
	"github.com/iWorld-y/alpha_insight/internal/model"
	"github.com/iWorld-y/alpha_insight/internal/search"
)

const (
	minSnippetLen = 500
	maxSnippetLen = 2000

	maxParallelSearches = 3
)

// Augmenter 并发执行多组检索，整理成提示词前置资讯
type Augmenter struct {
	searcher   search.Searcher
	maxResults int
	fetch      func(url string) (string, error)
	now        func() time.Time
}

// NewAugmenter 创建检索增强器
func NewAugmenter(searcher search.Searcher, maxResults int) *Augmenter {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &Augmenter{
		searcher:   searcher,
		maxResults: maxResults,
		fetch:      fetchAndCleanContent,
		now:        time.Now,
	}
}

// Collect 返回拼装好的资讯文本和引用来源。单个检索失败只记录日志。
func (a *Augmenter) Collect(ctx context.Context, queries []string) (string, []model.GroundingSource) {
	if len(queries) == 0 {
		return "", nil
	}

	now := a.now().In(model.MarketZone)
	endDate := now.Format(time.DateOnly)
	startDate := now.AddDate(0, 0, -1).Format(time.DateOnly)

	// 单组检索失败只记日志，不取消其他检索
	perQuery := make([][]search.Result, len(queries))
	var g errgroup.Group
	g.SetLimit(maxParallelSearches)
	for i, q := range queries {
		g.Go(func() error {
			resp, err := a.searcher.Search(ctx, &search.Request{
				Query:      q,
				Topic:      search.TopicNews,
				MaxResults: a.maxResults,
				StartDate:  startDate,
				EndDate:    endDate,
			})
			if err != nil {
				logger.Log.Errorf("检索失败 [%s]: %v", q, err)
				return nil
			}
			for j := range resp.Results {
				resp.Results[j].Content = a.enrich(resp.Results[j])
			}
			perQuery[i] = resp.Results
			return nil
		})
	}
	g.Wait()

	var sb strings.Builder
	var sources []model.GroundingSource
	seen := make(map[string]struct{})
	n := 0
	for i, results := range perQuery {
		for _, r := range results {
			if _, ok := seen[r.URL]; ok && r.URL != "" {
				continue
			}
			seen[r.URL] = struct{}{}
			n++
			if n == 1 {
				sb.WriteString("以下是联网检索得到的最新资讯，请结合这些资讯完成分析：\n\n")
			}
			fmt.Fprintf(&sb, "[%d] %s（检索词：%s）\n来源: %s\n%s\n\n", n, r.Title, queries[i], r.URL, r.Content)
			sources = append(sources, r.Grounding())
		}
	}
	logger.Log.Infof("联网检索完成: %d 组检索词, %d 条资讯", len(queries), n)

	return strings.TrimSpace(sb.String()), sources
}

// enrich 摘要过短时抓取原文，并截断过长内容
func (a *Augmenter) enrich(r search.Result) string {
	content := r.Content
	if len([]rune(content)) < minSnippetLen && r.URL != "" && a.fetch != nil {
		fetched, err := a.fetch(r.URL)
		if err == nil && len(fetched) > len(content) {
			content = fetched
		}
	}
	if runes := []rune(content); len(runes) > maxSnippetLen {
		content = string(runes[:maxSnippetLen])
	}
	return strings.TrimSpace(content)
}

// fetchAndCleanContent 抓取 URL 并提取正文
func fetchAndCleanContent(url string) (string, error) {
	article, err := readability.FromURL(url, 30*time.Second)
	if err != nil {
		return "", err
	}
	return article.TextContent, nil
}
