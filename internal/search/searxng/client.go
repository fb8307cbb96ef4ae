// Package searxng 通过自建 SearXNG 实例检索中文资讯。
package searxng

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iWorld-y/alpha_insight/internal/search"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Client SearXNG 客户端
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient 创建客户端，timeout 单位为秒，0 表示 30 秒
func NewClient(baseURL string, timeout int) *Client {
	t := time.Duration(timeout) * time.Second
	if t <= 0 {
		t = 30 * time.Second
	}
	return &Client{
		endpoint: strings.TrimRight(baseURL, "/") + "/search",
		http:     &http.Client{Timeout: t},
	}
}

var _ search.Searcher = (*Client)(nil)

type apiResponse struct {
	Results []struct {
		Title         string  `json:"title"`
		URL           string  `json:"url"`
		Content       string  `json:"content"`
		PublishedDate string  `json:"publishedDate"`
		Score         float64 `json:"score"`
	} `json:"results"`
}

// params 新闻类检索只取最近一天的中文结果
func params(req *search.Request) url.Values {
	v := url.Values{}
	v.Set("q", req.Query)
	v.Set("format", "json")
	v.Set("language", "zh-CN")
	if req.Topic == search.TopicNews {
		v.Set("categories", "news")
		v.Set("time_range", "day")
	} else {
		v.Set("categories", "general")
	}
	return v
}

// Search 执行检索，结果按 MaxResults 截断
func (c *Client) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	if _, err := url.Parse(c.endpoint); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params(req).Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	httpReq.Header.Set("User-Agent", userAgent)
	httpReq.Header.Set("Accept", "application/json")

	res, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("searxng request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return nil, fmt.Errorf("searxng api error (status %d): %s", res.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out apiResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode searxng response failed: %w", err)
	}

	n := len(out.Results)
	if req.MaxResults > 0 && n > req.MaxResults {
		n = req.MaxResults
	}
	resp := &search.Response{Results: make([]search.Result, 0, n)}
	for _, r := range out.Results[:n] {
		resp.Results = append(resp.Results, search.Result{
			Title:         r.Title,
			URL:           r.URL,
			Content:       r.Content,
			Score:         r.Score,
			PublishedDate: r.PublishedDate,
		})
	}
	return resp, nil
}
