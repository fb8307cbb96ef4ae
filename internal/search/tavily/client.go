// Package tavily 通过 Tavily 检索最新财经资讯。
package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/iWorld-y/alpha_insight/internal/search"
)

const defaultEndpoint = "https://api.tavily.com/search"

// Client Tavily 检索客户端
type Client struct {
	apiKey   string
	endpoint string
	domains  []string
	http     *http.Client
}

// Option 客户端选项
type Option func(*Client)

// WithDomains 只检索指定站点，例如财经媒体
func WithDomains(domains ...string) Option {
	return func(c *Client) { c.domains = domains }
}

// WithHTTPClient 替换底层 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient 创建 Tavily 客户端
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:   apiKey,
		endpoint: defaultEndpoint,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ search.Searcher = (*Client)(nil)

// apiRequest Tavily 请求体，只包含用到的字段
type apiRequest struct {
	Query          string   `json:"query"`
	SearchDepth    string   `json:"search_depth"`
	Topic          string   `json:"topic"`
	MaxResults     int      `json:"max_results"`
	IncludeDomains []string `json:"include_domains,omitempty"`
	StartDate      string   `json:"start_date,omitempty"`
	EndDate        string   `json:"end_date,omitempty"`
}

type apiResponse struct {
	Results []struct {
		Title         string  `json:"title"`
		URL           string  `json:"url"`
		Content       string  `json:"content"`
		Score         float64 `json:"score"`
		PublishedDate string  `json:"published_date"`
	} `json:"results"`
}

// Search 执行检索。未指定时使用 basic 深度、5 条结果、general 类别。
func (c *Client) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	body := apiRequest{
		Query:          req.Query,
		SearchDepth:    "basic",
		Topic:          string(req.Topic),
		MaxResults:     req.MaxResults,
		IncludeDomains: c.domains,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
	}
	if body.Topic == "" {
		body.Topic = string(search.TopicGeneral)
	}
	if body.MaxResults <= 0 {
		body.MaxResults = 5
	}

	var out apiResponse
	if err := c.post(ctx, body, &out); err != nil {
		return nil, err
	}

	resp := &search.Response{Results: make([]search.Result, 0, len(out.Results))}
	for _, r := range out.Results {
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

func (c *Client) post(ctx context.Context, in apiRequest, out *apiResponse) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request failed: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request failed: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("tavily request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return fmt.Errorf("tavily api error (status %d): %s", res.StatusCode, bytes.TrimSpace(msg))
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode tavily response failed: %w", err)
	}
	return nil
}
