// Package search 为没有原生联网能力的模型后端提供资讯检索。
package search

import (
	"context"

	"github.com/iWorld-y/alpha_insight/internal/model"
)

// Topic 检索类别
type Topic string

const (
	TopicNews    Topic = "news"
	TopicGeneral Topic = "general"
)

// Searcher 资讯检索后端
type Searcher interface {
	Search(ctx context.Context, req *Request) (*Response, error)
}

// Request 一次检索。日期为 YYYY-MM-DD，留空表示不限。
type Request struct {
	Query      string
	Topic      Topic
	MaxResults int
	StartDate  string
	EndDate    string
}

// Response 检索结果，按相关度排列
type Response struct {
	Results []Result
}

// Result 一条资讯
type Result struct {
	Title         string
	URL           string
	Content       string
	Score         float64
	PublishedDate string
}

// Grounding 转为引用来源
func (r Result) Grounding() model.GroundingSource {
	return model.GroundingSource{URI: r.URL, Title: r.Title}
}
