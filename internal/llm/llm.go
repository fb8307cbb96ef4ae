// Package llm 封装生成式模型调用：单次请求、可选联网搜索增强、返回正文与引用来源。
package llm

import (
	"context"

	"github.com/iWorld-y/alpha_insight/internal/model"
)

// Request 一次生成请求
type Request struct {
	System       string
	Prompt       string
	EnableSearch bool
	// SearchQueries 供不具备原生联网能力的后端使用的检索词
	SearchQueries []string
}

// Response 模型返回的正文和引用来源
type Response struct {
	Text    string
	Sources []model.GroundingSource
	Model   string
}

// Generator 生成式模型服务。实现只做一次调用，不重试。
type Generator interface {
	Generate(ctx context.Context, req *Request) (*Response, error)
}
