package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/iWorld-y/alpha_insight/internal/model"
)

// GeminiGenerator 使用 Gemini 原生 Google Search 工具完成联网增强
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator 创建 Gemini 客户端，baseURL 为空时使用官方地址
func NewGeminiGenerator(ctx context.Context, apiKey, baseURL, modelID string, timeout time.Duration) (*GeminiGenerator, error) {
	cc := &genai.ClientConfig{
		APIKey:     strings.TrimSpace(apiKey),
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client failed: %w", err)
	}
	return &GeminiGenerator{client: client, model: modelID}, nil
}

var _ Generator = (*GeminiGenerator)(nil)

// Generate 调用 generateContent，开启搜索时附带 googleSearch 工具
func (g *GeminiGenerator) Generate(ctx context.Context, req *Request) (*Response, error) {
	gc := &genai.GenerateContentConfig{}
	if req.System != "" {
		gc.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}
	if req.EnableSearch {
		gc.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), gc)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content failed: %w", err)
	}

	out := &Response{
		Text:  resp.Text(),
		Model: g.model,
	}
	if v := strings.TrimSpace(resp.ModelVersion); v != "" {
		out.Model = v
	}
	out.Sources = groundingSources(resp)
	return out, nil
}

// groundingSources 读取首个候选的 groundingMetadata
func groundingSources(resp *genai.GenerateContentResponse) []model.GroundingSource {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	chunks := resp.Candidates[0].GroundingMetadata.GroundingChunks
	sources := make([]model.GroundingSource, 0, len(chunks))
	for _, c := range chunks {
		if c == nil || c.Web == nil {
			sources = append(sources, model.GroundingSource{})
			continue
		}
		sources = append(sources, model.GroundingSource{URI: c.Web.URI, Title: c.Web.Title})
	}
	return sources
}
