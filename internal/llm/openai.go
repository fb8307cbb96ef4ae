package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/iWorld-y/alpha_insight/internal/search"
)

// OpenAIGenerator 兼容 OpenAI 协议的模型（DeepSeek、Qwen 等）。
// 这类模型没有原生联网能力，开启搜索时先经 search.Searcher 检索再把资讯拼入提示词。
type OpenAIGenerator struct {
	chatModel model.BaseChatModel
	modelID   string
	augmenter *Augmenter
}

// NewOpenAIGenerator 初始化 eino ChatModel，searcher 可为 nil
func NewOpenAIGenerator(ctx context.Context, baseURL, apiKey, modelID string, timeout time.Duration, searcher search.Searcher, maxResults int) (*OpenAIGenerator, error) {
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   modelID,
		Timeout: timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}
	return newOpenAIGenerator(chatModel, modelID, searcher, maxResults), nil
}

func newOpenAIGenerator(cm model.BaseChatModel, modelID string, searcher search.Searcher, maxResults int) *OpenAIGenerator {
	g := &OpenAIGenerator{chatModel: cm, modelID: modelID}
	if searcher != nil {
		g.augmenter = NewAugmenter(searcher, maxResults)
	}
	return g
}

var _ Generator = (*OpenAIGenerator)(nil)

// Generate 单次调用 ChatModel
func (g *OpenAIGenerator) Generate(ctx context.Context, req *Request) (*Response, error) {
	prompt := req.Prompt
	var resp Response

	if req.EnableSearch && g.augmenter != nil {
		digest, sources := g.augmenter.Collect(ctx, req.SearchQueries)
		if digest != "" {
			prompt = digest + "\n\n" + prompt
		}
		resp.Sources = sources
	}

	var messages []*schema.Message
	if req.System != "" {
		messages = append(messages, schema.SystemMessage(req.System))
	}
	messages = append(messages, schema.UserMessage(prompt))

	out, err := g.chatModel.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("chat model generate failed: %w", err)
	}

	resp.Text = out.Content
	resp.Model = g.modelID
	return &resp, nil
}
