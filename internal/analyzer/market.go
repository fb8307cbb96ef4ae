// Package analyzer 组装提示词、调用模型并把响应解析为结构化的市场研判与持仓诊断。
package analyzer

import (
	"context"
	"time"

	"github.com/iWorld-y/alpha_insight/internal/llm"
	"github.com/iWorld-y/alpha_insight/internal/logger"
	"github.com/iWorld-y/alpha_insight/internal/model"
)

// MarketRequester 请求一次联网的 A 股市场研判
type MarketRequester struct {
	gen llm.Generator
	now func() time.Time
}

// NewMarketRequester 创建市场分析请求器
func NewMarketRequester(gen llm.Generator) *MarketRequester {
	return &MarketRequester{gen: gen, now: time.Now}
}

// RequestMarketAnalysis 发起一次市场分析。
// 模型调用失败返回 TransportError；响应解析失败不报错，Data 为 nil 并保留原文。
func (r *MarketRequester) RequestMarketAnalysis(ctx context.Context) (*model.AnalysisResult, error) {
	date := r.now().In(model.MarketZone).Format(time.DateOnly)
	logger.Log.Infof("开始请求市场分析: %s", date)

	resp, err := r.gen.Generate(ctx, &llm.Request{
		System:        marketSystemPrompt,
		Prompt:        buildMarketPrompt(date),
		EnableSearch:  true,
		SearchQueries: marketSearchQueries(date),
	})
	if err != nil {
		logger.Log.Errorf("市场分析请求失败: %v", err)
		return nil, newTransportError(err)
	}

	result := &model.AnalysisResult{
		Sources: resp.Sources,
		RawText: resp.Text,
	}
	data, err := ParseMarketAnalysis(resp.Text)
	if err != nil {
		logger.Log.Warnf("市场分析响应无法解析，仅保留原文 (%d 字节): %v", len(resp.Text), err)
		return result, nil
	}
	result.Data = data
	logger.Log.Infof("市场分析完成: %s, 研判 %s, 引用 %d 条", data.Date, data.Prediction, len(resp.Sources))
	return result, nil
}

// ParseMarketAnalysis 从模型原文中解析市场研判，失败返回 ParseError
func ParseMarketAnalysis(text string) (*model.MarketAnalysis, error) {
	return decode[model.MarketAnalysis](text)
}
