package analyzer

import (
	"context"
	"errors"

	"github.com/iWorld-y/alpha_insight/internal/llm"
	"github.com/iWorld-y/alpha_insight/internal/logger"
	"github.com/iWorld-y/alpha_insight/internal/model"
)

var errNoMarketContext = errors.New("market context is required")

// PortfolioRequester 结合市场研判诊断用户持仓
type PortfolioRequester struct {
	gen llm.Generator
}

// NewPortfolioRequester 创建持仓诊断请求器
func NewPortfolioRequester(gen llm.Generator) *PortfolioRequester {
	return &PortfolioRequester{gen: gen}
}

// RequestPortfolioAnalysis 发起持仓诊断，不开启联网搜索。
// 调用方需保证 holdings 非空；模型调用失败返回 TransportError，解析失败返回 ParseError。
func (r *PortfolioRequester) RequestPortfolioAnalysis(ctx context.Context, holdings []model.PortfolioItem, market *model.MarketAnalysis) (*model.PortfolioAnalysis, error) {
	if market == nil {
		return nil, errNoMarketContext
	}
	prompt, err := buildPortfolioPrompt(holdings, market)
	if err != nil {
		return nil, err
	}
	logger.Log.Infof("开始持仓诊断: %d 只持仓, 市场日期 %s", len(holdings), market.Date)

	resp, err := r.gen.Generate(ctx, &llm.Request{
		System: portfolioSystemPrompt,
		Prompt: prompt,
	})
	if err != nil {
		logger.Log.Errorf("持仓诊断请求失败: %v", err)
		return nil, newTransportError(err)
	}

	analysis, err := ParsePortfolioAnalysis(resp.Text)
	if err != nil {
		logger.Log.Errorf("持仓诊断响应无法解析: %v", err)
		return nil, err
	}
	logger.Log.Infof("持仓诊断完成: 整体风险 %s, %d 条个股建议", analysis.OverallRisk, len(analysis.HoldingsAdvice))
	return analysis, nil
}

// ParsePortfolioAnalysis 从模型原文中解析持仓诊断，失败返回 ParseError
func ParsePortfolioAnalysis(text string) (*model.PortfolioAnalysis, error) {
	return decode[model.PortfolioAnalysis](text)
}
