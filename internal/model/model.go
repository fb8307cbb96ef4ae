package model

import (
	"fmt"
	"strings"
	"time"
)

// MarketZone A 股交易日按北京时间计算
var MarketZone = time.FixedZone("CST", 8*60*60)

// Prediction 次日大盘研判
type Prediction string

const (
	PredictionBullish  Prediction = "Bullish"
	PredictionBearish  Prediction = "Bearish"
	PredictionVolatile Prediction = "Volatile"
	PredictionNeutral  Prediction = "Neutral"
)

// Trend 个股预期走势
type Trend string

const (
	TrendUp      Trend = "Up"
	TrendDown    Trend = "Down"
	TrendNeutral Trend = "Neutral"
)

// Action 持仓操作建议
type Action string

const (
	ActionBuy    Action = "Buy"
	ActionSell   Action = "Sell"
	ActionHold   Action = "Hold"
	ActionReduce Action = "Reduce"
	ActionAdd    Action = "Add"
)

// RiskLevel 风险等级
type RiskLevel string

const (
	RiskHigh   RiskLevel = "High"
	RiskMedium RiskLevel = "Medium"
	RiskLow    RiskLevel = "Low"
)

// Sector 板块情绪
type Sector struct {
	Name      string `json:"name"`
	Sentiment int    `json:"sentiment"` // 0-100，>=50 偏多
	Reason    string `json:"reason"`
}

// ETF 推荐 ETF
type ETF struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Stock 精选个股
type Stock struct {
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	Reason        string `json:"reason"`
	ExpectedTrend Trend  `json:"expectedTrend"`
}

// MarketAnalysis A 股市场研判，仅由解析模型响应得到
type MarketAnalysis struct {
	Date            string     `json:"date"`
	MarketOverview  string     `json:"marketOverview"`
	USMarketImpact  string     `json:"usMarketImpact"`
	PolicyImpact    string     `json:"policyImpact"`
	Prediction      Prediction `json:"prediction"`
	Sectors         []Sector   `json:"sectors"`
	RecommendedETFs []ETF      `json:"recommendedETFs"`
	TopStocks       []Stock    `json:"topStocks"`
	Disclaimer      string     `json:"disclaimer"`
}

// GroundingSource 模型联网搜索时引用的网页
type GroundingSource struct {
	URI   string `json:"uri,omitempty"`
	Title string `json:"title,omitempty"`
}

// AnalysisResult 一次市场分析的完整结果。
// 解析失败时 Data 为 nil，RawText 始终保留模型原文。
type AnalysisResult struct {
	Data    *MarketAnalysis   `json:"data"`
	Sources []GroundingSource `json:"sources"`
	RawText string            `json:"rawText"`
}

// HoldingAdvice 单只持仓的诊断建议
type HoldingAdvice struct {
	Symbol    string    `json:"symbol"`
	Action    Action    `json:"action"`
	RiskLevel RiskLevel `json:"riskLevel"`
	Reason    string    `json:"reason"`
}

// PortfolioAnalysis 持仓诊断结果
type PortfolioAnalysis struct {
	OverallRisk          RiskLevel       `json:"overallRisk"`
	Summary              string          `json:"summary"`
	HoldingsAdvice       []HoldingAdvice `json:"holdingsAdvice"`
	SuggestedAdjustments []string        `json:"suggestedAdjustments"`
}

var (
	predictions = []string{string(PredictionBullish), string(PredictionBearish), string(PredictionVolatile), string(PredictionNeutral)}
	trends      = []string{string(TrendUp), string(TrendDown), string(TrendNeutral)}
	actions     = []string{string(ActionBuy), string(ActionSell), string(ActionHold), string(ActionReduce), string(ActionAdd)}
	riskLevels  = []string{string(RiskHigh), string(RiskMedium), string(RiskLow)}
)

// canonical 忽略大小写匹配封闭取值集合，返回规范写法
func canonical(raw string, allowed []string) (string, bool) {
	v := strings.TrimSpace(raw)
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return a, true
		}
	}
	return raw, false
}

// Validate 规范化枚举字段并校验取值范围
func (m *MarketAnalysis) Validate() error {
	p, ok := canonical(string(m.Prediction), predictions)
	if !ok {
		return fmt.Errorf("prediction: unsupported value %q", m.Prediction)
	}
	m.Prediction = Prediction(p)

	for i := range m.Sectors {
		if s := m.Sectors[i].Sentiment; s < 0 || s > 100 {
			return fmt.Errorf("sectors[%d].sentiment: %d out of range [0,100]", i, s)
		}
	}
	for i := range m.TopStocks {
		t, ok := canonical(string(m.TopStocks[i].ExpectedTrend), trends)
		if !ok {
			return fmt.Errorf("topStocks[%d].expectedTrend: unsupported value %q", i, m.TopStocks[i].ExpectedTrend)
		}
		m.TopStocks[i].ExpectedTrend = Trend(t)
	}
	return nil
}

// Validate 规范化枚举字段
func (p *PortfolioAnalysis) Validate() error {
	r, ok := canonical(string(p.OverallRisk), riskLevels)
	if !ok {
		return fmt.Errorf("overallRisk: unsupported value %q", p.OverallRisk)
	}
	p.OverallRisk = RiskLevel(r)

	for i := range p.HoldingsAdvice {
		a, ok := canonical(string(p.HoldingsAdvice[i].Action), actions)
		if !ok {
			return fmt.Errorf("holdingsAdvice[%d].action: unsupported value %q", i, p.HoldingsAdvice[i].Action)
		}
		p.HoldingsAdvice[i].Action = Action(a)

		r, ok := canonical(string(p.HoldingsAdvice[i].RiskLevel), riskLevels)
		if !ok {
			return fmt.Errorf("holdingsAdvice[%d].riskLevel: unsupported value %q", i, p.HoldingsAdvice[i].RiskLevel)
		}
		p.HoldingsAdvice[i].RiskLevel = RiskLevel(r)
	}
	return nil
}

// Bullish 情绪分不低于 50 视为偏多
func (s Sector) Bullish() bool {
	return s.Sentiment >= 50
}

// FilterSources 丢弃没有 URI 的引用并按 URI 去重，保持原有顺序
func FilterSources(sources []GroundingSource) []GroundingSource {
	seen := make(map[string]struct{}, len(sources))
	out := make([]GroundingSource, 0, len(sources))
	for _, s := range sources {
		if s.URI == "" {
			continue
		}
		if _, ok := seen[s.URI]; ok {
			continue
		}
		seen[s.URI] = struct{}{}
		out = append(out, s)
	}
	return out
}
