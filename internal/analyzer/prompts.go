package analyzer

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/iWorld-y/alpha_insight/internal/model"
)

const marketSystemPrompt = "你是一名专注于中国 A 股市场的资深金融分析师，擅长结合海外市场、宏观政策和行业资讯研判短期走势。"

const marketPromptTemplate = `今天是 %s。

任务：
1. 使用联网搜索获取今天的最新财经资讯，重点收集：
   - 最近一个交易日美股三大指数（标普500、纳斯达克、道琼斯）的收盘表现，以及对 A 股的潜在影响；
   - 中国政府近期的经济政策、中国人民银行公告或监管变化；
   - 今天影响中国市场的重要行业新闻。
2. 综合以上因素，研判下一个交易日 A 股市场的整体走势。
3. 给出具体建议：
   - 3-5 个值得关注的板块，每个板块给出 0-100 的整数情绪分（不低于 50 表示偏多）和理由；
   - 3 只推荐 ETF；
   - 5 只精选个股，优先使用 A 股代码（例如 600519）。

输出要求（必须严格遵守）：
只输出一个合法的 JSON 对象，并放在 ` + "```json" + ` 代码块中，结构如下：
` + "```json" + `
{
  "date": "YYYY-MM-DD",
  "marketOverview": "市场概览",
  "usMarketImpact": "美股收盘对 A 股的影响",
  "policyImpact": "政策面影响",
  "prediction": "Bullish | Bearish | Volatile | Neutral",
  "sectors": [{"name": "板块名称", "sentiment": 75, "reason": "理由"}],
  "recommendedETFs": [{"symbol": "510300", "name": "ETF 名称", "category": "类别"}],
  "topStocks": [{"symbol": "600519", "name": "股票名称", "reason": "理由", "expectedTrend": "Up | Down | Neutral"}],
  "disclaimer": "免责声明"
}
` + "```" + `

语言：JSON 中的文本内容全部使用简体中文；prediction 与 expectedTrend 保持上面列出的英文取值。`

// marketSearchQueries 给没有原生联网能力的后端准备的检索词
func marketSearchQueries(date string) []string {
	return []string{
		"美股 三大指数 收盘 " + date,
		"中国人民银行 证监会 最新政策",
		"A股 行业板块 今日要闻",
	}
}

func buildMarketPrompt(date string) string {
	return fmt.Sprintf(marketPromptTemplate, date)
}

const portfolioSystemPrompt = "你是一名谨慎的个人投资顾问，只依据给定的市场研判和持仓信息给出诊断，不编造额外资讯。"

const portfolioPromptTemplate = `以下是 %s 的 A 股市场研判：
%s

以下是用户当前持仓（cost 为持仓成本价，shares 为持股数量）：
%s

任务：
1. 结合市场研判，评估整个投资组合的风险水平。
2. 对每一只持仓给出操作建议和风险等级，并说明理由。
3. 给出组合层面的调整建议。

输出要求（必须严格遵守）：
只输出一个合法的 JSON 对象，并放在 ` + "```json" + ` 代码块中，结构如下：
` + "```json" + `
{
  "overallRisk": "High | Medium | Low",
  "summary": "组合整体评价",
  "holdingsAdvice": [{"symbol": "600519", "action": "Buy | Sell | Hold | Reduce | Add", "riskLevel": "High | Medium | Low", "reason": "理由"}],
  "suggestedAdjustments": ["调整建议"]
}
` + "```" + `

语言：文本内容全部使用简体中文；overallRisk、action、riskLevel 保持上面列出的英文取值。`

func buildPortfolioPrompt(holdings []model.PortfolioItem, market *model.MarketAnalysis) (string, error) {
	marketJSON, err := marshalPlain(market)
	if err != nil {
		return "", fmt.Errorf("marshal market context: %w", err)
	}
	holdingsJSON, err := marshalPlain(holdings)
	if err != nil {
		return "", fmt.Errorf("marshal holdings: %w", err)
	}
	return fmt.Sprintf(portfolioPromptTemplate, market.Date, marketJSON, holdingsJSON), nil
}

// marshalPlain 序列化为 JSON，不转义 HTML 字符
func marshalPlain(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
