// Package render 把分析结果输出为终端表格或 HTML 报告。
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/iWorld-y/alpha_insight/internal/model"
	"github.com/iWorld-y/alpha_insight/internal/storage"
)

var predictionLabels = map[model.Prediction]string{
	model.PredictionBullish:  "看多",
	model.PredictionBearish:  "看空",
	model.PredictionVolatile: "震荡",
	model.PredictionNeutral:  "中性",
}

var trendLabels = map[model.Trend]string{
	model.TrendUp:      "上涨",
	model.TrendDown:    "下跌",
	model.TrendNeutral: "持平",
}

var actionLabels = map[model.Action]string{
	model.ActionBuy:    "买入",
	model.ActionSell:   "卖出",
	model.ActionHold:   "持有",
	model.ActionReduce: "减仓",
	model.ActionAdd:    "加仓",
}

var riskLabels = map[model.RiskLevel]string{
	model.RiskHigh:   "高",
	model.RiskMedium: "中",
	model.RiskLow:    "低",
}

func label[K ~string](m map[K]string, k K) string {
	if v, ok := m[k]; ok {
		return v
	}
	return string(k)
}

// PredictionLabel 研判的中文说明
func PredictionLabel(p model.Prediction) string { return label(predictionLabels, p) }

// RiskLabel 风险等级的中文说明
func RiskLabel(r model.RiskLevel) string { return label(riskLabels, r) }

func sentimentLabel(s model.Sector) string {
	if s.Bullish() {
		return "偏多"
	}
	return "偏空"
}

func money(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoWrapText(true)
	t.SetColWidth(40)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	return t
}

// Market 输出市场分析；无结构化结果时原样输出模型原文
func Market(w io.Writer, result *model.AnalysisResult) {
	if result == nil {
		fmt.Fprintln(w, "暂无市场分析")
		return
	}
	if result.Data == nil {
		fmt.Fprintln(w, "模型未返回结构化结果，原文如下：")
		fmt.Fprintln(w)
		fmt.Fprintln(w, result.RawText)
		Sources(w, result.Sources)
		return
	}

	d := result.Data
	fmt.Fprintf(w, "A 股市场研判 %s  次日预期: %s (%s)\n\n", d.Date, PredictionLabel(d.Prediction), d.Prediction)
	fmt.Fprintf(w, "市场概览: %s\n", d.MarketOverview)
	fmt.Fprintf(w, "美股影响: %s\n", d.USMarketImpact)
	fmt.Fprintf(w, "政策面:   %s\n\n", d.PolicyImpact)

	if len(d.Sectors) > 0 {
		t := newTable(w, []string{"板块", "情绪分", "倾向", "理由"})
		for _, s := range d.Sectors {
			t.Append([]string{s.Name, strconv.Itoa(s.Sentiment), sentimentLabel(s), s.Reason})
		}
		t.Render()
	}
	if len(d.RecommendedETFs) > 0 {
		t := newTable(w, []string{"ETF 代码", "名称", "类别"})
		for _, e := range d.RecommendedETFs {
			t.Append([]string{e.Symbol, e.Name, e.Category})
		}
		t.Render()
	}
	if len(d.TopStocks) > 0 {
		t := newTable(w, []string{"代码", "名称", "预期", "理由"})
		for _, s := range d.TopStocks {
			t.Append([]string{s.Symbol, s.Name, label(trendLabels, s.ExpectedTrend), s.Reason})
		}
		t.Render()
	}
	if d.Disclaimer != "" {
		fmt.Fprintf(w, "\n免责声明: %s\n", d.Disclaimer)
	}
	Sources(w, result.Sources)
}

// Sources 输出有效的引用来源
func Sources(w io.Writer, sources []model.GroundingSource) {
	filtered := model.FilterSources(sources)
	if len(filtered) == 0 {
		return
	}
	fmt.Fprintln(w, "\n参考来源:")
	for i, s := range filtered {
		title := s.Title
		if title == "" {
			title = s.URI
		}
		fmt.Fprintf(w, "  [%d] %s\n      %s\n", i+1, title, s.URI)
	}
}

// Holdings 输出持仓列表和总成本
func Holdings(w io.Writer, items []model.PortfolioItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "暂无持仓，使用 portfolio add 添加")
		return
	}
	t := newTable(w, []string{"ID", "代码", "名称", "成本价", "数量", "持仓成本"})
	for _, it := range items {
		t.Append([]string{it.ID, it.Symbol, it.Name, money(it.Cost), money(it.Shares), money(it.CostBasis())})
	}
	t.SetFooter([]string{"", "", "", "", "合计", money(model.TotalCost(items))})
	t.Render()
}

// Diagnosis 输出持仓诊断
func Diagnosis(w io.Writer, a *model.PortfolioAnalysis) {
	if a == nil {
		return
	}
	fmt.Fprintf(w, "\n持仓诊断  整体风险: %s\n", RiskLabel(a.OverallRisk))
	fmt.Fprintf(w, "%s\n\n", a.Summary)

	if len(a.HoldingsAdvice) > 0 {
		t := newTable(w, []string{"代码", "建议", "风险", "理由"})
		for _, h := range a.HoldingsAdvice {
			t.Append([]string{h.Symbol, label(actionLabels, h.Action), RiskLabel(h.RiskLevel), h.Reason})
		}
		t.Render()
	}
	if len(a.SuggestedAdjustments) > 0 {
		fmt.Fprintln(w, "\n调整建议:")
		for i, s := range a.SuggestedAdjustments {
			fmt.Fprintf(w, "  %d. %s\n", i+1, s)
		}
	}
}

// History 输出历史记录列表
func History(w io.Writer, runs []storage.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "暂无历史记录")
		return
	}
	t := newTable(w, []string{"#", "类型", "时间", "摘要"})
	for _, r := range runs {
		kind := "市场分析"
		if r.Kind == storage.KindPortfolio {
			kind = "持仓诊断"
		}
		when := r.CreatedAt.Format(time.DateTime) + " (" + humanize.Time(r.CreatedAt) + ")"
		t.Append([]string{strconv.FormatInt(r.ID, 10), kind, when, strings.TrimSpace(r.Summary)})
	}
	t.Render()
}
