package render

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/iWorld-y/alpha_insight/internal/model"
)

const htmlTpl = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>A 股智能研判</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; max-width: 960px; margin: 0 auto; padding: 20px; line-height: 1.6; color: #333; }
        h1 { text-align: center; color: #2c3e50; }
        .meta { text-align: center; color: #666; }
        .card { border: 1px solid #eee; border-radius: 8px; padding: 16px; margin-bottom: 20px; }
        .warn { background-color: #fff8e1; border-left: 4px solid #f5b400; padding: 12px; }
        .tag { display: inline-block; padding: 2px 10px; border-radius: 12px; color: white; background-color: #e74c3c; }
        .bull { color: #c0392b; }
        .bear { color: #27ae60; }
        table { width: 100%; border-collapse: collapse; }
        th, td { border-bottom: 1px solid #eee; padding: 6px 8px; text-align: left; vertical-align: top; }
        pre { white-space: pre-wrap; background: #f9f9f9; padding: 12px; }
    </style>
</head>
<body>
    <h1>A 股智能研判</h1>
    <p class="meta">生成于 {{ .GeneratedAt }}</p>

{{with .Result}}
{{if .Data}}{{with .Data}}
    <div class="card warn">以下内容由 AI 基于公开网络信息生成，不构成投资建议。股市有风险，投资需谨慎。</div>
    <div class="card">
        <h2>{{.Date}} <span class="tag">{{predictionLabel .Prediction}}</span></h2>
        <p><b>市场概览：</b>{{.MarketOverview}}</p>
        <p><b>美股影响：</b>{{.USMarketImpact}}</p>
        <p><b>政策面：</b>{{.PolicyImpact}}</p>
    </div>
    {{if .Sectors}}
    <div class="card">
        <h3>板块情绪</h3>
        <table>
            <tr><th>板块</th><th>情绪分</th><th>理由</th></tr>
            {{range .Sectors}}<tr><td>{{.Name}}</td><td class="{{if .Bullish}}bull{{else}}bear{{end}}">{{.Sentiment}}</td><td>{{.Reason}}</td></tr>
            {{end}}
        </table>
    </div>
    {{end}}
    {{if .RecommendedETFs}}
    <div class="card">
        <h3>推荐 ETF</h3>
        <table>
            <tr><th>代码</th><th>名称</th><th>类别</th></tr>
            {{range .RecommendedETFs}}<tr><td>{{.Symbol}}</td><td>{{.Name}}</td><td>{{.Category}}</td></tr>
            {{end}}
        </table>
    </div>
    {{end}}
    {{if .TopStocks}}
    <div class="card">
        <h3>精选个股</h3>
        <table>
            <tr><th>代码</th><th>名称</th><th>预期</th><th>理由</th></tr>
            {{range .TopStocks}}<tr><td>{{.Symbol}}</td><td>{{.Name}}</td><td>{{.ExpectedTrend}}</td><td>{{.Reason}}</td></tr>
            {{end}}
        </table>
    </div>
    {{end}}
    {{if .Disclaimer}}<p class="meta">{{.Disclaimer}}</p>{{end}}
{{end}}{{else}}
    <div class="card">
        <h3>模型原文</h3>
        <pre>{{.RawText}}</pre>
    </div>
{{end}}
{{end}}

{{if .Holdings}}
    <div class="card">
        <h3>我的持仓（合计成本 {{.TotalCost}}）</h3>
        <table>
            <tr><th>代码</th><th>名称</th><th>成本价</th><th>数量</th><th>持仓成本</th></tr>
            {{range .Holdings}}<tr><td>{{.Symbol}}</td><td>{{.Name}}</td><td>{{money .Cost}}</td><td>{{money .Shares}}</td><td>{{money .CostBasis}}</td></tr>
            {{end}}
        </table>
    </div>
{{end}}

{{with .Diagnosis}}
    <div class="card">
        <h3>持仓诊断 <span class="tag">风险 {{riskLabel .OverallRisk}}</span></h3>
        <p>{{.Summary}}</p>
        <table>
            <tr><th>代码</th><th>建议</th><th>风险</th><th>理由</th></tr>
            {{range .HoldingsAdvice}}<tr><td>{{.Symbol}}</td><td>{{.Action}}</td><td>{{riskLabel .RiskLevel}}</td><td>{{.Reason}}</td></tr>
            {{end}}
        </table>
        {{if .SuggestedAdjustments}}<ul>{{range .SuggestedAdjustments}}<li>{{.}}</li>{{end}}</ul>{{end}}
    </div>
{{end}}

{{if .Sources}}
    <div class="card">
        <h3>参考来源</h3>
        <ol>{{range .Sources}}<li><a href="{{.URI}}" target="_blank">{{if .Title}}{{.Title}}{{else}}{{.URI}}{{end}}</a></li>{{end}}</ol>
    </div>
{{end}}
</body>
</html>`

var reportTpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"predictionLabel": PredictionLabel,
	"riskLabel":       RiskLabel,
	"money":           money,
}).Parse(htmlTpl))

// Report HTML 报告所需数据
type Report struct {
	Result      *model.AnalysisResult
	Diagnosis   *model.PortfolioAnalysis
	Holdings    []model.PortfolioItem
	GeneratedAt time.Time
}

// WriteHTML 渲染 HTML 报告
func WriteHTML(w io.Writer, r Report) error {
	var sources []model.GroundingSource
	if r.Result != nil {
		sources = model.FilterSources(r.Result.Sources)
	}
	data := struct {
		Result      *model.AnalysisResult
		Diagnosis   *model.PortfolioAnalysis
		Holdings    []model.PortfolioItem
		TotalCost   string
		Sources     []model.GroundingSource
		GeneratedAt string
	}{
		Result:      r.Result,
		Diagnosis:   r.Diagnosis,
		Holdings:    r.Holdings,
		TotalCost:   money(model.TotalCost(r.Holdings)),
		Sources:     sources,
		GeneratedAt: r.GeneratedAt.Format(time.DateTime),
	}
	return reportTpl.Execute(w, data)
}

// ExportHTML 把报告写入文件
func ExportHTML(path string, r Report) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	return writeAndClose(f, r)
}

// writeAndClose 渲染失败时仍关闭文件；关闭失败同样视为写入失败
func writeAndClose(wc io.WriteCloser, r Report) error {
	if err := WriteHTML(wc, r); err != nil {
		wc.Close()
		return fmt.Errorf("render report: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	return nil
}
