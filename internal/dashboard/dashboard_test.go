package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/alpha_insight/internal/model"
	"github.com/iWorld-y/alpha_insight/internal/storage"
)

// mockMarket 模拟市场分析；block 非空时等待放行
type mockMarket struct {
	result  *model.AnalysisResult
	err     error
	started chan struct{}
	block   chan struct{}
	calls   int
}

func (m *mockMarket) RequestMarketAnalysis(ctx context.Context) (*model.AnalysisResult, error) {
	m.calls++
	if m.block != nil {
		m.started <- struct{}{}
		<-m.block
	}
	return m.result, m.err
}

// mockDiag 模拟持仓诊断
type mockDiag struct {
	analysis *model.PortfolioAnalysis
	err      error
	calls    int
	got      []model.PortfolioItem
	before   func()
}

func (m *mockDiag) RequestPortfolioAnalysis(ctx context.Context, holdings []model.PortfolioItem, market *model.MarketAnalysis) (*model.PortfolioAnalysis, error) {
	m.calls++
	m.got = holdings
	if m.before != nil {
		m.before()
	}
	return m.analysis, m.err
}

// mockHoldings 内存持仓
type mockHoldings struct {
	items []model.PortfolioItem
}

func (m *mockHoldings) Load(ctx context.Context) []model.PortfolioItem {
	return append([]model.PortfolioItem{}, m.items...)
}

func (m *mockHoldings) Add(ctx context.Context, symbol, name string, cost, shares float64) (model.PortfolioItem, error) {
	it := model.PortfolioItem{ID: symbol, Symbol: symbol, Name: name, Cost: cost, Shares: shares}
	m.items = append(m.items, it)
	return it, nil
}

func (m *mockHoldings) Remove(ctx context.Context, id string) error {
	for i, it := range m.items {
		if it.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

// mockRecorder 记录调用次数
type mockRecorder struct {
	storage.Noop
	market    int
	portfolio int
	err       error
	latest    *model.AnalysisResult
}

func (m *mockRecorder) RecordMarket(ctx context.Context, r *model.AnalysisResult) error {
	m.market++
	return m.err
}

func (m *mockRecorder) RecordPortfolio(ctx context.Context, a *model.PortfolioAnalysis, h []model.PortfolioItem) error {
	m.portfolio++
	return m.err
}

func (m *mockRecorder) LatestMarket(ctx context.Context) (*model.AnalysisResult, error) {
	if m.latest == nil {
		return nil, storage.ErrNoHistory
	}
	return m.latest, nil
}

func parsedResult(date string) *model.AnalysisResult {
	return &model.AnalysisResult{
		Data:    &model.MarketAnalysis{Date: date, Prediction: model.PredictionBullish},
		RawText: "raw",
	}
}

func newTestController(m *mockMarket, d *mockDiag, h *mockHoldings, r *mockRecorder) *Controller {
	return NewController(m, d, h, r, log.DefaultLogger)
}

func TestController_MarketClearsDiagnosis(t *testing.T) {
	ctx := context.Background()
	market := &mockMarket{result: parsedResult("2024-05-01")}
	diag := &mockDiag{analysis: &model.PortfolioAnalysis{OverallRisk: model.RiskLow}}
	holdings := &mockHoldings{items: []model.PortfolioItem{{ID: "1", Symbol: "600519", Name: "贵州茅台"}}}
	rec := &mockRecorder{}
	c := newTestController(market, diag, holdings, rec)

	if _, err := c.RunMarketAnalysis(ctx); err != nil {
		t.Fatalf("RunMarketAnalysis() error = %v", err)
	}
	if _, err := c.RunPortfolioAnalysis(ctx); err != nil {
		t.Fatalf("RunPortfolioAnalysis() error = %v", err)
	}
	if c.State().Diagnosis == nil {
		t.Fatal("diagnosis should be set")
	}
	if rec.market != 1 || rec.portfolio != 1 {
		t.Errorf("recorder calls = %d/%d, want 1/1", rec.market, rec.portfolio)
	}

	market.result = parsedResult("2024-05-02")
	if _, err := c.RunMarketAnalysis(ctx); err != nil {
		t.Fatalf("RunMarketAnalysis() error = %v", err)
	}
	st := c.State()
	if st.Diagnosis != nil {
		t.Error("new market analysis must clear the previous diagnosis")
	}
	if st.Result.Data.Date != "2024-05-02" {
		t.Errorf("result date = %s", st.Result.Data.Date)
	}
}

func TestController_MarketFailureKeepsError(t *testing.T) {
	ctx := context.Background()
	market := &mockMarket{result: parsedResult("2024-05-01")}
	rec := &mockRecorder{}
	c := newTestController(market, &mockDiag{}, &mockHoldings{}, rec)

	if _, err := c.RunMarketAnalysis(ctx); err != nil {
		t.Fatalf("RunMarketAnalysis() error = %v", err)
	}

	market.result, market.err = nil, errors.New("quota exceeded")
	if _, err := c.RunMarketAnalysis(ctx); err == nil {
		t.Fatal("RunMarketAnalysis() expected error")
	}
	st := c.State()
	if st.MarketErr == nil || st.Result != nil || st.AnalyzingMarket {
		t.Errorf("state after failure = %+v", st)
	}
	if rec.market != 1 {
		t.Errorf("failed analysis should not be recorded, got %d records", rec.market)
	}

	market.result, market.err = parsedResult("2024-05-02"), nil
	if _, err := c.RunMarketAnalysis(ctx); err != nil {
		t.Fatalf("retry error = %v", err)
	}
	if c.State().MarketErr != nil {
		t.Error("retry should clear the error")
	}
}

func TestController_RecordFailureIgnored(t *testing.T) {
	rec := &mockRecorder{err: errors.New("disk full")}
	c := newTestController(&mockMarket{result: parsedResult("2024-05-01")}, &mockDiag{}, &mockHoldings{}, rec)
	if _, err := c.RunMarketAnalysis(context.Background()); err != nil {
		t.Errorf("RunMarketAnalysis() error = %v, history failure must not surface", err)
	}
}

func TestController_MarketBusy(t *testing.T) {
	market := &mockMarket{
		result:  parsedResult("2024-05-01"),
		started: make(chan struct{}),
		block:   make(chan struct{}),
	}
	c := newTestController(market, &mockDiag{}, &mockHoldings{}, &mockRecorder{})

	done := make(chan error)
	go func() {
		_, err := c.RunMarketAnalysis(context.Background())
		done <- err
	}()
	<-market.started

	if !c.State().AnalyzingMarket {
		t.Error("AnalyzingMarket should be true while in flight")
	}
	if _, err := c.RunMarketAnalysis(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("concurrent RunMarketAnalysis() error = %v, want ErrBusy", err)
	}

	close(market.block)
	if err := <-done; err != nil {
		t.Errorf("first RunMarketAnalysis() error = %v", err)
	}
	if market.calls != 1 {
		t.Errorf("market calls = %d, want 1", market.calls)
	}
}

func TestController_PortfolioGuards(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		result   *model.AnalysisResult
		holdings []model.PortfolioItem
		wantErr  error
	}{
		{"no market", nil, []model.PortfolioItem{{ID: "1"}}, ErrNoMarketContext},
		{"unparsed market", &model.AnalysisResult{RawText: "prose"}, []model.PortfolioItem{{ID: "1"}}, ErrNoMarketContext},
		{"empty portfolio", parsedResult("2024-05-01"), nil, ErrEmptyPortfolio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diag := &mockDiag{}
			c := newTestController(&mockMarket{}, diag, &mockHoldings{items: tt.holdings}, &mockRecorder{})
			if tt.result != nil {
				c.SetMarketResult(tt.result)
			}
			if _, err := c.RunPortfolioAnalysis(ctx); !errors.Is(err, tt.wantErr) {
				t.Errorf("RunPortfolioAnalysis() error = %v, want %v", err, tt.wantErr)
			}
			if diag.calls != 0 {
				t.Error("analyzer must not be called when guard fails")
			}
		})
	}
}

func TestController_PortfolioFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	diag := &mockDiag{analysis: &model.PortfolioAnalysis{OverallRisk: model.RiskHigh}}
	rec := &mockRecorder{}
	c := newTestController(&mockMarket{}, diag, &mockHoldings{items: []model.PortfolioItem{{ID: "1", Symbol: "600519"}}}, rec)
	c.SetMarketResult(parsedResult("2024-05-01"))

	if _, err := c.RunPortfolioAnalysis(ctx); err != nil {
		t.Fatalf("RunPortfolioAnalysis() error = %v", err)
	}
	first := c.State().Diagnosis

	diag.analysis, diag.err = nil, errors.New("parse error")
	if _, err := c.RunPortfolioAnalysis(ctx); err == nil {
		t.Fatal("RunPortfolioAnalysis() expected error")
	}
	st := c.State()
	if st.Diagnosis != first || st.AnalyzingPortfolio {
		t.Errorf("state after failed diagnosis = %+v", st)
	}
	if rec.portfolio != 1 {
		t.Errorf("portfolio records = %d, want 1", rec.portfolio)
	}
}

func TestController_StaleDiagnosisDropped(t *testing.T) {
	ctx := context.Background()
	diag := &mockDiag{analysis: &model.PortfolioAnalysis{OverallRisk: model.RiskLow}}
	c := newTestController(&mockMarket{}, diag, &mockHoldings{items: []model.PortfolioItem{{ID: "1"}}}, &mockRecorder{})
	c.SetMarketResult(parsedResult("2024-05-01"))
	diag.before = func() { c.SetMarketResult(parsedResult("2024-05-02")) }

	if _, err := c.RunPortfolioAnalysis(ctx); err != nil {
		t.Fatalf("RunPortfolioAnalysis() error = %v", err)
	}
	if c.State().Diagnosis != nil {
		t.Error("diagnosis computed against a replaced market analysis must be dropped")
	}
}

func TestController_LoadLatestMarket(t *testing.T) {
	ctx := context.Background()
	rec := &mockRecorder{}
	c := newTestController(&mockMarket{}, &mockDiag{}, &mockHoldings{}, rec)

	if _, err := c.LoadLatestMarket(ctx); !errors.Is(err, storage.ErrNoHistory) {
		t.Errorf("LoadLatestMarket() error = %v, want ErrNoHistory", err)
	}

	rec.latest = parsedResult("2024-04-30")
	if _, err := c.LoadLatestMarket(ctx); err != nil {
		t.Fatalf("LoadLatestMarket() error = %v", err)
	}
	if c.State().Result != rec.latest {
		t.Error("LoadLatestMarket() should install the recorded result")
	}
}

func TestController_Holdings(t *testing.T) {
	ctx := context.Background()
	h := &mockHoldings{}
	c := NewController(&mockMarket{}, &mockDiag{}, h, nil, log.DefaultLogger)

	if _, err := c.AddHolding(ctx, "600519", "贵州茅台", 1500, 100); err != nil {
		t.Fatalf("AddHolding() error = %v", err)
	}
	if got := c.Holdings(ctx); len(got) != 1 {
		t.Errorf("Holdings() = %v", got)
	}
	if err := c.RemoveHolding(ctx, "600519"); err != nil {
		t.Fatalf("RemoveHolding() error = %v", err)
	}
	if got := c.Holdings(ctx); len(got) != 0 {
		t.Errorf("Holdings() after remove = %v", got)
	}
	if runs, err := c.History(ctx, 10); err != nil || len(runs) != 0 {
		t.Errorf("History() with nil recorder = %v, %v", runs, err)
	}
}
