// Package dashboard 持有当前市场分析、持仓诊断和进行中标记，串联两个分析请求。
package dashboard

import (
	"context"
	"errors"
	"sync"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/alpha_insight/internal/model"
	"github.com/iWorld-y/alpha_insight/internal/storage"
)

var (
	ErrBusy            = errors.New("dashboard: analysis already in progress")
	ErrNoMarketContext = errors.New("dashboard: no parsed market analysis available")
	ErrEmptyPortfolio  = errors.New("dashboard: portfolio is empty")
)

// MarketAnalyzer 市场分析请求
type MarketAnalyzer interface {
	RequestMarketAnalysis(ctx context.Context) (*model.AnalysisResult, error)
}

// PortfolioAnalyzer 持仓诊断请求
type PortfolioAnalyzer interface {
	RequestPortfolioAnalysis(ctx context.Context, holdings []model.PortfolioItem, market *model.MarketAnalysis) (*model.PortfolioAnalysis, error)
}

// Holdings 持仓存储
type Holdings interface {
	Load(ctx context.Context) []model.PortfolioItem
	Add(ctx context.Context, symbol, name string, cost, shares float64) (model.PortfolioItem, error)
	Remove(ctx context.Context, id string) error
}

// State 控制器状态快照
type State struct {
	Result             *model.AnalysisResult
	Diagnosis          *model.PortfolioAnalysis
	MarketErr          error
	AnalyzingMarket    bool
	AnalyzingPortfolio bool
}

// Controller 唯一持有界面状态的编排者
type Controller struct {
	market   MarketAnalyzer
	diag     PortfolioAnalyzer
	holdings Holdings
	history  storage.Recorder
	log      *log.Helper

	mu    sync.Mutex
	state State
}

// NewController 创建控制器，history 为 nil 时不记录历史
func NewController(market MarketAnalyzer, diag PortfolioAnalyzer, holdings Holdings, history storage.Recorder, logger log.Logger) *Controller {
	if history == nil {
		history = storage.Noop{}
	}
	return &Controller{
		market:   market,
		diag:     diag,
		holdings: holdings,
		history:  history,
		log:      log.NewHelper(log.With(logger, "module", "dashboard")),
	}
}

// State 返回当前状态的副本
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// RunMarketAnalysis 发起市场分析。开始时清空旧的分析、诊断和错误；
// 失败时错误保留在状态中，由用户重新触发。
func (c *Controller) RunMarketAnalysis(ctx context.Context) (*model.AnalysisResult, error) {
	c.mu.Lock()
	if c.state.AnalyzingMarket {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.state.AnalyzingMarket = true
	c.state.MarketErr = nil
	c.state.Result = nil
	c.state.Diagnosis = nil
	c.mu.Unlock()

	result, err := c.market.RequestMarketAnalysis(ctx)

	c.mu.Lock()
	c.state.AnalyzingMarket = false
	if err != nil {
		c.state.MarketErr = err
		c.mu.Unlock()
		c.log.Errorf("市场分析失败: %v", err)
		return nil, err
	}
	c.state.Result = result
	c.mu.Unlock()

	if result.Data == nil {
		c.log.Warn("市场分析未得到结构化结果，将展示模型原文")
	}
	if err := c.history.RecordMarket(ctx, result); err != nil {
		c.log.Warnf("记录市场分析历史失败: %v", err)
	}
	return result, nil
}

// LoadLatestMarket 从历史中恢复最近一次解析成功的市场分析，作为诊断的上下文
func (c *Controller) LoadLatestMarket(ctx context.Context) (*model.AnalysisResult, error) {
	result, err := c.history.LatestMarket(ctx)
	if err != nil {
		return nil, err
	}
	c.SetMarketResult(result)
	c.log.Infof("已从历史恢复市场分析: %s", result.Data.Date)
	return result, nil
}

// SetMarketResult 替换当前市场分析，旧的持仓诊断随之失效
func (c *Controller) SetMarketResult(result *model.AnalysisResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Result = result
	c.state.Diagnosis = nil
	c.state.MarketErr = nil
}

// RunPortfolioAnalysis 基于当前市场分析诊断持仓。
// 需要已解析的市场分析和非空持仓；失败时保持请求前的状态。
func (c *Controller) RunPortfolioAnalysis(ctx context.Context) (*model.PortfolioAnalysis, error) {
	holdings := c.holdings.Load(ctx)

	c.mu.Lock()
	if c.state.AnalyzingPortfolio {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	if c.state.Result == nil || c.state.Result.Data == nil {
		c.mu.Unlock()
		return nil, ErrNoMarketContext
	}
	if len(holdings) == 0 {
		c.mu.Unlock()
		return nil, ErrEmptyPortfolio
	}
	market := c.state.Result.Data
	c.state.AnalyzingPortfolio = true
	c.mu.Unlock()

	analysis, err := c.diag.RequestPortfolioAnalysis(ctx, holdings, market)

	c.mu.Lock()
	c.state.AnalyzingPortfolio = false
	if err != nil {
		c.mu.Unlock()
		c.log.Errorf("持仓诊断失败: %v", err)
		return nil, err
	}
	// 诊断期间市场分析已被替换时丢弃本次结果
	if c.state.Result == nil || c.state.Result.Data != market {
		c.mu.Unlock()
		c.log.Warn("市场分析已更新，丢弃过期的持仓诊断")
		return analysis, nil
	}
	c.state.Diagnosis = analysis
	c.mu.Unlock()

	if err := c.history.RecordPortfolio(ctx, analysis, holdings); err != nil {
		c.log.Warnf("记录持仓诊断历史失败: %v", err)
	}
	return analysis, nil
}

// Holdings 当前持仓
func (c *Controller) Holdings(ctx context.Context) []model.PortfolioItem {
	return c.holdings.Load(ctx)
}

// AddHolding 新增持仓并保存
func (c *Controller) AddHolding(ctx context.Context, symbol, name string, cost, shares float64) (model.PortfolioItem, error) {
	return c.holdings.Add(ctx, symbol, name, cost, shares)
}

// RemoveHolding 删除持仓并保存
func (c *Controller) RemoveHolding(ctx context.Context, id string) error {
	return c.holdings.Remove(ctx, id)
}

// History 最近的分析记录
func (c *Controller) History(ctx context.Context, limit int) ([]storage.Run, error) {
	return c.history.ListRuns(ctx, limit)
}
