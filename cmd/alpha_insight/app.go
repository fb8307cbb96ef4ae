package main

import (
	"context"
	"fmt"

	"github.com/iWorld-y/alpha_insight/internal/analyzer"
	"github.com/iWorld-y/alpha_insight/internal/config"
	"github.com/iWorld-y/alpha_insight/internal/dashboard"
	"github.com/iWorld-y/alpha_insight/internal/kvstore"
	"github.com/iWorld-y/alpha_insight/internal/llm"
	"github.com/iWorld-y/alpha_insight/internal/logger"
	"github.com/iWorld-y/alpha_insight/internal/portfolio"
	"github.com/iWorld-y/alpha_insight/internal/storage"
)

// app 一次命令执行所需的全部依赖
type app struct {
	ctl      *dashboard.Controller
	holdings *portfolio.Store
	closers  []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Log.Warnf("释放资源失败: %v", err)
		}
	}
}

// newApp 组装依赖。withLLM 为 false 时不创建模型客户端，也不要求 API Key。
func newApp(ctx context.Context, cfg *config.Config, withLLM bool) (*app, error) {
	a := &app{}

	kv, err := kvstore.New(cfg.Storage.KV)
	if err != nil {
		return nil, fmt.Errorf("初始化持仓存储失败: %w", err)
	}
	a.closers = append(a.closers, kv.Close)
	a.holdings = portfolio.NewStore(kv)

	history, err := storage.New(cfg.Storage)
	if err != nil {
		logger.Log.Errorf("无法打开历史记录: %v. 本次运行不记录历史。", err)
		history = storage.Noop{}
	}
	a.closers = append(a.closers, history.Close)

	var (
		market dashboard.MarketAnalyzer
		diag   dashboard.PortfolioAnalyzer
	)
	if withLLM {
		if err := cfg.Validate(); err != nil {
			a.Close()
			return nil, fmt.Errorf("配置错误: %w", err)
		}
		gen, err := llm.NewGenerator(ctx, cfg)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("初始化模型客户端失败: %w", err)
		}
		logger.Log.Infof("模型后端: %s / %s", cfg.LLM.Provider, cfg.LLM.Model)
		market = analyzer.NewMarketRequester(gen)
		diag = analyzer.NewPortfolioRequester(gen)
	}

	a.ctl = dashboard.NewController(market, diag, a.holdings, history, logger.Kratos())
	return a, nil
}
