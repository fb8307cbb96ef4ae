// Package storage 记录每次市场分析与持仓诊断的历史。
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iWorld-y/alpha_insight/internal/config"
	"github.com/iWorld-y/alpha_insight/internal/model"
)

// ErrNoHistory 没有可用的历史记录
var ErrNoHistory = errors.New("storage: no recorded market analysis")

// 历史记录类型
const (
	KindMarket    = "market"
	KindPortfolio = "portfolio"
)

// Run 一条历史记录
type Run struct {
	ID        int64
	Kind      string
	CreatedAt time.Time
	Summary   string
	Payload   []byte
}

// Recorder 分析历史记录器
type Recorder interface {
	RecordMarket(ctx context.Context, result *model.AnalysisResult) error
	RecordPortfolio(ctx context.Context, analysis *model.PortfolioAnalysis, holdings []model.PortfolioItem) error
	// LatestMarket 返回最近一次解析成功的市场分析
	LatestMarket(ctx context.Context) (*model.AnalysisResult, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	Close() error
}

// New 根据配置创建历史记录器
func New(cfg config.StorageConfig) (Recorder, error) {
	switch cfg.History.Driver {
	case config.DriverNone, "":
		return Noop{}, nil
	case config.DriverSQLite:
		return NewSQLiteRecorder(cfg.History.DSN)
	case config.DriverPostgres:
		return NewPostgresRecorder(cfg.Postgres)
	default:
		return nil, fmt.Errorf("unknown history driver: %s", cfg.History.Driver)
	}
}

// Noop 不保存任何记录
type Noop struct{}

func (Noop) RecordMarket(context.Context, *model.AnalysisResult) error { return nil }

func (Noop) RecordPortfolio(context.Context, *model.PortfolioAnalysis, []model.PortfolioItem) error {
	return nil
}

func (Noop) LatestMarket(context.Context) (*model.AnalysisResult, error) { return nil, ErrNoHistory }

func (Noop) ListRuns(context.Context, int) ([]Run, error) { return nil, nil }

func (Noop) Close() error { return nil }

func marketSummary(result *model.AnalysisResult) string {
	if result.Data == nil {
		return "未能解析，保留原文"
	}
	return fmt.Sprintf("%s %s, %d 个板块", result.Data.Date, result.Data.Prediction, len(result.Data.Sectors))
}

func portfolioSummary(analysis *model.PortfolioAnalysis, holdings []model.PortfolioItem) string {
	return fmt.Sprintf("整体风险 %s, %d 只持仓", analysis.OverallRisk, len(holdings))
}

type portfolioPayload struct {
	Holdings []model.PortfolioItem   `json:"holdings"`
	Analysis *model.PortfolioAnalysis `json:"analysis"`
}

func encodePortfolio(analysis *model.PortfolioAnalysis, holdings []model.PortfolioItem) ([]byte, error) {
	return json.Marshal(portfolioPayload{Holdings: holdings, Analysis: analysis})
}
