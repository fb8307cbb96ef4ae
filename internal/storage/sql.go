package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/iWorld-y/alpha_insight/internal/model"
)

// sqlRecorder sqlite 与 postgres 共用的实现，语句统一用 ? 占位
type sqlRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	rebind func(string) string
}

func (r *sqlRecorder) migrate(ddl []string) error {
	for _, q := range ddl {
		if _, err := r.db.Exec(q); err != nil {
			return fmt.Errorf("failed to execute query %s: %w", q, err)
		}
	}
	return nil
}

func (r *sqlRecorder) insert(ctx context.Context, kind string, parsed bool, summary string, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := 0
	if parsed {
		p = 1
	}
	_, err := r.db.ExecContext(ctx, r.rebind(`INSERT INTO analysis_runs (kind, created_at, parsed, summary, payload)
		VALUES (?, ?, ?, ?, ?)`),
		kind, time.Now().Unix(), p, summary, string(payload))
	if err != nil {
		return fmt.Errorf("failed to insert %s run: %w", kind, err)
	}
	return nil
}

func (r *sqlRecorder) RecordMarket(ctx context.Context, result *model.AnalysisResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal market result: %w", err)
	}
	return r.insert(ctx, KindMarket, result.Data != nil, marketSummary(result), payload)
}

func (r *sqlRecorder) RecordPortfolio(ctx context.Context, analysis *model.PortfolioAnalysis, holdings []model.PortfolioItem) error {
	payload, err := encodePortfolio(analysis, holdings)
	if err != nil {
		return fmt.Errorf("marshal portfolio analysis: %w", err)
	}
	return r.insert(ctx, KindPortfolio, true, portfolioSummary(analysis, holdings), payload)
}

func (r *sqlRecorder) LatestMarket(ctx context.Context) (*model.AnalysisResult, error) {
	var payload string
	err := r.db.QueryRowContext(ctx, r.rebind(`SELECT payload FROM analysis_runs
		WHERE kind = ? AND parsed = 1 ORDER BY id DESC LIMIT 1`), KindMarket).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoHistory
	}
	if err != nil {
		return nil, fmt.Errorf("query latest market run: %w", err)
	}

	var result model.AnalysisResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("decode market run: %w", err)
	}
	if result.Data == nil {
		return nil, ErrNoHistory
	}
	// 旧版本写入的记录按当前规则重新校验并规范枚举
	if err := result.Data.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoHistory, err)
	}
	return &result, nil
}

func (r *sqlRecorder) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, r.rebind(`SELECT id, kind, created_at, summary, payload
		FROM analysis_runs ORDER BY id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run     Run
			ts      int64
			payload string
		)
		if err := rows.Scan(&run.ID, &run.Kind, &ts, &run.Summary, &payload); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.CreatedAt = time.Unix(ts, 0)
		run.Payload = []byte(payload)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *sqlRecorder) Close() error {
	return r.db.Close()
}

// keepPlaceholders sqlite 直接使用 ?
func keepPlaceholders(q string) string { return q }

// dollarPlaceholders 把 ? 依次替换为 $1, $2 ...
func dollarPlaceholders(q string) string {
	var sb strings.Builder
	n := 0
	for _, c := range q {
		if c == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(c)
	}
	return sb.String()
}
