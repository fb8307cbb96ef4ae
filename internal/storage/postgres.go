package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/iWorld-y/alpha_insight/internal/config"
	"github.com/iWorld-y/alpha_insight/internal/logger"
)

// PostgresRecorder 把历史记录写入 PostgreSQL
type PostgresRecorder struct {
	sqlRecorder
}

// NewPostgresRecorder 连接数据库并初始化表结构
func NewPostgresRecorder(cfg config.DBConfig) (*PostgresRecorder, error) {
	db, err := sql.Open("postgres", cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	r := &PostgresRecorder{sqlRecorder{db: db, rebind: dollarPlaceholders}}
	if err := r.migrate([]string{
		`CREATE TABLE IF NOT EXISTS analysis_runs (
			id SERIAL PRIMARY KEY,
			kind TEXT NOT NULL,
			created_at BIGINT NOT NULL,
			parsed INTEGER NOT NULL DEFAULT 0,
			summary TEXT,
			payload TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_kind ON analysis_runs(kind, parsed)`,
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Log.Infof("postgres 历史记录已连接: %s:%d/%s", cfg.Host, cfg.Port, cfg.Name)
	return r, nil
}
