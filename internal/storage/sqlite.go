package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/iWorld-y/alpha_insight/internal/logger"
)

// SQLiteRecorder 把历史记录写入本地 SQLite 文件
type SQLiteRecorder struct {
	sqlRecorder
}

// NewSQLiteRecorder 打开（或创建）数据库并建表
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{sqlRecorder{db: db, rebind: keepPlaceholders}}
	if err := r.migrate([]string{
		`CREATE TABLE IF NOT EXISTS analysis_runs (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			kind       TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			parsed     INTEGER NOT NULL DEFAULT 0,
			summary    TEXT,
			payload    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_kind ON analysis_runs(kind, parsed)`,
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Log.Infof("sqlite 历史记录已打开: %s", dbPath)
	return r, nil
}
