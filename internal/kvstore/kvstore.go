// Package kvstore 按名称存取整块数据，用于持久化本地状态。
package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iWorld-y/alpha_insight/internal/config"
)

// ErrNotFound 键从未写入
var ErrNotFound = errors.New("kvstore: key not found")

// Store 具名数据块的键值存储
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// New 根据配置创建存储
func New(cfg config.KVConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverFile, "":
		return NewFileStore(cfg.Path), nil
	case config.DriverSQLite:
		return NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown kv driver: %s", cfg.Driver)
	}
}

func checkKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("kvstore: invalid key %q", key)
	}
	return nil
}
