// Package portfolio 持久化用户持仓列表，并负责新增、删除时的输入校验。
package portfolio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/iWorld-y/alpha_insight/internal/kvstore"
	"github.com/iWorld-y/alpha_insight/internal/logger"
	"github.com/iWorld-y/alpha_insight/internal/model"
)

// StorageKey 持仓列表在键值存储中的名称
const StorageKey = "userPortfolio"

var (
	ErrMissingSymbol = errors.New("portfolio: symbol is required")
	ErrMissingName   = errors.New("portfolio: name is required")
	ErrNegative      = errors.New("portfolio: cost and shares must be non-negative numbers")
	ErrNotFound      = errors.New("portfolio: holding not found")
)

// Store 以整体替换的方式读写持仓列表
type Store struct {
	kv    kvstore.Store
	newID func() string
}

// NewStore 创建持仓存储
func NewStore(kv kvstore.Store) *Store {
	return &Store{kv: kv, newID: uuid.NewString}
}

// Load 读取持仓列表。从未写入或数据损坏时返回空列表，不报错。
func (s *Store) Load(ctx context.Context) []model.PortfolioItem {
	data, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			logger.Log.Debugf("读取持仓失败，按空列表处理: %v", err)
		}
		return []model.PortfolioItem{}
	}

	var items []model.PortfolioItem
	if err := json.Unmarshal(data, &items); err != nil {
		logger.Log.Debugf("持仓数据无法解析，按空列表处理: %v", err)
		return []model.PortfolioItem{}
	}
	if items == nil {
		items = []model.PortfolioItem{}
	}
	return items
}

// Replace 用给定列表整体覆盖已保存的持仓
func (s *Store) Replace(ctx context.Context, items []model.PortfolioItem) error {
	if items == nil {
		items = []model.PortfolioItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal portfolio: %w", err)
	}
	if err := s.kv.Put(ctx, StorageKey, data); err != nil {
		return fmt.Errorf("save portfolio: %w", err)
	}
	return nil
}

// Add 校验输入后追加一只持仓并保存
func (s *Store) Add(ctx context.Context, symbol, name string, cost, shares float64) (model.PortfolioItem, error) {
	item, err := s.newItem(symbol, name, cost, shares)
	if err != nil {
		return model.PortfolioItem{}, err
	}
	items := append(s.Load(ctx), item)
	if err := s.Replace(ctx, items); err != nil {
		return model.PortfolioItem{}, err
	}
	logger.Log.Infof("新增持仓: %s %s", item.Symbol, item.Name)
	return item, nil
}

// Remove 按 id 删除一只持仓，其余持仓保持原有顺序
func (s *Store) Remove(ctx context.Context, id string) error {
	items, ok := RemoveByID(s.Load(ctx), id)
	if !ok {
		return ErrNotFound
	}
	if err := s.Replace(ctx, items); err != nil {
		return err
	}
	logger.Log.Infof("删除持仓: %s", id)
	return nil
}

func (s *Store) newItem(symbol, name string, cost, shares float64) (model.PortfolioItem, error) {
	symbol = strings.TrimSpace(symbol)
	name = strings.TrimSpace(name)
	switch {
	case symbol == "":
		return model.PortfolioItem{}, ErrMissingSymbol
	case name == "":
		return model.PortfolioItem{}, ErrMissingName
	case !validAmount(cost) || !validAmount(shares):
		return model.PortfolioItem{}, ErrNegative
	}
	return model.PortfolioItem{
		ID:     s.newID(),
		Symbol: symbol,
		Name:   name,
		Cost:   cost,
		Shares: shares,
	}, nil
}

func validAmount(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}

// RemoveByID 返回删除第一只匹配持仓后的新列表
func RemoveByID(items []model.PortfolioItem, id string) ([]model.PortfolioItem, bool) {
	for i, it := range items {
		if it.ID == id {
			out := make([]model.PortfolioItem, 0, len(items)-1)
			out = append(out, items[:i]...)
			return append(out, items[i+1:]...), true
		}
	}
	return items, false
}
