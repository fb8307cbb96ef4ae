package model

// PortfolioItem 用户持仓。创建后只会被整体删除，不做原地修改。
type PortfolioItem struct {
	ID     string  `json:"id"`
	Symbol string  `json:"symbol"` // 例如 600519
	Name   string  `json:"name"`   // 例如 贵州茅台
	Cost   float64 `json:"cost"`   // 每股持仓成本
	Shares float64 `json:"shares"` // 持股数量
}

// CostBasis 持仓总成本
func (p PortfolioItem) CostBasis() float64 {
	return p.Cost * p.Shares
}

// TotalCost 组合总成本
func TotalCost(items []PortfolioItem) float64 {
	var total float64
	for _, it := range items {
		total += it.CostBasis()
	}
	return total
}
