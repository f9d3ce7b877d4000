package entity

import "github.com/shopspring/decimal"

type DashboardStats struct {
	Revenue       decimal.Decimal `json:"revenue"`
	LowStockCount int             `json:"low_stock"`
	TotalProducts int             `json:"total_items"`
	RecentSales   []SaleSummary   `json:"recent_sales"`
	LowStockItems []LowStockItem  `json:"low_stock_items"`
}

type LowStockItem struct {
	ProductName string `json:"product_name"`
	Stock       int    `json:"stock"`
	Threshold   int    `json:"threshold"`
}
