package entity

import "github.com/shopspring/decimal"

type Product struct {
	ID                int             `json:"id"`
	CategoryID        int             `json:"category_id"`
	CategoryName      string          `json:"category_name,omitempty"`
	Name              string          `json:"name"`
	SKU               string          `json:"sku"`
	Price             decimal.Decimal `json:"price"`
	Stock             int             `json:"stock"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	IsActive          bool            `json:"is_active"`
}

// CreateProductRequest is the payload of a new product. LowStockThreshold is
// a pointer so that an explicit 0 can be told apart from an omitted field.
type CreateProductRequest struct {
	CategoryID        int             `json:"category_id"`
	Name              string          `json:"name"`
	SKU               string          `json:"sku"`
	Price             decimal.Decimal `json:"price"`
	Stock             int             `json:"stock"`
	LowStockThreshold *int            `json:"low_stock_threshold"`
}

// ProductForSale is the price/stock snapshot read inside a sale's unit of work.
type ProductForSale struct {
	ID    int             `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// DefaultLowStockThreshold matches the column default of products.low_stock_threshold.
const DefaultLowStockThreshold = 10
