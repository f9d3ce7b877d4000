package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineRequest is one cart entry submitted by the caller. Prices are never
// taken from the caller.
type LineRequest struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

type CreateSaleRequest struct {
	OperatorID     int           `json:"-"`
	CustomerID     *int          `json:"customer_id"`
	Lines          []LineRequest `json:"lines"`
	IdempotencyKey string        `json:"-"`
}

type SaleLine struct {
	ID        int64           `json:"id"`
	SaleID    int64           `json:"sale_id"`
	ProductID int             `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// SaleReceipt is what a committed sale returns to the caller.
type SaleReceipt struct {
	SaleID      int64           `json:"sale_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Lines       []SaleLine      `json:"lines"`
}

// SaleSummary is one row of the sales history.
type SaleSummary struct {
	SaleID       int64           `json:"sale_id"`
	SaleDate     time.Time       `json:"sale_date"`
	OperatorName string          `json:"operator_name"`
	CustomerName *string         `json:"customer_name"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

type SaleLineView struct {
	LineID      int64           `json:"line_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SaleCreatedEvent is published once a sale has been committed.
type SaleCreatedEvent struct {
	EventID     string          `json:"event_id"`
	SaleID      int64           `json:"sale_id"`
	OperatorID  int             `json:"operator_id"`
	CustomerID  *int            `json:"customer_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Lines       []SaleLine      `json:"lines"`
	OccurredAt  time.Time       `json:"occurred_at"`
}
