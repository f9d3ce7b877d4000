package repository

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
	"pos-service/internal/entity"
)

type StatsRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewStatsRepository(db *sql.DB, dialect Dialect) *StatsRepository {
	return &StatsRepository{db: db, dialect: dialect}
}

func (r *StatsRepository) Revenue(ctx context.Context) (decimal.Decimal, error) {
	var revenue decimal.NullDecimal
	err := r.db.QueryRowContext(ctx, `SELECT SUM(total_amount) FROM sales`).Scan(&revenue)
	if err != nil {
		return decimal.Zero, classify(err)
	}
	if !revenue.Valid {
		return decimal.Zero, nil
	}
	return revenue.Decimal, nil
}

func (r *StatsRepository) CountLowStock(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE quantity_stock <= low_stock_threshold`).Scan(&count)
	return count, classify(err)
}

func (r *StatsRepository) CountProducts(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count)
	return count, classify(err)
}

// LowStockItems returns the products at or below their threshold, lowest stock first.
func (r *StatsRepository) LowStockItems(ctx context.Context, limit int) ([]entity.LowStockItem, error) {
	query := `
		SELECT product_name, quantity_stock, low_stock_threshold
		FROM products
		WHERE quantity_stock <= low_stock_threshold
		ORDER BY quantity_stock ASC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), limit)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	items := []entity.LowStockItem{}
	for rows.Next() {
		var item entity.LowStockItem
		if err := rows.Scan(&item.ProductName, &item.Stock, &item.Threshold); err != nil {
			return nil, classify(err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return items, nil
}
