package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"pos-service/internal/entity"
)

// UnitOfWork is the set of reads and writes a sale performs inside a single
// database transaction. Implementations must hold row locks on products
// read through it until the transaction ends.
type UnitOfWork interface {
	// LockProducts locks the given product rows in ascending id order.
	LockProducts(ctx context.Context, productIDs []int) error
	InsertSale(ctx context.Context, operatorID int, customerID *int) (int64, error)
	// GetProductForSale returns entity.ErrProductNotFound when the row is missing.
	GetProductForSale(ctx context.Context, productID int) (*entity.ProductForSale, error)
	InsertSaleLine(ctx context.Context, line *entity.SaleLine) (int64, error)
	// DecrementStock reports false when stock is below quantity; nothing is written then.
	DecrementStock(ctx context.Context, productID, quantity int) (bool, error)
	SetSaleTotal(ctx context.Context, saleID int64, total decimal.Decimal) error
}

type SaleRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewSaleRepository(db *sql.DB, dialect Dialect) *SaleRepository {
	return &SaleRepository{db: db, dialect: dialect}
}

// WithinTx runs fn inside one transaction. The transaction is committed only
// when fn returns nil; every other exit, including a panic or a cancelled
// context, rolls it back.
func (r *SaleRepository) WithinTx(ctx context.Context, fn func(uow UnitOfWork) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(&sqlUnitOfWork{tx: tx, dialect: r.dialect}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return commitError(err)
	}
	committed = true
	return nil
}

// commitError classifies a failed COMMIT. A server-side rejection (deadlock,
// serialization failure, deferred constraint) means the transaction rolled
// back. Anything else lost the connection mid-commit, so the outcome is unknown.
func commitError(err error) error {
	// database/sql checks the context and the done flag before sending
	// COMMIT; the transaction has been rolled back in both cases.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, sql.ErrTxDone) {
		return err
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		if myErr.Number == 2006 || myErr.Number == 2013 { // server gone away, lost connection
			return &entity.CommitUnknownError{Err: err}
		}
		return classify(err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code.Class() == "08" {
			return &entity.CommitUnknownError{Err: err}
		}
		return classify(err)
	}
	return &entity.CommitUnknownError{Err: err}
}

type sqlUnitOfWork struct {
	tx      *sql.Tx
	dialect Dialect
}

func (u *sqlUnitOfWork) LockProducts(ctx context.Context, productIDs []int) error {
	if len(productIDs) == 0 {
		return nil
	}

	query := `SELECT id FROM products WHERE id IN (` + placeholders(len(productIDs)) + `) ORDER BY id FOR UPDATE`
	args := make([]any, len(productIDs))
	for i, id := range productIDs {
		args[i] = id
	}

	rows, err := u.tx.QueryContext(ctx, u.dialect.Rebind(query), args...)
	if err != nil {
		return classify(err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return classify(err)
		}
	}
	return classify(rows.Err())
}

func (u *sqlUnitOfWork) InsertSale(ctx context.Context, operatorID int, customerID *int) (int64, error) {
	query := `INSERT INTO sales (operator_id, customer_id, total_amount) VALUES (?, ?, 0)`
	id, err := u.dialect.insert(ctx, u.tx, query, operatorID, nullableInt(customerID))
	if err != nil {
		return 0, classify(err)
	}
	return id, nil
}

func (u *sqlUnitOfWork) GetProductForSale(ctx context.Context, productID int) (*entity.ProductForSale, error) {
	query := `SELECT id, product_name, price, quantity_stock FROM products WHERE id = ? FOR UPDATE`

	product := &entity.ProductForSale{}
	err := u.tx.QueryRowContext(ctx, u.dialect.Rebind(query), productID).
		Scan(&product.ID, &product.Name, &product.Price, &product.Stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrProductNotFound
		}
		return nil, classify(err)
	}
	return product, nil
}

func (u *sqlUnitOfWork) InsertSaleLine(ctx context.Context, line *entity.SaleLine) (int64, error) {
	query := `INSERT INTO sale_lines (sale_id, product_id, quantity, unit_price, subtotal) VALUES (?, ?, ?, ?, ?)`
	id, err := u.dialect.insert(ctx, u.tx, query, line.SaleID, line.ProductID, line.Quantity, line.UnitPrice, line.Subtotal)
	if err != nil {
		return 0, classify(err)
	}
	return id, nil
}

func (u *sqlUnitOfWork) DecrementStock(ctx context.Context, productID, quantity int) (bool, error) {
	query := `UPDATE products SET quantity_stock = quantity_stock - ? WHERE id = ? AND quantity_stock >= ?`
	res, err := u.tx.ExecContext(ctx, u.dialect.Rebind(query), quantity, productID, quantity)
	if err != nil {
		return false, classify(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, classify(err)
	}
	return affected == 1, nil
}

func (u *sqlUnitOfWork) SetSaleTotal(ctx context.Context, saleID int64, total decimal.Decimal) error {
	query := `UPDATE sales SET total_amount = ? WHERE id = ?`
	_, err := u.tx.ExecContext(ctx, u.dialect.Rebind(query), total, saleID)
	return classify(err)
}

// ListRecentSales returns at most limit sales, newest first.
func (r *SaleRepository) ListRecentSales(ctx context.Context, limit int) ([]entity.SaleSummary, error) {
	query := `
		SELECT s.id, s.sale_date, o.operator_name, c.customer_name, s.total_amount
		FROM sales s
		JOIN operators o ON s.operator_id = o.id
		LEFT JOIN customers c ON s.customer_id = c.id
		ORDER BY s.sale_date DESC, s.id DESC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), limit)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	sales := make([]entity.SaleSummary, 0, limit)
	for rows.Next() {
		var sale entity.SaleSummary
		var customerName sql.NullString
		if err := rows.Scan(&sale.SaleID, &sale.SaleDate, &sale.OperatorName, &customerName, &sale.TotalAmount); err != nil {
			return nil, classify(err)
		}
		if customerName.Valid {
			sale.CustomerName = &customerName.String
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}

	return sales, nil
}

// GetSaleLines returns the lines of a sale in insertion order. An unknown
// sale yields an empty slice.
func (r *SaleRepository) GetSaleLines(ctx context.Context, saleID int64) ([]entity.SaleLineView, error) {
	query := `
		SELECT l.id, p.product_name, l.quantity, l.unit_price, l.subtotal
		FROM sale_lines l
		JOIN products p ON l.product_id = p.id
		WHERE l.sale_id = ?
		ORDER BY l.id`

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), saleID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	lines := []entity.SaleLineView{}
	for rows.Next() {
		var line entity.SaleLineView
		if err := rows.Scan(&line.LineID, &line.ProductName, &line.Quantity, &line.UnitPrice, &line.Subtotal); err != nil {
			return nil, classify(err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}

	return lines, nil
}
