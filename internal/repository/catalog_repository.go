package repository

import (
	"context"
	"database/sql"

	"pos-service/internal/entity"
)

// CatalogRepository covers the single-statement product, customer and
// category reads and writes around the sale engine.
type CatalogRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewCatalogRepository(db *sql.DB, dialect Dialect) *CatalogRepository {
	return &CatalogRepository{db: db, dialect: dialect}
}

func (r *CatalogRepository) ListProductsForSale(ctx context.Context) ([]entity.ProductForSale, error) {
	query := `SELECT id, product_name, price, quantity_stock FROM products WHERE is_active = TRUE ORDER BY product_name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	products := []entity.ProductForSale{}
	for rows.Next() {
		var p entity.ProductForSale
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock); err != nil {
			return nil, classify(err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return products, nil
}

func (r *CatalogRepository) ListProducts(ctx context.Context) ([]entity.Product, error) {
	query := `
		SELECT p.id, p.category_id, c.category_name, p.product_name, p.sku, p.price,
			p.quantity_stock, p.low_stock_threshold, p.is_active
		FROM products p
		JOIN categories c ON p.category_id = c.id
		ORDER BY p.id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	products := []entity.Product{}
	for rows.Next() {
		var p entity.Product
		err := rows.Scan(&p.ID, &p.CategoryID, &p.CategoryName, &p.Name, &p.SKU, &p.Price,
			&p.Stock, &p.LowStockThreshold, &p.IsActive)
		if err != nil {
			return nil, classify(err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return products, nil
}

func (r *CatalogRepository) CreateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	query := `
		INSERT INTO products (category_id, product_name, sku, price, quantity_stock, low_stock_threshold, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	id, err := r.dialect.insert(ctx, r.db, query, product.CategoryID, product.Name, product.SKU, product.Price,
		product.Stock, product.LowStockThreshold, product.IsActive)
	if err != nil {
		return nil, classify(err)
	}

	product.ID = int(id)
	return product, nil
}

func (r *CatalogRepository) UpdateStock(ctx context.Context, productID, quantity int) error {
	query := `UPDATE products SET quantity_stock = ? WHERE id = ?`
	return r.execOne(ctx, query, quantity, productID)
}

func (r *CatalogRepository) DeleteProduct(ctx context.Context, productID int) error {
	query := `DELETE FROM products WHERE id = ?`
	return r.execOne(ctx, query, productID)
}

// execOne runs a statement that must touch exactly one product row.
func (r *CatalogRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return classify(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return classify(err)
	}
	if affected == 0 {
		return entity.ErrProductNotFound
	}
	return nil
}

func (r *CatalogRepository) ListCustomers(ctx context.Context) ([]entity.Customer, error) {
	query := `SELECT id, customer_name, phone, created_at FROM customers ORDER BY customer_name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	customers := []entity.Customer{}
	for rows.Next() {
		var c entity.Customer
		var phone sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &phone, &c.CreatedAt); err != nil {
			return nil, classify(err)
		}
		if phone.Valid {
			c.Phone = &phone.String
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return customers, nil
}

func (r *CatalogRepository) CreateCustomer(ctx context.Context, customer *entity.Customer) (*entity.Customer, error) {
	query := `INSERT INTO customers (customer_name, phone) VALUES (?, ?)`

	var phone any
	if customer.Phone != nil {
		phone = *customer.Phone
	}
	id, err := r.dialect.insert(ctx, r.db, query, customer.Name, phone)
	if err != nil {
		return nil, classify(err)
	}

	customer.ID = int(id)
	return customer, nil
}

func (r *CatalogRepository) ListCategories(ctx context.Context) ([]entity.Category, error) {
	query := `SELECT id, category_name FROM categories ORDER BY category_name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	categories := []entity.Category{}
	for rows.Next() {
		var c entity.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, classify(err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return categories, nil
}
