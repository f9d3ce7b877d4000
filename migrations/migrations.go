package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"pos-service/internal/repository"
)

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id INT AUTO_INCREMENT PRIMARY KEY,
		category_name VARCHAR(100) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id INT AUTO_INCREMENT PRIMARY KEY,
		category_id INT NOT NULL,
		product_name VARCHAR(255) NOT NULL,
		sku VARCHAR(64) NOT NULL UNIQUE,
		price DECIMAL(10, 2) NOT NULL,
		quantity_stock INT NOT NULL DEFAULT 0,
		low_stock_threshold INT NOT NULL DEFAULT 10,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		CONSTRAINT chk_products_price CHECK (price >= 0),
		CONSTRAINT chk_products_stock CHECK (quantity_stock >= 0),
		CONSTRAINT chk_products_threshold CHECK (low_stock_threshold >= 0),
		FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE RESTRICT
	)`,
	`CREATE TABLE IF NOT EXISTS customers (
		id INT AUTO_INCREMENT PRIMARY KEY,
		customer_name VARCHAR(255) NOT NULL,
		phone VARCHAR(32) UNIQUE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS operators (
		id INT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(64) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		operator_name VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'cashier',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		operator_id INT NOT NULL,
		customer_id INT NULL,
		sale_date TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		total_amount DECIMAL(10, 2) NOT NULL DEFAULT 0,
		CONSTRAINT chk_sales_total CHECK (total_amount >= 0),
		INDEX idx_sales_sale_date (sale_date),
		FOREIGN KEY (operator_id) REFERENCES operators(id) ON DELETE RESTRICT,
		FOREIGN KEY (customer_id) REFERENCES customers(id) ON DELETE SET NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sale_lines (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		sale_id BIGINT NOT NULL,
		product_id INT NOT NULL,
		quantity INT NOT NULL,
		unit_price DECIMAL(10, 2) NOT NULL,
		subtotal DECIMAL(10, 2) NOT NULL,
		CONSTRAINT chk_sale_lines_quantity CHECK (quantity > 0),
		CONSTRAINT chk_sale_lines_amounts CHECK (unit_price >= 0 AND subtotal >= 0),
		FOREIGN KEY (sale_id) REFERENCES sales(id) ON DELETE CASCADE,
		FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE RESTRICT
	)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id SERIAL PRIMARY KEY,
		category_name VARCHAR(100) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id SERIAL PRIMARY KEY,
		category_id INT NOT NULL REFERENCES categories(id) ON DELETE RESTRICT,
		product_name VARCHAR(255) NOT NULL,
		sku VARCHAR(64) NOT NULL UNIQUE,
		price NUMERIC(10, 2) NOT NULL CHECK (price >= 0),
		quantity_stock INT NOT NULL DEFAULT 0 CHECK (quantity_stock >= 0),
		low_stock_threshold INT NOT NULL DEFAULT 10 CHECK (low_stock_threshold >= 0),
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS customers (
		id SERIAL PRIMARY KEY,
		customer_name VARCHAR(255) NOT NULL,
		phone VARCHAR(32) UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS operators (
		id SERIAL PRIMARY KEY,
		username VARCHAR(64) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		operator_name VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'cashier',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id BIGSERIAL PRIMARY KEY,
		operator_id INT NOT NULL REFERENCES operators(id) ON DELETE RESTRICT,
		customer_id INT NULL REFERENCES customers(id) ON DELETE SET NULL,
		sale_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		total_amount NUMERIC(10, 2) NOT NULL DEFAULT 0 CHECK (total_amount >= 0)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_sale_date ON sales (sale_date)`,
	`CREATE TABLE IF NOT EXISTS sale_lines (
		id BIGSERIAL PRIMARY KEY,
		sale_id BIGINT NOT NULL REFERENCES sales(id) ON DELETE CASCADE,
		product_id INT NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
		quantity INT NOT NULL CHECK (quantity > 0),
		unit_price NUMERIC(10, 2) NOT NULL CHECK (unit_price >= 0),
		subtotal NUMERIC(10, 2) NOT NULL CHECK (subtotal >= 0)
	)`,
}

// Schema returns the DDL statements for driver, in dependency order.
func Schema(driver string) ([]string, error) {
	switch driver {
	case repository.DriverMySQL:
		return mysqlSchema, nil
	case repository.DriverPostgres:
		return postgresSchema, nil
	default:
		return nil, fmt.Errorf("no schema for driver %q", driver)
	}
}

// AutoMigrate creates the tables that do not exist yet, retrying each
// statement while the database settles.
func AutoMigrate(ctx context.Context, db *sql.DB, driver string, retries int) error {
	statements, err := Schema(driver)
	if err != nil {
		return err
	}

	for _, query := range statements {
		_, err = db.ExecContext(ctx, query)
		for i := 0; err != nil && i < retries; i++ {
			log.Warn().Err(err).Msgf("Retry %d: migration statement failed", i+1)
			time.Sleep(1 * time.Second)
			_, err = db.ExecContext(ctx, query)
		}
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	log.Info().Msgf("Schema up to date (%d statements)", len(statements))
	return nil
}
