package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"pos-service/internal/repository"
)

const seedPassword = "admin123"

type seedProduct struct {
	category string
	name     string
	sku      string
	price    string
	stock    int
}

var (
	seedCategories = []string{"Electronics", "Stationery", "Beverages"}

	seedProducts = []seedProduct{
		{"Electronics", "Wireless Mouse", "TECH-001", "15.50", 50},
		{"Electronics", "USB-C Cable", "TECH-002", "8.90", 120},
		{"Electronics", "Mechanical Keyboard", "TECH-003", "89.00", 8},
		{"Stationery", "A4 Notebook", "STAT-001", "3.25", 200},
		{"Stationery", "Gel Pen (Blue)", "STAT-002", "1.10", 5},
		{"Beverages", "Mineral Water 500ml", "BEV-001", "0.80", 300},
		{"Beverages", "Cold Brew Coffee", "BEV-002", "4.50", 24},
	}

	seedOperators = []struct {
		username, name, role string
	}{
		{"admin", "Store Administrator", "admin"},
		{"cashier", "Front Desk Cashier", "cashier"},
	}

	seedCustomers = []struct {
		name  string
		phone string
	}{
		{"Walk-in Regular", "+1-555-0100"},
		{"Acme Office Supplies", "+1-555-0199"},
	}
)

// Seed loads demo data. Every row is keyed on its natural unique column
// (category name, SKU, username, phone) and inserted only when absent, so a
// partially seeded database is completed rather than rejected.
func Seed(ctx context.Context, db *sql.DB, driver string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	dialect, err := repository.NewDialect(driver)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	defer tx.Rollback()

	s := seeder{tx: tx, bind: dialect.Rebind}

	for _, name := range seedCategories {
		err := s.insertIfAbsent(ctx, "categories", "category_name", name,
			`INSERT INTO categories (category_name) VALUES (?)`, name)
		if err != nil {
			return fmt.Errorf("seed category %s: %w", name, err)
		}
	}

	categoryIDs, err := loadCategoryIDs(ctx, tx)
	if err != nil {
		return err
	}

	for _, p := range seedProducts {
		categoryID, ok := categoryIDs[p.category]
		if !ok {
			return fmt.Errorf("seed product %s: category %s missing", p.sku, p.category)
		}
		err := s.insertIfAbsent(ctx, "products", "sku", p.sku,
			`INSERT INTO products (category_id, product_name, sku, price, quantity_stock) VALUES (?, ?, ?, ?, ?)`,
			categoryID, p.name, p.sku, p.price, p.stock)
		if err != nil {
			return fmt.Errorf("seed product %s: %w", p.sku, err)
		}
	}

	for _, o := range seedOperators {
		err := s.insertIfAbsent(ctx, "operators", "username", o.username,
			`INSERT INTO operators (username, password_hash, operator_name, role) VALUES (?, ?, ?, ?)`,
			o.username, string(hash), o.name, o.role)
		if err != nil {
			return fmt.Errorf("seed operator %s: %w", o.username, err)
		}
	}

	for _, c := range seedCustomers {
		err := s.insertIfAbsent(ctx, "customers", "phone", c.phone,
			`INSERT INTO customers (customer_name, phone) VALUES (?, ?)`, c.name, c.phone)
		if err != nil {
			return fmt.Errorf("seed customer %s: %w", c.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	if s.inserted == 0 {
		log.Info().Msg("Database already seeded, skipping")
		return nil
	}
	log.Info().Msgf("Seeded %d rows", s.inserted)
	return nil
}

type seeder struct {
	tx       *sql.Tx
	bind     func(string) string
	inserted int
}

// insertIfAbsent runs insert unless table already has a row whose column
// equals key. table and column are package constants, never user input.
func (s *seeder) insertIfAbsent(ctx context.Context, table, column string, key any, insert string, args ...any) error {
	var count int
	query := s.bind(`SELECT COUNT(*) FROM ` + table + ` WHERE ` + column + ` = ?`)
	if err := s.tx.QueryRowContext(ctx, query, key).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if _, err := s.tx.ExecContext(ctx, s.bind(insert), args...); err != nil {
		return err
	}
	s.inserted++
	return nil
}

func loadCategoryIDs(ctx context.Context, tx *sql.Tx) (map[string]int, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, category_name FROM categories`)
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]int)
	for rows.Next() {
		var (
			id   int
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("seed: %w", err)
		}
		ids[name] = id
	}
	return ids, rows.Err()
}
