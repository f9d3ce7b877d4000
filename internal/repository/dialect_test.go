package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pos-service/internal/entity"
)

func TestNewDialect(t *testing.T) {
	d, err := NewDialect(DriverPostgres)
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, d.Driver())

	_, err = NewDialect("sqlite3")
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	query := `UPDATE products SET quantity_stock = quantity_stock - ? WHERE id = ? AND quantity_stock >= ?`

	my, _ := NewDialect(DriverMySQL)
	assert.Equal(t, query, my.Rebind(query))

	pg, _ := NewDialect(DriverPostgres)
	assert.Equal(t,
		`UPDATE products SET quantity_stock = quantity_stock - $1 WHERE id = $2 AND quantity_stock >= $3`,
		pg.Rebind(query))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", placeholders(0))
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?, ?, ?", placeholders(3))
}

func TestClassifyConstraints(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind entity.ConstraintKind
	}{
		{"mysql duplicate entry", &mysql.MySQLError{Number: 1062}, entity.ConstraintUnique},
		{"mysql missing parent", &mysql.MySQLError{Number: 1452}, entity.ConstraintForeignKey},
		{"mysql referenced row", &mysql.MySQLError{Number: 1451}, entity.ConstraintForeignKey},
		{"mysql check", &mysql.MySQLError{Number: 3819}, entity.ConstraintCheck},
		{"mysql null", &mysql.MySQLError{Number: 1048}, entity.ConstraintNotNull},
		{"postgres unique", &pq.Error{Code: "23505"}, entity.ConstraintUnique},
		{"postgres foreign key", &pq.Error{Code: "23503"}, entity.ConstraintForeignKey},
		{"postgres check", &pq.Error{Code: "23514"}, entity.ConstraintCheck},
		{"postgres not null", &pq.Error{Code: "23502"}, entity.ConstraintNotNull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify(tt.err)

			var cv *entity.ConstraintViolationError
			require.ErrorAs(t, err, &cv)
			assert.Equal(t, tt.kind, cv.Kind)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestClassifyUnavailable(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"mysql deadlock", &mysql.MySQLError{Number: 1213}},
		{"mysql lock wait timeout", &mysql.MySQLError{Number: 1205}},
		{"postgres serialization failure", &pq.Error{Code: "40001"}},
		{"postgres connection failure", &pq.Error{Code: "08006"}},
		{"bad connection", driver.ErrBadConn},
		{"invalid connection", mysql.ErrInvalidConn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify(tt.err)
			assert.ErrorIs(t, err, entity.ErrUnavailable)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestClassifyPassThrough(t *testing.T) {
	assert.NoError(t, classify(nil))
	assert.Equal(t, context.Canceled, classify(context.Canceled))

	other := errors.New("syntax error")
	assert.Equal(t, other, classify(other))

	unknown := &mysql.MySQLError{Number: 1064}
	assert.Equal(t, error(unknown), classify(unknown))
}
