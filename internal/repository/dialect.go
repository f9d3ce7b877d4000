package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"pos-service/internal/entity"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Dialect hides the few places where MySQL and PostgreSQL differ: bind
// placeholders and how a generated id comes back from an INSERT.
// Queries in this package are written with '?' placeholders.
type Dialect struct {
	driver string
}

func NewDialect(driverName string) (Dialect, error) {
	switch driverName {
	case DriverMySQL, DriverPostgres:
		return Dialect{driver: driverName}, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported database driver %q", driverName)
	}
}

func (d Dialect) Driver() string {
	return d.driver
}

// Rebind rewrites '?' placeholders into '$n' for PostgreSQL.
func (d Dialect) Rebind(query string) string {
	if d.driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// insert runs an INSERT and returns the generated id column.
func (d Dialect) insert(ctx context.Context, q querier, query string, args ...any) (int64, error) {
	if d.driver == DriverPostgres {
		var id int64
		err := q.QueryRowContext(ctx, d.Rebind(query+" RETURNING id"), args...).Scan(&id)
		return id, err
	}

	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

// classify maps driver errors onto the entity failure taxonomy. Errors it
// does not recognise are returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1062: // ER_DUP_ENTRY
			return &entity.ConstraintViolationError{Kind: entity.ConstraintUnique, Err: err}
		case 1451, 1452: // ER_ROW_IS_REFERENCED_2, ER_NO_REFERENCED_ROW_2
			return &entity.ConstraintViolationError{Kind: entity.ConstraintForeignKey, Err: err}
		case 3819, 1264: // ER_CHECK_CONSTRAINT_VIOLATED, ER_WARN_DATA_OUT_OF_RANGE
			return &entity.ConstraintViolationError{Kind: entity.ConstraintCheck, Err: err}
		case 1048: // ER_BAD_NULL_ERROR
			return &entity.ConstraintViolationError{Kind: entity.ConstraintNotNull, Err: err}
		case 1040, 1205, 1213, 2003, 2006, 2013: // too many connections, lock wait timeout, deadlock, lost connection
			return unavailable(err)
		}
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return &entity.ConstraintViolationError{Kind: entity.ConstraintUnique, Err: err}
		case "23503":
			return &entity.ConstraintViolationError{Kind: entity.ConstraintForeignKey, Err: err}
		case "23514", "22003":
			return &entity.ConstraintViolationError{Kind: entity.ConstraintCheck, Err: err}
		case "23502":
			return &entity.ConstraintViolationError{Kind: entity.ConstraintNotNull, Err: err}
		case "40001", "40P01", "55P03":
			return unavailable(err)
		}
		switch pqErr.Code.Class() {
		case "08", "53", "57":
			return unavailable(err)
		}
		return err
	}

	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) || errors.Is(err, sql.ErrConnDone) {
		return unavailable(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return unavailable(err)
	}
	return err
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", entity.ErrUnavailable, err)
}
