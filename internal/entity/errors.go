package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrNoItems is returned when a sale is submitted with an empty cart.
	ErrNoItems = errors.New("sale has no items")

	// ErrUnavailable marks failures of the store itself: unreachable, or a
	// transient lock/serialization failure the caller may resubmit.
	ErrUnavailable = errors.New("store unavailable")

	ErrDuplicateRequest   = errors.New("request already submitted")
	ErrProductNotFound    = errors.New("product not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// ProductNotFoundError reports a sale line referencing a product that does
// not exist. Line is the zero-based index in the request.
type ProductNotFoundError struct {
	Line      int
	ProductID int
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("line %d: product %d not found", e.Line+1, e.ProductID)
}

func (e *ProductNotFoundError) Is(target error) bool {
	return target == ErrProductNotFound
}

type InsufficientStockError struct {
	Line      int
	ProductID int
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("line %d: not enough stock for product %d (available: %d, requested: %d)",
		e.Line+1, e.ProductID, e.Available, e.Requested)
}

type InvalidQuantityError struct {
	Line      int
	ProductID int
	Quantity  int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("line %d: quantity for product %d must be greater than zero, got %d",
		e.Line+1, e.ProductID, e.Quantity)
}

type ConstraintKind string

const (
	ConstraintUnique     ConstraintKind = "unique"
	ConstraintForeignKey ConstraintKind = "foreign_key"
	ConstraintCheck      ConstraintKind = "check"
	ConstraintNotNull    ConstraintKind = "not_null"
)

// ConstraintViolationError wraps a write the database rejected.
type ConstraintViolationError struct {
	Kind ConstraintKind
	Err  error
}

func (e *ConstraintViolationError) Error() string {
	return fmt.Sprintf("%s constraint violated: %v", e.Kind, e.Err)
}

func (e *ConstraintViolationError) Unwrap() error {
	return e.Err
}

// ValidationError reports a malformed input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// CommitUnknownError reports a commit whose outcome could not be observed:
// the connection failed after COMMIT was sent, so the writes may or may not
// be durable. It matches ErrUnavailable.
type CommitUnknownError struct {
	Err error
}

func (e *CommitUnknownError) Error() string {
	return fmt.Sprintf("commit outcome unknown: %v", e.Err)
}

func (e *CommitUnknownError) Unwrap() []error {
	return []error{ErrUnavailable, e.Err}
}
