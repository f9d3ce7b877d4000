package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"pos-service/internal/entity"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Line      *int   `json:"line,omitempty"`
	ProductID *int   `json:"product_id,omitempty"`
	Available *int   `json:"available,omitempty"`
	Requested *int   `json:"requested,omitempty"`
	Field     string `json:"field,omitempty"`
	Kind      string `json:"kind,omitempty"`
}

// respondError translates a service failure into its HTTP status and body.
func respondError(c echo.Context, err error) error {
	status, body := mapError(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("Request failed")
	}
	return c.JSON(status, body)
}

func mapError(err error) (int, errorResponse) {
	body := errorResponse{Error: err.Error()}

	var (
		notFound     *entity.ProductNotFoundError
		insufficient *entity.InsufficientStockError
		invalidQty   *entity.InvalidQuantityError
		constraint   *entity.ConstraintViolationError
		validation   *entity.ValidationError
		unknown      *entity.CommitUnknownError
	)

	switch {
	case errors.Is(err, entity.ErrNoItems):
		body.Code = "NO_ITEMS"
		return http.StatusBadRequest, body
	case errors.As(err, &invalidQty):
		body.Code = "INVALID_QUANTITY"
		body.Line = intPtr(invalidQty.Line + 1)
		body.ProductID = intPtr(invalidQty.ProductID)
		return http.StatusBadRequest, body
	case errors.As(err, &notFound):
		body.Code = "PRODUCT_NOT_FOUND"
		body.Line = intPtr(notFound.Line + 1)
		body.ProductID = intPtr(notFound.ProductID)
		return http.StatusNotFound, body
	case errors.Is(err, entity.ErrProductNotFound):
		body.Code = "PRODUCT_NOT_FOUND"
		return http.StatusNotFound, body
	case errors.As(err, &insufficient):
		body.Code = "INSUFFICIENT_STOCK"
		body.Line = intPtr(insufficient.Line + 1)
		body.ProductID = intPtr(insufficient.ProductID)
		body.Available = intPtr(insufficient.Available)
		body.Requested = intPtr(insufficient.Requested)
		return http.StatusConflict, body
	case errors.As(err, &constraint):
		body.Code = "CONSTRAINT_VIOLATION"
		body.Kind = string(constraint.Kind)
		if constraint.Kind == entity.ConstraintUnique {
			return http.StatusConflict, body
		}
		return http.StatusUnprocessableEntity, body
	case errors.Is(err, entity.ErrDuplicateRequest):
		body.Code = "DUPLICATE_REQUEST"
		return http.StatusConflict, body
	case errors.As(err, &validation):
		body.Code = "VALIDATION"
		body.Field = validation.Field
		return http.StatusBadRequest, body
	case errors.Is(err, entity.ErrInvalidCredentials):
		body.Code = "INVALID_CREDENTIALS"
		return http.StatusUnauthorized, body
	case errors.As(err, &unknown):
		body.Code = "COMMIT_UNKNOWN"
		body.Error = "sale may have been recorded, check recent sales before retrying"
		return http.StatusServiceUnavailable, body
	case errors.Is(err, entity.ErrUnavailable):
		body.Code = "UNAVAILABLE"
		body.Error = "store unavailable, please retry"
		return http.StatusServiceUnavailable, body
	}

	body.Code = "INTERNAL"
	body.Error = "internal server error"
	return http.StatusInternalServerError, body
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg, Code: "BAD_REQUEST"})
}

func intPtr(v int) *int {
	return &v
}
