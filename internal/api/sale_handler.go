package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"pos-service/internal/entity"
)

type SaleService interface {
	CreateSale(ctx context.Context, req entity.CreateSaleRequest) (*entity.SaleReceipt, error)
	ListRecentSales(ctx context.Context, limit int) ([]entity.SaleSummary, error)
	GetSaleLines(ctx context.Context, saleID int64) ([]entity.SaleLineView, error)
}

type SaleHandler struct {
	saleService SaleService
}

func NewSaleHandler(saleService SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// CreateSale records a sale for the authenticated operator --> POST /sales
func (h *SaleHandler) CreateSale(c echo.Context) error {
	operator, ok := operatorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "missing or invalid token", Code: "UNAUTHORIZED"})
	}

	req := entity.CreateSaleRequest{}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}
	req.OperatorID = operator.OperatorID
	req.IdempotencyKey = c.Request().Header.Get("Idempotency-Key")

	receipt, err := h.saleService.CreateSale(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, receipt)
}

// ListRecentSales --> GET /sales?limit=
func (h *SaleHandler) ListRecentSales(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return badRequest(c, "Invalid limit")
		}
		limit = n
	}

	sales, err := h.saleService.ListRecentSales(c.Request().Context(), limit)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, sales)
}

// GetSaleLines --> GET /sales/:id/lines
func (h *SaleHandler) GetSaleLines(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return badRequest(c, "Invalid ID")
	}

	lines, err := h.saleService.GetSaleLines(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, lines)
}
