package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"pos-service/internal/entity"
)

type DashboardService interface {
	Stats(ctx context.Context) (*entity.DashboardStats, error)
}

type DashboardHandler struct {
	dashboardService DashboardService
}

func NewDashboardHandler(dashboardService DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Stats --> GET /dashboard
func (h *DashboardHandler) Stats(c echo.Context) error {
	stats, err := h.dashboardService.Stats(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}
