package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Auth      *AuthHandler
	Sales     *SaleHandler
	Catalog   *CatalogHandler
	Dashboard *DashboardHandler
}

// RegisterRoutes mounts the public routes and the token-protected ones on e.
func RegisterRoutes(e *echo.Echo, h Handlers, jwtSecret string) {
	e.POST("/login", h.Auth.Login)
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":  "ok",
			"service": "pos-service",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	r := e.Group("", JWTMiddleware(jwtSecret))

	r.POST("/sales", h.Sales.CreateSale)
	r.GET("/sales", h.Sales.ListRecentSales)
	r.GET("/sales/:id/lines", h.Sales.GetSaleLines)

	r.GET("/products/for-sale", h.Catalog.ListProductsForSale)
	r.GET("/products", h.Catalog.ListProducts)
	r.POST("/products", h.Catalog.CreateProduct, AdminOnly)
	r.PUT("/products/:id/stock", h.Catalog.UpdateStock)
	r.DELETE("/products/:id", h.Catalog.DeleteProduct, AdminOnly)

	r.GET("/customers", h.Catalog.ListCustomers)
	r.POST("/customers", h.Catalog.CreateCustomer)
	r.GET("/categories", h.Catalog.ListCategories)

	r.GET("/dashboard", h.Dashboard.Stats)
}
