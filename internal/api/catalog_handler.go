package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"pos-service/internal/entity"
)

type CatalogService interface {
	ListProductsForSale(ctx context.Context) ([]entity.ProductForSale, error)
	ListProducts(ctx context.Context) ([]entity.Product, error)
	CreateProduct(ctx context.Context, req entity.CreateProductRequest) (*entity.Product, error)
	UpdateStock(ctx context.Context, productID, quantity int) error
	DeleteProduct(ctx context.Context, productID int) error
	ListCustomers(ctx context.Context) ([]entity.Customer, error)
	CreateCustomer(ctx context.Context, customer *entity.Customer) (*entity.Customer, error)
	ListCategories(ctx context.Context) ([]entity.Category, error)
}

type CatalogHandler struct {
	catalogService CatalogService
}

func NewCatalogHandler(catalogService CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (h *CatalogHandler) ListProductsForSale(c echo.Context) error {
	products, err := h.catalogService.ListProductsForSale(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *CatalogHandler) ListProducts(c echo.Context) error {
	products, err := h.catalogService.ListProducts(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

// CreateProduct --> POST /products (admin)
func (h *CatalogHandler) CreateProduct(c echo.Context) error {
	req := entity.CreateProductRequest{}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	created, err := h.catalogService.CreateProduct(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, created)
}

// UpdateStock sets the absolute stock level --> PUT /products/:id/stock
func (h *CatalogHandler) UpdateStock(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return badRequest(c, "Invalid ID")
	}

	body := struct {
		Quantity *int `json:"quantity"`
	}{}
	if err := c.Bind(&body); err != nil || body.Quantity == nil {
		return badRequest(c, "Invalid request payload")
	}

	if err := h.catalogService.UpdateStock(c.Request().Context(), id, *body.Quantity); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]int{"product_id": id, "stock": *body.Quantity})
}

// DeleteProduct --> DELETE /products/:id (admin)
func (h *CatalogHandler) DeleteProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return badRequest(c, "Invalid ID")
	}

	if err := h.catalogService.DeleteProduct(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHandler) ListCustomers(c echo.Context) error {
	customers, err := h.catalogService.ListCustomers(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, customers)
}

func (h *CatalogHandler) CreateCustomer(c echo.Context) error {
	customer := entity.Customer{}
	if err := c.Bind(&customer); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	created, err := h.catalogService.CreateCustomer(c.Request().Context(), &customer)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, created)
}

func (h *CatalogHandler) ListCategories(c echo.Context) error {
	categories, err := h.catalogService.ListCategories(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, categories)
}
