package service

import (
	"context"
	"strings"

	"pos-service/internal/entity"
)

type CatalogStore interface {
	ListProductsForSale(ctx context.Context) ([]entity.ProductForSale, error)
	ListProducts(ctx context.Context) ([]entity.Product, error)
	CreateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error)
	UpdateStock(ctx context.Context, productID, quantity int) error
	DeleteProduct(ctx context.Context, productID int) error
	ListCustomers(ctx context.Context) ([]entity.Customer, error)
	CreateCustomer(ctx context.Context, customer *entity.Customer) (*entity.Customer, error)
	ListCategories(ctx context.Context) ([]entity.Category, error)
}

type CatalogService struct {
	repo      CatalogStore
	dashboard CacheInvalidator
}

// NewCatalogService creates a new instance of CatalogService. Product writes
// drop the cached dashboard stats through dashboard, which may be nil.
func NewCatalogService(repo CatalogStore, dashboard CacheInvalidator) *CatalogService {
	return &CatalogService{repo: repo, dashboard: dashboard}
}

func (s *CatalogService) ListProductsForSale(ctx context.Context) ([]entity.ProductForSale, error) {
	products, err := s.repo.ListProductsForSale(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing products for sale")
		return nil, err
	}
	return products, nil
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]entity.Product, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing products")
		return nil, err
	}
	return products, nil
}

// CreateProduct validates and stores a new product. An omitted
// low_stock_threshold defaults to entity.DefaultLowStockThreshold. A duplicate
// SKU or an unknown category comes back as *entity.ConstraintViolationError.
func (s *CatalogService) CreateProduct(ctx context.Context, req entity.CreateProductRequest) (*entity.Product, error) {
	product := &entity.Product{
		CategoryID:        req.CategoryID,
		Name:              strings.TrimSpace(req.Name),
		SKU:               strings.TrimSpace(req.SKU),
		Price:             req.Price,
		Stock:             req.Stock,
		LowStockThreshold: entity.DefaultLowStockThreshold,
		IsActive:          true,
	}
	if req.LowStockThreshold != nil {
		product.LowStockThreshold = *req.LowStockThreshold
	}

	switch {
	case product.Name == "":
		return nil, &entity.ValidationError{Field: "name", Reason: "is required"}
	case product.SKU == "":
		return nil, &entity.ValidationError{Field: "sku", Reason: "is required"}
	case product.CategoryID <= 0:
		return nil, &entity.ValidationError{Field: "category_id", Reason: "is required"}
	case product.Price.IsNegative():
		return nil, &entity.ValidationError{Field: "price", Reason: "must not be negative"}
	case product.Stock < 0:
		return nil, &entity.ValidationError{Field: "stock", Reason: "must not be negative"}
	case product.LowStockThreshold < 0:
		return nil, &entity.ValidationError{Field: "low_stock_threshold", Reason: "must not be negative"}
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		logger.Error().Err(err).Msgf("Error creating product %s", product.SKU)
		return nil, err
	}

	invalidateDashboard(ctx, s.dashboard)
	return created, nil
}

// UpdateStock sets the absolute stock of a product.
func (s *CatalogService) UpdateStock(ctx context.Context, productID, quantity int) error {
	if quantity < 0 {
		return &entity.ValidationError{Field: "stock", Reason: "must not be negative"}
	}

	if err := s.repo.UpdateStock(ctx, productID, quantity); err != nil {
		logger.Error().Err(err).Msgf("Error updating stock for product %d", productID)
		return err
	}

	invalidateDashboard(ctx, s.dashboard)
	return nil
}

// DeleteProduct fails with a foreign-key violation while sale lines still
// reference the product.
func (s *CatalogService) DeleteProduct(ctx context.Context, productID int) error {
	if err := s.repo.DeleteProduct(ctx, productID); err != nil {
		logger.Error().Err(err).Msgf("Error deleting product %d", productID)
		return err
	}

	invalidateDashboard(ctx, s.dashboard)
	return nil
}

func (s *CatalogService) ListCustomers(ctx context.Context) ([]entity.Customer, error) {
	customers, err := s.repo.ListCustomers(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing customers")
		return nil, err
	}
	return customers, nil
}

func (s *CatalogService) CreateCustomer(ctx context.Context, customer *entity.Customer) (*entity.Customer, error) {
	customer.Name = strings.TrimSpace(customer.Name)
	if customer.Name == "" {
		return nil, &entity.ValidationError{Field: "name", Reason: "is required"}
	}
	if customer.Phone != nil {
		phone := strings.TrimSpace(*customer.Phone)
		if phone == "" {
			customer.Phone = nil
		} else {
			customer.Phone = &phone
		}
	}

	created, err := s.repo.CreateCustomer(ctx, customer)
	if err != nil {
		logger.Error().Err(err).Msg("Error creating customer")
		return nil, err
	}
	return created, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]entity.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing categories")
		return nil, err
	}
	return categories, nil
}
