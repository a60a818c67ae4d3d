package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/laburen/sales-agent-mcp/internal/domain"
	"github.com/laburen/sales-agent-mcp/internal/port"
)

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 100
)

// CatalogService is a read-only facade over the product inventory.
type CatalogService struct {
	products port.ProductRepository
}

func NewCatalog(products port.ProductRepository) (*CatalogService, error) {
	if products == nil {
		return nil, fmt.Errorf("products is nil")
	}

	return &CatalogService{products: products}, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error) {
	return s.products.GetProduct(ctx, productID)
}

func (s *CatalogService) SearchProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultSearchLimit
	}
	if filter.Limit > maxSearchLimit {
		filter.Limit = maxSearchLimit
	}

	products, err := s.products.SearchProducts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("products.SearchProducts: %w", err)
	}

	return products, nil
}
