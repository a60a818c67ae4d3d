package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/laburen/sales-agent-mcp/internal/domain"
)

type ProductRepository interface {
	// GetProduct returns domain.ProductNotFoundError when absent.
	GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error)

	// SearchProducts returns products matching the filter, ordered by name
	// ascending. The text filter matches name or description
	// case-insensitively; price bounds are inclusive.
	SearchProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
}
