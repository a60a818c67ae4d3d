package tools

import (
	"context"
	"errors"

	"github.com/laburen/sales-agent-mcp/internal/domain"
	"github.com/laburen/sales-agent-mcp/internal/service"
	"github.com/laburen/sales-agent-mcp/internal/validation"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/shopspring/decimal"
)

type ListProductsTool struct {
	catalog *service.CatalogService
}

func NewListProductsTool(catalog *service.CatalogService) *ListProductsTool {
	return &ListProductsTool{catalog: catalog}
}

func (t *ListProductsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_products",
		mcp.WithDescription("Search and list products from the catalog with optional filters"),
		mcp.WithString("search",
			mcp.Description("Search term to filter products by name or description")),
		mcp.WithNumber("min_price",
			mcp.Description("Minimum price filter"),
			mcp.Min(0)),
		mcp.WithNumber("max_price",
			mcp.Description("Maximum price filter"),
			mcp.Min(0)),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of products to return"),
			mcp.DefaultNumber(50),
			mcp.Min(1),
			mcp.Max(100)),
	)
}

func (t *ListProductsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in struct {
		Search   string   `json:"search"`
		MinPrice *float64 `json:"min_price"`
		MaxPrice *float64 `json:"max_price"`
		Limit    *int     `json:"limit"`
	}
	if err := req.BindArguments(&in); err != nil {
		return failf("Failed to list products: %v", err)
	}

	err := validation.ListProducts(validation.ListProductsParams{
		Search:   in.Search,
		MinPrice: in.MinPrice,
		MaxPrice: in.MaxPrice,
		Limit:    in.Limit,
	})
	if err != nil {
		return failf("Failed to list products: %v", err)
	}

	filter := domain.ProductFilter{Search: in.Search}
	if in.MinPrice != nil {
		min := decimal.NewFromFloat(*in.MinPrice)
		filter.MinPrice = &min
	}
	if in.MaxPrice != nil {
		max := decimal.NewFromFloat(*in.MaxPrice)
		filter.MaxPrice = &max
	}
	if in.Limit != nil {
		filter.Limit = int32(*in.Limit)
	}

	products, err := t.catalog.SearchProducts(ctx, filter)
	if err != nil {
		return failf("Failed to list products: %v", err)
	}

	if len(products) == 0 {
		return jsonResult(struct {
			Message  string           `json:"message"`
			Products []productPayload `json:"products"`
			Total    int              `json:"total"`
		}{
			Message:  "No products found matching the criteria",
			Products: []productPayload{},
			Total:    0,
		})
	}

	payloads := make([]productPayload, 0, len(products))
	for _, p := range products {
		payloads = append(payloads, mapProduct(p))
	}

	return jsonResult(struct {
		Products []productPayload `json:"products"`
		Total    int              `json:"total"`
	}{
		Products: payloads,
		Total:    len(payloads),
	})
}

type GetProductTool struct {
	catalog *service.CatalogService
}

func NewGetProductTool(catalog *service.CatalogService) *GetProductTool {
	return &GetProductTool{catalog: catalog}
}

func (t *GetProductTool) Definition() mcp.Tool {
	return mcp.NewTool("get_product",
		mcp.WithDescription("Get detailed information about a specific product by ID"),
		mcp.WithString("product_id",
			mcp.Required(),
			mcp.Description("Unique identifier of the product")),
	)
}

func (t *GetProductTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawID, err := req.RequireString("product_id")
	if err != nil {
		return failf("Failed to get product: %v", err)
	}

	productID, err := validation.ProductID(rawID)
	if err != nil {
		return failf("Failed to get product: %v", err)
	}

	product, err := t.catalog.GetProduct(ctx, productID)
	if err != nil {
		// An unknown ID is an expected answer for the agent, not a failure.
		var notFound domain.ProductNotFoundError
		if errors.As(err, &notFound) {
			return jsonResult(struct {
				Error     string `json:"error"`
				ProductID string `json:"product_id"`
			}{
				Error:     "Product not found",
				ProductID: rawID,
			})
		}
		return failf("Failed to get product: %v", err)
	}

	return jsonResult(struct {
		Product productPayload `json:"product"`
	}{Product: mapProduct(product)})
}
