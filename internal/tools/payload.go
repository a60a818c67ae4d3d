package tools

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/laburen/sales-agent-mcp/internal/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/shopspring/decimal"
)

// Wire payloads for tool results. Field names match what the conversational
// agent was prompted against, so they are part of the contract.

type productPayload struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	Stock       int32           `json:"stock"`
	CreatedAt   time.Time       `json:"created_at"`
}

type cartPayload struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type cartItemPayload struct {
	Product  productPayload  `json:"product"`
	Quantity int32           `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type cartViewPayload struct {
	Cart  cartPayload       `json:"cart"`
	Items []cartItemPayload `json:"items"`
	Total decimal.Decimal   `json:"total"`
}

func mapProduct(p domain.Product) productPayload {
	return productPayload{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.Amount,
		Currency:    p.Price.Currency.String(),
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt,
	}
}

func mapCartView(view domain.CartView) cartViewPayload {
	items := make([]cartItemPayload, 0, len(view.Items))
	for _, line := range view.Items {
		items = append(items, cartItemPayload{
			Product:  mapProduct(line.Product),
			Quantity: line.Quantity,
			Subtotal: line.Subtotal().Amount,
		})
	}

	return cartViewPayload{
		Cart: cartPayload{
			ID:             view.Cart.ID.String(),
			ConversationID: view.Cart.ConversationID,
			CreatedAt:      view.Cart.CreatedAt,
			UpdatedAt:      view.Cart.UpdatedAt,
		},
		Items: items,
		Total: view.Total(),
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// failf reports a tool-level failure to the caller as an error result, never
// as a protocol error.
func failf(format string, args ...any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(fmt.Sprintf(format, args...)), nil
}
