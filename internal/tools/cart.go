package tools

import (
	"context"
	"errors"

	"github.com/laburen/sales-agent-mcp/internal/domain"
	"github.com/laburen/sales-agent-mcp/internal/service"
	"github.com/laburen/sales-agent-mcp/internal/validation"
	"github.com/mark3labs/mcp-go/mcp"
)

type CreateCartTool struct {
	carts *service.CartService
}

func NewCreateCartTool(carts *service.CartService) *CreateCartTool {
	return &CreateCartTool{carts: carts}
}

func (t *CreateCartTool) Definition() mcp.Tool {
	return mcp.NewTool("create_cart",
		mcp.WithDescription("Create a cart or add a product to an existing cart for a conversation"),
		mcp.WithString("conversation_id",
			mcp.Required(),
			mcp.Description("Chatwoot conversation ID")),
		mcp.WithString("product_id",
			mcp.Required(),
			mcp.Description("Product ID to add to cart")),
		mcp.WithNumber("quantity",
			mcp.Required(),
			mcp.Description("Quantity of the product to add"),
			mcp.DefaultNumber(1),
			mcp.Min(1)),
	)
}

func (t *CreateCartTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in struct {
		ConversationID string `json:"conversation_id"`
		ProductID      string `json:"product_id"`
		Quantity       int    `json:"quantity"`
	}
	if err := req.BindArguments(&in); err != nil {
		return failf("Failed to create/update cart: %v", err)
	}

	if err := validation.ConversationID(in.ConversationID); err != nil {
		return failf("Failed to create/update cart: %v", err)
	}
	productID, err := validation.ProductID(in.ProductID)
	if err != nil {
		return failf("Failed to create/update cart: %v", err)
	}
	if err := validation.Quantity(in.Quantity); err != nil {
		return failf("Failed to create/update cart: %v", err)
	}
	if in.Quantity < 1 {
		return failf("Failed to create/update cart: quantity must be at least 1")
	}

	view, err := t.carts.AddToCart(ctx, in.ConversationID, productID, int32(in.Quantity))
	if err != nil {
		return failf("Failed to create/update cart: %v", err)
	}

	return jsonResult(struct {
		Message string          `json:"message"`
		Cart    cartViewPayload `json:"cart"`
	}{
		Message: "Product added to cart successfully",
		Cart:    mapCartView(view),
	})
}

type GetCartTool struct {
	carts *service.CartService
}

func NewGetCartTool(carts *service.CartService) *GetCartTool {
	return &GetCartTool{carts: carts}
}

func (t *GetCartTool) Definition() mcp.Tool {
	return mcp.NewTool("get_cart",
		mcp.WithDescription("Retrieve the current cart with all items for a conversation"),
		mcp.WithString("conversation_id",
			mcp.Required(),
			mcp.Description("Chatwoot conversation ID")),
	)
}

func (t *GetCartTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conversationID, err := req.RequireString("conversation_id")
	if err != nil {
		return failf("Failed to get cart: %v", err)
	}

	if err := validation.ConversationID(conversationID); err != nil {
		return failf("Failed to get cart: %v", err)
	}

	view, err := t.carts.GetCart(ctx, conversationID)
	if err != nil {
		// "No cart yet" is an expected state for a fresh conversation.
		var notFound domain.CartNotFoundError
		if errors.As(err, &notFound) {
			return jsonResult(struct {
				Message string           `json:"message"`
				Cart    *cartViewPayload `json:"cart"`
			}{
				Message: "No active cart found for this conversation",
				Cart:    nil,
			})
		}
		return failf("Failed to get cart: %v", err)
	}

	return jsonResult(struct {
		Cart cartViewPayload `json:"cart"`
	}{Cart: mapCartView(view)})
}

type UpdateCartItemTool struct {
	carts *service.CartService
}

func NewUpdateCartItemTool(carts *service.CartService) *UpdateCartItemTool {
	return &UpdateCartItemTool{carts: carts}
}

func (t *UpdateCartItemTool) Definition() mcp.Tool {
	return mcp.NewTool("update_cart_item",
		mcp.WithDescription("Update quantity of a product in the cart or remove it if quantity is 0"),
		mcp.WithString("conversation_id",
			mcp.Required(),
			mcp.Description("Chatwoot conversation ID")),
		mcp.WithString("product_id",
			mcp.Required(),
			mcp.Description("Product ID to update")),
		mcp.WithNumber("quantity",
			mcp.Required(),
			mcp.Description("New quantity (0 to remove the item)"),
			mcp.Min(0)),
	)
}

func (t *UpdateCartItemTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in struct {
		ConversationID string `json:"conversation_id"`
		ProductID      string `json:"product_id"`
		Quantity       int    `json:"quantity"`
	}
	if err := req.BindArguments(&in); err != nil {
		return failf("Failed to update cart item: %v", err)
	}

	if err := validation.ConversationID(in.ConversationID); err != nil {
		return failf("Failed to update cart item: %v", err)
	}
	productID, err := validation.ProductID(in.ProductID)
	if err != nil {
		return failf("Failed to update cart item: %v", err)
	}
	if err := validation.Quantity(in.Quantity); err != nil {
		return failf("Failed to update cart item: %v", err)
	}

	view, err := t.carts.SetItemQuantity(ctx, in.ConversationID, productID, int32(in.Quantity))
	if err != nil {
		return failf("Failed to update cart item: %v", err)
	}

	message := "Product updated in cart successfully"
	if in.Quantity == 0 {
		message = "Product removed from cart successfully"
	}

	return jsonResult(struct {
		Message string          `json:"message"`
		Cart    cartViewPayload `json:"cart"`
	}{
		Message: message,
		Cart:    mapCartView(view),
	})
}
