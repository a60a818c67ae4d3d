// Package server wires the MCP components and creates the server instance.
// It is the composition root: concrete services are injected into the tools
// here and nowhere else. No business logic lives in this package.
package server

import (
	"github.com/laburen/sales-agent-mcp/internal/port"
	"github.com/laburen/sales-agent-mcp/internal/service"
	"github.com/laburen/sales-agent-mcp/internal/tools"
	"github.com/mark3labs/mcp-go/server"
)

const Name = "laburen-sales-agent"

// Version is set at build time via ldflags.
var Version = "1.0.0"

// New creates the MCP server with all catalog, cart and CRM tools
// registered.
func New(catalog *service.CatalogService, carts *service.CartService, notifier port.ConversationNotifier) *server.MCPServer {
	s := server.NewMCPServer(
		Name,
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions()),
	)

	listProducts := tools.NewListProductsTool(catalog)
	s.AddTool(listProducts.Definition(), listProducts.Handle)

	getProduct := tools.NewGetProductTool(catalog)
	s.AddTool(getProduct.Definition(), getProduct.Handle)

	createCart := tools.NewCreateCartTool(carts)
	s.AddTool(createCart.Definition(), createCart.Handle)

	getCart := tools.NewGetCartTool(carts)
	s.AddTool(getCart.Definition(), getCart.Handle)

	updateCartItem := tools.NewUpdateCartItemTool(carts)
	s.AddTool(updateCartItem.Definition(), updateCartItem.Handle)

	applyTag := tools.NewApplyTagTool(notifier)
	s.AddTool(applyTag.Definition(), applyTag.Handle)

	handoff := tools.NewHandoffTool(notifier)
	s.AddTool(handoff.Definition(), handoff.Handle)

	return s
}

func instructions() string {
	return `You are connected to a sales-agent backend for an e-commerce catalog.

Use list_products and get_product to answer questions about the catalog.
Use create_cart to add products to the customer's cart and update_cart_item
to change quantities (quantity 0 removes the item). Each Chatwoot
conversation has at most one cart; always pass the conversation ID you were
given. Use apply_chatwoot_tag to categorize the conversation and
handoff_to_human when the customer needs a real person.`
}
