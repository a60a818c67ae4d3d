package port

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/laburen/sales-agent-mcp/internal/domain"
)

// ErrQuantityCapExceeded reports that an atomic increment was rejected
// because the resulting quantity would exceed the supplied cap.
var ErrQuantityCapExceeded = errors.New("quantity cap exceeded")

type CartRepository interface {
	// GetByConversation returns domain.CartNotFoundError when no cart
	// exists for the conversation.
	GetByConversation(ctx context.Context, conversationID string) (domain.Cart, error)

	// GetOrCreate is idempotent and safe under concurrent first-time calls
	// for the same conversation: at most one cart is ever created per
	// conversation ID.
	GetOrCreate(ctx context.Context, conversationID string) (domain.Cart, error)

	// AddItemQuantity atomically increments the item quantity by delta,
	// creating the item when absent. The resulting quantity is capped at
	// maxQuantity: when the cap would be exceeded the row is left untouched
	// and ErrQuantityCapExceeded is returned.
	AddItemQuantity(ctx context.Context, cartID, productID uuid.UUID, delta, maxQuantity int32) (int32, error)

	// SetItemQuantity sets the item quantity to an absolute value,
	// creating the item when absent. Quantity must be positive.
	SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int32) error

	// RemoveItem deletes the item. Removing an absent item is not an
	// error; the bool reports whether a row was deleted.
	RemoveItem(ctx context.Context, cartID, productID uuid.UUID) (bool, error)

	// ListItems returns the cart items joined with their current product
	// records, ordered by product name.
	ListItems(ctx context.Context, cartID uuid.UUID) ([]domain.CartLine, error)
}
