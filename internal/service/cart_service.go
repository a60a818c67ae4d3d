package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/laburen/sales-agent-mcp/internal/chatwoot"
	"github.com/laburen/sales-agent-mcp/internal/domain"
	"github.com/laburen/sales-agent-mcp/internal/port"
	"go.uber.org/zap"
)

const notifyTimeout = 10 * time.Second

// CartService keeps a per-conversation cart consistent with the shared
// product inventory. Stock is only validated, never decremented: an external
// accounting process owns replenishment.
type CartService struct {
	products port.ProductRepository
	carts    port.CartRepository
	notifier port.ConversationNotifier
	logger   *zap.Logger

	// tracks in-flight background notifications so shutdown can drain them
	wg sync.WaitGroup
}

func NewCart(products port.ProductRepository, carts port.CartRepository, notifier port.ConversationNotifier, logger *zap.Logger) (*CartService, error) {
	if products == nil {
		return nil, fmt.Errorf("products is nil")
	}
	if carts == nil {
		return nil, fmt.Errorf("carts is nil")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier is nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	return &CartService{
		products: products,
		carts:    carts,
		notifier: notifier,
		logger:   logger,
	}, nil
}

// AddToCart adds quantity units of a product to the conversation's cart,
// creating the cart on first use and merging with any existing item for the
// same product. The stock check covers the merged quantity and is enforced
// atomically against the item row, so concurrent adds cannot oversell past
// the product's current stock field.
//
// On success a conversation-tagging notification is dispatched in the
// background; its outcome never affects the returned view.
func (s *CartService) AddToCart(ctx context.Context, conversationID string, productID uuid.UUID, quantity int32) (domain.CartView, error) {
	if quantity <= 0 {
		return domain.CartView{}, fmt.Errorf("quantity must be positive")
	}

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return domain.CartView{}, fmt.Errorf("products.GetProduct: %w", err)
	}

	// Reject an outright over-stock request before touching the cart, so a
	// failed first add never leaves an empty cart behind. The capped
	// increment below still guards the merge case atomically.
	if quantity > product.Stock {
		return domain.CartView{}, domain.InsufficientStockError{
			ProductID:   productID,
			ProductName: product.Name,
			Requested:   quantity,
			Available:   product.Stock,
		}
	}

	cart, err := s.carts.GetOrCreate(ctx, conversationID)
	if err != nil {
		return domain.CartView{}, fmt.Errorf("carts.GetOrCreate: %w", err)
	}

	_, err = s.carts.AddItemQuantity(ctx, cart.ID, productID, quantity, product.Stock)
	if err != nil {
		if errors.Is(err, port.ErrQuantityCapExceeded) {
			return domain.CartView{}, s.insufficientStock(ctx, cart, product, quantity)
		}
		return domain.CartView{}, fmt.Errorf("carts.AddItemQuantity: %w", err)
	}

	view, err := s.view(ctx, cart)
	if err != nil {
		return domain.CartView{}, err
	}

	s.notifyCartActivity(ctx, conversationID, product.Name)

	return view, nil
}

// SetItemQuantity replaces the item quantity with an absolute value.
// Quantity zero deletes the item; deleting an absent item is not an error.
// Unlike AddToCart the stock check is against the requested value alone.
func (s *CartService) SetItemQuantity(ctx context.Context, conversationID string, productID uuid.UUID, quantity int32) (domain.CartView, error) {
	if quantity < 0 {
		return domain.CartView{}, fmt.Errorf("quantity must not be negative")
	}

	cart, err := s.carts.GetByConversation(ctx, conversationID)
	if err != nil {
		return domain.CartView{}, fmt.Errorf("carts.GetByConversation: %w", err)
	}

	if quantity == 0 {
		if _, err := s.carts.RemoveItem(ctx, cart.ID, productID); err != nil {
			return domain.CartView{}, fmt.Errorf("carts.RemoveItem: %w", err)
		}
		return s.view(ctx, cart)
	}

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return domain.CartView{}, fmt.Errorf("products.GetProduct: %w", err)
	}

	if product.Stock < quantity {
		return domain.CartView{}, domain.InsufficientStockError{
			ProductID:   productID,
			ProductName: product.Name,
			Requested:   quantity,
			Available:   product.Stock,
		}
	}

	if err := s.carts.SetItemQuantity(ctx, cart.ID, productID, quantity); err != nil {
		return domain.CartView{}, fmt.Errorf("carts.SetItemQuantity: %w", err)
	}

	return s.view(ctx, cart)
}

// GetCart returns the freshly recomputed view of the conversation's cart, or
// domain.CartNotFoundError when no cart exists yet. Translating "no cart"
// into an empty response is the caller's policy, not the engine's.
func (s *CartService) GetCart(ctx context.Context, conversationID string) (domain.CartView, error) {
	cart, err := s.carts.GetByConversation(ctx, conversationID)
	if err != nil {
		return domain.CartView{}, fmt.Errorf("carts.GetByConversation: %w", err)
	}

	return s.view(ctx, cart)
}

// Wait blocks until all in-flight background notifications have finished.
func (s *CartService) Wait() {
	s.wg.Wait()
}

func (s *CartService) view(ctx context.Context, cart domain.Cart) (domain.CartView, error) {
	items, err := s.carts.ListItems(ctx, cart.ID)
	if err != nil {
		return domain.CartView{}, fmt.Errorf("carts.ListItems: %w", err)
	}

	return domain.CartView{Cart: cart, Items: items}, nil
}

// insufficientStock builds the error for a rejected merge. The current item
// quantity is re-read only to report the prospective total; the rejection
// itself already happened atomically.
func (s *CartService) insufficientStock(ctx context.Context, cart domain.Cart, product domain.Product, quantity int32) error {
	requested := quantity

	items, err := s.carts.ListItems(ctx, cart.ID)
	if err == nil {
		for _, line := range items {
			if line.Product.ID == product.ID {
				requested += line.Quantity
				break
			}
		}
	}

	return domain.InsufficientStockError{
		ProductID:   product.ID,
		ProductName: product.Name,
		Requested:   requested,
		Available:   product.Stock,
	}
}

// notifyCartActivity tags the conversation in the CRM without blocking the
// caller. The context is detached from the request so the send survives the
// response; failures are logged and swallowed.
func (s *CartService) notifyCartActivity(ctx context.Context, conversationID, productName string) {
	tags := append(chatwoot.CartTags(), chatwoot.ProductTags(productName)...)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()

		if err := s.notifier.AddTags(nctx, conversationID, tags); err != nil {
			s.logger.Warn("failed to tag conversation after cart update",
				zap.String("conversation_id", conversationID),
				zap.Error(err))
		}
	}()
}
