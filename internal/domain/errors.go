package domain

import (
	"fmt"

	"github.com/google/uuid"
)

type ProductNotFoundError struct {
	ProductID uuid.UUID
}

func (e ProductNotFoundError) Error() string {
	return fmt.Sprintf("product with ID %s not found", e.ProductID)
}

type CartNotFoundError struct {
	ConversationID string
}

func (e CartNotFoundError) Error() string {
	return fmt.Sprintf("cart not found for conversation %s", e.ConversationID)
}

type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Requested   int32
	Available   int32
}

func (e InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s. Available: %d, Requested: %d",
		e.ProductName, e.Available, e.Requested)
}
