package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart is the persistent per-conversation cart row. There is at most one
// cart per conversation ID, enforced by a unique constraint.
type Cart struct {
	ID             uuid.UUID
	ConversationID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartLine is a cart item joined with its current product record.
type CartLine struct {
	Product  Product
	Quantity int32
}

func (l CartLine) Subtotal() Money {
	return l.Product.Price.Mul(l.Quantity)
}

// CartView is the read projection of a cart: items joined with current
// product prices, totals recomputed on every read. It is never persisted.
type CartView struct {
	Cart  Cart
	Items []CartLine
}

// Total sums the line subtotals. The catalog carries a single currency, so
// amounts are summed directly.
func (v CartView) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range v.Items {
		total = total.Add(line.Subtotal().Amount)
	}
	return total
}
