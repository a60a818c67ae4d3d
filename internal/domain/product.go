package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       Money
	Stock       int32

	CreatedAt time.Time
}

// ProductFilter narrows a catalog search. Zero-value Search means no text
// filter; nil price bounds mean unbounded. Bounds are inclusive.
type ProductFilter struct {
	Search   string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Limit    int32
}
