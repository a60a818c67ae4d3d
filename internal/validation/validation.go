// Package validation enforces tool-input pre-conditions. Every rule here
// runs before any store access; violations fail fast with a descriptive
// message.
package validation

import (
	"errors"
	"regexp"

	"github.com/google/uuid"
)

const (
	maxConversationIDLength = 255
	maxSearchLength         = 255
	maxQuantity             = 1000
	maxLimit                = 100
)

var (
	conversationIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	uuidPattern           = regexp.MustCompile(`^(?i)[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	forbiddenSearchChars  = regexp.MustCompile(`['";]`)
)

func ConversationID(conversationID string) error {
	if conversationID == "" {
		return errors.New("conversation_id is required")
	}
	if len(conversationID) > maxConversationIDLength {
		return errors.New("conversation_id too long")
	}
	if !conversationIDPattern.MatchString(conversationID) {
		return errors.New("conversation_id contains invalid characters")
	}
	return nil
}

// ProductID accepts only the canonical 8-4-4-4-12 UUID form.
func ProductID(productID string) (uuid.UUID, error) {
	if !uuidPattern.MatchString(productID) {
		return uuid.Nil, errors.New("invalid product_id format (must be UUID)")
	}
	return uuid.Parse(productID)
}

func Quantity(quantity int) error {
	if quantity < 0 {
		return errors.New("quantity cannot be negative")
	}
	if quantity > maxQuantity {
		return errors.New("quantity too large")
	}
	return nil
}

type ListProductsParams struct {
	Search   string
	MinPrice *float64
	MaxPrice *float64
	Limit    *int
}

func ListProducts(params ListProductsParams) error {
	if params.MinPrice != nil && *params.MinPrice < 0 {
		return errors.New("min_price must be non-negative")
	}
	if params.MaxPrice != nil && *params.MaxPrice < 0 {
		return errors.New("max_price must be non-negative")
	}
	if params.MinPrice != nil && params.MaxPrice != nil && *params.MinPrice > *params.MaxPrice {
		return errors.New("min_price cannot be greater than max_price")
	}
	if params.Limit != nil {
		if *params.Limit <= 0 {
			return errors.New("limit must be positive")
		}
		if *params.Limit > maxLimit {
			return errors.New("limit cannot exceed 100")
		}
	}
	if params.Search != "" {
		if len(params.Search) > maxSearchLength {
			return errors.New("search string too long")
		}
		if forbiddenSearchChars.MatchString(params.Search) {
			return errors.New("invalid characters in search string")
		}
	}
	return nil
}
