package port

import "context"

// ConversationNotifier tags and hands off conversations in the external CRM.
// It is a side channel: it never holds authoritative state for the cart.
type ConversationNotifier interface {
	AddTags(ctx context.Context, conversationID string, tags []string) error
	Handoff(ctx context.Context, conversationID, reason string) error
}
