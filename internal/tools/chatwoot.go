package tools

import (
	"context"
	"strings"

	"github.com/laburen/sales-agent-mcp/internal/port"
	"github.com/laburen/sales-agent-mcp/internal/validation"
	"github.com/mark3labs/mcp-go/mcp"
)

// ApplyTagTool is a passthrough to the CRM tagger. Unlike the cart-mutation
// side effect, the call is awaited: tagging is the requested operation here,
// so its failure is the tool's failure.
type ApplyTagTool struct {
	notifier port.ConversationNotifier
}

func NewApplyTagTool(notifier port.ConversationNotifier) *ApplyTagTool {
	return &ApplyTagTool{notifier: notifier}
}

func (t *ApplyTagTool) Definition() mcp.Tool {
	return mcp.NewTool("apply_chatwoot_tag",
		mcp.WithDescription("Apply tags to a Chatwoot conversation for categorization and tracking"),
		mcp.WithString("conversation_id",
			mcp.Required(),
			mcp.Description("Chatwoot conversation ID")),
		mcp.WithArray("tags",
			mcp.Required(),
			mcp.Description("Array of tags to apply to the conversation"),
			mcp.Items(map[string]any{"type": "string"}),
			mcp.MinItems(1)),
	)
}

func (t *ApplyTagTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in struct {
		ConversationID string   `json:"conversation_id"`
		Tags           []string `json:"tags"`
	}
	if err := req.BindArguments(&in); err != nil {
		return failf("Failed to apply tags: %v", err)
	}

	if err := validation.ConversationID(in.ConversationID); err != nil {
		return failf("Failed to apply tags: %v", err)
	}
	if len(in.Tags) == 0 {
		return failf("Failed to apply tags: at least one tag is required")
	}

	if err := t.notifier.AddTags(ctx, in.ConversationID, in.Tags); err != nil {
		return failf("Failed to apply tags: %v", err)
	}

	return jsonResult(struct {
		Message        string   `json:"message"`
		ConversationID string   `json:"conversation_id"`
		Tags           []string `json:"tags"`
	}{
		Message:        "Tags applied successfully",
		ConversationID: in.ConversationID,
		Tags:           in.Tags,
	})
}

type HandoffTool struct {
	notifier port.ConversationNotifier
}

func NewHandoffTool(notifier port.ConversationNotifier) *HandoffTool {
	return &HandoffTool{notifier: notifier}
}

func (t *HandoffTool) Definition() mcp.Tool {
	return mcp.NewTool("handoff_to_human",
		mcp.WithDescription("Transfer the conversation to a human agent with context and reason"),
		mcp.WithString("conversation_id",
			mcp.Required(),
			mcp.Description("Chatwoot conversation ID")),
		mcp.WithString("reason",
			mcp.Required(),
			mcp.Description(`Reason for handoff (e.g., "complex_query", "payment_issue", "customer_request")`)),
	)
}

func (t *HandoffTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in struct {
		ConversationID string `json:"conversation_id"`
		Reason         string `json:"reason"`
	}
	if err := req.BindArguments(&in); err != nil {
		return failf("Failed to handoff to human: %v", err)
	}

	if err := validation.ConversationID(in.ConversationID); err != nil {
		return failf("Failed to handoff to human: %v", err)
	}
	if strings.TrimSpace(in.Reason) == "" {
		return failf("Failed to handoff to human: handoff reason is required")
	}

	if err := t.notifier.Handoff(ctx, in.ConversationID, in.Reason); err != nil {
		return failf("Failed to handoff to human: %v", err)
	}

	return jsonResult(struct {
		Message        string `json:"message"`
		ConversationID string `json:"conversation_id"`
		Reason         string `json:"reason"`
	}{
		Message:        "Conversation handed off to human agent successfully",
		ConversationID: in.ConversationID,
		Reason:         in.Reason,
	})
}
