package chatwoot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	maxRetries     = 1
	retryDelay     = time.Second
	requestTimeout = 15 * time.Second
)

type Config struct {
	BaseURL   string
	AccountID string
	Token     string
}

// Client talks to the Chatwoot conversations API. It never follows
// redirects: a redirected or non-2xx response is always an error.
type Client struct {
	cfg    Config
	httpc  *http.Client
	logger *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is empty")
	}
	if cfg.AccountID == "" {
		return nil, fmt.Errorf("account ID is empty")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("token is empty")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	return &Client{
		cfg: cfg,
		httpc: &http.Client{
			Timeout: requestTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger: logger,
	}, nil
}

// AddTags applies sanitized labels to a conversation, retrying once after a
// fixed delay before giving up.
func (c *Client) AddTags(ctx context.Context, conversationID string, tags []string) error {
	sanitized := make([]string, 0, len(tags))
	for _, tag := range tags {
		sanitized = append(sanitized, SanitizeTag(tag))
	}

	url := fmt.Sprintf("%s/api/v1/accounts/%s/conversations/%s/labels",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.AccountID, conversationID)

	payload, err := json.Marshal(map[string][]string{"labels": sanitized})
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelay):
			}
		}

		if err := c.post(ctx, url, payload); err != nil {
			lastErr = err
			c.logger.Warn("chatwoot label request failed",
				zap.String("conversation_id", conversationID),
				zap.Int("attempt", attempt+1),
				zap.Error(err))
			continue
		}

		c.logger.Info("tags added to conversation",
			zap.String("conversation_id", conversationID),
			zap.Strings("tags", sanitized))
		return nil
	}

	return fmt.Errorf("adding tags after %d attempts: %w", maxRetries+1, lastErr)
}

// Handoff tags the conversation with the handoff reason and then flips its
// status so a human agent picks it up. Both steps are awaited; either
// failing fails the handoff.
func (c *Client) Handoff(ctx context.Context, conversationID, reason string) error {
	if err := c.AddTags(ctx, conversationID, HandoffTags(reason)); err != nil {
		return fmt.Errorf("AddTags: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/accounts/%s/conversations/%s/toggle_status",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.AccountID, conversationID)

	payload, err := json.Marshal(map[string]string{"status": "open"})
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	if err := c.post(ctx, url, payload); err != nil {
		return fmt.Errorf("toggling conversation status: %w", err)
	}

	c.logger.Info("conversation handed off to human agent",
		zap.String("conversation_id", conversationID),
		zap.String("reason", reason))
	return nil
}

func (c *Client) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("http.NewRequestWithContext: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api_access_token", c.cfg.Token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("httpc.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("chatwoot API error: %d - %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	return nil
}
