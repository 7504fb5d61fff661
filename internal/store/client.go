package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultTimeout bounds every row-store round trip.
	DefaultTimeout = 10 * time.Second

	// maxResponseSize caps response bodies; rows here are small.
	maxResponseSize = 1 << 20
)

// Config holds row-store connection settings.
type Config struct {
	BaseURL    string
	ServiceKey string
	Timeout    time.Duration
}

// Client talks to a PostgREST-style row API.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a row-store client from config.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url required")
	}
	if cfg.ServiceKey == "" {
		return nil, fmt.Errorf("service key required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		serviceKey: cfg.ServiceKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// confessionRow is the projection used by the verdict cache.
type confessionRow struct {
	AIAnalysis *string `json:"ai_analysis"`
}

// ConfessionAnalysis fetches the cached verdict for a confession.
func (c *Client) ConfessionAnalysis(ctx context.Context, confessionID string) (string, error) {
	path := "/rest/v1/confessions?select=ai_analysis&id=eq." + url.QueryEscape(confessionID)

	var rows []confessionRow
	if err := c.do(ctx, http.MethodGet, path, nil, &rows); err != nil {
		return "", err
	}
	if len(rows) == 0 || rows[0].AIAnalysis == nil || *rows[0].AIAnalysis == "" {
		return "", ErrNotFound
	}
	return *rows[0].AIAnalysis, nil
}

// SaveConfessionAnalysis writes the verdict and toxic score back to the row.
func (c *Client) SaveConfessionAnalysis(ctx context.Context, confessionID, analysis string, toxicScore int) error {
	path := "/rest/v1/confessions?id=eq." + url.QueryEscape(confessionID)
	body := map[string]any{
		"ai_analysis": analysis,
		"toxic_score": toxicScore,
	}
	return c.do(ctx, http.MethodPatch, path, body, nil)
}

// InsertSession persists one chat session row.
func (c *Client) InsertSession(ctx context.Context, s Session) error {
	return c.do(ctx, http.MethodPost, "/rest/v1/chat_sessions", s, nil)
}

// InsertMessage persists one chat message row.
func (c *Client) InsertMessage(ctx context.Context, m MessageRow) error {
	return c.do(ctx, http.MethodPost, "/rest/v1/chat_messages", m, nil)
}

// IncrementLike bumps a confession's like counter server-side.
func (c *Client) IncrementLike(ctx context.Context, confessionID string) error {
	return c.rpc(ctx, "increment_like", map[string]any{"confession_id": confessionID})
}

// DecrementLike reverses a like server-side.
func (c *Client) DecrementLike(ctx context.Context, confessionID string) error {
	return c.rpc(ctx, "decrement_like", map[string]any{"confession_id": confessionID})
}

// DeductCredit burns one analysis credit for a user server-side.
func (c *Client) DeductCredit(ctx context.Context, userID string) error {
	return c.rpc(ctx, "deduct_creditsforanalysis", map[string]any{"user_id": userID})
}

func (c *Client) Enabled() bool { return true }

// rpc invokes a named server-side function. All counter mutations go
// through here so concurrent clients cannot lose updates.
func (c *Client) rpc(ctx context.Context, name string, args map[string]any) error {
	return c.do(ctx, http.MethodPost, "/rest/v1/rpc/"+url.PathEscape(name), args, nil)
}

// do runs one request against the row API. out may be nil for writes.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("Prefer", "return=minimal")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("row store request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("row store error (%d): %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

var _ Store = (*Client)(nil)
