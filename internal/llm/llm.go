// Package llm provides chat-completion clients for the hosted model
// providers causewayd depends on. The primary dispatch path talks to an
// OpenAI-compatible API (DeepSeek in production); the confession path runs
// against a cheap primary model with a single fallback retry.
package llm

import (
	"context"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultMaxTokens = 1000
	DefaultTimeout   = 60 * time.Second
)

// Message is a single chat turn sent to the provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request describes one chat-completion call.
type Request struct {
	Model       string // empty means the client's configured model
	Messages    []Message
	Temperature float64
	MaxTokens   int
	JSONMode    bool // request structured output via response_format
}

// Chatter issues a single chat completion. Implementations must be safe for
// concurrent use; every inbound HTTP request may hold one or two calls in
// flight.
type Chatter interface {
	Chat(ctx context.Context, req Request) (string, error)
}

// StripFences removes markdown code fences the model sometimes wraps around
// JSON output despite JSON mode being requested.
func StripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
