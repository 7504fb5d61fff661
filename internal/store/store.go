// Package store is the client for the managed row store backing the
// consumer apps: confession verdict caching, chat persistence, and the
// counter RPCs that must stay atomic on the server side.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a row or cached value does not exist.
var ErrNotFound = errors.New("store: not found")

// Session is one chat session row.
type Session struct {
	ID      string `json:"id"`
	UserID  string `json:"user_id,omitempty"`
	Persona string `json:"persona"`
	Locale  string `json:"locale,omitempty"`
}

// MessageRow is one persisted chat message.
type MessageRow struct {
	SessionID string `json:"session_id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	RiskScore *int   `json:"risk_score,omitempty"`
}

// Store is the row-store surface causewayd needs. Counters go through
// server-side RPCs; clients never read-modify-write them.
type Store interface {
	// ConfessionAnalysis returns the cached verdict for a confession,
	// or ErrNotFound when none has been written yet.
	ConfessionAnalysis(ctx context.Context, confessionID string) (string, error)
	SaveConfessionAnalysis(ctx context.Context, confessionID, analysis string, toxicScore int) error

	InsertSession(ctx context.Context, s Session) error
	InsertMessage(ctx context.Context, m MessageRow) error

	IncrementLike(ctx context.Context, confessionID string) error
	DecrementLike(ctx context.Context, confessionID string) error
	DeductCredit(ctx context.Context, userID string) error

	// Enabled reports whether a real backend is configured.
	Enabled() bool
}

// NoOp is the disabled store. Reads miss, writes succeed silently.
// Used when no backend URL is configured so callers never nil-check.
type NoOp struct{}

func (NoOp) ConfessionAnalysis(ctx context.Context, confessionID string) (string, error) {
	return "", ErrNotFound
}

func (NoOp) SaveConfessionAnalysis(ctx context.Context, confessionID, analysis string, toxicScore int) error {
	return nil
}

func (NoOp) InsertSession(ctx context.Context, s Session) error   { return nil }
func (NoOp) InsertMessage(ctx context.Context, m MessageRow) error { return nil }

func (NoOp) IncrementLike(ctx context.Context, confessionID string) error { return nil }
func (NoOp) DecrementLike(ctx context.Context, confessionID string) error { return nil }
func (NoOp) DeductCredit(ctx context.Context, userID string) error        { return nil }

func (NoOp) Enabled() bool { return false }

var _ Store = NoOp{}
