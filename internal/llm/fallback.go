package llm

import (
	"context"

	"go.uber.org/zap"
)

// Fallback wraps two chat clients: a cheap primary model and a more reliable
// fallback. The primary is tried first; any failure triggers exactly one
// attempt against the fallback. This is the only retry path in causewayd.
type Fallback struct {
	primary  Chatter
	fallback Chatter
	logger   *zap.Logger
}

// NewFallback creates a fallback chatter pair.
func NewFallback(primary, fallback Chatter, logger *zap.Logger) *Fallback {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fallback{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Chat tries the primary client and falls back once on any error.
func (f *Fallback) Chat(ctx context.Context, req Request) (string, error) {
	content, err := f.primary.Chat(ctx, req)
	if err == nil {
		return content, nil
	}

	f.logger.Warn("primary model failed, retrying against fallback",
		zap.Error(err),
		zap.Bool("retryable", IsRetryable(err)),
	)

	return f.fallback.Chat(ctx, req)
}

var _ Chatter = (*Fallback)(nil)
