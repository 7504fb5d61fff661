package llm

import "errors"

// retryableError marks provider failures that a fallback model is worth
// trying: transport errors, rate limits, and server-side 5xx responses.
type retryableError struct {
	err error
}

func (r *retryableError) Error() string {
	return r.err.Error()
}

func (r *retryableError) Unwrap() error {
	return r.err
}

// IsRetryable reports whether the error came from a transient provider
// failure rather than a malformed request.
func IsRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}
