package domain

import (
	"errors"
	"fmt"
)

var ErrUnknownProvider = errors.New("unknown provider")

// AuthError reports a failed credential exchange.
type AuthError struct {
	Provider ProviderID
	Err      error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: failed to acquire token: %v", e.Provider, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// UpstreamError reports a provider API call that returned a non-2xx status
// or a payload without the expected resource.
type UpstreamError struct {
	Provider   ProviderID
	Operation  string
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d: %s", e.Provider, e.Operation, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s %s: %s", e.Provider, e.Operation, msg)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// AggregationError means the fan-out itself failed rather than a provider.
type AggregationError struct {
	Operation string
	Err       error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("aggregation %s failed: %v", e.Operation, e.Err)
}

func (e *AggregationError) Unwrap() error { return e.Err }

// ErrorMessage extracts the most user-facing message from err.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var upstream *UpstreamError
	if errors.As(err, &upstream) && upstream.Message != "" {
		return upstream.Message
	}
	return err.Error()
}
