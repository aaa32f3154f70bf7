package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind classifies a provider failure.
type Kind uint8

const (
	// KindUnavailable is a network failure or a 5xx from the vendor.
	KindUnavailable Kind = iota + 1
	// KindRateLimited is a 429 from the vendor or a local limiter refusal.
	KindRateLimited
	// KindInvalidResponse is content that is not JSON or fails its schema.
	KindInvalidResponse
	// KindTruncated is structured output cut off at MaxTokens.
	KindTruncated
)

func (k Kind) String() string {
	switch k {
	case KindUnavailable:
		return "provider unavailable"
	case KindRateLimited:
		return "rate limited"
	case KindInvalidResponse:
		return "invalid response"
	case KindTruncated:
		return "response truncated"
	}
	return "unknown error"
}

// Error is a classified provider failure. Match kinds with errors.Is against
// the Err* sentinels or read them with KindOf.
type Error struct {
	Kind Kind
	// RetryAfter is the vendor's requested wait for KindRateLimited.
	RetryAfter time.Duration
	// Content is the offending reply for KindInvalidResponse and KindTruncated.
	Content json.RawMessage
	Err     error
}

// Sentinels for errors.Is.
var (
	ErrUnavailable     = &Error{Kind: KindUnavailable}
	ErrRateLimited     = &Error{Kind: KindRateLimited}
	ErrInvalidResponse = &Error{Kind: KindInvalidResponse}
	ErrTruncated       = &Error{Kind: KindTruncated}
)

func (e *Error) Error() string {
	msg := "llm: " + e.Kind.String()
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(" (retry after %s)", e.RetryAfter)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches a bare sentinel of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Err == nil && t.Content == nil && t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or zero.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Unavailable wraps err as a KindUnavailable failure.
func Unavailable(err error) error {
	return &Error{Kind: KindUnavailable, Err: err}
}

func invalid(content json.RawMessage, format string, args ...any) error {
	return &Error{Kind: KindInvalidResponse, Content: content, Err: fmt.Errorf(format, args...)}
}

// fromStatus classifies a vendor API error by its HTTP status. Statuses
// below 500 other than 429 are returned unwrapped so they are not retried.
func fromStatus(status int, err error) error {
	switch {
	case status == http.StatusTooManyRequests:
		return &Error{Kind: KindRateLimited, Err: err}
	case status >= 500, status == 0:
		return Unavailable(err)
	}
	return err
}
