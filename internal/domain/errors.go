package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	// ErrItemNotFound is returned when no schema item matches a query
	ErrItemNotFound = errors.New("no item matches")

	// ErrInvalidURL is returned for malformed or foreign marketplace links
	ErrInvalidURL = errors.New("invalid marketplace link")
)

// AmbiguousMatchError lists every schema item that contains the query
type AmbiguousMatchError struct {
	Query string
	Names []string
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("%d items match %q: %s", len(e.Names), e.Query, strings.Join(e.Names, ", "))
}

// RateLimitedError means the backend asked us to wait before retrying
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("backend rate limited, retry after %s", e.RetryAfter)
}

// ServerError is a 5xx-class backend failure
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("backend server error: status=%d, message=%s", e.Status, e.Message)
}

// ValidationError is a rejected add/remove payload
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, ", ")
}

// NewValidationError builds a ValidationError from messages
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

// PartialFailureError means a batch removal removed fewer listings than requested
type PartialFailureError struct {
	Requested int
	Removed   int
	Failed    []string
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("removed %d of %d listings", e.Removed, e.Requested)
}

// BackendError is any other non-success backend response
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend error: status=%d, message=%s", e.Status, e.Message)
}

// UserMessage renders an error as text for the operator
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var (
		ambiguous  *AmbiguousMatchError
		rateLimit  *RateLimitedError
		server     *ServerError
		validation *ValidationError
		partial    *PartialFailureError
	)

	switch {
	case errors.Is(err, ErrInvalidURL):
		return "oh no your link does not look correct"
	case errors.Is(err, ErrItemNotFound):
		return "could not find an item with that name"
	case errors.As(err, &ambiguous):
		return fmt.Sprintf("more than one item matches %q, be more specific: %s",
			ambiguous.Query, strings.Join(ambiguous.Names, ", "))
	case errors.As(err, &rateLimit):
		seconds := int(math.Ceil(rateLimit.RetryAfter.Seconds()))
		return fmt.Sprintf("the pricing backend is busy, try again in %d seconds", seconds)
	case errors.As(err, &server):
		return "the pricing backend is having trouble right now, try again later"
	case errors.As(err, &validation):
		return strings.ToLower(strings.Join(validation.Messages, ", "))
	case errors.As(err, &partial):
		msg := fmt.Sprintf("only %d of %d items were removed", partial.Removed, partial.Requested)
		if len(partial.Failed) > 0 {
			msg += " (failed: " + strings.Join(partial.Failed, ", ") + ")"
		}
		return msg
	default:
		return "something broke: " + err.Error()
	}
}
