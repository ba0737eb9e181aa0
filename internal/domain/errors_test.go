package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"invalid url", fmt.Errorf("parse: %w", ErrInvalidURL), "oh no your link does not look correct"},
		{"not found", ErrItemNotFound, "could not find an item with that name"},
		{
			"ambiguous",
			&AmbiguousMatchError{Query: "rocket", Names: []string{"The Rocket Launcher", "Rocket Jumper"}},
			`more than one item matches "rocket", be more specific: The Rocket Launcher, Rocket Jumper`,
		},
		{"rate limited", &RateLimitedError{RetryAfter: 1500 * time.Millisecond}, "the pricing backend is busy, try again in 2 seconds"},
		{"server", &ServerError{Status: 502}, "the pricing backend is having trouble right now, try again later"},
		{"validation", NewValidationError("Item Already Exists"), "item already exists"},
		{"partial", &PartialFailureError{Requested: 3, Removed: 2, Failed: []string{"Crate"}}, "only 2 of 3 items were removed (failed: Crate)"},
		{"generic", errors.New("boom"), "something broke: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrappedErrorsKeepType(t *testing.T) {
	err := fmt.Errorf("remove listings: %w", &PartialFailureError{Requested: 2, Removed: 1})

	var partial *PartialFailureError
	if !errors.As(err, &partial) {
		t.Fatal("expected PartialFailureError through wrapping")
	}
	if !strings.Contains(err.Error(), "removed 1 of 2") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestSchemaItemDisplayName(t *testing.T) {
	proper := SchemaItem{Defindex: 18, Name: "Rocket Launcher", ProperName: true}
	if got := proper.DisplayName(); got != "The Rocket Launcher" {
		t.Errorf("got %q", got)
	}

	plain := SchemaItem{Defindex: 5021, Name: "Mann Co. Supply Crate Key"}
	if got := plain.DisplayName(); got != "Mann Co. Supply Crate Key" {
		t.Errorf("got %q", got)
	}
}
