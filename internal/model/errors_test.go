package model

import (
	"errors"
	"fmt"
	"testing"
)

type kindedErr struct{ kind ErrorKind }

func (e *kindedErr) Error() string   { return string(e.kind) }
func (e *kindedErr) Kind() ErrorKind { return e.kind }

func TestKindOf(t *testing.T) {
	if got := KindOf(nil); got != "" {
		t.Errorf("KindOf(nil) = %q", got)
	}
	if got := KindOf(errors.New("plain")); got != KindUnknown {
		t.Errorf("plain error = %q", got)
	}
	wrapped := fmt.Errorf("submit: %w", &kindedErr{kind: KindAuth})
	if got := KindOf(wrapped); got != KindAuth {
		t.Errorf("wrapped = %q", got)
	}
}

func TestOrderResponse_IsLive(t *testing.T) {
	for status, want := range map[string]bool{
		"NEW":              true,
		"PARTIALLY_FILLED": true,
		"FILLED":           true,
		"EXPIRED":          false,
		"REJECTED":         false,
		"":                 false,
	} {
		r := &OrderResponse{Status: status}
		if got := r.IsLive(); got != want {
			t.Errorf("%q: IsLive = %v", status, got)
		}
	}
}
