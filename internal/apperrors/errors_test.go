package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMatchesSentinelOfItsKind(t *testing.T) {
	cases := []struct {
		err      error
		sentinel error
	}{
		{Validation("session.start", "rest seconds out of range"), ErrValidation},
		{NotFound("routine.progress", "no active routine"), ErrNotFound},
		{Transient("session.complete", errors.New("connection reset")), ErrTransientIO},
		{Notification(errors.New("no audio device")), ErrNotification},
	}
	for _, tc := range cases {
		if !errors.Is(tc.err, tc.sentinel) {
			t.Errorf("errors.Is(%v, %v) = false, want true", tc.err, tc.sentinel)
		}
		wrapped := fmt.Errorf("outer: %w", tc.err)
		if !errors.Is(wrapped, tc.sentinel) {
			t.Errorf("wrapped error lost its kind: %v", wrapped)
		}
	}
	if errors.Is(Validation("op", "x"), ErrNotFound) {
		t.Fatalf("validation error must not match ErrNotFound")
	}
}

func TestTransientUnwrapsCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Transient("session.start", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("transient error should unwrap to its cause")
	}
	if KindOf(err) != KindTransientIO {
		t.Fatalf("KindOf = %q, want %q", KindOf(err), KindTransientIO)
	}
}

func TestMessage(t *testing.T) {
	if got := Message(NotFound("op", "session not found")); got != "session not found" {
		t.Errorf("Message = %q", got)
	}
	if got := Message(errors.New("plain")); got != "plain" {
		t.Errorf("Message = %q", got)
	}
	if got := Message(nil); got != "" {
		t.Errorf("Message(nil) = %q", got)
	}
}
