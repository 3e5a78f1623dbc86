package localstore

import (
	"context"
	"errors"
	"testing"

	"befit/fitness-app/internal/apperrors"
	"befit/fitness-app/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRestSecondsDefaultAndPersist(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	got, err := s.RestSeconds(ctx)
	if err != nil || got != domain.DefaultRestSeconds {
		t.Fatalf("default rest = %d, %v", got, err)
	}
	if err := s.SetRestSeconds(ctx, 90); err != nil {
		t.Fatalf("set rest: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if got, _ := reopened.RestSeconds(ctx); got != 90 {
		t.Fatalf("rest after reopen = %d, want 90", got)
	}
}

func TestSetRestSecondsBounds(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, v := range []int{0, -5, 301} {
		if err := s.SetRestSeconds(ctx, v); !errors.Is(err, apperrors.ErrValidation) {
			t.Errorf("SetRestSeconds(%d) = %v, want validation error", v, err)
		}
	}
	for _, v := range []int{domain.MinRestSeconds, domain.MaxRestSeconds} {
		if err := s.SetRestSeconds(ctx, v); err != nil {
			t.Errorf("SetRestSeconds(%d) = %v", v, err)
		}
	}
	if got, _ := s.RestSeconds(ctx); got != domain.MaxRestSeconds {
		t.Fatalf("rest = %d, want %d", got, domain.MaxRestSeconds)
	}
}

func TestToken(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if tok, err := s.Token(ctx); err != nil || tok != "" {
		t.Fatalf("initial token = %q, %v", tok, err)
	}
	if err := s.SetToken(ctx, "abc"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	if tok, _ := s.Token(ctx); tok != "abc" {
		t.Fatalf("token = %q", tok)
	}
	if err := s.SetToken(ctx, ""); err != nil {
		t.Fatalf("clear token: %v", err)
	}
	if tok, _ := s.Token(ctx); tok != "" {
		t.Fatalf("token after logout = %q", tok)
	}
}
