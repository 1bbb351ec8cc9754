package chunker

import (
	"log/slog"
	"testing"
)

func TestTokenCounter_Empty(t *testing.T) {
	tc := NewTokenCounter(slog.Default())
	if n := tc.Count(""); n != 0 {
		t.Errorf("expected 0 tokens for empty string, got %d", n)
	}
}

func TestTokenCounter_NonEmpty(t *testing.T) {
	tc := NewTokenCounter(slog.Default())
	if n := tc.Count("hello world"); n < 1 {
		t.Errorf("expected at least 1 token, got %d", n)
	}
}

func TestTokenCounter_Deterministic(t *testing.T) {
	tc := NewTokenCounter(slog.Default())
	text := "The quick brown fox jumps over the lazy dog."
	n1 := tc.Count(text)
	n2 := tc.Count(text)
	if n1 != n2 {
		t.Errorf("expected identical counts, got %d and %d", n1, n2)
	}
}

func TestTokenCounter_Monotonic(t *testing.T) {
	// More words never count fewer tokens.
	tc := NewTokenCounter(slog.Default())
	short := "alpha beta gamma"
	long := short + " delta epsilon zeta eta theta"
	if tc.Count(long) <= tc.Count(short) {
		t.Errorf("expected longer text to have more tokens: short=%d long=%d",
			tc.Count(short), tc.Count(long))
	}
}
