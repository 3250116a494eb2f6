package risk

import (
	"errors"
	"testing"
)

func TestAllow(t *testing.T) {
	limits := Limits{MaxNotionalPerTrade: 50}
	if !limits.Allow(49.9) {
		t.Fatalf("expected notional under limit to pass")
	}
	if limits.Allow(50.1) {
		t.Fatalf("expected notional above limit to fail")
	}
	if !(Limits{}).Allow(1e12) {
		t.Fatalf("zero limit must disable the guard")
	}
}

func TestCheck(t *testing.T) {
	limits := Limits{MaxNotionalPerTrade: 100}
	if err := limits.Check(0.001, 50000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := limits.Check(0.01, 50000); !errors.Is(err, ErrNotionalLimit) {
		t.Fatalf("expected ErrNotionalLimit, got %v", err)
	}
}
