package geo

import (
	"context"
	"testing"
)

func TestParseAddress(t *testing.T) {
	a := ParseAddress(" 1600 Amphitheatre Pkwy , Mountain View, CA ")
	want := Address{Street: "1600 Amphitheatre Pkwy", City: "Mountain View", State: "CA"}
	if a != want {
		t.Fatalf("expected %+v, got %+v", want, a)
	}
	if a.String() != "1600 Amphitheatre Pkwy, Mountain View, CA" {
		t.Fatalf("unexpected string %q", a.String())
	}
}

func TestGoogleResolverNeedsKey(t *testing.T) {
	if _, err := NewGoogleResolver(""); err == nil {
		t.Fatalf("expected an error without api key")
	}
}

func TestResolveHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (GoogleResolver{}).Resolve(ctx, Address{City: "Paris"}); err == nil {
		t.Fatalf("expected cancelled context error")
	}
}
