package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"shuffle/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrConnectivity, "resolve", "lookup", "index unreachable", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrConnectivity) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"resolve", "lookup", "index unreachable"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestIsSystemic(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"connectivity", services.Wrap(services.ErrConnectivity, "fetch", "manifest", "", nil), true},
		{"deadline", fmt.Errorf("lookup: %w", context.DeadlineExceeded), true},
		{"not found", services.Wrap(services.ErrNotFound, "resolve", "lookup", "", nil), false},
		{"cancelled", context.Canceled, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.IsSystemic(tc.err); got != tc.want {
				t.Fatalf("IsSystemic(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestReason(t *testing.T) {
	cases := map[string]error{
		"":             nil,
		"cancelled":    context.Canceled,
		"not_found":    services.Wrap(services.ErrNotFound, "", "", "", nil),
		"validation":   services.Wrap(services.ErrValidation, "", "", "", nil),
		"unplayable":   services.Wrap(services.ErrUnplayable, "", "", "", nil),
		"connectivity": services.Wrap(services.ErrConnectivity, "", "", "", nil),
		"transient":    errors.New("other"),
	}
	for want, err := range cases {
		if got := services.Reason(err); got != want {
			t.Fatalf("Reason(%v) = %q, want %q", err, got, want)
		}
	}
}
