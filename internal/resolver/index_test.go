package resolver_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"shuffle/internal/resolver"
	"shuffle/internal/services"
)

func TestNewIndexClientRequiresPlaceholder(t *testing.T) {
	if _, err := resolver.NewIndexClient("https://example.com", "/lookup"); err == nil {
		t.Fatal("expected error when lookup path lacks {id}")
	}
	if _, err := resolver.NewIndexClient(" ", "/getId/{id}"); err == nil {
		t.Fatal("expected error when base url missing")
	}
}

func TestLookupSourceSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/getId/track123" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("User-Agent"); got != "Shuffle/test" {
			t.Errorf("unexpected user agent %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"id":"dQw4w9WgXcQ"}`))
	}))
	t.Cleanup(server.Close)

	client, err := resolver.NewIndexClient(server.URL, "/getId/{id}", resolver.WithUserAgent("Shuffle/test"))
	if err != nil {
		t.Fatalf("NewIndexClient: %v", err)
	}
	id, err := client.LookupSource(context.Background(), "track123")
	if err != nil {
		t.Fatalf("LookupSource: %v", err)
	}
	if id != "dQw4w9WgXcQ" {
		t.Fatalf("unexpected id %q", id)
	}
}

func TestLookupSourceClassifiesFailures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		marker error
	}{
		{"not found", http.StatusNotFound, `{}`, services.ErrNotFound},
		{"unsuccessful", http.StatusOK, `{"success":false,"message":"Track not found"}`, services.ErrNotFound},
		{"empty id", http.StatusOK, `{"success":true,"id":""}`, services.ErrNotFound},
		{"server error", http.StatusBadGateway, ``, services.ErrConnectivity},
		{"rate limited", http.StatusTooManyRequests, ``, services.ErrConnectivity},
		{"bad json", http.StatusOK, `not json`, services.ErrTransient},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			t.Cleanup(server.Close)

			client, err := resolver.NewIndexClient(server.URL, "/getId/{id}")
			if err != nil {
				t.Fatalf("NewIndexClient: %v", err)
			}
			_, err = client.LookupSource(context.Background(), "x")
			if !errors.Is(err, tc.marker) {
				t.Fatalf("expected %v, got %v", tc.marker, err)
			}
		})
	}
}

func TestLookupSourceUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := resolver.NewIndexClient(url, "/getId/{id}")
	if err != nil {
		t.Fatalf("NewIndexClient: %v", err)
	}
	_, err = client.LookupSource(context.Background(), "x")
	if !errors.Is(err, services.ErrConnectivity) || !services.IsSystemic(err) {
		t.Fatalf("expected systemic connectivity error, got %v", err)
	}
}
