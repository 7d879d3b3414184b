package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shuffle/internal/services"
)

// Lookup maps a bare track identifier to a source identifier.
type Lookup interface {
	LookupSource(ctx context.Context, trackID string) (string, error)
}

// IndexClient queries the HTTP lookup service.
type IndexClient struct {
	baseURL    string
	lookupPath string
	userAgent  string
	httpClient *http.Client
}

var _ Lookup = (*IndexClient)(nil)

// Option configures an IndexClient.
type Option func(*IndexClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *IndexClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithUserAgent sets the User-Agent header sent with lookups.
func WithUserAgent(agent string) Option {
	return func(c *IndexClient) {
		c.userAgent = strings.TrimSpace(agent)
	}
}

// NewIndexClient creates a lookup client. lookupPath must contain {id}.
func NewIndexClient(baseURL, lookupPath string, opts ...Option) (*IndexClient, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("index base url required")
	}
	if !strings.Contains(lookupPath, "{id}") {
		return nil, fmt.Errorf("index lookup path %q must contain {id}", lookupPath)
	}
	client := &IndexClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		lookupPath: lookupPath,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type lookupResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Message string `json:"message"`
}

// LookupSource performs one lookup. Transport faults, 429 and 5xx responses
// are tagged services.ErrConnectivity; 404 and unsuccessful payloads are
// tagged services.ErrNotFound.
func (c *IndexClient) LookupSource(ctx context.Context, trackID string) (string, error) {
	endpoint := c.baseURL + strings.ReplaceAll(c.lookupPath, "{id}", url.PathEscape(trackID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "resolve", "build request", "", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return "", services.Wrap(services.ErrConnectivity, "resolve", "lookup", fmt.Sprintf("latency=%v", latency), err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", services.Wrap(services.ErrNotFound, "resolve", "lookup", fmt.Sprintf("no source for %s", trackID), nil)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return "", services.Wrap(services.ErrConnectivity, "resolve", "lookup", fmt.Sprintf("index returned %d (latency=%v)", resp.StatusCode, latency), nil)
	case resp.StatusCode != http.StatusOK:
		return "", services.Wrap(services.ErrTransient, "resolve", "lookup", fmt.Sprintf("index returned %d", resp.StatusCode), nil)
	}

	var payload lookupResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err != nil {
		return "", services.Wrap(services.ErrTransient, "resolve", "decode", "invalid index response", err)
	}
	id := strings.TrimSpace(payload.ID)
	if !payload.Success || id == "" {
		msg := strings.TrimSpace(payload.Message)
		if msg == "" {
			msg = fmt.Sprintf("no source for %s", trackID)
		}
		return "", services.Wrap(services.ErrNotFound, "resolve", "lookup", msg, nil)
	}
	return id, nil
}
