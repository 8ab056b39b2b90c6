package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Resolver issues GET requests against a provider base URL and deserializes
// the response. It is the single place providers touch the network: GetJSON
// for typed payloads, GetStream for raw bytes (images).
//
// A missing resource (HTTP 404) is reported by GetJSON as found=false rather
// than an error, so providers can treat absent quotes as a legitimate
// no-result.
type Resolver struct {
	name   string // provider name, used in error messages
	base   string // no trailing slash
	accept string
	client *http.Client
}

// NewResolver creates a resolver for the given provider name and base URL.
func NewResolver(name, baseURL string) *Resolver {
	return &Resolver{
		name:   name,
		base:   strings.TrimRight(baseURL, "/"),
		accept: "application/json",
		client: &http.Client{},
	}
}

// WithAccept overrides the Accept header sent with every request
// (e.g. "application/hal+json" for HAL APIs).
func (r *Resolver) WithAccept(accept string) *Resolver {
	r.accept = accept
	return r
}

// WithClient overrides the underlying HTTP client.
func (r *Resolver) WithClient(c *http.Client) *Resolver {
	r.client = c
	return r
}

// GetJSON issues a GET for path (which may include a query string) and
// decodes the JSON body into out. It returns found=false without touching
// out when the resource does not exist.
func (r *Resolver) GetJSON(ctx context.Context, path string, out any) (bool, error) {
	body, status, err := r.get(ctx, path)
	if err != nil {
		return false, err
	}
	if status == http.StatusNotFound {
		return false, nil
	}
	if status != http.StatusOK {
		return false, apiError(r.name, status, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return false, fmt.Errorf("%s: failed to unmarshal response: %w", r.name, err)
	}
	return true, nil
}

// GetStream issues a GET for path and returns the raw response bytes.
// Unlike GetJSON, a 404 is an error: stream lookups are direct fetches the
// caller expects to succeed.
func (r *Resolver) GetStream(ctx context.Context, path string) ([]byte, error) {
	body, status, err := r.get(ctx, path)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apiError(r.name, status, string(body))
	}
	return body, nil
}

func (r *Resolver) get(ctx context.Context, path string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.base+path, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: failed to create request: %w", r.name, err)
	}
	req.Header.Set("Accept", r.accept)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: request failed: %w", r.name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: failed to read response: %w", r.name, err)
	}
	return body, resp.StatusCode, nil
}
