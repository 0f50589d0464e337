package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// maxJWKSBodySize caps how much of a JWKS response is read
const maxJWKSBodySize = 1 << 20

// Fetcher retrieves the raw JWKS document. Tests and alternative transports
// can replace the default HTTP implementation.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher fetches JWKS documents with a plain HTTP GET
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher creates a fetcher using the given client, or http.DefaultClient
func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{Client: client}
}

// Fetch performs the GET and returns the body of a 200 response
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("JWKS request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("JWKS fetch failed with status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxJWKSBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read JWKS response: %w", err)
	}
	if len(body) > maxJWKSBodySize {
		return nil, fmt.Errorf("JWKS response exceeds %d bytes", maxJWKSBodySize)
	}

	return body, nil
}
