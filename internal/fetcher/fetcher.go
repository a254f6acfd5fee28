// Package fetcher performs rate-limited JSON requests against the remote
// data providers on behalf of the provider clients.
package fetcher

import (
	"context"
	"net/url"
)

// Fetcher defines the interface for retrieving remote JSON documents.
type Fetcher interface {
	// GetJSON issues a GET for rawURL with the given query parameters and
	// decodes a 200 response body into out. Non-200 responses are returned
	// as *StatusError.
	GetJSON(ctx context.Context, rawURL string, query url.Values, out any) error
}
