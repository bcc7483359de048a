package sitebot

import "context"

// Fetcher retrieves HTML from URLs.
type Fetcher interface {
	// Fetch issues one request for the URL and returns the response body.
	// Non-2xx responses are returned as EUPSTREAM errors, transport
	// failures as EUNAVAILABLE.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources held by the fetcher.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}
