// Package store persists cached HTTP responses between runs so repeated
// generator invocations do not re-fetch unchanged registry data.
package store

import (
	"context"
	"net/http"
	"time"
)

// CachedResponse is one stored HTTP response.
type CachedResponse struct {
	Key       string
	Method    string
	URL       string
	Status    int
	Header    http.Header
	Body      []byte
	FetchedAt time.Time
	ExpiresAt time.Time
}

// Store defines the persistence interface for the response cache.
type Store interface {
	// GetResponse returns the unexpired entry for key, or nil when there is
	// none.
	GetResponse(ctx context.Context, key string) (*CachedResponse, error)
	// PutResponse inserts or replaces the entry for resp.Key.
	PutResponse(ctx context.Context, resp *CachedResponse) error
	// DeleteExpired removes stale entries and returns how many were removed.
	DeleteExpired(ctx context.Context) (int, error)

	Migrate(ctx context.Context) error
	Close() error
}
