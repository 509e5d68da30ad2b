package http

import (
	"context"

	"baymap/internal/bay"
)

// Dependencies holds everything the HTTP handlers need.
type Dependencies struct {
	// Store is the decorated store: cache and events already applied.
	Store bay.Store
	// Checks are named readiness probes (database, nats, cache).
	Checks map[string]func(ctx context.Context) error
	// Version is reported by the health endpoint.
	Version string
}
