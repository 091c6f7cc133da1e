package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which event IDs a handler already processed.
// Redis backs it in production and an in-process map in tests.
type IdempotencyStore interface {
	// MarkProcessed reports false when eventID was already marked
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, eventID string) (bool, error)
	Close() error
}

// IdempotencyConfig controls duplicate suppression for event handlers
type IdempotencyConfig struct {
	Enabled bool
	// TTL bounds how long a processed ID is remembered
	TTL time.Duration
}

// DefaultIdempotencyConfig keeps IDs for a day
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{Enabled: true, TTL: 24 * time.Hour}
}
