// Package blocklist keeps identifiers of revoked tokens (jti claims) until
// the tokens would have expired on their own. A missing entry means the token
// is not revoked.
package blocklist

import (
	"context"
	"time"
)

type Blocklist interface {
	// Add records jti as revoked for ttl
	// Last writer wins: re-adding the same jti only extends the entry
	Add(ctx context.Context, jti string, ttl time.Duration) error

	// Contains reports whether jti is currently revoked
	Contains(ctx context.Context, jti string) (bool, error)
}
