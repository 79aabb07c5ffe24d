package ratelimit

import (
	"context"
	"time"
)

// Store holds token bucket state per key.
type Store interface {
	// Take refills the bucket for key according to limit, then removes n
	// tokens. A negative remaining count means the request must be denied;
	// resetAt is when the next refill happens.
	Take(ctx context.Context, key string, n int, limit Limit) (remaining int, resetAt time.Time, err error)

	// Reset clears the bucket state for key.
	Reset(ctx context.Context, key string) error
}
