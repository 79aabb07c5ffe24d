package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Limit defines a token bucket: Capacity is the burst size, RefillRate
// tokens are added back every RefillInterval.
type Limit struct {
	Capacity       int           `env:"RATE_LIMIT_CAPACITY" envDefault:"30"`
	RefillRate     int           `env:"RATE_LIMIT_REFILL_RATE" envDefault:"30"`
	RefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL" envDefault:"1m"`
}

func (l Limit) validate() error {
	if l.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidLimit, l.Capacity)
	}
	if l.RefillRate <= 0 {
		return fmt.Errorf("%w: refill rate must be positive, got %d", ErrInvalidLimit, l.RefillRate)
	}
	if l.RefillInterval <= 0 {
		return fmt.Errorf("%w: refill interval must be positive, got %v", ErrInvalidLimit, l.RefillInterval)
	}
	return nil
}

// Result reports the outcome of a limiter check.
type Result struct {
	Limit     int       // bucket capacity
	Remaining int       // tokens left after the check, negative when denied
	ResetAt   time.Time // next refill time
}

// Allowed reports whether the request may proceed.
func (r *Result) Allowed() bool { return r.Remaining >= 0 }

// RetryAfter returns how long a denied caller should wait, 0 when allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return time.Until(r.ResetAt)
}

// Limiter is a token bucket rate limiter over a Store.
type Limiter struct {
	store Store
	limit Limit
}

// NewLimiter validates the limit and returns a Limiter.
func NewLimiter(store Store, limit Limit) (*Limiter, error) {
	if err := limit.validate(); err != nil {
		return nil, err
	}
	return &Limiter{store: store, limit: limit}, nil
}

// Allow consumes one token for key.
func (l *Limiter) Allow(ctx context.Context, key string) (*Result, error) {
	return l.AllowN(ctx, key, 1)
}

// AllowN consumes n tokens for key.
func (l *Limiter) AllowN(ctx context.Context, key string, n int) (*Result, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: must be positive, got %d", ErrInvalidTokenCount, n)
	}
	remaining, resetAt, err := l.store.Take(ctx, key, n, l.limit)
	if err != nil {
		return nil, err
	}
	return &Result{Limit: l.limit.Capacity, Remaining: remaining, ResetAt: resetAt}, nil
}

// Reset clears the bucket for key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.store.Reset(ctx, key)
}
