// Package ratelimit provides a token bucket rate limiter with pluggable
// storage and an HTTP middleware.
//
// The limiter itself is backend-agnostic: MemoryStore keeps buckets in
// process memory for single-instance deployments, RedisStore shares them
// across instances via an atomic Lua script.
//
// Usage:
//
//	limiter, err := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), ratelimit.Limit{
//		Capacity:       30,
//		RefillRate:     30,
//		RefillInterval: time.Minute,
//	})
//	r.Use(ratelimit.Middleware(limiter, clientip.FromRequest))
package ratelimit
