package subscription

import (
	"context"
	"errors"
)

// Resolver looks up an active plan by SKU, optionally through a cache.
//
// Plans are read-only from this system's perspective. An INACTIVE plan is
// deliberately indistinguishable from a missing one: both yield
// ErrPlanNotAvailable, so callers must treat both as "not usable".
type Resolver struct {
	store Store
	cache PlanCache
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithPlanCache sets the plan cache. Nil caches are ignored.
func WithPlanCache(cache PlanCache) ResolverOption {
	return func(r *Resolver) {
		if cache != nil {
			r.cache = cache
		}
	}
}

// NewResolver returns a Resolver reading from the given store.
// Panics on nil store to fail fast during wiring.
func NewResolver(store Store, opts ...ResolverOption) *Resolver {
	if store == nil {
		panic("subscription: store is required")
	}
	r := &Resolver{store: store, cache: NoopPlanCache{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetPlan returns the ACTIVE plan for the SKU, or ErrPlanNotAvailable when
// the plan is missing or inactive. Only ACTIVE plans ever enter the cache.
func (r *Resolver) GetPlan(ctx context.Context, sku string) (*Plan, error) {
	if plan, ok := r.cache.Get(ctx, sku); ok {
		return plan, nil
	}

	plan, err := r.store.GetPlan(ctx, sku)
	if err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			return nil, ErrPlanNotAvailable
		}
		return nil, internalErr(err)
	}
	if !plan.IsActive() {
		return nil, ErrPlanNotAvailable
	}

	// Cache population is best-effort; a failed write only costs a store
	// round-trip on the next lookup.
	_ = r.cache.Set(ctx, sku, plan)

	return plan, nil
}
