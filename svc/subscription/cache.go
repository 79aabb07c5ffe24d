package subscription

import "context"

// PlanCache is the interface for plan caching implementations. Plans are
// read-only inputs to this system, so caching them is safe; a short TTL
// bounds staleness after out-of-band catalog changes.
type PlanCache interface {
	// Get retrieves a cached plan by SKU.
	Get(ctx context.Context, sku string) (*Plan, bool)

	// Set stores a plan in cache.
	Set(ctx context.Context, sku string, plan *Plan) error

	// Delete removes a plan from cache.
	Delete(ctx context.Context, sku string) error
}

// NoopPlanCache disables caching, useful for tests or when caching is unwanted.
type NoopPlanCache struct{}

func (NoopPlanCache) Get(ctx context.Context, sku string) (*Plan, bool)  { return nil, false }
func (NoopPlanCache) Set(ctx context.Context, sku string, p *Plan) error { return nil }
func (NoopPlanCache) Delete(ctx context.Context, sku string) error       { return nil }
