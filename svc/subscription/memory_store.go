package subscription

import (
	"context"
	"maps"
	"slices"
	"sync"
)

type recordKey struct {
	userID         string
	subscriptionID string
}

// MemoryStore is an in-memory Store with the same conditional-write
// semantics as the DynamoDB implementation. It backs tests and local
// development; all reads and writes deep-copy records so callers cannot
// mutate stored state.
type MemoryStore struct {
	mu    sync.Mutex
	subs  map[recordKey]Subscription
	plans map[string]Plan
}

// NewMemoryStore returns an empty in-memory Store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		subs:  make(map[recordKey]Subscription),
		plans: make(map[string]Plan),
	}
}

// SeedPlan inserts or replaces a plan record.
func (s *MemoryStore) SeedPlan(plan Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[plan.SKU] = *copyPlan(&plan)
}

func (s *MemoryStore) QueryUserSubscriptions(ctx context.Context, userID string, activeOnly bool) ([]Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var subs []Subscription
	for key, sub := range s.subs {
		if key.userID != userID {
			continue
		}
		if activeOnly && sub.Status != StatusActive {
			continue
		}
		subs = append(subs, *copySubscription(&sub))
	}
	return subs, nil
}

func (s *MemoryStore) GetPlan(ctx context.Context, sku string) (*Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, ok := s.plans[sku]
	if !ok {
		return nil, ErrPlanNotFound
	}
	return copyPlan(&plan), nil
}

func (s *MemoryStore) PutSubscriptionIfAbsent(ctx context.Context, sub *Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := recordKey{userID: sub.UserID, subscriptionID: sub.SubscriptionID}
	if _, exists := s.subs[key]; exists {
		return ErrSubscriptionExists
	}
	s.subs[key] = *copySubscription(sub)
	return nil
}

func (s *MemoryStore) UpdateSubscription(ctx context.Context, userID, subscriptionID string, upd SubscriptionUpdate) (*Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := recordKey{userID: userID, subscriptionID: subscriptionID}
	sub, exists := s.subs[key]
	if !exists {
		return nil, ErrConditionFailed
	}

	sub.Status = upd.Status
	sub.LastModifiedAt = upd.LastModifiedAt
	if upd.ExpiresAt != nil {
		sub.ExpiresAt = *upd.ExpiresAt
	}
	switch {
	case upd.ClearCanceledAt:
		sub.CanceledAt = nil
	case upd.CanceledAt != nil:
		canceledAt := *upd.CanceledAt
		sub.CanceledAt = &canceledAt
	}

	s.subs[key] = sub
	return copySubscription(&sub), nil
}

func copySubscription(sub *Subscription) *Subscription {
	out := *sub
	out.Attributes = maps.Clone(sub.Attributes)
	if sub.CanceledAt != nil {
		canceledAt := *sub.CanceledAt
		out.CanceledAt = &canceledAt
	}
	return &out
}

func copyPlan(plan *Plan) *Plan {
	out := *plan
	out.Features = slices.Clone(plan.Features)
	return &out
}
