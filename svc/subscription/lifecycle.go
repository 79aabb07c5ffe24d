package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// EventType tags an inbound lifecycle command.
type EventType string

const (
	EventSubscriptionCreated   EventType = "subscription.created"
	EventSubscriptionRenewed   EventType = "subscription.renewed"
	EventSubscriptionCancelled EventType = "subscription.cancelled"
)

// Command carries the decoded fields of a lifecycle request. Which fields
// are required depends on the operation.
type Command struct {
	UserID         string
	SubscriptionID string
	ExpiresAt      time.Time
	Metadata       map[string]any
	Timestamp      time.Time
}

// Lifecycle is the subscription state machine. It is the sole writer of
// subscription records; every operation validates current stored state
// before mutating it and relies on the store's conditional writes as the
// only safety net against concurrent requests for the same identity.
type Lifecycle struct {
	store Store
	plans *Resolver
	query *QueryService
	now   func() time.Time
}

// LifecycleOption configures a Lifecycle.
type LifecycleOption func(*Lifecycle)

// WithClock replaces the time source, mainly for tests.
func WithClock(now func() time.Time) LifecycleOption {
	return func(l *Lifecycle) {
		if now != nil {
			l.now = now
		}
	}
}

// NewLifecycle returns a Lifecycle.
// Panics on nil dependencies to fail fast during wiring.
func NewLifecycle(store Store, plans *Resolver, query *QueryService, opts ...LifecycleOption) *Lifecycle {
	if store == nil {
		panic("subscription: store is required")
	}
	if plans == nil {
		panic("subscription: plan resolver is required")
	}
	if query == nil {
		panic("subscription: query service is required")
	}
	l := &Lifecycle{
		store: store,
		plans: plans,
		query: query,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Dispatch routes an event-tagged command to the matching operation.
func (l *Lifecycle) Dispatch(ctx context.Context, event EventType, cmd Command) (*Subscription, error) {
	switch event {
	case EventSubscriptionCreated:
		return l.Create(ctx, cmd)
	case EventSubscriptionRenewed:
		return l.Renew(ctx, cmd)
	case EventSubscriptionCancelled:
		return l.Cancel(ctx, cmd)
	default:
		return nil, ErrUnknownEventType
	}
}

// Create validates that the user has no ACTIVE subscription and that the
// requested plan is usable, then writes the new record conditionally. The
// active-subscription pre-check is read-then-write and therefore best-effort;
// the conditional put is the only true guard, and it guards identity only.
func (l *Lifecycle) Create(ctx context.Context, cmd Command) (*Subscription, error) {
	if cmd.UserID == "" || cmd.SubscriptionID == "" || cmd.ExpiresAt.IsZero() ||
		cmd.Metadata == nil || cmd.Timestamp.IsZero() {
		return nil, ErrMissingFields
	}
	planSKU, _ := cmd.Metadata["planSku"].(string)
	if planSKU == "" {
		return nil, ErrMissingPlanSKU
	}

	existing, err := l.query.GetUserSubscription(ctx, cmd.UserID, "", false)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrActiveSubscription
	}

	if _, err := l.plans.GetPlan(ctx, planSKU); err != nil {
		if errors.Is(err, ErrPlanNotAvailable) {
			// A missing or inactive plan on create is a client error, not a
			// lookup miss.
			return nil, fmt.Errorf("%w: requested plan does not exist or is inactive", ErrValidation)
		}
		return nil, err
	}

	sub := &Subscription{
		UserID:         cmd.UserID,
		SubscriptionID: cmd.SubscriptionID,
		PlanSKU:        planSKU,
		StartDate:      cmd.Timestamp,
		ExpiresAt:      cmd.ExpiresAt,
		CanceledAt:     nil,
		LastModifiedAt: l.now(),
		Status:         StatusActive,
		Attributes:     cmd.Metadata,
	}

	if err := l.store.PutSubscriptionIfAbsent(ctx, sub); err != nil {
		if errors.Is(err, ErrSubscriptionExists) {
			return nil, ErrDuplicateSubscription
		}
		return nil, internalErr(err)
	}
	return sub, nil
}

// Cancel transitions an ACTIVE subscription to PENDING when the request
// arrives before the paid-through date, CANCELED otherwise. A subscription
// that is already PENDING or CANCELED is not found among ACTIVE records and
// re-cancellation is therefore rejected as not-found.
func (l *Lifecycle) Cancel(ctx context.Context, cmd Command) (*Subscription, error) {
	if cmd.UserID == "" || cmd.SubscriptionID == "" {
		return nil, ErrMissingFields
	}

	view, err := l.query.GetUserSubscription(ctx, cmd.UserID, cmd.SubscriptionID, false)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, ErrSubscriptionNotFound
	}

	now := l.now()
	status := StatusCanceled
	if now.Before(cmd.ExpiresAt) {
		status = StatusPending
	}

	updated, err := l.store.UpdateSubscription(ctx, cmd.UserID, cmd.SubscriptionID, SubscriptionUpdate{
		Status:         status,
		CanceledAt:     &now,
		LastModifiedAt: now,
	})
	if err != nil {
		if errors.Is(err, ErrConditionFailed) {
			// The record vanished between read and write.
			return nil, ErrUpdateConflict
		}
		return nil, internalErr(err)
	}
	return updated, nil
}

// Renew resets a subscription to ACTIVE from any status, clears the
// cancellation mark, and moves the paid-through date to the supplied value.
// This is the one operation that can resurrect a lapsed subscription.
func (l *Lifecycle) Renew(ctx context.Context, cmd Command) (*Subscription, error) {
	if cmd.UserID == "" || cmd.SubscriptionID == "" {
		return nil, ErrMissingFields
	}

	view, err := l.query.GetUserSubscription(ctx, cmd.UserID, cmd.SubscriptionID, true)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, ErrSubscriptionNotFound
	}

	now := l.now()
	expiresAt := cmd.ExpiresAt
	updated, err := l.store.UpdateSubscription(ctx, cmd.UserID, cmd.SubscriptionID, SubscriptionUpdate{
		Status:          StatusActive,
		ExpiresAt:       &expiresAt,
		ClearCanceledAt: true,
		LastModifiedAt:  now,
	})
	if err != nil {
		if errors.Is(err, ErrConditionFailed) {
			return nil, ErrUpdateConflict
		}
		return nil, internalErr(err)
	}
	return updated, nil
}
