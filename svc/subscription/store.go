package subscription

import (
	"context"
	"time"
)

// Store defines key/value access to subscription and plan records.
//
// All operations are point or prefix-range accesses against a single logical
// keyspace partitioned by the owning entity (user or plan SKU) and sub-keyed
// by entity type. The conditional put and update are atomic and are the only
// concurrency-safety primitives the rest of the package relies on.
type Store interface {
	// QueryUserSubscriptions returns all subscription records under the
	// user's partition. With activeOnly the status filter is applied
	// server-side, before records reach the caller.
	QueryUserSubscriptions(ctx context.Context, userID string, activeOnly bool) ([]Subscription, error)

	// GetPlan returns the plan record for the SKU regardless of its status.
	// Returns ErrPlanNotFound when absent.
	GetPlan(ctx context.Context, sku string) (*Plan, error)

	// PutSubscriptionIfAbsent writes a new subscription record only if no
	// record with the same identity exists. Returns ErrSubscriptionExists
	// on a key collision. This is the sole atomicity guard against
	// concurrent creation of the same identity.
	PutSubscriptionIfAbsent(ctx context.Context, sub *Subscription) error

	// UpdateSubscription atomically applies the mutations to an existing
	// record, under the precondition that the record identified by the full
	// key exists. Returns ErrConditionFailed without side effects when it
	// does not, and the post-update record otherwise.
	UpdateSubscription(ctx context.Context, userID, subscriptionID string, upd SubscriptionUpdate) (*Subscription, error)
}

// SubscriptionUpdate describes the mutations applied by a conditional update.
// Identity and PlanSKU are immutable and deliberately not representable here.
type SubscriptionUpdate struct {
	Status          Status
	ExpiresAt       *time.Time // non-nil replaces the stored value
	CanceledAt      *time.Time // non-nil replaces the stored value
	ClearCanceledAt bool       // removes the stored value
	LastModifiedAt  time.Time
}
