package subscription

import "time"

// Status represents the lifecycle state of a subscription.
type Status string

const (
	// StatusActive is a live subscription.
	StatusActive Status = "ACTIVE"
	// StatusPending is a subscription with cancellation requested before the
	// paid-through date; it stays usable until ExpiresAt.
	StatusPending Status = "PENDING"
	// StatusCanceled is a subscription canceled at or after its paid-through date.
	StatusCanceled Status = "CANCELED"
)

// PlanStatus represents plan availability.
type PlanStatus string

const (
	PlanStatusActive   PlanStatus = "ACTIVE"
	PlanStatusInactive PlanStatus = "INACTIVE"
)

// BillingCycle represents the billing frequency of a plan.
type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "MONTHLY"
	BillingCycleYearly  BillingCycle = "YEARLY"
)

// Subscription is a user's subscription record. Identity (UserID,
// SubscriptionID) and PlanSKU are immutable after creation; records are
// mutated in place and never deleted.
type Subscription struct {
	UserID         string         `json:"userId"`
	SubscriptionID string         `json:"subscriptionId"`
	PlanSKU        string         `json:"planSku"`
	StartDate      time.Time      `json:"startDate"`
	ExpiresAt      time.Time      `json:"expiresAt"`
	CanceledAt     *time.Time     `json:"canceledAt"` // nil means not canceled
	LastModifiedAt time.Time      `json:"lastModifiedAt"`
	Status         Status         `json:"status"`
	Attributes     map[string]any `json:"attributes"` // free-form metadata supplied at creation
}

func (s *Subscription) IsActive() bool   { return s.Status == StatusActive }
func (s *Subscription) IsPending() bool  { return s.Status == StatusPending }
func (s *Subscription) IsCanceled() bool { return s.Status == StatusCanceled }

// Plan is a read-only billing plan record. Only ACTIVE plans may be attached
// to a new or renewed subscription.
type Plan struct {
	SKU          string       `json:"sku"`
	Name         string       `json:"name"`
	Price        float64      `json:"price"`
	Currency     string       `json:"currency"`
	BillingCycle BillingCycle `json:"billingCycle"`
	Features     []string     `json:"features"`
	Status       PlanStatus   `json:"status"`
}

func (p *Plan) IsActive() bool { return p.Status == PlanStatusActive }
