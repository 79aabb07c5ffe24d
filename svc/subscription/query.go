package subscription

import (
	"context"
	"time"
)

// PlanView is the plan portion of a SubscriptionView.
type PlanView struct {
	SKU          string       `json:"sku"`
	Name         string       `json:"name"`
	Price        float64      `json:"price"`
	Currency     string       `json:"currency"`
	BillingCycle BillingCycle `json:"billingCycle"`
	Features     []string     `json:"features"`
}

// SubscriptionView is the flattened subscription+plan read model returned to
// clients.
type SubscriptionView struct {
	UserID         string         `json:"userId"`
	SubscriptionID string         `json:"subscriptionId"`
	Plan           PlanView       `json:"plan"`
	StartDate      time.Time      `json:"startDate"`
	ExpiresAt      time.Time      `json:"expiresAt"`
	CanceledAt     *time.Time     `json:"canceledAt"`
	Status         Status         `json:"status"`
	Attributes     map[string]any `json:"attributes"`
}

// QueryService finds a user's subscription and assembles the combined
// subscription+plan view. It is read-only.
type QueryService struct {
	store Store
	plans *Resolver
}

// NewQueryService returns a QueryService.
// Panics on nil dependencies to fail fast during wiring.
func NewQueryService(store Store, plans *Resolver) *QueryService {
	if store == nil {
		panic("subscription: store is required")
	}
	if plans == nil {
		panic("subscription: plan resolver is required")
	}
	return &QueryService{store: store, plans: plans}
}

// GetUserSubscription returns the user's subscription joined with its plan,
// or (nil, nil) when the user has none; absence is not an error here.
//
// Unless includeInactive is set, only ACTIVE records are considered (the
// filter is applied server-side by the store). Among multiple matches the
// first is taken; the ACTIVE-uniqueness invariant makes more than one match
// an anomaly rather than the expected case. A non-empty subscriptionID must
// match the found record's identity, otherwise ErrSubscriptionMismatch is
// returned. A missing or inactive plan propagates as ErrPlanNotAvailable
// rather than producing a partial view.
func (s *QueryService) GetUserSubscription(ctx context.Context, userID, subscriptionID string, includeInactive bool) (*SubscriptionView, error) {
	subs, err := s.store.QueryUserSubscriptions(ctx, userID, !includeInactive)
	if err != nil {
		return nil, internalErr(err)
	}
	if len(subs) == 0 {
		return nil, nil
	}

	sub := subs[0]
	if subscriptionID != "" && subscriptionID != sub.SubscriptionID {
		return nil, ErrSubscriptionMismatch
	}

	plan, err := s.plans.GetPlan(ctx, sub.PlanSKU)
	if err != nil {
		return nil, err
	}

	return &SubscriptionView{
		UserID:         sub.UserID,
		SubscriptionID: sub.SubscriptionID,
		Plan: PlanView{
			SKU:          plan.SKU,
			Name:         plan.Name,
			Price:        plan.Price,
			Currency:     plan.Currency,
			BillingCycle: plan.BillingCycle,
			Features:     plan.Features,
		},
		StartDate:      sub.StartDate,
		ExpiresAt:      sub.ExpiresAt,
		CanceledAt:     sub.CanceledAt,
		Status:         sub.Status,
		Attributes:     sub.Attributes,
	}, nil
}
