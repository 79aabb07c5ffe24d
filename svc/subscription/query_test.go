package subscription_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/subtrack/svc/subscription"
)

func newTestQuery(t *testing.T) (*subscription.QueryService, *subscription.MemoryStore) {
	t.Helper()

	store := subscription.NewMemoryStore()
	store.SeedPlan(proPlan)
	store.SeedPlan(retiredPlan)
	return subscription.NewQueryService(store, subscription.NewResolver(store)), store
}

func seedSubscription(t *testing.T, store *subscription.MemoryStore, sub subscription.Subscription) {
	t.Helper()
	require.NoError(t, store.PutSubscriptionIfAbsent(t.Context(), &sub))
}

func activeSubscription(userID, subscriptionID, planSKU string) subscription.Subscription {
	return subscription.Subscription{
		UserID:         userID,
		SubscriptionID: subscriptionID,
		PlanSKU:        planSKU,
		StartDate:      testNow().Add(-24 * time.Hour),
		ExpiresAt:      testNow().AddDate(0, 1, 0),
		LastModifiedAt: testNow(),
		Status:         subscription.StatusActive,
		Attributes:     map[string]any{"planSku": planSKU},
	}
}

func TestQueryService_GetUserSubscription(t *testing.T) {
	t.Parallel()

	t.Run("absent result for user with no subscription", func(t *testing.T) {
		t.Parallel()
		query, _ := newTestQuery(t)

		view, err := query.GetUserSubscription(t.Context(), "nobody", "", false)
		require.NoError(t, err)
		assert.Nil(t, view)
	})

	t.Run("returns flattened view joined with plan", func(t *testing.T) {
		t.Parallel()
		query, store := newTestQuery(t)
		sub := activeSubscription("u1", "s1", proPlan.SKU)
		seedSubscription(t, store, sub)

		view, err := query.GetUserSubscription(t.Context(), "u1", "", false)
		require.NoError(t, err)
		require.NotNil(t, view)

		assert.Equal(t, "u1", view.UserID)
		assert.Equal(t, "s1", view.SubscriptionID)
		assert.Equal(t, proPlan.SKU, view.Plan.SKU)
		assert.Equal(t, proPlan.Name, view.Plan.Name)
		assert.Equal(t, proPlan.Price, view.Plan.Price)
		assert.Equal(t, proPlan.Currency, view.Plan.Currency)
		assert.Equal(t, proPlan.BillingCycle, view.Plan.BillingCycle)
		assert.Equal(t, proPlan.Features, view.Plan.Features)
		assert.Equal(t, sub.StartDate, view.StartDate)
		assert.Equal(t, sub.ExpiresAt, view.ExpiresAt)
		assert.Nil(t, view.CanceledAt)
		assert.Equal(t, subscription.StatusActive, view.Status)
		assert.Equal(t, sub.Attributes, view.Attributes)
	})

	t.Run("active-only lookup skips pending and canceled records", func(t *testing.T) {
		t.Parallel()
		query, store := newTestQuery(t)
		sub := activeSubscription("u1", "s1", proPlan.SKU)
		canceledAt := testNow()
		sub.Status = subscription.StatusPending
		sub.CanceledAt = &canceledAt
		seedSubscription(t, store, sub)

		view, err := query.GetUserSubscription(t.Context(), "u1", "", false)
		require.NoError(t, err)
		assert.Nil(t, view)

		view, err = query.GetUserSubscription(t.Context(), "u1", "", true)
		require.NoError(t, err)
		require.NotNil(t, view)
		assert.Equal(t, subscription.StatusPending, view.Status)
		require.NotNil(t, view.CanceledAt)
		assert.Equal(t, canceledAt, *view.CanceledAt)
	})

	t.Run("mismatched subscription id fails validation", func(t *testing.T) {
		t.Parallel()
		query, store := newTestQuery(t)
		seedSubscription(t, store, activeSubscription("u1", "s1", proPlan.SKU))

		_, err := query.GetUserSubscription(t.Context(), "u1", "other", false)
		assert.ErrorIs(t, err, subscription.ErrSubscriptionMismatch)
		assert.ErrorIs(t, err, subscription.ErrValidation)
	})

	t.Run("matching subscription id succeeds", func(t *testing.T) {
		t.Parallel()
		query, store := newTestQuery(t)
		seedSubscription(t, store, activeSubscription("u1", "s1", proPlan.SKU))

		view, err := query.GetUserSubscription(t.Context(), "u1", "s1", false)
		require.NoError(t, err)
		assert.NotNil(t, view)
	})

	t.Run("missing plan propagates instead of partial view", func(t *testing.T) {
		t.Parallel()
		query, store := newTestQuery(t)
		seedSubscription(t, store, activeSubscription("u1", "s1", "deleted-plan"))

		_, err := query.GetUserSubscription(t.Context(), "u1", "", false)
		assert.ErrorIs(t, err, subscription.ErrPlanNotAvailable)
	})

	t.Run("inactive plan propagates instead of partial view", func(t *testing.T) {
		t.Parallel()
		query, store := newTestQuery(t)
		seedSubscription(t, store, activeSubscription("u1", "s1", retiredPlan.SKU))

		_, err := query.GetUserSubscription(t.Context(), "u1", "", false)
		assert.ErrorIs(t, err, subscription.ErrPlanNotAvailable)
	})
}
