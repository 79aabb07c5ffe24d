package subscription_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/subtrack/svc/subscription"
)

var (
	proPlan = subscription.Plan{
		SKU:          "pro-monthly",
		Name:         "Pro",
		Price:        9.99,
		Currency:     "USD",
		BillingCycle: subscription.BillingCycleMonthly,
		Features:     []string{"api", "sso"},
		Status:       subscription.PlanStatusActive,
	}
	retiredPlan = subscription.Plan{
		SKU:          "legacy-yearly",
		Name:         "Legacy",
		Price:        99.0,
		Currency:     "USD",
		BillingCycle: subscription.BillingCycleYearly,
		Features:     []string{"api"},
		Status:       subscription.PlanStatusInactive,
	}
)

func testNow() time.Time {
	return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

func newTestLifecycle(t *testing.T, now time.Time) (*subscription.Lifecycle, *subscription.MemoryStore) {
	t.Helper()

	store := subscription.NewMemoryStore()
	store.SeedPlan(proPlan)
	store.SeedPlan(retiredPlan)

	resolver := subscription.NewResolver(store)
	query := subscription.NewQueryService(store, resolver)
	lifecycle := subscription.NewLifecycle(store, resolver, query,
		subscription.WithClock(func() time.Time { return now }),
	)
	return lifecycle, store
}

func createCmd(userID, subscriptionID string) subscription.Command {
	return subscription.Command{
		UserID:         userID,
		SubscriptionID: subscriptionID,
		ExpiresAt:      testNow().AddDate(0, 1, 0),
		Metadata:       map[string]any{"planSku": proPlan.SKU, "source": "checkout"},
		Timestamp:      testNow().Add(-time.Hour),
	}
}

func TestLifecycle_Create(t *testing.T) {
	t.Parallel()

	t.Run("creates active subscription", func(t *testing.T) {
		t.Parallel()
		lc, _ := newTestLifecycle(t, testNow())

		cmd := createCmd("u1", "s1")
		sub, err := lc.Create(t.Context(), cmd)
		require.NoError(t, err)

		assert.Equal(t, "u1", sub.UserID)
		assert.Equal(t, "s1", sub.SubscriptionID)
		assert.Equal(t, proPlan.SKU, sub.PlanSKU)
		assert.Equal(t, subscription.StatusActive, sub.Status)
		assert.Nil(t, sub.CanceledAt)
		assert.Equal(t, cmd.Timestamp, sub.StartDate)
		assert.Equal(t, cmd.ExpiresAt, sub.ExpiresAt)
		assert.Equal(t, testNow(), sub.LastModifiedAt)
		assert.Equal(t, cmd.Metadata, sub.Attributes)
	})

	t.Run("rejects missing required fields", func(t *testing.T) {
		t.Parallel()
		lc, _ := newTestLifecycle(t, testNow())

		for name, mutate := range map[string]func(*subscription.Command){
			"user id":         func(c *subscription.Command) { c.UserID = "" },
			"subscription id": func(c *subscription.Command) { c.SubscriptionID = "" },
			"expires at":      func(c *subscription.Command) { c.ExpiresAt = time.Time{} },
			"metadata":        func(c *subscription.Command) { c.Metadata = nil },
			"timestamp":       func(c *subscription.Command) { c.Timestamp = time.Time{} },
		} {
			cmd := createCmd("u1", "s1")
			mutate(&cmd)
			_, err := lc.Create(t.Context(), cmd)
			assert.ErrorIs(t, err, subscription.ErrMissingFields, "missing %s", name)
			assert.ErrorIs(t, err, subscription.ErrValidation, "missing %s", name)
		}
	})

	t.Run("rejects metadata without planSku", func(t *testing.T) {
		t.Parallel()
		lc, _ := newTestLifecycle(t, testNow())

		cmd := createCmd("u1", "s1")
		cmd.Metadata = map[string]any{"source": "checkout"}
		_, err := lc.Create(t.Context(), cmd)
		assert.ErrorIs(t, err, subscription.ErrMissingPlanSKU)
	})

	t.Run("rejects second active subscription for same user", func(t *testing.T) {
		t.Parallel()
		lc, _ := newTestLifecycle(t, testNow())

		_, err := lc.Create(t.Context(), createCmd("u1", "s1"))
		require.NoError(t, err)

		_, err = lc.Create(t.Context(), createCmd("u1", "s2"))
		assert.ErrorIs(t, err, subscription.ErrActiveSubscription)
		assert.ErrorIs(t, err, subscription.ErrConflict)
	})

	t.Run("rejects inactive plan", func(t *testing.T) {
		t.Parallel()
		lc, _ := newTestLifecycle(t, testNow())

		cmd := createCmd("u1", "s1")
		cmd.Metadata["planSku"] = retiredPlan.SKU
		_, err := lc.Create(t.Context(), cmd)
		assert.ErrorIs(t, err, subscription.ErrValidation)
	})

	t.Run("rejects nonexistent plan", func(t *testing.T) {
		t.Parallel()
		lc, _ := newTestLifecycle(t, testNow())

		cmd := createCmd("u1", "s1")
		cmd.Metadata["planSku"] = "no-such-plan"
		_, err := lc.Create(t.Context(), cmd)
		assert.ErrorIs(t, err, subscription.ErrValidation)
	})

	t.Run("allows new subscription after previous one is canceled", func(t *testing.T) {
		t.Parallel()
		lc, _ := newTestLifecycle(t, testNow())

		_, err := lc.Create(t.Context(), createCmd("u1", "s1"))
		require.NoError(t, err)

		cancel := createCmd("u1", "s1")
		cancel.ExpiresAt = testNow().Add(-time.Hour) // already past paid-through date
		_, err = lc.Cancel(t.Context(), cancel)
		require.NoError(t, err)

		_, err = lc.Create(t.Context(), createCmd("u1", "s2"))
		assert.NoError(t, err)
	})

	t.Run("duplicate identity loses to the store-level guard", func(t *testing.T) {
		t.Parallel()
		lc, store := newTestLifecycle(t, testNow())

		// Simulate a racing create that already claimed the identity after
		// the pre-check would have passed: the record exists but is not
		// ACTIVE, so the pre-check cannot see it.
		canceledAt := testNow().Add(-time.Minute)
		require.NoError(t, store.PutSubscriptionIfAbsent(t.Context(), &subscription.Subscription{
			UserID:         "u1",
			SubscriptionID: "s1",
			PlanSKU:        proPlan.SKU,
			StartDate:      testNow().Add(-time.Hour),
			ExpiresAt:      testNow().Add(-time.Minute),
			CanceledAt:     &canceledAt,
			LastModifiedAt: testNow(),
			Status:         subscription.StatusCanceled,
			Attributes:     map[string]any{"planSku": proPlan.SKU},
		}))

		_, err := lc.Create(t.Context(), createCmd("u1", "s1"))
		assert.ErrorIs(t, err, subscription.ErrDuplicateSubscription)
		assert.ErrorIs(t, err, subscription.ErrConflict)
	})
}

func TestLifecycle_Cancel(t *testing.T) {
	t.Parallel()

	t.Run("before paid-through date yields PENDING", func(t *testing.T) {
		t.Parallel()
		lc, _ := newTestLifecycle(t, testNow())

		_, err := lc.Create(t.Context(), createCmd("u1", "s1"))
		require.NoError(t, err)

		cmd := createCmd("u1", "s1") // ExpiresAt one month out
		sub, err := lc.Cancel(t.Context(), cmd)
		require.NoError(t, err)

		assert.Equal(t, subscription.StatusPending, sub.Status)
		require.NotNil(t, sub.CanceledAt)
		assert.Equal(t, testNow(), *sub.CanceledAt)
		assert.Equal(t, testNow(), sub.LastModifiedAt)
	})

	t.Run("at or after paid-through date yields CANCELED", func(t *testing.T) {
		t.Parallel()
		lc, _ := newTestLifecycle(t, testNow())

		_, err := lc.Create(t.Context(), createCmd("u1", "s1"))
		require.NoError(t, err)

		cmd := createCmd("u1", "s1")
		cmd.ExpiresAt = testNow() // boundary: now == expiresAt
		sub, err := lc.Cancel(t.Context(), cmd)
		require.NoError(t, err)

		assert.Equal(t, subscription.StatusCanceled, sub.Status)
		require.NotNil(t, sub.CanceledAt)
		assert.Equal(t, testNow(), *sub.CanceledAt)
	})

	t.Run("rejects missing identity fields", func(t *testing.T) {
		t.Parallel()
		lc, _ := newTestLifecycle(t, testNow())

		_, err := lc.Cancel(t.Context(), subscription.Command{SubscriptionID: "s1"})
		assert.ErrorIs(t, err, subscription.ErrMissingFields)

		_, err = lc.Cancel(t.Context(), subscription.Command{UserID: "u1"})
		assert.ErrorIs(t, err, subscription.ErrMissingFields)
	})

	t.Run("not found when user has no subscription", func(t *testing.T) {
		t.Parallel()
		lc, _ := newTestLifecycle(t, testNow())

		_, err := lc.Cancel(t.Context(), createCmd("ghost", "s1"))
		assert.ErrorIs(t, err, subscription.ErrSubscriptionNotFound)
		assert.ErrorIs(t, err, subscription.ErrNotFound)
	})

	t.Run("re-cancellation is rejected as not found", func(t *testing.T) {
		t.Parallel()
		lc, _ := newTestLifecycle(t, testNow())

		_, err := lc.Create(t.Context(), createCmd("u1", "s1"))
		require.NoError(t, err)

		sub, err := lc.Cancel(t.Context(), createCmd("u1", "s1"))
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusPending, sub.Status)

		// The record is PENDING now, invisible to the ACTIVE-only lookup.
		_, err = lc.Cancel(t.Context(), createCmd("u1", "s1"))
		assert.ErrorIs(t, err, subscription.ErrSubscriptionNotFound)
	})
}

func TestLifecycle_Renew(t *testing.T) {
	t.Parallel()

	t.Run("resurrects a canceled subscription", func(t *testing.T) {
		t.Parallel()
		lc, _ := newTestLifecycle(t, testNow())

		_, err := lc.Create(t.Context(), createCmd("u1", "s1"))
		require.NoError(t, err)

		cancel := createCmd("u1", "s1")
		cancel.ExpiresAt = testNow().Add(-time.Hour)
		canceled, err := lc.Cancel(t.Context(), cancel)
		require.NoError(t, err)
		require.Equal(t, subscription.StatusCanceled, canceled.Status)

		renew := createCmd("u1", "s1")
		renew.ExpiresAt = testNow().AddDate(0, 1, 0)
		sub, err := lc.Renew(t.Context(), renew)
		require.NoError(t, err)

		assert.Equal(t, subscription.StatusActive, sub.Status)
		assert.Nil(t, sub.CanceledAt)
		assert.Equal(t, renew.ExpiresAt, sub.ExpiresAt)
		assert.Equal(t, testNow(), sub.LastModifiedAt)
	})

	t.Run("renews a pending subscription", func(t *testing.T) {
		t.Parallel()
		lc, _ := newTestLifecycle(t, testNow())

		_, err := lc.Create(t.Context(), createCmd("u1", "s1"))
		require.NoError(t, err)
		_, err = lc.Cancel(t.Context(), createCmd("u1", "s1")) // -> PENDING
		require.NoError(t, err)

		sub, err := lc.Renew(t.Context(), createCmd("u1", "s1"))
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusActive, sub.Status)
		assert.Nil(t, sub.CanceledAt)
	})

	t.Run("not found for nonexistent identity", func(t *testing.T) {
		t.Parallel()
		lc, _ := newTestLifecycle(t, testNow())

		_, err := lc.Renew(t.Context(), createCmd("ghost", "s1"))
		assert.ErrorIs(t, err, subscription.ErrSubscriptionNotFound)
	})

	t.Run("rejects missing identity fields", func(t *testing.T) {
		t.Parallel()
		lc, _ := newTestLifecycle(t, testNow())

		_, err := lc.Renew(t.Context(), subscription.Command{UserID: "u1"})
		assert.ErrorIs(t, err, subscription.ErrMissingFields)
	})
}

func TestLifecycle_Dispatch(t *testing.T) {
	t.Parallel()

	t.Run("routes events to operations", func(t *testing.T) {
		t.Parallel()
		lc, _ := newTestLifecycle(t, testNow())

		sub, err := lc.Dispatch(t.Context(), subscription.EventSubscriptionCreated, createCmd("u1", "s1"))
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusActive, sub.Status)

		sub, err = lc.Dispatch(t.Context(), subscription.EventSubscriptionCancelled, createCmd("u1", "s1"))
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusPending, sub.Status)

		sub, err = lc.Dispatch(t.Context(), subscription.EventSubscriptionRenewed, createCmd("u1", "s1"))
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusActive, sub.Status)
	})

	t.Run("rejects unknown event type", func(t *testing.T) {
		t.Parallel()
		lc, _ := newTestLifecycle(t, testNow())

		_, err := lc.Dispatch(t.Context(), "subscription.paused", createCmd("u1", "s1"))
		assert.ErrorIs(t, err, subscription.ErrUnknownEventType)
		assert.ErrorIs(t, err, subscription.ErrValidation)
	})
}

func TestLifecycle_ConcurrentCreateSameIdentity(t *testing.T) {
	t.Parallel()

	lc, _ := newTestLifecycle(t, testNow())

	const attempts = 2
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = lc.Create(t.Context(), createCmd("u1", "s1"))
		}()
	}
	wg.Wait()

	var succeeded, conflicted int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, subscription.ErrConflict):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one create must win")
	assert.Equal(t, 1, conflicted, "the loser must fail with a conflict")
}
