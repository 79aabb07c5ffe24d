package subscription

import (
	"errors"
	"fmt"
)

// Error taxonomy. Every request-level failure wraps exactly one of these so
// the HTTP dispatcher can map it to a status code with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrInternal   = errors.New("internal error")
)

var (
	ErrMissingFields        = fmt.Errorf("%w: missing required fields", ErrValidation)
	ErrMissingPlanSKU       = fmt.Errorf("%w: missing planSku in metadata", ErrValidation)
	ErrSubscriptionMismatch = fmt.Errorf("%w: user subscription mismatch", ErrValidation)
	ErrUnknownEventType     = fmt.Errorf("%w: unknown subscription event type", ErrValidation)

	ErrActiveSubscription    = fmt.Errorf("%w: user already has an active subscription", ErrConflict)
	ErrDuplicateSubscription = fmt.Errorf("%w: subscription already exists", ErrConflict)
	ErrUpdateConflict        = fmt.Errorf("%w: subscription was modified concurrently", ErrConflict)

	ErrSubscriptionNotFound = fmt.Errorf("%w: subscription not found", ErrNotFound)
	ErrPlanNotAvailable     = fmt.Errorf("%w: requested plan does not exist or is inactive", ErrNotFound)
)

// Store-level sentinels. The store reports mechanical outcomes; the services
// above it translate them into the taxonomy.
var (
	ErrPlanNotFound       = errors.New("plan record not found")
	ErrSubscriptionExists = errors.New("subscription record already exists")
	ErrConditionFailed    = errors.New("store precondition failed")
)

// internalErr wraps unexpected store failures so they surface as 5xx without
// leaking detail into response bodies.
func internalErr(err error) error {
	return errors.Join(ErrInternal, err)
}
