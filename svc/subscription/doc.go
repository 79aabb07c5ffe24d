// Package subscription implements the subscription lifecycle: creation,
// renewal and cancellation of a user's subscription to a billing plan, plus
// lookup of the current subscription joined with its plan.
//
// The package is organized around four collaborators:
//
//   - Store: key/value access to subscription and plan records with
//     conditional writes (DynamoDB single-table; in-memory for tests).
//   - Resolver: looks up an active plan by SKU, optionally through a cache.
//   - QueryService: finds a user's subscription and assembles the combined
//     subscription+plan view.
//   - Lifecycle: the state machine. Each operation validates the current
//     stored state before mutating it; the store's conditional put/update is
//     the only concurrency-safety primitive.
//
// A subscription moves ACTIVE -> PENDING (cancellation before the paid-through
// date) or ACTIVE -> CANCELED (cancellation at/after it). Renewal forces any
// status back to ACTIVE and is the only way out of PENDING or CANCELED.
//
// The "at most one ACTIVE subscription per user" invariant is enforced by a
// read-then-write pre-check and is therefore best-effort: concurrent creates
// under different subscription IDs can both pass it. Concurrent creates of
// the same identity are disambiguated by the store's conditional put.
package subscription
