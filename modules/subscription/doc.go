// Package subscription exposes the subscription service over HTTP: a read
// endpoint returning the combined subscription+plan view and a webhook
// endpoint dispatching lifecycle events.
//
// Mount the router under the API prefix:
//
//	r := chi.NewRouter()
//	r.Mount("/api/v1", subscription.Router(handler))
package subscription
