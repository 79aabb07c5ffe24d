package subscription

import (
	"github.com/go-chi/chi/v5"
)

// Router wires the subscription endpoints. Requests with a known path but an
// unregistered method get chi's default 405 response.
func Router(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/subscriptions/{userID}", h.getSubscription)
	r.Post("/webhooks/subscriptions", h.handleWebhook)

	return r
}
