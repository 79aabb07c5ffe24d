package subscription

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/subtrack/pkg/logger"
	subsvc "github.com/dmitrymomot/subtrack/svc/subscription"
)

// Handler translates HTTP requests into service calls and service errors
// into status codes.
type Handler struct {
	lifecycle *subsvc.Lifecycle
	query     *subsvc.QueryService
	log       *slog.Logger
}

// NewHandler returns a Handler. A nil logger falls back to a discard logger.
// Panics on nil services to fail fast during wiring.
func NewHandler(lifecycle *subsvc.Lifecycle, query *subsvc.QueryService, log *slog.Logger) *Handler {
	if lifecycle == nil {
		panic("subscription: lifecycle service is required")
	}
	if query == nil {
		panic("subscription: query service is required")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Handler{lifecycle: lifecycle, query: query, log: log}
}

// webhookRequest is the wire shape of an inbound lifecycle event.
type webhookRequest struct {
	EventType      string         `json:"eventType"`
	UserID         string         `json:"userId"`
	SubscriptionID string         `json:"subscriptionId"`
	ExpiresAt      time.Time      `json:"expiresAt"`
	Metadata       map[string]any `json:"metadata"`
	Timestamp      time.Time      `json:"timestamp"`
}

func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, fmt.Errorf("%w: malformed request body", subsvc.ErrValidation))
		return
	}

	sub, err := h.lifecycle.Dispatch(r.Context(), subsvc.EventType(req.EventType), subsvc.Command{
		UserID:         req.UserID,
		SubscriptionID: req.SubscriptionID,
		ExpiresAt:      req.ExpiresAt,
		Metadata:       req.Metadata,
		Timestamp:      req.Timestamp,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.log.InfoContext(r.Context(), "subscription event processed",
		logger.Event(req.EventType),
		logger.UserID(sub.UserID),
		logger.SubscriptionID(sub.SubscriptionID),
	)
	writeJSON(w, http.StatusOK, sub)
}

func (h *Handler) getSubscription(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	subscriptionID := r.URL.Query().Get("subscriptionId")
	includeInactive, _ := strconv.ParseBool(r.URL.Query().Get("includeInactive"))

	view, err := h.query.GetUserSubscription(r.Context(), userID, subscriptionID, includeInactive)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if view == nil {
		// Absence is a successful empty result, not a 404.
		writeJSON(w, http.StatusOK, struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, view)
}
