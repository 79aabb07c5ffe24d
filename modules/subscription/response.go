package subscription

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrymomot/subtrack/pkg/logger"
	subsvc "github.com/dmitrymomot/subtrack/svc/subscription"
)

type errorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respondError maps the service error taxonomy onto status codes. Anything
// a well-formed request could provoke is a 400 with the error text; anything
// else is a 500 whose body never carries internal detail.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, subsvc.ErrValidation),
		errors.Is(err, subsvc.ErrConflict),
		errors.Is(err, subsvc.ErrNotFound):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: err.Error()})
	default:
		h.log.ErrorContext(r.Context(), "request failed", logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "internal error"})
	}
}
