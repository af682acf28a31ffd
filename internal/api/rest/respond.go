package rest

import (
	"encoding/json"
	"net/http"

	"lungrisk/internal/domain/prediction"
	"lungrisk/pkg/errors"
)

type errorResponse struct {
	Error string `json:"error"`
}

type unknownModelResponse struct {
	Error           string   `json:"error"`
	AvailableModels []string `json:"available_models"`
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Warnw("Failed to encode response", "error", err)
	}
}

func (h *Handler) respondMessage(w http.ResponseWriter, status int, msg string) {
	h.respondJSON(w, status, errorResponse{Error: msg})
}

// respondError maps an error class onto a status code. Server errors, including
// an unreachable store (503), are reported as prefix + cause and sent to the error tracker.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error, prefix string) {
	var unknown *prediction.UnknownModelError
	switch {
	case errors.As(err, &unknown):
		h.respondJSON(w, http.StatusBadRequest, unknownModelResponse{
			Error:           unknown.Error(),
			AvailableModels: nonNil(unknown.Available),
		})
	case errors.Is(err, errors.ErrInvalidInput):
		h.respondMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errors.ErrNotFound):
		h.respondMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errors.ErrRateLimitExceeded):
		h.respondMessage(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, errors.ErrUnavailable):
		h.reportServerError(r, err)
		h.respondMessage(w, http.StatusServiceUnavailable, prefix+err.Error())
	default:
		h.reportServerError(r, err)
		h.respondMessage(w, http.StatusInternalServerError, prefix+err.Error())
	}
}

func (h *Handler) reportServerError(r *http.Request, err error) {
	h.log.ErrorWithContext(r.Context(), err, map[string]string{
		"method": r.Method,
		"path":   r.URL.Path,
	})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
