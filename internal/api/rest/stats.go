package rest

import "net/http"

func (h *Handler) handleCharts(w http.ResponseWriter, r *http.Request) {
	charts, err := h.stats.Charts(r.Context())
	if err != nil {
		h.respondError(w, r, err, "Server error: ")
		return
	}
	h.respondJSON(w, http.StatusOK, charts)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	basic, err := h.stats.Basic(r.Context())
	if err != nil {
		h.respondError(w, r, err, "Server error: ")
		return
	}
	h.respondJSON(w, http.StatusOK, basic)
}
