package rest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"lungrisk/internal/services/prediction"
	"lungrisk/pkg/errors"
)

type modelsResponse struct {
	AvailableModels []string `json:"available_models"`
	DefaultModel    string   `json:"default_model"`
}

// handlePredict accepts {"features": {...}, "model": "..."}. An absent model
// means the default; absent features fail validation like any other bad input.
func (h *Handler) handlePredict(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondMessage(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		h.respondMessage(w, http.StatusBadRequest, "No JSON data provided")
		return
	}

	var req map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil || len(req) == 0 {
		h.respondMessage(w, http.StatusBadRequest, "No JSON data provided")
		return
	}

	features, ok := req["features"]
	if !ok {
		features = map[string]interface{}{}
	}

	var model string
	if v, ok := req["model"]; ok && v != nil {
		if model, ok = v.(string); !ok {
			h.respondMessage(w, http.StatusBadRequest, "Model name must be a string")
			return
		}
	}

	res, err := h.predictions.Predict(r.Context(), features, model)
	if err != nil {
		h.respondError(w, r, err, "Prediction failed: ")
		return
	}
	h.respondJSON(w, http.StatusOK, res)
}

func (h *Handler) handleModels(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, modelsResponse{
		AvailableModels: nonNil(h.predictions.AvailableModels()),
		DefaultModel:    h.predictions.DefaultModel(),
	})
}

// handlePredictions serves the history. A missing or malformed limit means the default.
func (h *Handler) handlePredictions(w http.ResponseWriter, r *http.Request) {
	limit := prediction.DefaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	history, err := h.predictions.History(r.Context(), limit)
	if err != nil {
		h.respondError(w, r, err, "Failed to fetch predictions: ")
		return
	}
	h.respondJSON(w, http.StatusOK, history)
}
