package rest

import (
	"net/http"

	"lungrisk/internal/domain/prediction"
)

var endpoints = map[string]string{
	"health_check":       "/api/health",
	"single_prediction":  "/api/predict",
	"bulk_svg_upload":    "/api/upload_svgs",
	"prediction_history": "/api/predictions",
	"available_models":   "/api/models",
	"charts_data":        "/api/charts",
	"basic_stats":        "/api/stats",
}

var endpointDescriptions = []string{
	"GET /api/health - Health check",
	"POST /api/predict - Single prediction",
	"GET /api/models - Available ML models",
	"GET /api/predictions - Prediction history",
	"POST /api/upload_svgs - Bulk SVG processing",
	"GET /api/download_annotated/<filename> - Download annotated SVG",
	"GET /api/charts - Chart data for visualization",
	"GET /api/stats - Basic statistics",
}

func exampleFeatures() map[string]int {
	return map[string]int{
		"GENDER": 1, "AGE": 45, "SMOKING": 1, "YELLOW_FINGERS": 0,
		"ANXIETY": 0, "PEER_PRESSURE": 0, "CHRONIC_DISEASE": 0,
		"FATIGUE": 1, "ALLERGY": 0, "WHEEZING": 1,
		"ALCOHOL_CONSUMING": 0, "COUGHING": 1,
		"SHORTNESS_OF_BREATH": 1, "SWALLOWING_DIFFICULTY": 0,
	}
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":           h.opts.ServiceName,
		"version":           h.opts.Version,
		"status":            "running",
		"endpoints":         endpoints,
		"available_models":  nonNil(h.predictions.AvailableModels()),
		"features_required": prediction.FeatureNames,
		"example_usage": map[string]interface{}{
			"prediction_request": map[string]interface{}{
				"url":    "/api/predict",
				"method": http.MethodPost,
				"body": map[string]interface{}{
					"features": exampleFeatures(),
					"model":    h.predictions.DefaultModel(),
				},
			},
		},
	})
}

func (h *Handler) handleAPIInfo(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"api_name":            h.opts.ServiceName,
		"version":             h.opts.Version,
		"available_endpoints": endpointDescriptions,
	})
}
