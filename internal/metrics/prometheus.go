package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Prediction metrics
	Predictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lungrisk_predictions_total",
			Help: "Total number of prediction requests",
		},
		[]string{"model", "result"}, // result: YES|NO|invalid|unknown_model|error
	)

	PredictionLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lungrisk_prediction_duration_seconds",
			Help:    "Prediction latency including validation and persistence",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"model"},
	)

	PredictionConfidence = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lungrisk_prediction_confidence",
			Help:    "Confidence score of successful predictions",
			Buckets: []float64{0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
		[]string{"model"},
	)

	// Model cache metrics
	ModelLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lungrisk_model_loads_total",
			Help: "Model artifact load attempts",
		},
		[]string{"model", "status"}, // status: loaded|missing|error
	)

	ModelsAvailable = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lungrisk_models_available",
			Help: "Number of models currently loaded",
		},
	)

	// Annotation metrics
	AnnotatedDocuments = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lungrisk_annotated_documents_total",
			Help: "Uploaded documents processed by the annotator",
		},
		[]string{"status"}, // status: success|error
	)

	// HTTP metrics
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lungrisk_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "code"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lungrisk_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Database metrics
	DBQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lungrisk_db_queries_total",
			Help: "Total database queries",
		},
		[]string{"database", "operation", "status"},
	)

	DBQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lungrisk_db_query_duration_seconds",
			Help:    "Database query duration",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"database", "operation"},
	)

	// Cache and messaging metrics
	StatsCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lungrisk_stats_cache_total",
			Help: "Charts cache lookups",
		},
		[]string{"result"}, // result: hit|miss|error
	)

	KafkaMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lungrisk_kafka_messages_total",
			Help: "Kafka messages published",
		},
		[]string{"topic", "status"},
	)
)

var initOnce sync.Once

// Init registers all metrics with Prometheus
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(Predictions)
		prometheus.MustRegister(PredictionLatency)
		prometheus.MustRegister(PredictionConfidence)

		prometheus.MustRegister(ModelLoads)
		prometheus.MustRegister(ModelsAvailable)

		prometheus.MustRegister(AnnotatedDocuments)

		prometheus.MustRegister(HTTPRequests)
		prometheus.MustRegister(HTTPDuration)

		prometheus.MustRegister(DBQueries)
		prometheus.MustRegister(DBQueryDuration)

		prometheus.MustRegister(StatsCache)
		prometheus.MustRegister(KafkaMessages)
	})
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordPrediction records the outcome of one prediction call
func RecordPrediction(model, result string, duration time.Duration, confidence float64) {
	Predictions.WithLabelValues(model, result).Inc()
	PredictionLatency.WithLabelValues(model).Observe(duration.Seconds())
	if confidence > 0 {
		PredictionConfidence.WithLabelValues(model).Observe(confidence)
	}
}

// RecordModelLoad records a model artifact load attempt
func RecordModelLoad(model, status string) {
	ModelLoads.WithLabelValues(model, status).Inc()
}

// RecordAnnotation records one processed upload
func RecordAnnotation(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	AnnotatedDocuments.WithLabelValues(status).Inc()
}

// RecordHTTPRequest records a served request
func RecordHTTPRequest(method, route string, code int, duration time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordDBQuery records a database query
func RecordDBQuery(database, operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	DBQueries.WithLabelValues(database, operation, status).Inc()
	DBQueryDuration.WithLabelValues(database, operation).Observe(duration.Seconds())
}

// RecordKafkaMessage records a publish attempt
func RecordKafkaMessage(topic string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	KafkaMessages.WithLabelValues(topic, status).Inc()
}
