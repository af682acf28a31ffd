package metrics

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"

	"lungrisk/pkg/logger"
)

// CustomCollector reports prediction log size straight from the database at scrape time.
type CustomCollector struct {
	log *logger.Logger
	db  *sqlx.DB

	logRecords *prometheus.Desc
}

// NewCustomCollector creates a new custom metrics collector
func NewCustomCollector(log *logger.Logger, db *sqlx.DB) *CustomCollector {
	return &CustomCollector{
		log: log,
		db:  db,

		logRecords: prometheus.NewDesc(
			"lungrisk_prediction_log_records",
			"Number of stored prediction log records by result",
			[]string{"result"}, nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *CustomCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.logRecords
}

// Collect implements prometheus.Collector
func (c *CustomCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c.collectLogRecords(ctx, ch)
}

func (c *CustomCollector) collectLogRecords(ctx context.Context, ch chan<- prometheus.Metric) {
	var rows []struct {
		Result string `db:"prediction_result"`
		Count  int64  `db:"cnt"`
	}
	err := c.db.SelectContext(ctx, &rows,
		"SELECT prediction_result, COUNT(*) AS cnt FROM prediction_logs GROUP BY prediction_result")
	if err != nil {
		c.log.Warnw("Failed to collect prediction log size", "error", err)
		return
	}
	for _, r := range rows {
		ch <- prometheus.MustNewConstMetric(c.logRecords, prometheus.GaugeValue, float64(r.Count), r.Result)
	}
}

// RegisterCustomCollector registers the custom collector
func RegisterCustomCollector(collector *CustomCollector) {
	prometheus.MustRegister(collector)
}
