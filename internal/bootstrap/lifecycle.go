package bootstrap

import (
	"context"
	"time"

	"lungrisk/pkg/errors"
	"lungrisk/pkg/logger"
)

// Lifecycle manages graceful shutdown of components
type Lifecycle struct {
	shutdownTimeout time.Duration
}

// NewLifecycle creates a new lifecycle manager
func NewLifecycle(shutdownTimeout time.Duration) *Lifecycle {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 15 * time.Second
	}
	return &Lifecycle{shutdownTimeout: shutdownTimeout}
}

// Shutdown stops components in reverse dependency order:
// 1. HTTP server stops accepting requests and drains in-flight ones
// 2. Queued prediction events are flushed, then the Kafka producer closes
// 3. Redis closes
// 4. Error tracker and logs are flushed
// 5. Model sessions and the database close last
//
// Every step runs even when an earlier one fails; the failures are returned together.
func (l *Lifecycle) Shutdown(c *Container) error {
	log := c.Log
	ctx, cancel := context.WithTimeout(context.Background(), l.shutdownTimeout)
	defer cancel()

	var errs errors.MultiError

	log.Info("[1/5] Stopping HTTP server...")
	if c.HTTPServer != nil {
		if err := c.HTTPServer.Shutdown(ctx); err != nil {
			log.Errorw("HTTP server shutdown failed", "error", err)
			errs.Add(errors.Wrap(err, "http server"))
		}
	}

	log.Info("[2/5] Closing event publisher...")
	if c.Events != nil {
		c.Events.Close()
	}
	if c.Kafka != nil {
		if err := c.Kafka.Close(); err != nil {
			log.Errorw("Kafka producer close failed", "error", err)
			errs.Add(errors.Wrap(err, "kafka producer"))
		} else {
			log.Info("✓ Kafka producer closed")
		}
	}

	log.Info("[3/5] Closing Redis...")
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warnw("Redis close failed", "error", err)
			errs.Add(errors.Wrap(err, "redis"))
		}
	}

	log.Info("[4/5] Flushing error tracker...")
	errs.Add(l.flushErrorTracker(ctx, c.ErrorTracker, log))

	log.Info("[5/5] Closing models and database...")
	if c.Models != nil {
		c.Models.Close()
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			log.Warnw("Database close failed", "error", err)
			errs.Add(errors.Wrap(err, "database"))
		} else {
			log.Info("✓ Database closed")
		}
	}

	if errs.HasErrors() {
		log.Warnw("Shutdown finished with errors", "count", len(errs.Errors))
	} else {
		log.Info("✅ Graceful shutdown complete")
	}
	_ = logger.Sync()
	return errs.ToError()
}

// flushErrorTracker flushes the error tracker (Sentry, etc.)
func (l *Lifecycle) flushErrorTracker(ctx context.Context, tracker errors.Tracker, log *logger.Logger) error {
	if tracker == nil {
		return nil
	}

	flushCtx, flushCancel := context.WithTimeout(ctx, 3*time.Second)
	defer flushCancel()

	if err := tracker.Flush(flushCtx); err != nil {
		log.Warnw("Error tracker flush failed", "error", err)
		return errors.Wrap(err, "error tracker flush")
	}
	log.Info("✓ Error tracker flushed")
	return nil
}
