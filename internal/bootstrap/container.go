package bootstrap

import (
	"context"
	"time"

	"lungrisk/internal/adapters/config"
	"lungrisk/internal/adapters/database"
	"lungrisk/internal/adapters/errors/noop"
	"lungrisk/internal/adapters/errors/sentry"
	"lungrisk/internal/adapters/kafka"
	redisclient "lungrisk/internal/adapters/redis"
	"lungrisk/internal/api"
	"lungrisk/internal/api/health"
	"lungrisk/internal/api/rest"
	"lungrisk/internal/events"
	"lungrisk/internal/metrics"
	"lungrisk/internal/ml"
	"lungrisk/internal/repository/sqlstore"
	"lungrisk/internal/services/annotation"
	predictionsvc "lungrisk/internal/services/prediction"
	statssvc "lungrisk/internal/services/stats"
	"lungrisk/pkg/errors"
	"lungrisk/pkg/logger"
)

const (
	serviceTitle        = "Lung Cancer Prediction API"
	eventSource         = "lungrisk-api"
	eventBuffer         = 256
	kafkaWriteTimeout   = 5 * time.Second
	startupProbeTimeout = 10 * time.Second
)

// Container holds all application dependencies and their lifecycle
// Components are organized in initialization order
type Container struct {
	// Core configuration & logging
	Config       *config.Config
	Log          *logger.Logger
	ErrorTracker errors.Tracker

	// Infrastructure Layer
	DB     *database.Client
	Redis  *redisclient.Client // nil when REDIS_HOST is empty
	Kafka  *kafka.Producer     // nil when KAFKA_BROKERS is empty
	Events *events.Publisher   // nil when Kafka is disabled
	Models *ml.Cache

	// Domain Layer - Services
	Predictions *predictionsvc.Service
	Stats       *statssvc.Service
	Annotations *annotation.Service

	// Application Layer
	HTTPServer *api.Server
}

// New initializes every component in dependency order. Optional
// dependencies (Redis, Kafka, Sentry) degrade to disabled on failure;
// the database and upload folder are required.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}

	if err := logger.Init(logger.Options{
		Level:      cfg.App.LogLevel,
		Env:        cfg.App.Env,
		File:       cfg.App.LogFile,
		MaxSizeMB:  cfg.App.LogMaxSizeMB,
		MaxBackups: cfg.App.LogMaxBackups,
		MaxAgeDays: cfg.App.LogMaxAgeDays,
	}); err != nil {
		return nil, errors.Wrap(err, "failed to init logger")
	}
	c.Log = logger.Get()
	c.Log.Infof("Starting %s %s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Env)

	c.ErrorTracker = c.initErrorTracker()
	logger.SetErrorTracker(c.ErrorTracker)

	metrics.Init()

	if err := c.initInfrastructure(ctx); err != nil {
		c.closeOnError()
		return nil, err
	}
	if err := c.initServices(); err != nil {
		c.closeOnError()
		return nil, err
	}
	c.reportMissingModels(ctx)
	c.initHTTP()

	c.Log.Info("System initialized successfully")
	return c, nil
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func (c *Container) initErrorTracker() errors.Tracker {
	et := c.Config.ErrorTracking
	if !et.Enabled || et.SentryDSN == "" {
		c.Log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(et.SentryDSN, et.Environment, c.Config.App.Name+"@"+c.Config.App.Version)
	if err != nil {
		c.Log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	c.Log.Info("Error tracking initialized (Sentry)")
	return tracker
}

func (c *Container) initInfrastructure(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, startupProbeTimeout)
	defer cancel()

	db, err := database.NewClient(probeCtx, c.Config)
	if err != nil {
		return errors.Wrap(err, "failed to connect to database")
	}
	c.DB = db

	if err := sqlstore.Migrate(probeCtx, db.DB()); err != nil {
		return errors.Wrap(err, "failed to migrate prediction log")
	}
	metrics.RegisterCustomCollector(metrics.NewCustomCollector(c.Log, db.DB()))
	c.Log.Infow("✓ Prediction log ready", "driver", db.Driver())

	c.Models = ml.NewCache(ml.CacheConfig{
		Dir: c.Config.Models.Path,
		ONNX: ml.ONNXOptions{
			RuntimeLib:  c.Config.Models.ONNXRuntimeLib,
			InputName:   c.Config.Models.ONNXInputName,
			LabelOutput: c.Config.Models.ONNXLabelOutput,
			ProbaOutput: c.Config.Models.ONNXProbaOutput,
		},
	})
	if c.Config.Models.WarmupOnStartup {
		if n := c.Models.Load(); n > 0 {
			c.Log.Infow("✓ Models loaded", "count", n, "models", c.Models.Available())
		}
	}

	if c.Config.Redis.Enabled() {
		rc, err := redisclient.NewClient(probeCtx, c.Config.Redis)
		if err != nil {
			c.Log.Warnw("Redis unavailable, charts cache disabled", "addr", c.Config.Redis.Addr(), "error", err)
		} else {
			c.Redis = rc
			c.Log.Infow("✓ Redis connected", "addr", c.Config.Redis.Addr())
		}
	}

	if c.Config.Kafka.Enabled() {
		c.Kafka = kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      c.Config.Kafka.Brokers,
			WriteTimeout: kafkaWriteTimeout,
		})
		c.Events = events.NewPublisher(c.Kafka, c.Config.Kafka.PredictionsTopic, eventSource, eventBuffer)
		c.Log.Infow("✓ Kafka publishing enabled", "topic", c.Config.Kafka.PredictionsTopic)
	}

	return nil
}

func (c *Container) initServices() error {
	var statsOpts []statssvc.Option
	if c.Redis != nil {
		statsOpts = append(statsOpts, statssvc.WithCache(c.Redis, c.Config.Redis.StatsCacheTTL))
	}
	c.Stats = statssvc.NewService(sqlstore.NewStatsRepository(c.DB.DB()), statsOpts...)

	observers := []predictionsvc.Observer{c.Stats}
	if c.Events != nil {
		observers = append(observers, c.Events)
	}
	c.Predictions = predictionsvc.NewService(
		c.Models,
		sqlstore.NewPredictionRepository(c.DB.DB()),
		c.Config.Models.DefaultModel,
		observers...,
	)

	store, err := annotation.NewFileStore(c.Config.Storage.UploadFolder)
	if err != nil {
		return err
	}
	c.Annotations = annotation.NewService(c.Predictions, store)
	return nil
}

func (c *Container) initHTTP() {
	checks := map[string]health.Checker{"database": c.DB}
	if c.Redis != nil {
		checks["redis"] = c.Redis
	}

	healthHandler := health.New(c.Log, c.Models, checks, c.Config.App.Name, c.Config.App.Version)
	restHandler := rest.NewHandler(c.Predictions, c.Stats, c.Annotations, rest.Options{
		ServiceName:    serviceTitle,
		Version:        c.Config.App.Version,
		MaxUploadBytes: c.Config.HTTP.MaxUploadBytes,
	}, c.Log)

	c.HTTPServer = api.NewServer(api.ServerConfig{
		Port:           c.Config.HTTP.Port,
		ReadTimeout:    c.Config.HTTP.ReadTimeout,
		WriteTimeout:   c.Config.HTTP.WriteTimeout,
		MaxUploadBytes: c.Config.HTTP.MaxUploadBytes,
		CORSOrigins:    c.Config.HTTP.CORSOrigins,
		RateLimitRPS:   c.Config.HTTP.RateLimitRPS,
		RateLimitBurst: c.Config.HTTP.RateLimitBurst,
	}, restHandler, healthHandler, c.Log)
}

// reportMissingModels raises a tracker warning when warm-up found no artifacts.
func (c *Container) reportMissingModels(ctx context.Context) {
	if !c.Config.Models.WarmupOnStartup || len(c.Models.Available()) > 0 {
		return
	}
	c.Log.ReportWarning(ctx, "No ML models loaded at startup", map[string]string{
		"component": "model_cache",
		"dir":       c.Config.Models.Path,
	})
}

// closeOnError releases whatever was opened before a failed start-up.
func (c *Container) closeOnError() {
	var errs errors.MultiError
	if c.Events != nil {
		c.Events.Close()
	}
	if c.Kafka != nil {
		errs.Add(errors.Wrap(c.Kafka.Close(), "kafka producer"))
	}
	if c.Redis != nil {
		errs.Add(errors.Wrap(c.Redis.Close(), "redis"))
	}
	if c.Models != nil {
		c.Models.Close()
	}
	if c.DB != nil {
		errs.Add(errors.Wrap(c.DB.Close(), "database"))
	}
	if err := errs.ToError(); err != nil {
		c.Log.Warnw("Cleanup after failed start-up was incomplete", "error", err)
	}
}
