package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/Trilemma-Dashboard/internal/application/dashboard"
	"github.com/turtacn/Trilemma-Dashboard/internal/config"
	"github.com/turtacn/Trilemma-Dashboard/internal/domain/indicator"
	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/database/redis"
	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/monitoring/prometheus"
	httpapi "github.com/turtacn/Trilemma-Dashboard/internal/interfaces/http"
	"github.com/turtacn/Trilemma-Dashboard/internal/interfaces/http/handlers"
	"github.com/turtacn/Trilemma-Dashboard/internal/interfaces/http/middleware"
	"github.com/turtacn/Trilemma-Dashboard/pkg/errors"
)

// NewServeCmd runs the dashboard HTTP server.
func NewServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard web server",
		Long: "Load the dataset once and serve the interactive dashboard page, the JSON API\n" +
			"under /api/v1, health checks and Prometheus metrics until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg := cliCtx.Config
			if addr != "" {
				cfg.Server.Addr = addr
			}

			logger, err := newServerLogger(cmd, cfg)
			if err != nil {
				return err
			}
			logging.SetDefault(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := buildApplication(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer app.Close()

			if cliCtx.ConfigFile != "" {
				if err := config.Watch(cliCtx.ConfigFile, logger, reloadLogLevel(logger)); err != nil {
					logger.Warn("config watch disabled", logging.Err(err))
				}
			}

			return app.server.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr)")
	return cmd
}

// newServerLogger builds the process logger from the log section.  An
// explicit --log-level wins over the file.
func newServerLogger(cmd *cobra.Command, cfg *config.Config) (logging.Logger, error) {
	lc := cfg.Log.Logging()
	if f := cmd.InheritedFlags().Lookup("log-level"); f != nil && f.Changed {
		level, err := logging.ParseLevel(f.Value.String())
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid log level").WithDetail(f.Value.String())
		}
		lc.Level = level
	}
	return logging.NewLogger(lc)
}

// reloadLogLevel applies log.level changes without a restart.  Other
// sections take effect on the next start.
func reloadLogLevel(logger logging.Logger) func(*config.Config) {
	return func(cfg *config.Config) {
		setter, ok := logger.(logging.LevelSetter)
		if !ok {
			return
		}
		level, err := logging.ParseLevel(cfg.Log.Level)
		if err != nil {
			return
		}
		setter.SetLevel(level)
		logger.Info("log level changed", logging.String("level", string(level)))
	}
}

// application holds the long-lived components of `trilemma serve`.
type application struct {
	server  *httpapi.Server
	handler *handlers.DashboardHandler
	service dashboard.Service
	logger  logging.Logger
	closers []func() error
}

func (a *application) onClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

// Close releases components in reverse construction order.
func (a *application) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("component close failed", logging.Err(err))
			if first == nil {
				first = err
			}
		}
	}
	a.closers = nil
	return first
}

// buildApplication wires every component enabled in cfg.  On error the
// components built so far are released.
func buildApplication(ctx context.Context, cfg *config.Config, logger logging.Logger) (app *application, err error) {
	a := &application{logger: logger}
	defer func() {
		if err != nil {
			a.Close()
			app = nil
		}
	}()

	var checkers []handlers.Checker

	// --- Metrics ---
	var (
		collector  prometheus.MetricsCollector
		appMetrics *prometheus.AppMetrics
		recorder   dashboard.MetricsRecorder
	)
	if cfg.Metrics.Enabled {
		collector, err = prometheus.NewMetricsCollector(cfg.Metrics.CollectorConfig, logger)
		if err != nil {
			return nil, err
		}
		appMetrics = prometheus.NewAppMetrics(collector)
		recorder = prometheus.NewViewRecorder(appMetrics)
	}

	// --- Dataset ---
	store, err := openObjectStore(cfg, logger)
	if err != nil {
		return nil, err
	}
	source := "file"
	if store != nil {
		a.onClose(store.Close)
		checkers = append(checkers, store)
		source = "minio"
	}

	start := time.Now()
	table, err := loadTable(ctx, cfg, store, logger)
	if err != nil {
		return nil, err
	}
	if appMetrics != nil {
		prometheus.RecordDatasetLoaded(appMetrics, source, table.Len(), len(table.States()), len(table.Years()), time.Since(start))
	}
	checkers = append(checkers, datasetChecker(table))

	// --- Events ---
	var publisher dashboard.EventPublisher
	if cfg.Kafka.Enabled {
		producer, err := newKafkaProducer(ctx, cfg, appMetrics, logger)
		if err != nil {
			return nil, err
		}
		a.onClose(producer.Close)
		checkers = append(checkers, producer)
		publisher = kafka.NewViewEventPublisher(producer, cfg.Kafka.Topic, cfg.Kafka.Source, eventObserver(appMetrics), logger)
	}

	// --- Rate limiting ---
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		rc := cfg.Redis.RedisConfig
		redisClient, err = redis.NewClient(&rc, logger)
		if err != nil {
			return nil, err
		}
		a.onClose(redisClient.Close)
		checkers = append(checkers, redisClient)
	}
	limiter, err := newRateLimiter(cfg.RateLimit, redisClient)
	if err != nil {
		return nil, err
	}
	if tb, ok := limiter.(*middleware.TokenBucketLimiter); ok {
		a.onClose(func() error { tb.Stop(); return nil })
	}

	// --- HTTP ---
	a.service = dashboard.NewService(table, publisher, recorder, logger)
	a.handler = handlers.NewDashboardHandler(a.service, cfg.Chart, logger)

	loggingCfg := middleware.DefaultLoggingConfig()
	if cfg.Server.SlowRequestThreshold > 0 {
		loggingCfg.SlowThreshold = cfg.Server.SlowRequestThreshold
	}
	cors := cfg.CORS
	router := httpapi.NewRouter(httpapi.RouterConfig{
		DashboardHandler: a.handler,
		HealthHandler:    handlers.NewHealthHandler(Version, checkers...),
		CORS:             &cors,
		RateLimiter:      limiter,
		Logging:          loggingCfg,
		Logger:           logger,
		MetricsCollector: collector,
		Metrics:          appMetrics,
	})

	a.server = httpapi.NewServer(httpapi.ServerConfig{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, router, logger)

	logger.Info("dashboard ready",
		logging.String("addr", cfg.Server.Addr),
		logging.String("dataset", cfg.Dataset.Location),
		logging.Bool("metrics", collector != nil),
		logging.Bool("events", publisher != nil),
		logging.Bool("rate_limit", limiter != nil),
	)
	return a, nil
}

// datasetChecker reports the loaded table as unhealthy when it is empty.
func datasetChecker(table *indicator.Table) handlers.Checker {
	return handlers.NamedCheck("dataset", func(context.Context) error {
		if _, ok := table.DefaultSelection(); !ok {
			return errors.New(errors.ErrCodeDatasetInvalid, "dataset holds no state or year")
		}
		return nil
	})
}

func eventObserver(metrics *prometheus.AppMetrics) kafka.PublishObserver {
	if metrics == nil {
		return nil
	}
	return func(topic string, err error) {
		prometheus.RecordEventPublished(metrics, topic, err)
	}
}

// newKafkaProducer optionally provisions the view topic, then connects the
// producer with delivery outcomes feeding the publish counter.
func newKafkaProducer(ctx context.Context, cfg *config.Config, metrics *prometheus.AppMetrics, logger logging.Logger) (*kafka.Producer, error) {
	kc := cfg.Kafka
	if kc.CreateTopics {
		tm, err := kafka.NewTopicManager(ctx, kc.Brokers, logger)
		if err != nil {
			return nil, err
		}
		err = tm.Provision(ctx, kafka.ViewTopic(kc.Topic, kc.NumPartitions, kc.ReplicationFactor))
		tm.Close()
		if err != nil {
			return nil, err
		}
	}

	observe := eventObserver(metrics)
	pc := kc.ProducerConfig
	pc.AsyncErrorHandler = kafka.AsyncResultHandler(observe, logger)
	if observe != nil {
		pc.AsyncSuccessHandler = func(msg *kafka.ProducerMessage) { observe(msg.Topic, nil) }
	}
	return kafka.NewProducer(pc, logger)
}

// newRateLimiter returns nil when rate limiting is disabled.
func newRateLimiter(rl config.RateLimitConfig, redisClient *redis.Client) (middleware.RateLimiter, error) {
	if !rl.Enabled {
		return nil, nil
	}
	switch rl.Backend {
	case config.RateLimitBackendRedis:
		if redisClient == nil {
			return nil, errors.New(errors.ErrCodeValidation, "redis rate limiting requires redis.enabled")
		}
		counter, err := redis.NewFixedWindowLimiter(redisClient, rl.Limit, rl.Window, rl.KeyPrefix)
		if err != nil {
			return nil, err
		}
		return middleware.NewRedisRateLimiter(counter), nil
	default:
		return middleware.NewTokenBucketLimiter(rl.RequestsPerSecond, rl.Burst, time.Minute), nil
	}
}

//Personal.AI order the ending
