package main

import (
	"context"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/duynhne/connectspark-service/config"
	database "github.com/duynhne/connectspark-service/internal/core"
	"github.com/duynhne/connectspark-service/internal/core/domain"
	"github.com/duynhne/connectspark-service/internal/core/external"
	"github.com/duynhne/connectspark-service/internal/core/messaging"
	"github.com/duynhne/connectspark-service/internal/core/repository/memory"
	"github.com/duynhne/connectspark-service/internal/core/repository/psql"
	redisstore "github.com/duynhne/connectspark-service/internal/core/repository/redis"
	logicv1 "github.com/duynhne/connectspark-service/internal/logic/v1"
	v1 "github.com/duynhne/connectspark-service/internal/web/v1"
	"github.com/duynhne/connectspark-service/middleware"
)

func main() {
	// Load configuration from environment variables (with .env file support for local dev)
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		panic("Configuration validation failed: " + err.Error())
	}

	// Initialize structured logger
	logger, err := middleware.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	logger.Info("Service starting",
		zap.String("service", cfg.Service.Name),
		zap.String("version", cfg.Service.Version),
		zap.String("env", cfg.Service.Env),
		zap.String("port", cfg.Service.Port),
	)

	// Initialize OpenTelemetry tracing with centralized config
	var tp interface{ Shutdown(context.Context) error }
	if cfg.Tracing.Enabled {
		tp, err = middleware.InitTracing(cfg)
		if err != nil {
			logger.Warn("Failed to initialize tracing", zap.Error(err))
		} else {
			logger.Info("Tracing initialized",
				zap.String("endpoint", cfg.Tracing.Endpoint),
				zap.Float64("sample_rate", cfg.Tracing.SampleRate),
			)
		}
	} else {
		logger.Info("Tracing disabled (TRACING_ENABLED=false)")
	}

	// Initialize Pyroscope profiling
	if cfg.Profiling.Enabled {
		if err := middleware.InitProfiling(cfg, logger); err != nil {
			logger.Warn("Failed to initialize profiling", zap.Error(err))
		} else {
			logger.Info("Profiling initialized",
				zap.String("endpoint", cfg.Profiling.Endpoint),
			)
			defer middleware.StopProfiling()
		}
	} else {
		logger.Info("Profiling disabled (PROFILING_ENABLED=false)")
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	// Initialize database connection pool (pgx)
	pool, err := database.Connect(startupCtx, &cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()
	logger.Info("Database connection pool established")

	// Onboarding generations: Redis when configured, otherwise this replica only
	var (
		generations domain.GenerationStore
		redisClient *redis.Client
	)
	if cfg.Redis.Addr != "" {
		redisClient, err = database.NewRedisClient(startupCtx, &cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		generations = redisstore.NewGenerationStore(redisClient, cfg.Onboarding.GenerationTTL)
		logger.Info("Redis generation store initialized", zap.String("addr", cfg.Redis.Addr))
	} else {
		generations = memory.NewGenerationStore()
		logger.Info("Redis not configured, onboarding generations kept in memory")
	}

	publisher, err := messaging.NewPublisher(cfg.RabbitMQ.URI, cfg.RabbitMQ.Exchange, logger)
	if err != nil {
		logger.Fatal("Failed to connect to rabbitmq", zap.Error(err))
	}
	if publisher.Enabled() {
		logger.Info("Domain event publisher initialized", zap.String("exchange", cfg.RabbitMQ.Exchange))
	} else {
		logger.Info("Domain event publishing disabled (RABBITMQ_URI empty)")
	}

	externalAPI := external.NewClient(cfg.External.BaseURL, cfg.External.Timeout)
	logger.Info("External API client initialized", zap.String("base_url", cfg.External.BaseURL))

	// Token verification
	var verifier middleware.TokenVerifier
	switch cfg.Auth.Mode {
	case "introspect":
		verifier = middleware.NewIntrospectionClient(cfg.Auth.IntrospectionURL, cfg.Auth.APIKey, cfg.Auth.AdminEmails)
		logger.Info("Auth introspection initialized", zap.String("url", cfg.Auth.IntrospectionURL))
	default:
		verifier = middleware.NewJWTVerifier(cfg.Auth.JWTSecret, cfg.Auth.AdminEmails)
		logger.Info("Auth JWT verifier initialized")
	}
	devUserID := ""
	if cfg.Auth.AllowUnauthenticatedFallback {
		devUserID = cfg.Auth.DevUserID
		logger.Warn("Unauthenticated fallback enabled", zap.String("dev_user_id", devUserID))
	}

	if err := v1.RegisterValidators(); err != nil {
		logger.Fatal("Failed to register validators", zap.Error(err))
	}

	// Repositories
	profileRepo := psql.NewProfileRepository(pool)
	answerRepo := psql.NewEventAnswerRepository(pool)
	eventRepo := psql.NewEventRepository(pool)
	connectionRepo := psql.NewConnectionRepository(pool)
	matchRepo := psql.NewMatchRepository(pool)

	// Services
	resolver := logicv1.NewOnboardingResolver(profileRepo, answerRepo, cfg.Onboarding.EventID, logger)
	guard := logicv1.NewResolutionGuard(resolver, generations, cfg.Onboarding.ResolveTimeout, logger)

	handler := v1.NewHandler(v1.Services{
		Onboarding:  guard,
		Profiles:    logicv1.NewProfileService(profileRepo, externalAPI, publisher, guard, logger),
		Answers:     logicv1.NewAnswerService(answerRepo, publisher, guard, cfg.Onboarding.EventID, logger),
		Events:      logicv1.NewEventService(eventRepo, answerRepo, externalAPI, publisher, cfg.Onboarding.EventID, logger),
		Connections: logicv1.NewConnectionService(connectionRepo, profileRepo, publisher, logger),
		Matches:     logicv1.NewMatchService(matchRepo, profileRepo, eventRepo, externalAPI, logger),
		Dashboards:  logicv1.NewDashboardService(profileRepo, eventRepo, matchRepo, connectionRepo),
	})

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	var isShuttingDown atomic.Bool

	// Tracing middleware (must be first for context propagation)
	r.Use(middleware.TracingMiddleware())

	// Logging middleware (must be before Prometheus middleware)
	r.Use(middleware.LoggingMiddleware(logger))

	// Prometheus middleware
	r.Use(middleware.PrometheusMiddleware())

	r.Use(middleware.CORSMiddleware(cfg.CORS.AllowOrigins))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Readiness check
	// Returns 503 once shutdown has started, to drain traffic before HTTP shutdown.
	r.GET("/ready", func(c *gin.Context) {
		if isShuttingDown.Load() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "shutting_down"})
			return
		}
		if err := pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database_unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Metrics endpoint
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	v1.RegisterRoutes(r.Group("/api/v1"), handler, middleware.AuthMiddleware(verifier, logger, devUserID))

	// Create HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Service.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting networking service", zap.String("port", cfg.Service.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown - modern signal handling with context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Wait for shutdown signal
	<-ctx.Done()
	logger.Info("Shutdown signal received")

	// Fail readiness first and wait for propagation
	isShuttingDown.Store(true)
	drainDelay := cfg.GetReadinessDrainDelayDuration()
	if drainDelay > 0 {
		logger.Info("Readiness drain delay started", zap.Duration("delay", drainDelay))
		time.Sleep(drainDelay)
		logger.Info("Readiness drain delay completed", zap.Duration("delay", drainDelay))
	}

	// Shutdown context with configurable timeout
	shutdownTimeout := cfg.GetShutdownTimeoutDuration()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("Shutting down server...", zap.Duration("timeout", shutdownTimeout))

	// Cleanup order: HTTP Server → Publisher → Redis → Database → Tracer

	// 1. Shutdown HTTP server (stop accepting new connections, wait for in-flight requests)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		logger.Info("HTTP server shutdown complete")
	}

	// 2. Close the broker channel
	if err := publisher.Close(); err != nil {
		logger.Error("Publisher close error", zap.Error(err))
	}

	// 3. Close redis
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("Redis close error", zap.Error(err))
		}
	}

	// 4. Close database connections
	pool.Close()
	logger.Info("Database pool closed")

	// 5. Shutdown tracer (flush pending spans)
	if tp != nil {
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Error("Tracer shutdown error", zap.Error(err))
		} else {
			logger.Info("Tracer shutdown complete")
		}
	}

	logger.Info("Graceful shutdown complete")
}
