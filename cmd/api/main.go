package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trimwise/trimwise-api/config"
	"github.com/trimwise/trimwise-api/internal/handlers"
	"github.com/trimwise/trimwise-api/internal/middleware"
	"github.com/trimwise/trimwise-api/internal/relay"
	"github.com/trimwise/trimwise-api/internal/services"
	"github.com/trimwise/trimwise-api/pkg/httpclient"
	"github.com/trimwise/trimwise-api/pkg/logger"
	"github.com/trimwise/trimwise-api/pkg/profiling"
	"github.com/trimwise/trimwise-api/pkg/storage"
	"github.com/trimwise/trimwise-api/pkg/tracing"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// buildRelays assembles the configured downstream lead consumers. Email and
// webhook may both be active; with neither configured, accepted leads go to
// the application log so they are never silently dropped.
func buildRelays(cfg *config.Config, httpClient httpclient.Client) []relay.Relay {
	var relays []relay.Relay

	if cfg.Relay.SendGridAPIKey != "" {
		relays = append(relays, relay.NewEmailRelay(cfg.Relay))
		logger.Info("Email relay enabled", zap.String("inbox", cfg.Relay.LeadInboxEmail))
	}
	if cfg.Relay.WebhookURL != "" {
		relays = append(relays, relay.NewWebhookRelay(httpClient, cfg.Relay.WebhookURL, cfg.Relay.WebhookSecret))
		logger.Info("Webhook relay enabled")
	}
	if len(relays) == 0 {
		relays = append(relays, relay.LogRelay{})
		logger.Warn("No lead relay configured, accepted leads will only be logged")
	}

	return relays
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting TrimWise API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
	)

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceNamespace,
		cfg.Observability.ServiceVersion,
		cfg.Observability.ServiceInstanceID,
		cfg.Server.AppEnv,
		cfg.Observability.CollectorEndpoint,
	)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	// Initialize continuous profiling
	profilerStop, err := profiling.InitProfiler(
		cfg.Profiling,
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceNamespace,
		cfg.Observability.ServiceVersion,
		cfg.Observability.ServiceInstanceID,
		cfg.Server.AppEnv,
	)
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer profilerStop()

	// Initialize the bill archive when storage credentials are configured.
	// The service treats a nil archiver as "archival disabled".
	var archiver services.AttachmentArchiver
	if cfg.Storage.AccessKeyID != "" && cfg.Storage.SecretAccessKey != "" {
		storageClient, err := storage.NewClient(
			cfg.Storage.AccessKeyID,
			cfg.Storage.SecretAccessKey,
			cfg.Storage.BucketName,
			cfg.Storage.Endpoint,
			cfg.Storage.Region,
		)
		if err != nil {
			logger.Fatal("Failed to initialize storage client", zap.Error(err))
		}
		archiver = storageClient
	}

	// Initialize HTTP client for downstream relay calls
	relayTimeout := time.Duration(cfg.Relay.TimeoutSeconds) * time.Second
	httpClient := httpclient.NewStandardClientWithTimeout(relayTimeout)

	// Initialize lead relay dispatcher and service
	dispatcher := relay.NewDispatcher(relayTimeout, buildRelays(cfg, httpClient)...)
	leadService := services.NewLeadService(dispatcher, archiver)

	// Initialize handlers
	leadHandler := handlers.NewLeadHandler(leadService)
	catalogHandler := handlers.NewCatalogHandler()
	healthHandler := handlers.NewHealthHandler()

	// Set up Gin router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()
	// Reject non-POST requests to the submission route with 405 instead of 404
	router.HandleMethodNotAllowed = true

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName)) // OpenTelemetry tracing
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// CORS configuration - SECURITY: Only allow specific origins
	allowedOrigins := cfg.Server.AllowedOrigins
	// Allow localhost in development
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:  allowedOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "traceparent", "tracestate"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	// Rate limiting: the read-only routes get a per-IP token bucket; the
	// submission route gets the stricter fixed-window quota, checked before
	// the body is parsed.
	generalRateLimiter := middleware.NewRateLimiter(
		rate.Limit(cfg.Intake.GeneralRatePerSecond),
		cfg.Intake.GeneralBurst,
	)
	submissionLimiter := middleware.NewFixedWindowLimiter(
		cfg.Intake.SubmissionQuota,
		time.Duration(cfg.Intake.QuotaWindowSeconds)*time.Second,
	)

	// Utility endpoints (not versioned - operational endpoints)
	api := router.Group("/api")
	api.GET("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.GET("/catalog", generalRateLimiter.Middleware(), catalogHandler.GetCatalog)

	// The multipart field overhead rides on top of the attachment ceiling, so
	// the body limit adds headroom.
	submissionBodyLimit := cfg.Intake.MaxAttachmentBytes + 2*1024*1024
	v1.POST("/leads",
		middleware.SubmissionQuotaMiddleware(submissionLimiter),
		middleware.BodySizeLimitMiddleware(submissionBodyLimit),
		leadHandler.SubmitLead,
	)

	// Create HTTP server
	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // SECURITY: 1 MB max header size
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	// Drain in-flight relay deliveries so accepted leads are not dropped on
	// deploy.
	if err := dispatcher.Wait(ctx); err != nil {
		logger.Warn("Relay deliveries still in flight at shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
