package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/physiobook/physiobook-platform/cmd/mainconfig"
	"github.com/physiobook/physiobook-platform/internal/api/router"
	"github.com/physiobook/physiobook-platform/internal/appointments"
	appconfig "github.com/physiobook/physiobook-platform/internal/config"
	"github.com/physiobook/physiobook-platform/internal/llm"
	"github.com/physiobook/physiobook-platform/internal/matching"
	"github.com/physiobook/physiobook-platform/internal/noshow"
	"github.com/physiobook/physiobook-platform/internal/notify"
	"github.com/physiobook/physiobook-platform/internal/observability/metrics"
	"github.com/physiobook/physiobook-platform/internal/patients"
	"github.com/physiobook/physiobook-platform/internal/reminders"
	"github.com/physiobook/physiobook-platform/internal/therapists"
	"github.com/physiobook/physiobook-platform/internal/triage"
	"github.com/physiobook/physiobook-platform/pkg/logging"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting physiobook API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	// Metrics
	predictionMetrics := metrics.NewPredictionMetrics(prometheus.DefaultRegisterer)
	matchingMetrics := metrics.NewMatchingMetrics(prometheus.DefaultRegisterer)

	// LLM client: Gemini primary, Bedrock fallback when configured.
	llmClient := buildLLMClient(ctx, cfg, awsCfg, logger)

	// Repositories
	appointmentsRepo := appointments.NewRepository(pool)
	predictionsRepo := noshow.NewRepository(pool)
	matchingRepo := matching.NewRepository(pool)
	patientsRepo := patients.NewRepository(pool)
	therapistsRepo := therapists.NewRepository(pool)
	remindersRepo := reminders.NewRepository(pool)

	// Matching
	matchCache := matching.NewCache(buildRedisClient(cfg), cfg.MatchCacheTTL)
	ranker := matching.NewRanker(matchingRepo, matchCache, matchingMetrics, logger, cfg.MatchLimit)
	var recommender *matching.Recommender
	if llmClient != nil {
		recommender = matching.NewRecommender(llmClient, cfg.GeminiModelID, logger.Logger)
	}

	// Predictions
	predictor := noshow.NewPredictor(appointmentsRepo, predictionMetrics, logger)

	// Email
	sender := buildEmailSender(cfg, awsCfg, logger)

	// Reminder pipeline
	var queue reminders.Queue
	if cfg.UseMemoryQueue || cfg.ReminderQueueURL == "" {
		queue = reminders.NewMemoryQueue(0)
	} else {
		queue = reminders.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.ReminderQueueURL)
	}
	scheduler := reminders.NewScheduler(remindersRepo, logger)
	dispatcher := reminders.NewDispatcher(remindersRepo, queue, logger, time.Minute)

	// Booking service
	bookingService := appointments.NewService(appointments.ServiceConfig{
		Store:         appointmentsRepo,
		Assessor:      predictor,
		Predictions:   predictionsRepo,
		Patients:      patientsRepo,
		Therapists:    therapistsRepo,
		Sender:        sender,
		Scheduler:     scheduler,
		Metrics:       predictionMetrics,
		Logger:        logger,
		PublicBaseURL: cfg.PublicBaseURL,
	})

	// Triage
	var analyzer *triage.Analyzer
	if llmClient != nil {
		analyzer = triage.NewAnalyzer(llmClient, cfg.GeminiModelID, logger)
	}

	// Handlers
	routerCfg := &router.Config{
		Logger:              logger,
		AppointmentsHandler: appointments.NewHandler(bookingService, logger),
		MatchingHandler:     matching.NewHandler(ranker, recommender, matchingRepo, logger),
		PredictionsHandler:  noshow.NewHandler(predictor, predictionsRepo, logger),
		PatientsHandler:     patients.NewHandler(patientsRepo, logger),
		TherapistsHandler:   therapists.NewHandler(therapistsRepo, logger),
		MetricsHandler:      promhttp.Handler(),
		AdminAuthSecret:     cfg.AdminJWTSecret,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerSecond:  cfg.RateLimitPerSecond,
		RateLimitBurst:      cfg.RateLimitBurst,
	}
	if analyzer != nil {
		routerCfg.TriageHandler = triage.NewHandler(analyzer, logger)
	}
	r := router.New(routerCfg)

	// Reminder workers run for the life of the process.
	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	go func() { _ = dispatcher.Run(workerCtx) }()
	for i := 0; i < cfg.WorkerCount; i++ {
		worker := reminders.NewWorker(queue, sender, remindersRepo, logger)
		go func() { _ = worker.Run(workerCtx) }()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	stopWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func buildLLMClient(ctx context.Context, cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) llm.Client {
	var primary, fallback llm.Client

	if cfg.GeminiAPIKey != "" {
		gemini, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to create Gemini client", "error", err)
		} else {
			primary = gemini
		}
	}
	if cfg.BedrockModelID != "" {
		fallback = llm.NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModelID)
	}

	switch {
	case primary != nil && fallback != nil:
		return llm.NewFallbackClient(primary, fallback, logger.Logger)
	case primary != nil:
		return primary
	case fallback != nil:
		return fallback
	default:
		logger.Warn("no LLM provider configured; triage and recommendations disabled")
		return nil
	}
}

func buildRedisClient(cfg *appconfig.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return redis.NewClient(opts)
}

func buildEmailSender(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) notify.EmailSender {
	if cfg.EmailProvider == "ses" && cfg.SESFromEmail != "" {
		return notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
			ReplyTo:   cfg.EmailReplyTo,
		}, logger)
	}
	if sender := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
		ReplyTo:   cfg.EmailReplyTo,
	}, logger); sender != nil {
		return sender
	}
	logger.Warn("no email provider configured; using stub sender")
	return notify.NewStubEmailSender(logger)
}
