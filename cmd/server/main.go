package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"walksocr/internal/config"
	"walksocr/internal/email/noop"
	"walksocr/internal/email/ses"
	"walksocr/internal/handler"
	"walksocr/internal/ocr/openrouter"
	"walksocr/internal/port"
	"walksocr/internal/repository/postgres"
	"walksocr/internal/retry"
	"walksocr/internal/router"
	"walksocr/internal/schema"
	"walksocr/internal/service"
	s3storage "walksocr/internal/storage/s3"
	"walksocr/internal/webhook"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	taskRepo := postgres.NewTaskRepo(db)

	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	registry, err := schema.NewRegistryWithOverrides(cfg.Schema.Overrides())
	if err != nil {
		return fmt.Errorf("invalid schema configuration: %w", err)
	}

	controller := retry.NewController(retry.Config{
		MaxRetries: cfg.Retry.MaxRetries,
		BaseDelay:  time.Duration(cfg.Retry.BaseDelaySecs * float64(time.Second)),
		MaxDelay:   time.Duration(cfg.Retry.MaxDelaySecs * float64(time.Second)),
		Strategy:   retry.Strategy(cfg.Retry.Strategy),
	})

	extractor := openrouter.NewClient(&cfg.OCR)

	docSvc := service.NewDocumentService(s3Client, extractor, registry, controller, cfg.S3.Bucket)
	onboardingSvc := service.NewOnboardingService(taskRepo, s3Client, cfg.S3.Bucket, cfg.S3.MaxFileSizeMB)

	webhookSender := webhook.NewSender(cfg.Webhook.TimeoutSecs, cfg.Webhook.MaxRetries)

	var emailSender port.EmailSender
	switch cfg.Email.Provider {
	case "ses":
		emailSender, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName, cfg.Email.ReviewAddress)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	default:
		emailSender = noop.NewNoopSender()
	}

	worker := service.NewTaskQueueWorker(taskRepo, docSvc, s3Client, webhookSender, emailSender, service.TaskQueueConfig{
		PollInterval:      time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
		Concurrency:       cfg.Queue.Concurrency,
		Bucket:            cfg.S3.Bucket,
		PresignExpirySecs: cfg.S3.PresignExpiry,
	})

	onboardingH := handler.NewOnboardingHandler(onboardingSvc)
	healthH := handler.NewHealthHandler(db)

	r := router.Setup(onboardingH, healthH, cfg.CORS.AllowedOrigins)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Start(ctx)
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("server shutdown: %v", err)
		}
	}()

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}

	<-workerDone
	return nil
}
