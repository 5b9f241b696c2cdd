package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/pixelpath-dev/pixelpath-api/internal/config"
	"github.com/pixelpath-dev/pixelpath-api/internal/database"
	"github.com/pixelpath-dev/pixelpath-api/internal/handler"
	"github.com/pixelpath-dev/pixelpath-api/internal/middleware"
	"github.com/pixelpath-dev/pixelpath-api/internal/models"
	"github.com/pixelpath-dev/pixelpath-api/internal/repository"
	"github.com/pixelpath-dev/pixelpath-api/internal/router"
	"github.com/pixelpath-dev/pixelpath-api/internal/service"
	"github.com/pixelpath-dev/pixelpath-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Challenge{}, &models.ChallengeDetail{}, &models.Submission{}, &models.Feedback{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not configured, feedback hot cache disabled")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	} else {
		logger.Warn().Msg("nats url not configured, feedback events disabled")
	}

	if !cfg.AIConfigured() {
		logger.Warn().Msg("openai api key not configured, reviews will use the fallback report")
	}

	reviewer := ai.NewOpenAIReviewer(ai.Config{
		APIKey:    cfg.OpenAIAPIKey,
		Model:     cfg.AIModel,
		MaxTokens: cfg.AIMaxTokens,
		Timeout:   cfg.AITimeout,
		Logger:    logger,
	})

	challengeRepo := repository.NewChallengeRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)

	feedbackService := service.NewFeedbackService(feedbackRepo, submissionRepo, challengeRepo, reviewer, redisClient, cfg.FeedbackCacheTTL, natsConn, logger)
	feedbackHandler := handler.NewFeedbackHandler(feedbackService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		FeedbackHandler: feedbackHandler,
		JWTMiddleware:   middleware.JWTProtected(cfg.JWTSecret),
		GenerateLimit:   middleware.RateLimit("feedback_generate", cfg.GenerateRateLimit, cfg.GenerateRateWindow),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
