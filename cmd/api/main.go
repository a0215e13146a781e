package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/grademetrix-api/internal/config"
	"github.com/noah-isme/grademetrix-api/internal/database"
	"github.com/noah-isme/grademetrix-api/internal/handler"
	"github.com/noah-isme/grademetrix-api/internal/middleware"
	"github.com/noah-isme/grademetrix-api/internal/repository"
	"github.com/noah-isme/grademetrix-api/internal/router"
	"github.com/noah-isme/grademetrix-api/internal/service"
	"github.com/noah-isme/grademetrix-api/pkg/archive"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	var db *gorm.DB
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		db, err = database.ConnectPostgres(cfg.DatabaseURL)
	default:
		db, err = database.ConnectSQLite(cfg.SQLitePath)
	}
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	courseRepo := repository.NewCourseRepository(db)
	if err := courseRepo.Migrate(context.Background()); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Redis is optional: without it summaries are recomputed per request.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Info().Msg("redis not configured, summary caching disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	store := archive.Detect(cfg.ArchiveDir, logger)
	notifier := service.NewChangeNotifier()

	courseService := service.NewCourseService(courseRepo, validate, store, notifier, logger)
	calculatorService := service.NewCalculatorService(validate, logger)
	summaryService := service.NewSummaryService(courseRepo, redisClient, cfg.SummaryCacheTTL, logger)
	transferService := service.NewTransferService(courseRepo, store, notifier, cfg.AppVersion, logger)
	backupService := service.NewBackupService(courseRepo, notifier, logger)

	courseHandler := handler.NewCourseHandler(courseService, summaryService, logger)
	calculatorHandler := handler.NewCalculatorHandler(calculatorService, logger)
	summaryHandler := handler.NewSummaryHandler(summaryService, logger)
	transferHandler := handler.NewTransferHandler(transferService, summaryService, logger)
	backupHandler := handler.NewBackupHandler(backupService, summaryService, logger)
	eventsHandler := handler.NewEventsHandler(notifier, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		CourseHandler:     courseHandler,
		CalculatorHandler: calculatorHandler,
		SummaryHandler:    summaryHandler,
		TransferHandler:   transferHandler,
		BackupHandler:     backupHandler,
		EventsHandler:     eventsHandler,
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
