package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/arman-y/TutorHubBack/internal/config"
	"github.com/arman-y/TutorHubBack/internal/database"
	"github.com/arman-y/TutorHubBack/internal/events"
	"github.com/arman-y/TutorHubBack/internal/logger"
	"github.com/arman-y/TutorHubBack/internal/repository"
	"github.com/arman-y/TutorHubBack/internal/routes"
	"github.com/arman-y/TutorHubBack/internal/services"
	notifyws "github.com/arman-y/TutorHubBack/internal/websocket"
	"github.com/arman-y/TutorHubBack/internal/workers"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() {
		_ = zlog.Sync()
	}()

	// 2. Connect to Database
	if cfg.DBUrl == "" {
		zlog.Fatal("DB_URL is required")
	}
	if err := database.ConnectDB(cfg.DBUrl); err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB()

	// 3. Events + background workers
	publisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaBookingTopic, zlog)
	defer func() {
		_ = publisher.Close()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notifHub := notifyws.NewHub()
	go notifHub.Run()

	sweeper := workers.NewExpirySweeper(
		repository.NewBookingRepository(database.DB),
		services.NewNotificationService(repository.NewNotificationRepository(database.DB), notifHub),
		publisher,
		cfg.ExpirySweepInterval,
		zlog,
	)
	go sweeper.Run(ctx)

	// 4. Setup Fiber
	app := fiber.New()

	app.Use(cors.New())
	app.Use(fiberlogger.New())
	app.Use(recover.New())

	routes.RegisterRoutes(app, cfg, database.DB, publisher, notifHub)

	go func() {
		<-ctx.Done()
		zlog.Info("Shutting down")
		_ = app.Shutdown()
	}()

	// 5. Start Server
	zlog.Info("Server starting", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zlog.Fatal("Server failed to start", zap.Error(err))
	}
}
