package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"projectroom/internal/config"
	"projectroom/internal/handler"
	"projectroom/internal/middleware"
	"projectroom/internal/realtime"
	"projectroom/internal/repository"
	"projectroom/internal/service"
	"projectroom/internal/service/auth"
	"projectroom/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	level := slog.LevelDebug
	if cfg.IsProduction() {
		level = slog.LevelInfo
	}
	appLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.NewPostgresDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redis, err := config.NewRedisClient(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()

	var store storage.ObjectStore
	minioClient, err := config.NewMinIOClient(ctx, cfg)
	if err != nil {
		log.Printf("Warning: Failed to connect to MinIO: %v (document upload will not work)", err)
	} else {
		store = storage.NewMinIOStore(minioClient, cfg.MinIOBucket)
	}

	hub := realtime.NewHub(realtime.HubConfig{
		HeartbeatInterval: cfg.HeartbeatInterval,
		Logger:            appLogger.With("component", "realtime"),
	})
	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		hub.Run(ctx)
	}()

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, hub, redis, store, cfg, appLogger)
	handlers := handler.NewHandlers(services, repos, hub, cfg, appLogger)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler,
		BodyLimit:    64 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health"
		},
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PATCH, DELETE, OPTIONS",
	}))

	setupRoutes(app, handlers, hub, services.Auth, repos)

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		serveErr <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	case <-ctx.Done():
	}

	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	stop()
	<-hubDone
	hub.Close()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
}

func setupRoutes(app *fiber.App, h *handler.Handlers, hub *realtime.Hub, authService auth.Service, repos *repository.Repositories) {
	app.Get("/health", func(c *fiber.Ctx) error {
		connections, rooms := hub.Stats()
		return c.JSON(fiber.Map{
			"status":      "ok",
			"connections": connections,
			"rooms":       rooms,
		})
	})

	app.Get("/ws", h.WS.Upgrade, h.WS.Serve())

	v1 := app.Group("/api/v1")
	protected := v1.Group("", middleware.AuthRequired(authService))
	member := middleware.RequireProjectMember(repos.Project)

	protected.Post("/messages", member, h.Message.Send)

	projects := protected.Group("/projects/:projectId")
	projects.Post("/documents", member, h.Document.Upload)

	notifications := protected.Group("/notifications")
	notifications.Get("/", h.Notification.List)
	notifications.Get("/count", h.Notification.UnreadCounts)
	notifications.Patch("/", h.Notification.MarkAllAsRead)
	notifications.Patch("/:notificationId", h.Notification.MarkAsRead)
	notifications.Delete("/:notificationId", h.Notification.Delete)
}
