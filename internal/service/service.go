package service

import (
	"log/slog"

	"github.com/redis/go-redis/v9"

	"projectroom/internal/config"
	"projectroom/internal/realtime"
	"projectroom/internal/repository"
	"projectroom/internal/service/auth"
	"projectroom/internal/service/chat"
	"projectroom/internal/service/document"
	"projectroom/internal/service/notification"
	"projectroom/internal/storage"
)

type Services struct {
	Auth         auth.Service
	Notification notification.Service
	Chat         chat.Service
	Document     document.Service
}

func NewServices(
	repos *repository.Repositories,
	hub *realtime.Hub,
	redis *redis.Client,
	store storage.ObjectStore,
	cfg *config.Config,
	logger *slog.Logger,
) *Services {
	authService := auth.NewService(cfg.JWTSecret)
	notificationService := notification.NewService(repos.Notification, repos.Project, repos.User, hub, redis, logger)
	chatService := chat.NewService(repos.DB, repos.Project, repos.Message, notificationService, hub, logger)
	documentService := document.NewService(repos.DB, repos.Project, repos.Document, notificationService, hub, store, logger)

	return &Services{
		Auth:         authService,
		Notification: notificationService,
		Chat:         chatService,
		Document:     documentService,
	}
}
