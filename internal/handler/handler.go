package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"projectroom/internal/config"
	"projectroom/internal/domain"
	"projectroom/internal/middleware"
	"projectroom/internal/realtime"
	"projectroom/internal/repository"
	"projectroom/internal/service"
	"projectroom/internal/service/chat"
	"projectroom/internal/service/document"
	"projectroom/internal/service/notification"
)

type Handlers struct {
	WS           *WSHandler
	Message      *MessageHandler
	Document     *DocumentHandler
	Notification *NotificationHandler
}

func NewHandlers(services *service.Services, repos *repository.Repositories, hub *realtime.Hub, cfg *config.Config, logger *slog.Logger) *Handlers {
	return &Handlers{
		WS:           NewWSHandler(hub, services.Auth, repos.Project, cfg.WSSendBuffer, cfg.WSWriteTimeout, logger),
		Message:      NewMessageHandler(services.Chat),
		Document:     NewDocumentHandler(services.Document),
		Notification: NewNotificationHandler(services.Notification),
	}
}

func getPaginationParams(c *fiber.Ctx) domain.PaginationParams {
	params := domain.DefaultPagination()

	if page := c.QueryInt("page", 1); page > 0 {
		params.Page = page
	}
	if limit := c.QueryInt("limit", 10); limit > 0 {
		params.Limit = limit
	}

	params.Validate()
	return params
}

// serviceError turns the sentinel errors of the services into HTTP errors.
// Anything else is passed through and ends up as a 500.
func serviceError(err error) error {
	switch {
	case errors.Is(err, chat.ErrProjectNotFound), errors.Is(err, document.ErrProjectNotFound):
		return middleware.NotFound("Project not found")
	case errors.Is(err, notification.ErrNotificationNotFound):
		return middleware.NotFound("Notification not found")
	case errors.Is(err, document.ErrProjectBlocked):
		return middleware.Forbidden("Project is blocked")
	case errors.Is(err, chat.ErrEmptyMessage),
		errors.Is(err, document.ErrInvalidDocumentType),
		errors.Is(err, document.ErrDocumentNameMissing):
		return middleware.BadRequest(err.Error())
	case errors.Is(err, document.ErrStorageUnavailable):
		return middleware.Unavailable(err.Error())
	default:
		return err
	}
}
