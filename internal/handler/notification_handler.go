package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"projectroom/internal/domain"
	"projectroom/internal/middleware"
	"projectroom/internal/service/notification"
)

type NotificationHandler struct {
	notifService notification.Service
}

func NewNotificationHandler(notifService notification.Service) *NotificationHandler {
	return &NotificationHandler{notifService: notifService}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	actor, ok := middleware.GetCurrentActor(c)
	if !ok {
		return middleware.Unauthorized("User not authenticated")
	}

	filter, err := notificationFilter(c.Query("date"), c.Query("type"))
	if err != nil {
		return err
	}

	result, err := h.notifService.List(c.Context(), actor, filter, getPaginationParams(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

func (h *NotificationHandler) UnreadCounts(c *fiber.Ctx) error {
	actor, ok := middleware.GetCurrentActor(c)
	if !ok {
		return middleware.Unauthorized("User not authenticated")
	}

	counts, err := h.notifService.UnreadCounts(c.Context(), actor)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    counts,
	})
}

func (h *NotificationHandler) MarkAsRead(c *fiber.Ctx) error {
	actor, ok := middleware.GetCurrentActor(c)
	if !ok {
		return middleware.Unauthorized("User not authenticated")
	}

	notifID, err := c.ParamsInt("notificationId")
	if err != nil || notifID < 1 {
		return middleware.BadRequest("Invalid notification ID")
	}

	if err := h.notifService.MarkAsRead(c.Context(), actor, int64(notifID)); err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

func (h *NotificationHandler) MarkAllAsRead(c *fiber.Ctx) error {
	actor, ok := middleware.GetCurrentActor(c)
	if !ok {
		return middleware.Unauthorized("User not authenticated")
	}

	updated, err := h.notifService.MarkAllAsRead(c.Context(), actor)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"updated": updated},
	})
}

func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	actor, ok := middleware.GetCurrentActor(c)
	if !ok {
		return middleware.Unauthorized("User not authenticated")
	}

	notifID, err := c.ParamsInt("notificationId")
	if err != nil || notifID < 1 {
		return middleware.BadRequest("Invalid notification ID")
	}

	if err := h.notifService.Delete(c.Context(), actor, int64(notifID)); err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

// notificationFilter reads the list filters. An unknown type is ignored;
// a malformed date is rejected.
func notificationFilter(date, typ string) (domain.NotificationFilter, error) {
	var filter domain.NotificationFilter
	if date != "" {
		day, err := time.Parse(time.DateOnly, date)
		if err != nil {
			return filter, middleware.BadRequest("date must be formatted as YYYY-MM-DD")
		}
		filter.Date = &day
	}
	if t := domain.NotificationType(typ); t.IsValid() {
		filter.Type = t
	}
	return filter, nil
}
