package handler

import (
	"github.com/gofiber/fiber/v2"

	"projectroom/internal/domain"
	"projectroom/internal/middleware"
	"projectroom/internal/service/chat"
)

type MessageHandler struct {
	chatService chat.Service
}

func NewMessageHandler(chatService chat.Service) *MessageHandler {
	return &MessageHandler{chatService: chatService}
}

func (h *MessageHandler) Send(c *fiber.Ctx) error {
	sender, ok := middleware.GetCurrentSender(c)
	if !ok {
		return middleware.Unauthorized("User not authenticated")
	}

	var input domain.SendMessageInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	if project := middleware.GetProject(c); project != nil {
		input.ProjectID = project.ID
	}
	if input.ProjectID == "" {
		return middleware.BadRequest("projectId is required")
	}

	result, err := h.chatService.SendMessage(c.Context(), sender, input.ProjectID, input.Message)
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    result,
		"message": "Message send successfully",
	})
}
