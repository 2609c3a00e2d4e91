package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"projectroom/internal/domain"
	"projectroom/internal/service/auth"
)

const (
	SenderContextKey  = "sender"
	ProjectContextKey = "project"
)

func AuthRequired(authService auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return Unauthorized("Missing authorization header")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return Unauthorized("Invalid authorization header format")
		}

		sender, err := authService.Authenticate(parts[1])
		if err != nil {
			return Unauthorized("Invalid or expired token")
		}

		c.Locals(SenderContextKey, sender)
		return c.Next()
	}
}

func GetCurrentSender(c *fiber.Ctx) (domain.Sender, bool) {
	sender, ok := c.Locals(SenderContextKey).(domain.Sender)
	return sender, ok
}

func GetCurrentActor(c *fiber.Ctx) (domain.Actor, bool) {
	sender, ok := GetCurrentSender(c)
	return sender.Actor, ok
}
