package handler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"projectroom/internal/realtime"
	"projectroom/internal/repository"
	"projectroom/internal/service/auth"
)

const authorizedLookupTimeout = 5 * time.Second

type WSHandler struct {
	hub          *realtime.Hub
	authService  auth.Service
	projectRepo  repository.ProjectRepository
	sendBuffer   int
	writeTimeout time.Duration
	logger       *slog.Logger
}

func NewWSHandler(
	hub *realtime.Hub,
	authService auth.Service,
	projectRepo repository.ProjectRepository,
	sendBuffer int,
	writeTimeout time.Duration,
	logger *slog.Logger,
) *WSHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSHandler{
		hub:          hub,
		authService:  authService,
		projectRepo:  projectRepo,
		sendBuffer:   sendBuffer,
		writeTimeout: writeTimeout,
		logger:       logger,
	}
}

// Upgrade rejects plain HTTP requests to the websocket endpoint.
func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

func (h *WSHandler) Serve() fiber.Handler {
	return websocket.New(h.serve)
}

func (h *WSHandler) serve(conn *websocket.Conn) {
	socket := realtime.NewWSSocket(conn, h.sendBuffer, h.writeTimeout, h.logger)

	sender, err := h.authService.Authenticate(conn.Query("token"))
	if err != nil {
		code, reason := rejection(err)
		h.logger.Info("websocket rejected", "reason", reason)
		_ = socket.Close(code, reason)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), authorizedLookupTimeout)
	authorized, err := h.projectRepo.ListAuthorizedIDs(ctx, sender.Actor)
	cancel()
	if err != nil {
		h.logger.Error("failed to load authorized projects", "actor_id", sender.ID, "role", sender.Role, "error", err)
		_ = socket.Close(websocket.CloseInternalServerErr, "Internal server error")
		return
	}

	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		socket.WritePump()
	}()

	conn.SetPongHandler(func(string) error {
		h.hub.Heartbeat(socket)
		return nil
	})

	h.hub.Connect(sender.Actor, authorized, socket)

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}
		if err := h.hub.HandleFrame(socket, data); err != nil {
			h.logger.Debug("websocket frame rejected", "socket", socket.ID(), "actor_id", sender.ID, "error", err)
		}
	}

	h.hub.Disconnect(socket)
	_ = socket.Close(realtime.CloseNormal, "")
	<-pumpDone
}

// rejection picks the close code for a failed handshake authentication.
func rejection(err error) (int, string) {
	if errors.Is(err, auth.ErrTokenMissing) {
		return realtime.CloseTokenMissing, "Token missing"
	}
	return realtime.CloseInvalidToken, "Invalid token"
}
