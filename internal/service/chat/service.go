package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"projectroom/internal/domain"
	"projectroom/internal/realtime"
	"projectroom/internal/repository"
	"projectroom/internal/service/notification"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrEmptyMessage    = errors.New("message is required")
)

const previewLength = 10

// Broadcaster is the part of the realtime hub the chat flow needs.
type Broadcaster interface {
	ActiveActors(projectID string) domain.ActorSet
	SendChatMessage(frame realtime.MessageFrame, projectID string, sender domain.Actor) realtime.DeliveryReport
}

// Payload is the data block of a chat message frame.
type Payload struct {
	ID          int64         `json:"id"`
	Message     string        `json:"message"`
	Attachments []any         `json:"attachments"`
	SendBy      domain.Sender `json:"sendBy"`
	SendAt      string        `json:"sendAt"`
	ProjectID   string        `json:"projectId"`
}

// Result is what SendMessage reports back to the HTTP layer.
type Result struct {
	Type    realtime.FrameType `json:"type"`
	Message string             `json:"message"`
	Data    Payload            `json:"data"`
}

type Service interface {
	SendMessage(ctx context.Context, sender domain.Sender, projectID, text string) (*Result, error)
}

type service struct {
	db            repository.TxBeginner
	projectRepo   repository.ProjectRepository
	messageRepo   repository.MessageRepository
	notifications notification.Service
	hub           Broadcaster
	logger        *slog.Logger
	now           func() time.Time
}

func NewService(
	db repository.TxBeginner,
	projectRepo repository.ProjectRepository,
	messageRepo repository.MessageRepository,
	notifications notification.Service,
	hub Broadcaster,
	logger *slog.Logger,
) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		db:            db,
		projectRepo:   projectRepo,
		messageRepo:   messageRepo,
		notifications: notifications,
		hub:           hub,
		logger:        logger,
		now:           time.Now,
	}
}

// Summary is the one-line text used for the notification row and the
// activity envelope.
func Summary(senderName string, project *domain.Project, text string) string {
	preview := text
	if r := []rune(text); len(r) > previewLength {
		preview = string(r[:previewLength]) + "..."
	}
	return fmt.Sprintf("%s sends a new message in %s(%s): %s", senderName, project.ProjectName, project.ID, preview)
}

func (s *service) SendMessage(ctx context.Context, sender domain.Sender, projectID, text string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}

	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := s.now().UTC()
	msg := &domain.ChatMessage{
		ProjectID: project.ID,
		Message:   text,
		CreatedAt: now,
	}
	id := sender.ID
	if sender.Role == domain.RoleClient {
		msg.ClientID = &id
	} else {
		msg.UserID = &id
	}

	if err := s.messageRepo.Create(ctx, tx, msg); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	summary := Summary(sender.Name, project, text)
	active := s.hub.ActiveActors(project.ID)

	recipients, err := s.notifications.CreateNotifications(ctx, tx, project, domain.NotificationEvent{
		ProjectID: project.ID,
		Message:   summary,
		Type:      domain.NotifMessage,
	}, sender.Actor, active)
	if err != nil {
		return nil, err
	}

	if err := s.projectRepo.Touch(ctx, tx, project.ID, now); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit message: %w", err)
	}

	result := &Result{
		Type:    realtime.FrameMessage,
		Message: summary,
		Data: Payload{
			ID:          msg.ID,
			Message:     msg.Message,
			Attachments: []any{},
			SendBy:      sender,
			SendAt:      now.Format(time.RFC3339),
			ProjectID:   project.ID,
		},
	}

	// Recipients with a live connection outside the room learn about the
	// message through the activity envelope.
	report := s.hub.SendChatMessage(realtime.Message(summary, result.Data), project.ID, sender.Actor)
	s.notifications.InvalidateUnreadCounts(ctx, recipients)

	s.logger.Info("chat message sent",
		"project_id", project.ID, "message_id", msg.ID, "sender_id", sender.ID, "sender_role", sender.Role,
		"notified", len(recipients), "room", report.Room, "activity", report.Activity)

	return result, nil
}
