package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"projectroom/internal/domain"
	"projectroom/internal/realtime"
	"projectroom/internal/repository"
)

var ErrNotificationNotFound = errors.New("notification not found")

const unreadCountsTTL = 5 * time.Minute

// Pusher delivers a frame to the live connections of the given actors.
type Pusher interface {
	PushNotification(frame realtime.NotificationFrame, actors []domain.Actor) int
}

type Service interface {
	// CreateNotifications persists one row per recipient of event inside tx
	// and returns the recipients. Nothing is pushed; call PushNotifications
	// once tx has committed.
	CreateNotifications(ctx context.Context, tx sqlx.ExtContext, project *domain.Project, event domain.NotificationEvent, sender domain.Actor, active domain.ActorSet) ([]domain.Recipient, error)
	PushNotifications(frame realtime.NotificationFrame, recipients []domain.Recipient) int
	InvalidateUnreadCounts(ctx context.Context, recipients []domain.Recipient)

	List(ctx context.Context, actor domain.Actor, filter domain.NotificationFilter, params domain.PaginationParams) (domain.PaginatedResponse[domain.Notification], error)
	MarkAsRead(ctx context.Context, actor domain.Actor, id int64) error
	MarkAllAsRead(ctx context.Context, actor domain.Actor) (int64, error)
	Delete(ctx context.Context, actor domain.Actor, id int64) error
	UnreadCounts(ctx context.Context, actor domain.Actor) (*domain.UnreadCounts, error)
}

type service struct {
	notifRepo   repository.NotificationRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	pusher      Pusher
	redis       *redis.Client
	logger      *slog.Logger
}

func NewService(
	notifRepo repository.NotificationRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	pusher Pusher,
	redis *redis.Client,
	logger *slog.Logger,
) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		notifRepo:   notifRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		pusher:      pusher,
		redis:       redis,
		logger:      logger,
	}
}

func (s *service) CreateNotifications(
	ctx context.Context,
	tx sqlx.ExtContext,
	project *domain.Project,
	event domain.NotificationEvent,
	sender domain.Actor,
	active domain.ActorSet,
) ([]domain.Recipient, error) {
	participants, err := s.projectRepo.ListParticipants(ctx, tx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project participants: %w", err)
	}

	adminIDs, err := s.userRepo.ListIDsByRole(ctx, tx, domain.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}

	recipients := ComputeRecipients(project, sender, active, participants, adminIDs)
	if len(recipients) == 0 {
		return nil, nil
	}

	rows := make([]domain.Notification, 0, len(recipients))
	for _, r := range recipients {
		rows = append(rows, r.Notification(event))
	}

	if err := s.notifRepo.CreateBatch(ctx, tx, rows); err != nil {
		return nil, fmt.Errorf("failed to create notifications: %w", err)
	}

	s.logger.Debug("notifications created",
		"project_id", project.ID, "type", event.Type, "recipients", len(recipients), "active", len(active))
	return recipients, nil
}

func (s *service) PushNotifications(frame realtime.NotificationFrame, recipients []domain.Recipient) int {
	if s.pusher == nil || len(recipients) == 0 {
		return 0
	}
	actors := make([]domain.Actor, 0, len(recipients))
	for _, r := range recipients {
		actors = append(actors, r.Actor())
	}
	return s.pusher.PushNotification(frame, actors)
}

func unreadCountsKey(r domain.Recipient) string {
	return fmt.Sprintf("notifications:unread:%s:%d", r.Kind, r.ID)
}

func (s *service) InvalidateUnreadCounts(ctx context.Context, recipients []domain.Recipient) {
	if s.redis == nil || len(recipients) == 0 {
		return
	}
	keys := make([]string, 0, len(recipients))
	for _, r := range recipients {
		keys = append(keys, unreadCountsKey(r))
	}
	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn("failed to invalidate unread counts", "keys", len(keys), "error", err)
	}
}

func (s *service) List(ctx context.Context, actor domain.Actor, filter domain.NotificationFilter, params domain.PaginationParams) (domain.PaginatedResponse[domain.Notification], error) {
	params.Validate()

	notifications, total, err := s.notifRepo.List(ctx, domain.RecipientOf(actor), filter, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Notification]{}, err
	}

	return domain.NewPaginatedResponse(notifications, params.Page, params.Limit, total), nil
}

func (s *service) MarkAsRead(ctx context.Context, actor domain.Actor, id int64) error {
	recipient := domain.RecipientOf(actor)
	ok, err := s.notifRepo.MarkAsRead(ctx, recipient, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	if !ok {
		return ErrNotificationNotFound
	}
	s.InvalidateUnreadCounts(ctx, []domain.Recipient{recipient})
	return nil
}

func (s *service) MarkAllAsRead(ctx context.Context, actor domain.Actor) (int64, error) {
	recipient := domain.RecipientOf(actor)
	n, err := s.notifRepo.MarkAllAsRead(ctx, recipient)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	s.InvalidateUnreadCounts(ctx, []domain.Recipient{recipient})
	return n, nil
}

func (s *service) Delete(ctx context.Context, actor domain.Actor, id int64) error {
	recipient := domain.RecipientOf(actor)
	ok, err := s.notifRepo.Delete(ctx, recipient, id)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if !ok {
		return ErrNotificationNotFound
	}
	s.InvalidateUnreadCounts(ctx, []domain.Recipient{recipient})
	return nil
}

func (s *service) UnreadCounts(ctx context.Context, actor domain.Actor) (*domain.UnreadCounts, error) {
	recipient := domain.RecipientOf(actor)
	cacheKey := unreadCountsKey(recipient)

	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var counts domain.UnreadCounts
			if json.Unmarshal([]byte(cached), &counts) == nil {
				return &counts, nil
			}
		}
	}

	counts, err := s.notifRepo.CountUnreadByType(ctx, recipient)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	if s.redis != nil {
		if data, err := json.Marshal(counts); err == nil {
			s.redis.Set(ctx, cacheKey, data, unreadCountsTTL)
		}
	}

	return &counts, nil
}
