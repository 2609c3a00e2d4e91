package mocks

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"

	"projectroom/internal/domain"
)

type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Project), args.Error(1)
}

func (m *ProjectRepository) ListAuthorizedIDs(ctx context.Context, actor domain.Actor) ([]string, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *ProjectRepository) IsParticipant(ctx context.Context, projectID string, userID int64) (bool, error) {
	args := m.Called(ctx, projectID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *ProjectRepository) ListParticipants(ctx context.Context, q sqlx.ExtContext, projectID string) ([]domain.Actor, error) {
	args := m.Called(ctx, q, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Actor), args.Error(1)
}

func (m *ProjectRepository) Touch(ctx context.Context, q sqlx.ExtContext, projectID string, at time.Time) error {
	args := m.Called(ctx, q, projectID, at)
	return args.Error(0)
}

type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) ListIDsByRole(ctx context.Context, q sqlx.ExtContext, role domain.Role) ([]int64, error) {
	args := m.Called(ctx, q, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

type NotificationRepository struct {
	mock.Mock
}

func (m *NotificationRepository) CreateBatch(ctx context.Context, q sqlx.ExtContext, notifications []domain.Notification) error {
	args := m.Called(ctx, q, notifications)
	return args.Error(0)
}

func (m *NotificationRepository) List(ctx context.Context, recipient domain.Recipient, filter domain.NotificationFilter, params domain.PaginationParams) ([]domain.Notification, int64, error) {
	args := m.Called(ctx, recipient, filter, params)
	return args.Get(0).([]domain.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *NotificationRepository) MarkAsRead(ctx context.Context, recipient domain.Recipient, id int64) (bool, error) {
	args := m.Called(ctx, recipient, id)
	return args.Bool(0), args.Error(1)
}

func (m *NotificationRepository) MarkAllAsRead(ctx context.Context, recipient domain.Recipient) (int64, error) {
	args := m.Called(ctx, recipient)
	return args.Get(0).(int64), args.Error(1)
}

func (m *NotificationRepository) Delete(ctx context.Context, recipient domain.Recipient, id int64) (bool, error) {
	args := m.Called(ctx, recipient, id)
	return args.Bool(0), args.Error(1)
}

func (m *NotificationRepository) CountUnreadByType(ctx context.Context, recipient domain.Recipient) (domain.UnreadCounts, error) {
	args := m.Called(ctx, recipient)
	return args.Get(0).(domain.UnreadCounts), args.Error(1)
}
