package notification_test

import (
	"context"
	"errors"
	"testing"

	"projectroom/internal/domain"
	"projectroom/internal/mocks"
	"projectroom/internal/realtime"
	"projectroom/internal/service/notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordingPusher struct {
	frames []realtime.NotificationFrame
	actors [][]domain.Actor
}

func (p *recordingPusher) PushNotification(frame realtime.NotificationFrame, actors []domain.Actor) int {
	p.frames = append(p.frames, frame)
	p.actors = append(p.actors, actors)
	return len(actors)
}

type fixture struct {
	notifRepo   *mocks.NotificationRepository
	projectRepo *mocks.ProjectRepository
	userRepo    *mocks.UserRepository
	pusher      *recordingPusher
	svc         notification.Service
}

func newFixture() *fixture {
	f := &fixture{
		notifRepo:   new(mocks.NotificationRepository),
		projectRepo: new(mocks.ProjectRepository),
		userRepo:    new(mocks.UserRepository),
		pusher:      &recordingPusher{},
	}
	f.svc = notification.NewService(f.notifRepo, f.projectRepo, f.userRepo, f.pusher, nil, nil) // Redis nil
	return f
}

func TestService_CreateNotifications(t *testing.T) {
	ctx := context.Background()
	project := &domain.Project{ID: "PR-1", ProjectName: "Bridge", ClientID: int64Ptr(10)}
	event := domain.NotificationEvent{ProjectID: "PR-1", Message: "Cora sends a new message", Type: domain.NotifMessage}
	sender := domain.Actor{ID: 5, Role: domain.RoleProjectCoordinator}

	t.Run("Success", func(t *testing.T) {
		f := newFixture()
		f.projectRepo.On("ListParticipants", ctx, mock.Anything, "PR-1").Return(coordinators(5, 6), nil).Once()
		f.userRepo.On("ListIDsByRole", ctx, mock.Anything, domain.RoleAdmin).Return([]int64{1}, nil).Once()
		f.notifRepo.On("CreateBatch", ctx, mock.Anything, mock.MatchedBy(func(rows []domain.Notification) bool {
			if len(rows) != 3 {
				return false
			}
			for _, n := range rows {
				if n.Validate() != nil || n.Type != domain.NotifMessage || n.ProjectID != "PR-1" || n.IsRead {
					return false
				}
			}
			return *rows[0].UserID == 6 && *rows[1].ClientID == 10 && *rows[2].UserID == 1
		})).Return(nil).Once()

		recipients, err := f.svc.CreateNotifications(ctx, nil, project, event, sender, domain.NewActorSet())

		require.NoError(t, err)
		assert.Len(t, recipients, 3)
		assert.Empty(t, f.pusher.frames, "nothing is pushed before commit")
		f.projectRepo.AssertExpectations(t)
		f.userRepo.AssertExpectations(t)
		f.notifRepo.AssertExpectations(t)
	})

	t.Run("Zero recipients inserts nothing", func(t *testing.T) {
		f := newFixture()
		bare := &domain.Project{ID: "PR-1"}
		active := domain.NewActorSet(domain.Actor{ID: 6, Role: domain.RoleProjectCoordinator})
		f.projectRepo.On("ListParticipants", ctx, mock.Anything, "PR-1").Return(coordinators(5, 6), nil).Once()
		f.userRepo.On("ListIDsByRole", ctx, mock.Anything, domain.RoleAdmin).Return([]int64{}, nil).Once()

		recipients, err := f.svc.CreateNotifications(ctx, nil, bare, event, sender, active)

		require.NoError(t, err)
		assert.Empty(t, recipients)
		f.notifRepo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Insert failure is returned", func(t *testing.T) {
		f := newFixture()
		f.projectRepo.On("ListParticipants", ctx, mock.Anything, "PR-1").Return(coordinators(6), nil).Once()
		f.userRepo.On("ListIDsByRole", ctx, mock.Anything, domain.RoleAdmin).Return([]int64{}, nil).Once()
		f.notifRepo.On("CreateBatch", ctx, mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()

		recipients, err := f.svc.CreateNotifications(ctx, nil, project, event, sender, domain.NewActorSet())

		assert.Nil(t, recipients)
		assert.ErrorContains(t, err, "disk full")
	})

	t.Run("Participant lookup failure", func(t *testing.T) {
		f := newFixture()
		f.projectRepo.On("ListParticipants", ctx, mock.Anything, "PR-1").Return(nil, errors.New("timeout")).Once()

		_, err := f.svc.CreateNotifications(ctx, nil, project, event, sender, domain.NewActorSet())

		assert.ErrorContains(t, err, "participants")
	})
}

func TestService_PushNotifications(t *testing.T) {
	f := newFixture()
	frame := realtime.Notification(realtime.NotifyDocument, "uploaded")
	recipients := []domain.Recipient{
		{Kind: domain.RecipientClient, ID: 10, Role: domain.RoleClient},
		{Kind: domain.RecipientUser, ID: 6, Role: domain.RoleProjectCoordinator},
	}

	n := f.svc.PushNotifications(frame, recipients)

	assert.Equal(t, 2, n)
	require.Len(t, f.pusher.actors, 1)
	assert.Equal(t, []domain.Actor{
		{ID: 10, Role: domain.RoleClient},
		{ID: 6, Role: domain.RoleProjectCoordinator},
	}, f.pusher.actors[0])

	assert.Zero(t, f.svc.PushNotifications(frame, nil))
}

func TestService_ReadSide(t *testing.T) {
	ctx := context.Background()
	client := domain.Actor{ID: 10, Role: domain.RoleClient}
	coordinator := domain.Actor{ID: 10, Role: domain.RoleProjectCoordinator}

	t.Run("List scopes clients by client id", func(t *testing.T) {
		f := newFixture()
		params := domain.PaginationParams{Page: 1, Limit: 10}
		rows := []domain.Notification{{ID: 1, ClientID: int64Ptr(10)}}
		f.notifRepo.On("List", ctx, domain.RecipientOf(client), domain.NotificationFilter{}, params).
			Return(rows, int64(1), nil).Once()

		page, err := f.svc.List(ctx, client, domain.NotificationFilter{}, domain.PaginationParams{})

		require.NoError(t, err)
		assert.Equal(t, rows, page.Data)
		assert.Equal(t, 1, page.Pagination.TotalPages)
		f.notifRepo.AssertExpectations(t)
	})

	t.Run("MarkAsRead not found", func(t *testing.T) {
		f := newFixture()
		f.notifRepo.On("MarkAsRead", ctx, domain.RecipientOf(coordinator), int64(7)).Return(false, nil).Once()

		err := f.svc.MarkAsRead(ctx, coordinator, 7)
		assert.ErrorIs(t, err, notification.ErrNotificationNotFound)
	})

	t.Run("MarkAllAsRead", func(t *testing.T) {
		f := newFixture()
		f.notifRepo.On("MarkAllAsRead", ctx, domain.RecipientOf(coordinator)).Return(int64(4), nil).Once()

		n, err := f.svc.MarkAllAsRead(ctx, coordinator)
		require.NoError(t, err)
		assert.Equal(t, int64(4), n)
	})

	t.Run("Delete", func(t *testing.T) {
		f := newFixture()
		f.notifRepo.On("Delete", ctx, domain.RecipientOf(client), int64(3)).Return(true, nil).Once()
		f.notifRepo.On("Delete", ctx, domain.RecipientOf(client), int64(4)).Return(false, nil).Once()

		assert.NoError(t, f.svc.Delete(ctx, client, 3))
		assert.ErrorIs(t, f.svc.Delete(ctx, client, 4), notification.ErrNotificationNotFound)
	})

	t.Run("UnreadCounts without cache", func(t *testing.T) {
		f := newFixture()
		want := domain.UnreadCounts{DocumentCount: 2, MessageCount: 5}
		f.notifRepo.On("CountUnreadByType", ctx, domain.RecipientOf(client)).Return(want, nil).Once()

		got, err := f.svc.UnreadCounts(ctx, client)
		require.NoError(t, err)
		assert.Equal(t, want, *got)
	})
}
