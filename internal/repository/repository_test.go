package repository_test

import (
	"context"
	"testing"
	"time"

	"projectroom/internal/domain"
	"projectroom/internal/repository"
	"projectroom/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T) (*repository.Repositories, *testutil.Fixture) {
	db := testutil.NewDB(t)
	f := testutil.NewFixture(t, db)

	f.Client(10, "Acme")
	f.User(1, "Root", string(domain.RoleAdmin))
	f.User(2, "Second Admin", string(domain.RoleAdmin))
	f.User(5, "Cora", string(domain.RoleProjectCoordinator))
	f.User(6, "Cole", string(domain.RoleProjectCoordinator))
	f.User(20, "Vera", string(domain.RoleClientVendor))
	f.Project("PR-1", "Bridge", testutil.Int64(10), testutil.Int64(20), false)
	f.Project("PR-2", "Tower", nil, testutil.Int64(20), true)
	f.Participant("PR-1", 5)
	f.Participant("PR-1", 6)
	f.Participant("PR-2", 6)

	return repository.NewRepositories(db), f
}

func TestProjectRepository(t *testing.T) {
	repos, f := seed(t)
	ctx := context.Background()

	t.Run("GetByID", func(t *testing.T) {
		p, err := repos.Project.GetByID(ctx, "PR-1")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, "Bridge", p.ProjectName)
		assert.Equal(t, int64(10), *p.ClientID)
		assert.False(t, p.IsBlock)
		assert.Nil(t, p.UpdatedAt)
	})

	t.Run("GetByID not found", func(t *testing.T) {
		p, err := repos.Project.GetByID(ctx, "PR-404")
		assert.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("ListAuthorizedIDs", func(t *testing.T) {
		cases := []struct {
			actor domain.Actor
			want  []string
		}{
			{domain.Actor{ID: 10, Role: domain.RoleClient}, []string{"PR-1"}},
			{domain.Actor{ID: 20, Role: domain.RoleClientVendor}, []string{"PR-1", "PR-2"}},
			{domain.Actor{ID: 6, Role: domain.RoleProjectCoordinator}, []string{"PR-1", "PR-2"}},
			{domain.Actor{ID: 1, Role: domain.RoleAdmin}, []string{}},
		}
		for _, tc := range cases {
			ids, err := repos.Project.ListAuthorizedIDs(ctx, tc.actor)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ids, "actor %+v", tc.actor)
		}
	})

	t.Run("IsParticipant", func(t *testing.T) {
		ok, err := repos.Project.IsParticipant(ctx, "PR-2", 6)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repos.Project.IsParticipant(ctx, "PR-2", 5)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("ListParticipants and Touch in a transaction", func(t *testing.T) {
		tx, err := repos.DB.BeginTxx(ctx, nil)
		require.NoError(t, err)
		defer tx.Rollback()

		participants, err := repos.Project.ListParticipants(ctx, tx, "PR-1")
		require.NoError(t, err)
		assert.Equal(t, []domain.Actor{
			{ID: 5, Role: domain.RoleProjectCoordinator},
			{ID: 6, Role: domain.RoleProjectCoordinator},
		}, participants)

		at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		require.NoError(t, repos.Project.Touch(ctx, tx, "PR-1", at))
		require.NoError(t, tx.Commit())

		p, err := repos.Project.GetByID(ctx, "PR-1")
		require.NoError(t, err)
		require.NotNil(t, p.UpdatedAt)
		assert.True(t, at.Equal(*p.UpdatedAt))
	})

	t.Run("Participants keep their own role", func(t *testing.T) {
		f.Participant("PR-2", 2)

		participants, err := repos.Project.ListParticipants(ctx, repos.DB, "PR-2")
		require.NoError(t, err)
		assert.Equal(t, []domain.Actor{
			{ID: 2, Role: domain.RoleAdmin},
			{ID: 6, Role: domain.RoleProjectCoordinator},
		}, participants)
	})
}

func TestUserRepository(t *testing.T) {
	repos, _ := seed(t)
	ctx := context.Background()

	ids, err := repos.User.ListIDsByRole(ctx, repos.DB, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)
}

func TestMessageAndDocumentRepository(t *testing.T) {
	repos, f := seed(t)
	ctx := context.Background()

	tx, err := repos.DB.BeginTxx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	msg := &domain.ChatMessage{ProjectID: "PR-1", UserID: testutil.Int64(5), Message: "hello", CreatedAt: time.Now()}
	require.NoError(t, repos.Message.Create(ctx, tx, msg))
	assert.NotZero(t, msg.ID)

	doc := &domain.ProjectDocument{
		ProjectID:    "PR-1",
		DocumentName: "Floor plan",
		DocumentType: domain.DocumentFinal,
		FileName:     "plan.pdf",
		ObjectKey:    "projects/PR-1/plan.pdf",
		ContentType:  "application/pdf",
		Size:         2048,
		UploadBy:     domain.UploadByClient,
		ClientID:     testutil.Int64(10),
		UploadDate:   time.Now(),
	}
	require.NoError(t, repos.Document.Create(ctx, tx, doc))
	assert.NotZero(t, doc.ID)

	require.NoError(t, tx.Commit())
	assert.Equal(t, 1, f.Count("chat_messages"))
	assert.Equal(t, 1, f.Count("project_documents"))
}

func TestNotificationRepository_CreateBatch(t *testing.T) {
	repos, f := seed(t)
	ctx := context.Background()

	t.Run("Empty batch", func(t *testing.T) {
		require.NoError(t, repos.Notification.CreateBatch(ctx, repos.DB, nil))
		assert.Equal(t, 0, f.Count("notifications"))
	})

	t.Run("Rejects a row without exactly one recipient", func(t *testing.T) {
		err := repos.Notification.CreateBatch(ctx, repos.DB, []domain.Notification{
			{ProjectID: "PR-1", Message: "m", Type: domain.NotifMessage},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidRecipient)
	})

	t.Run("Rolled back with the transaction", func(t *testing.T) {
		tx, err := repos.DB.BeginTxx(ctx, nil)
		require.NoError(t, err)

		event := domain.NotificationEvent{ProjectID: "PR-1", Message: "m", Type: domain.NotifMessage}
		rows := []domain.Notification{
			domain.Recipient{Kind: domain.RecipientUser, ID: 5}.Notification(event),
			domain.Recipient{Kind: domain.RecipientClient, ID: 10}.Notification(event),
		}
		require.NoError(t, repos.Notification.CreateBatch(ctx, tx, rows))
		require.NoError(t, tx.Rollback())

		assert.Equal(t, 0, f.Count("notifications"))
	})

	t.Run("Committed", func(t *testing.T) {
		tx, err := repos.DB.BeginTxx(ctx, nil)
		require.NoError(t, err)

		event := domain.NotificationEvent{ProjectID: "PR-1", Message: "m", Type: domain.NotifDocument}
		rows := []domain.Notification{
			domain.Recipient{Kind: domain.RecipientUser, ID: 5}.Notification(event),
			domain.Recipient{Kind: domain.RecipientUser, ID: 1}.Notification(event),
			domain.Recipient{Kind: domain.RecipientClient, ID: 10}.Notification(event),
		}
		require.NoError(t, repos.Notification.CreateBatch(ctx, tx, rows))
		require.NoError(t, tx.Commit())

		assert.Equal(t, 3, f.Count("notifications"))
	})
}

func TestNotificationRepository_ReadSide(t *testing.T) {
	repos, f := seed(t)
	ctx := context.Background()

	day := time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
	cora := domain.Recipient{Kind: domain.RecipientUser, ID: 5, Role: domain.RoleProjectCoordinator}
	acme := domain.Recipient{Kind: domain.RecipientClient, ID: 10, Role: domain.RoleClient}

	f.Notification("PR-1", nil, testutil.Int64(5), "message", false, day)
	f.Notification("PR-1", nil, testutil.Int64(5), "document", false, day.Add(time.Hour))
	f.Notification("PR-1", nil, testutil.Int64(5), "message", true, day.Add(2*time.Hour))
	f.Notification("PR-1", nil, testutil.Int64(5), "message", false, day.AddDate(0, 0, -1))
	// A client with the same numeric id as a user is a different recipient.
	f.Notification("PR-1", testutil.Int64(5), nil, "message", false, day)
	f.Notification("PR-1", testutil.Int64(10), nil, "document", false, day)

	params := domain.DefaultPagination()

	t.Run("Defaults to unread", func(t *testing.T) {
		list, total, err := repos.Notification.List(ctx, cora, domain.NotificationFilter{}, params)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, list, 3)
		for _, n := range list {
			assert.False(t, n.IsRead)
			assert.Equal(t, int64(5), *n.UserID)
		}
		assert.True(t, list[0].CreatedAt.After(list[1].CreatedAt))
	})

	t.Run("Date returns the whole day read or not", func(t *testing.T) {
		date := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
		list, total, err := repos.Notification.List(ctx, cora, domain.NotificationFilter{Date: &date}, params)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, list, 3)
	})

	t.Run("Type filter", func(t *testing.T) {
		list, total, err := repos.Notification.List(ctx, cora, domain.NotificationFilter{Type: domain.NotifDocument}, params)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, domain.NotifDocument, list[0].Type)
	})

	t.Run("Pagination", func(t *testing.T) {
		list, total, err := repos.Notification.List(ctx, cora, domain.NotificationFilter{}, domain.PaginationParams{Page: 2, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, list, 1)
	})

	t.Run("Unread counts", func(t *testing.T) {
		counts, err := repos.Notification.CountUnreadByType(ctx, cora)
		require.NoError(t, err)
		assert.Equal(t, domain.UnreadCounts{DocumentCount: 1, MessageCount: 2}, counts)

		counts, err = repos.Notification.CountUnreadByType(ctx, acme)
		require.NoError(t, err)
		assert.Equal(t, domain.UnreadCounts{DocumentCount: 1}, counts)
	})

	t.Run("Mark as read is scoped to the recipient", func(t *testing.T) {
		list, _, err := repos.Notification.List(ctx, acme, domain.NotificationFilter{}, params)
		require.NoError(t, err)
		require.Len(t, list, 1)

		ok, err := repos.Notification.MarkAsRead(ctx, cora, list[0].ID)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = repos.Notification.MarkAsRead(ctx, acme, list[0].ID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Mark all as read", func(t *testing.T) {
		n, err := repos.Notification.MarkAllAsRead(ctx, cora)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		counts, err := repos.Notification.CountUnreadByType(ctx, cora)
		require.NoError(t, err)
		assert.Zero(t, counts)
	})

	t.Run("Delete is scoped to the recipient", func(t *testing.T) {
		date := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
		list, _, err := repos.Notification.List(ctx, cora, domain.NotificationFilter{Date: &date}, params)
		require.NoError(t, err)
		require.NotEmpty(t, list)

		ok, err := repos.Notification.Delete(ctx, acme, list[0].ID)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = repos.Notification.Delete(ctx, cora, list[0].ID)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 5, f.Count("notifications"))
	})
}
