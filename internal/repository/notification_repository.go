package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"projectroom/internal/domain"
)

type NotificationRepository interface {
	// CreateBatch inserts all rows with a single statement on q. An empty
	// batch is a no-op.
	CreateBatch(ctx context.Context, q sqlx.ExtContext, notifications []domain.Notification) error
	List(ctx context.Context, recipient domain.Recipient, filter domain.NotificationFilter, params domain.PaginationParams) ([]domain.Notification, int64, error)
	MarkAsRead(ctx context.Context, recipient domain.Recipient, id int64) (bool, error)
	MarkAllAsRead(ctx context.Context, recipient domain.Recipient) (int64, error)
	Delete(ctx context.Context, recipient domain.Recipient, id int64) (bool, error)
	CountUnreadByType(ctx context.Context, recipient domain.Recipient) (domain.UnreadCounts, error)
}

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

const notificationColumns = `id, project_id, client_id, user_id, message, type, is_read, created_at, updated_at`

func recipientColumn(r domain.Recipient) string {
	if r.Kind == domain.RecipientClient {
		return "client_id"
	}
	return "user_id"
}

func (r *notificationRepository) CreateBatch(ctx context.Context, q sqlx.ExtContext, notifications []domain.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	now := time.Now().UTC()
	rows := make([]string, 0, len(notifications))
	args := make([]interface{}, 0, len(notifications)*8)
	for i := range notifications {
		n := &notifications[i]
		if err := n.Validate(); err != nil {
			return err
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = now
		}
		n.UpdatedAt = n.CreatedAt
		rows = append(rows, "(?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			n.ProjectID, n.ClientID, n.UserID, n.Message, n.Type, n.IsRead,
			n.CreatedAt.UTC(), n.UpdatedAt.UTC(),
		)
	}

	query := `
		INSERT INTO notifications (project_id, client_id, user_id, message, type, is_read, created_at, updated_at)
		VALUES ` + strings.Join(rows, ", ")

	_, err := q.ExecContext(ctx, q.Rebind(query), args...)
	return err
}

func (r *notificationRepository) List(ctx context.Context, recipient domain.Recipient, filter domain.NotificationFilter, params domain.PaginationParams) ([]domain.Notification, int64, error) {
	params.Validate()

	where := []string{recipientColumn(recipient) + " = ?"}
	args := []interface{}{recipient.ID}

	if filter.Date != nil {
		y, m, d := filter.Date.UTC().Date()
		start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		where = append(where, "created_at >= ?", "created_at < ?")
		args = append(args, start, start.AddDate(0, 0, 1))
	} else {
		where = append(where, "is_read = false")
	}

	if filter.Type != "" {
		where = append(where, "type = ?")
		args = append(args, filter.Type)
	}

	clause := strings.Join(where, " AND ")

	var total int64
	countQuery := r.db.Rebind(`SELECT COUNT(*) FROM notifications WHERE ` + clause)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	notifications := []domain.Notification{}
	query := r.db.Rebind(`
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE ` + clause + `
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`)
	args = append(args, params.Limit, params.Offset())
	if err := r.db.SelectContext(ctx, &notifications, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}

	return notifications, total, nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, recipient domain.Recipient, id int64) (bool, error) {
	query := r.db.Rebind(`
		UPDATE notifications SET is_read = true, updated_at = ?
		WHERE id = ? AND ` + recipientColumn(recipient) + ` = ?`)

	res, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id, recipient.ID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, recipient domain.Recipient) (int64, error) {
	query := r.db.Rebind(`
		UPDATE notifications SET is_read = true, updated_at = ?
		WHERE ` + recipientColumn(recipient) + ` = ? AND is_read = false`)

	res, err := r.db.ExecContext(ctx, query, time.Now().UTC(), recipient.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *notificationRepository) Delete(ctx context.Context, recipient domain.Recipient, id int64) (bool, error) {
	query := r.db.Rebind(`DELETE FROM notifications WHERE id = ? AND ` + recipientColumn(recipient) + ` = ?`)

	res, err := r.db.ExecContext(ctx, query, id, recipient.ID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *notificationRepository) CountUnreadByType(ctx context.Context, recipient domain.Recipient) (domain.UnreadCounts, error) {
	var rows []struct {
		Type  domain.NotificationType `db:"type"`
		Count int64                   `db:"count"`
	}
	query := r.db.Rebind(`
		SELECT type, COUNT(*) AS count FROM notifications
		WHERE ` + recipientColumn(recipient) + ` = ? AND is_read = false
		GROUP BY type`)

	var counts domain.UnreadCounts
	if err := r.db.SelectContext(ctx, &rows, query, recipient.ID); err != nil {
		return counts, err
	}
	for _, row := range rows {
		switch row.Type {
		case domain.NotifDocument:
			counts.DocumentCount = row.Count
		case domain.NotifMessage:
			counts.MessageCount = row.Count
		}
	}
	return counts, nil
}
