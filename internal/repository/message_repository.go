package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"projectroom/internal/domain"
)

type MessageRepository interface {
	Create(ctx context.Context, q sqlx.ExtContext, msg *domain.ChatMessage) error
}

type messageRepository struct{}

// NewMessageRepository returns a repository whose writes always run on the
// caller's transaction.
func NewMessageRepository() MessageRepository {
	return &messageRepository{}
}

func (r *messageRepository) Create(ctx context.Context, q sqlx.ExtContext, msg *domain.ChatMessage) error {
	query := q.Rebind(`
		INSERT INTO chat_messages (project_id, client_id, user_id, message, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`)

	return q.QueryRowxContext(ctx, query,
		msg.ProjectID, msg.ClientID, msg.UserID, msg.Message, msg.CreatedAt.UTC(),
	).Scan(&msg.ID)
}
