package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// TxBeginner starts the transaction that write flows share across
// repositories. *sqlx.DB satisfies it.
type TxBeginner interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type Repositories struct {
	DB           *sqlx.DB
	Project      ProjectRepository
	User         UserRepository
	Notification NotificationRepository
	Message      MessageRepository
	Document     DocumentRepository
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		DB:           db,
		Project:      NewProjectRepository(db),
		User:         NewUserRepository(db),
		Notification: NewNotificationRepository(db),
		Message:      NewMessageRepository(),
		Document:     NewDocumentRepository(),
	}
}
