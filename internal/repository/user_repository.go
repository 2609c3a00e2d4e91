package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"projectroom/internal/domain"
)

type UserRepository interface {
	ListIDsByRole(ctx context.Context, q sqlx.ExtContext, role domain.Role) ([]int64, error)
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) ListIDsByRole(ctx context.Context, q sqlx.ExtContext, role domain.Role) ([]int64, error) {
	ids := []int64{}
	query := q.Rebind(`SELECT id FROM users WHERE role = ? ORDER BY id`)
	if err := sqlx.SelectContext(ctx, q, &ids, query, role); err != nil {
		return nil, err
	}
	return ids, nil
}
