package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"projectroom/internal/domain"
)

type ProjectRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	// ListAuthorizedIDs returns the projects the actor belongs to: by
	// client_id for clients, client_vendor_id for vendors and participation
	// for everyone else.
	ListAuthorizedIDs(ctx context.Context, actor domain.Actor) ([]string, error)
	IsParticipant(ctx context.Context, projectID string, userID int64) (bool, error)
	// ListParticipants returns the project's participants with the role
	// recorded on their user row.
	ListParticipants(ctx context.Context, q sqlx.ExtContext, projectID string) ([]domain.Actor, error)
	Touch(ctx context.Context, q sqlx.ExtContext, projectID string, at time.Time) error
}

type projectRepository struct {
	db *sqlx.DB
}

func NewProjectRepository(db *sqlx.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	var project domain.Project
	query := r.db.Rebind(`
		SELECT id, project_name, client_id, client_vendor_id, is_block, updated_at
		FROM projects WHERE id = ?`)

	err := r.db.GetContext(ctx, &project, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) ListAuthorizedIDs(ctx context.Context, actor domain.Actor) ([]string, error) {
	var query string
	switch actor.Role {
	case domain.RoleClient:
		query = `SELECT id FROM projects WHERE client_id = ? ORDER BY id`
	case domain.RoleClientVendor:
		query = `SELECT id FROM projects WHERE client_vendor_id = ? ORDER BY id`
	default:
		query = `SELECT project_id FROM project_participants WHERE employee_id = ? ORDER BY project_id`
	}

	ids := []string{}
	if err := r.db.SelectContext(ctx, &ids, r.db.Rebind(query), actor.ID); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *projectRepository) IsParticipant(ctx context.Context, projectID string, userID int64) (bool, error) {
	var exists bool
	query := r.db.Rebind(`
		SELECT EXISTS(SELECT 1 FROM project_participants WHERE project_id = ? AND employee_id = ?)`)
	err := r.db.GetContext(ctx, &exists, query, projectID, userID)
	return exists, err
}

func (r *projectRepository) ListParticipants(ctx context.Context, q sqlx.ExtContext, projectID string) ([]domain.Actor, error) {
	var users []domain.User
	query := q.Rebind(`
		SELECT u.id, u.name, u.role
		FROM project_participants pp
		JOIN users u ON u.id = pp.employee_id
		WHERE pp.project_id = ?
		ORDER BY u.id`)
	if err := sqlx.SelectContext(ctx, q, &users, query, projectID); err != nil {
		return nil, err
	}

	participants := make([]domain.Actor, 0, len(users))
	for _, u := range users {
		participants = append(participants, domain.Actor{ID: u.ID, Role: u.Role})
	}
	return participants, nil
}

func (r *projectRepository) Touch(ctx context.Context, q sqlx.ExtContext, projectID string, at time.Time) error {
	query := q.Rebind(`UPDATE projects SET updated_at = ? WHERE id = ?`)
	_, err := q.ExecContext(ctx, query, at.UTC(), projectID)
	return err
}
