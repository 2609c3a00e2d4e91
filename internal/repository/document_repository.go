package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"projectroom/internal/domain"
)

type DocumentRepository interface {
	Create(ctx context.Context, q sqlx.ExtContext, doc *domain.ProjectDocument) error
}

type documentRepository struct{}

func NewDocumentRepository() DocumentRepository {
	return &documentRepository{}
}

func (r *documentRepository) Create(ctx context.Context, q sqlx.ExtContext, doc *domain.ProjectDocument) error {
	query := q.Rebind(`
		INSERT INTO project_documents (
			project_id, document_name, document_type, file_name, object_key,
			content_type, size, upload_by, client_id, user_id, upload_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	return q.QueryRowxContext(ctx, query,
		doc.ProjectID, doc.DocumentName, doc.DocumentType, doc.FileName, doc.ObjectKey,
		doc.ContentType, doc.Size, doc.UploadBy, doc.ClientID, doc.UserID, doc.UploadDate.UTC(),
	).Scan(&doc.ID)
}
