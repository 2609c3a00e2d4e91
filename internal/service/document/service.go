package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"projectroom/internal/domain"
	"projectroom/internal/realtime"
	"projectroom/internal/repository"
	"projectroom/internal/service/notification"
	"projectroom/internal/storage"
)

var (
	ErrProjectNotFound     = errors.New("project not found")
	ErrProjectBlocked      = errors.New("project is blocked")
	ErrInvalidDocumentType = errors.New("document type must be reference, important or final")
	ErrDocumentNameMissing = errors.New("document name is required")
	ErrStorageUnavailable  = errors.New("document storage is unavailable")
)

// Presence reports who is currently in a project room.
type Presence interface {
	ActiveActors(projectID string) domain.ActorSet
}

// Summary is the document push frame's embedded document.
type Summary struct {
	ID           int64  `json:"id"`
	DocumentName string `json:"documentName"`
	FileName     string `json:"fileName"`
	UploadDate   string `json:"uploadDate"`
	UploadBy     string `json:"uploadBy"`
}

type Service interface {
	Upload(ctx context.Context, sender domain.Sender, projectID string, input domain.UploadDocumentInput, r io.Reader) (*domain.ProjectDocument, error)
}

type service struct {
	db            repository.TxBeginner
	projectRepo   repository.ProjectRepository
	documentRepo  repository.DocumentRepository
	notifications notification.Service
	presence      Presence
	store         storage.ObjectStore
	logger        *slog.Logger
	now           func() time.Time
}

func NewService(
	db repository.TxBeginner,
	projectRepo repository.ProjectRepository,
	documentRepo repository.DocumentRepository,
	notifications notification.Service,
	presence Presence,
	store storage.ObjectStore,
	logger *slog.Logger,
) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		db:            db,
		projectRepo:   projectRepo,
		documentRepo:  documentRepo,
		notifications: notifications,
		presence:      presence,
		store:         store,
		logger:        logger,
		now:           time.Now,
	}
}

func UploadMessage(senderName, documentName string, project *domain.Project) string {
	return fmt.Sprintf("%s uploaded %s document for project %s(%s).", senderName, documentName, project.ProjectName, project.ID)
}

func (s *service) Upload(ctx context.Context, sender domain.Sender, projectID string, input domain.UploadDocumentInput, r io.Reader) (*domain.ProjectDocument, error) {
	input.DocumentName = strings.TrimSpace(input.DocumentName)
	if input.DocumentName == "" {
		return nil, ErrDocumentNameMissing
	}
	if !input.DocumentType.IsValid() {
		return nil, ErrInvalidDocumentType
	}

	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}
	if project.IsBlock && sender.Role.IsClientSide() {
		return nil, ErrProjectBlocked
	}

	if s.store == nil {
		return nil, ErrStorageUnavailable
	}

	now := s.now().UTC()
	objectKey := fmt.Sprintf("projects/%s/%s%s", project.ID, uuid.NewString(), path.Ext(input.FileName))
	if err := s.store.Put(ctx, objectKey, r, input.Size, input.ContentType); err != nil {
		return nil, err
	}

	doc := &domain.ProjectDocument{
		ProjectID:    project.ID,
		DocumentName: input.DocumentName,
		DocumentType: input.DocumentType,
		FileName:     input.FileName,
		ObjectKey:    objectKey,
		ContentType:  input.ContentType,
		Size:         input.Size,
		UploadBy:     domain.UploadByStaff,
		UploadDate:   now,
	}
	id := sender.ID
	switch sender.Role {
	case domain.RoleClient:
		doc.UploadBy = domain.UploadByClient
		doc.ClientID = &id
	case domain.RoleClientVendor:
		doc.UploadBy = domain.UploadByClient
		doc.UserID = &id
	default:
		doc.UserID = &id
	}

	message := UploadMessage(sender.Name, doc.DocumentName, project)
	recipients, err := s.persist(ctx, project, doc, sender, message)
	if err != nil {
		if rmErr := s.store.Remove(ctx, objectKey); rmErr != nil {
			s.logger.Warn("failed to remove orphaned document object", "key", objectKey, "error", rmErr)
		}
		return nil, err
	}

	frame := realtime.Notification(realtime.NotifyDocument, message)
	frame.ProjectID = project.ID
	frame.UploadBy = doc.UploadBy
	frame.Document = Summary{
		ID:           doc.ID,
		DocumentName: doc.DocumentName,
		FileName:     doc.FileName,
		UploadDate:   doc.UploadDate.Format(time.RFC3339),
		UploadBy:     sender.Name,
	}
	pushed := s.notifications.PushNotifications(frame, recipients)
	s.notifications.InvalidateUnreadCounts(ctx, recipients)

	s.logger.Info("document uploaded",
		"project_id", project.ID, "document_id", doc.ID, "sender_id", sender.ID, "sender_role", sender.Role,
		"notified", len(recipients), "pushed", pushed)

	return doc, nil
}

// persist writes the document, its notifications and the project touch in
// one transaction.
func (s *service) persist(ctx context.Context, project *domain.Project, doc *domain.ProjectDocument, sender domain.Sender, message string) ([]domain.Recipient, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.documentRepo.Create(ctx, tx, doc); err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	active := s.presence.ActiveActors(project.ID)
	recipients, err := s.notifications.CreateNotifications(ctx, tx, project, domain.NotificationEvent{
		ProjectID: project.ID,
		Message:   message,
		Type:      domain.NotifDocument,
	}, sender.Actor, active)
	if err != nil {
		return nil, err
	}

	if err := s.projectRepo.Touch(ctx, tx, project.ID, doc.UploadDate); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit document: %w", err)
	}
	return recipients, nil
}
