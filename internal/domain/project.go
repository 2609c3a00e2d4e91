package domain

import "time"

type Project struct {
	ID             string     `json:"id" db:"id"`
	ProjectName    string     `json:"project_name" db:"project_name"`
	ClientID       *int64     `json:"client_id" db:"client_id"`
	ClientVendorID *int64     `json:"client_vendor_id" db:"client_vendor_id"`
	IsBlock        bool       `json:"is_block" db:"is_block"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// HasClientSideMember reports whether the actor is the project's client or vendor.
// Coordinator membership lives in the participants table and is not visible here.
func (p *Project) HasClientSideMember(a Actor) bool {
	switch a.Role {
	case RoleClient:
		return p.ClientID != nil && *p.ClientID == a.ID
	case RoleClientVendor:
		return p.ClientVendorID != nil && *p.ClientVendorID == a.ID
	default:
		return false
	}
}

type ChatMessage struct {
	ID        int64     `json:"id" db:"id"`
	ProjectID string    `json:"project_id" db:"project_id"`
	ClientID  *int64    `json:"client_id,omitempty" db:"client_id"`
	UserID    *int64    `json:"user_id,omitempty" db:"user_id"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type SendMessageInput struct {
	ProjectID string `json:"projectId" form:"projectId"`
	Message   string `json:"message" form:"message"`
}

type DocumentType string

const (
	DocumentReference DocumentType = "reference"
	DocumentImportant DocumentType = "important"
	DocumentFinal     DocumentType = "final"
)

func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentReference, DocumentImportant, DocumentFinal:
		return true
	}
	return false
}

type ProjectDocument struct {
	ID           int64        `json:"id" db:"id"`
	ProjectID    string       `json:"project_id" db:"project_id"`
	DocumentName string       `json:"document_name" db:"document_name"`
	DocumentType DocumentType `json:"document_type" db:"document_type"`
	FileName     string       `json:"file_name" db:"file_name"`
	ObjectKey    string       `json:"-" db:"object_key"`
	ContentType  string       `json:"content_type" db:"content_type"`
	Size         int64        `json:"size" db:"size"`
	UploadBy     string       `json:"upload_by" db:"upload_by"`
	ClientID     *int64       `json:"client_id,omitempty" db:"client_id"`
	UserID       *int64       `json:"user_id,omitempty" db:"user_id"`
	UploadDate   time.Time    `json:"upload_date" db:"upload_date"`
}

type UploadDocumentInput struct {
	DocumentName string       `json:"documentName" form:"documentName"`
	DocumentType DocumentType `json:"documentType" form:"documentType"`
	FileName     string       `json:"-"`
	ContentType  string       `json:"-"`
	Size         int64        `json:"-"`
}

// Upload sides recorded on a document.
const (
	UploadByStaff  = "MRR"
	UploadByClient = "CLIENT"
)
