package domain

import (
	"errors"
	"time"
)

var ErrInvalidRecipient = errors.New("notification must target exactly one of client_id or user_id")

type Notification struct {
	ID        int64            `json:"id" db:"id"`
	ProjectID string           `json:"project_id" db:"project_id"`
	ClientID  *int64           `json:"client_id" db:"client_id"`
	UserID    *int64           `json:"user_id" db:"user_id"`
	Message   string           `json:"message" db:"message"`
	Type      NotificationType `json:"type" db:"type"`
	IsRead    bool             `json:"is_read" db:"is_read"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" db:"updated_at"`
}

func (n *Notification) Validate() error {
	if (n.ClientID == nil) == (n.UserID == nil) {
		return ErrInvalidRecipient
	}
	return nil
}

type NotificationType string

const (
	NotifDocument NotificationType = "document"
	NotifMessage  NotificationType = "message"
)

func (t NotificationType) IsValid() bool {
	return t == NotifDocument || t == NotifMessage
}

// NotificationEvent is the part of a notification shared by every recipient
// of one domain event.
type NotificationEvent struct {
	ProjectID string
	Message   string
	Type      NotificationType
}

type RecipientKind string

const (
	RecipientClient RecipientKind = "client"
	RecipientUser   RecipientKind = "user"
)

// Recipient identifies who a notification row targets. Kind selects the
// column (client_id or user_id); Role is kept so the live connection can be found.
type Recipient struct {
	Kind RecipientKind `json:"kind"`
	ID   int64         `json:"id"`
	Role Role          `json:"role"`
}

func RecipientOf(a Actor) Recipient {
	if a.Role == RoleClient {
		return Recipient{Kind: RecipientClient, ID: a.ID, Role: a.Role}
	}
	return Recipient{Kind: RecipientUser, ID: a.ID, Role: a.Role}
}

func (r Recipient) Actor() Actor {
	return Actor{ID: r.ID, Role: r.Role}
}

func (r Recipient) Notification(event NotificationEvent) Notification {
	id := r.ID
	n := Notification{
		ProjectID: event.ProjectID,
		Message:   event.Message,
		Type:      event.Type,
	}
	if r.Kind == RecipientClient {
		n.ClientID = &id
	} else {
		n.UserID = &id
	}
	return n
}

type NotificationFilter struct {
	// Date restricts the listing to one calendar day, read or unread.
	// Without it only unread notifications are returned.
	Date *time.Time
	Type NotificationType
}

type UnreadCounts struct {
	DocumentCount int64 `json:"documentCnt"`
	MessageCount  int64 `json:"messageCnt"`
}
