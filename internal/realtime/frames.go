package realtime

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type FrameType string

// Client to server.
const (
	FrameJoin  FrameType = "join"
	FrameLeave FrameType = "leave"
)

// Server to client.
const (
	FrameInfo         FrameType = "info"
	FrameJoined       FrameType = "joined"
	FrameLeft         FrameType = "left"
	FrameError        FrameType = "error"
	FrameMessage      FrameType = "message"
	FrameNotification FrameType = "notification"
)

// Secondary type carried by notification frames.
const (
	NotifyChat     = "chat"
	NotifyDocument = "document"
	NotifyMessage  = "message"
)

const (
	msgConnected     = "Connected to WebSocket server"
	msgAccessDenied  = "access denied"
	msgInvalidFormat = "invalid message format"
)

var ErrMalformedFrame = errors.New("malformed frame")

// ClientFrame is a frame received from a socket. The set of implementations
// is closed: JoinFrame and LeaveFrame.
type ClientFrame interface {
	clientFrame()
}

type JoinFrame struct {
	ProjectID string
}

type LeaveFrame struct {
	ProjectID string
}

func (JoinFrame) clientFrame()  {}
func (LeaveFrame) clientFrame() {}

// ParseClientFrame decodes a raw client frame. Anything that is not valid
// JSON, carries an unknown type or lacks a project ID wraps ErrMalformedFrame.
func ParseClientFrame(data []byte) (ClientFrame, error) {
	var raw struct {
		Type      FrameType       `json:"type"`
		ProjectID json.RawMessage `json:"projectId"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	switch raw.Type {
	case FrameJoin, FrameLeave:
	default:
		return nil, fmt.Errorf("%w: unsupported frame type %q", ErrMalformedFrame, raw.Type)
	}

	projectID, err := parseProjectID(raw.ProjectID)
	if err != nil {
		return nil, err
	}

	if raw.Type == FrameJoin {
		return JoinFrame{ProjectID: projectID}, nil
	}
	return LeaveFrame{ProjectID: projectID}, nil
}

// parseProjectID accepts the ID as a JSON string or a bare number.
func parseProjectID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", fmt.Errorf("%w: projectId is required", ErrMalformedFrame)
	}

	var id string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &id); err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformedFrame, err)
		}
	} else {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return "", fmt.Errorf("%w: projectId must be a string or number", ErrMalformedFrame)
		}
		id = n.String()
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%w: projectId is required", ErrMalformedFrame)
	}
	return id, nil
}

// ServerFrame is a frame written to a socket. The set of implementations is
// closed; build them with the constructors below so Type is always set.
type ServerFrame interface {
	serverFrame()
}

type InfoFrame struct {
	Type    FrameType `json:"type"`
	Message string    `json:"message"`
}

type JoinedFrame struct {
	Type FrameType `json:"type"`
}

type LeftFrame struct {
	Type FrameType `json:"type"`
}

type ErrorFrame struct {
	Type    FrameType `json:"type"`
	Message string    `json:"message"`
}

// MessageFrame carries the full chat payload to room members.
type MessageFrame struct {
	Type    FrameType `json:"type"`
	Message string    `json:"message"`
	Data    any       `json:"data,omitempty"`
}

// NotificationFrame is the activity or notification push. Type2 is one of
// NotifyChat, NotifyDocument or NotifyMessage.
type NotificationFrame struct {
	Type      FrameType `json:"type"`
	Type2     string    `json:"type2"`
	Message   string    `json:"message"`
	ProjectID string    `json:"projectId,omitempty"`
	UploadBy  string    `json:"uploadBy,omitempty"`
	Document  any       `json:"document,omitempty"`
}

func (InfoFrame) serverFrame()         {}
func (JoinedFrame) serverFrame()       {}
func (LeftFrame) serverFrame()         {}
func (ErrorFrame) serverFrame()        {}
func (MessageFrame) serverFrame()      {}
func (NotificationFrame) serverFrame() {}

func Info(message string) InfoFrame {
	return InfoFrame{Type: FrameInfo, Message: message}
}

func Joined() JoinedFrame {
	return JoinedFrame{Type: FrameJoined}
}

func Left() LeftFrame {
	return LeftFrame{Type: FrameLeft}
}

func Error(message string) ErrorFrame {
	return ErrorFrame{Type: FrameError, Message: message}
}

func Message(message string, data any) MessageFrame {
	return MessageFrame{Type: FrameMessage, Message: message, Data: data}
}

func Notification(type2, message string) NotificationFrame {
	return NotificationFrame{Type: FrameNotification, Type2: type2, Message: message}
}

// ChatActivity is the reduced envelope sent to authorized connections that
// are not in the room: it names the conversation without its content.
func ChatActivity(message string) NotificationFrame {
	return Notification(NotifyChat, message)
}
