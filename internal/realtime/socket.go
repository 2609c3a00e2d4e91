package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// Close codes sent to clients.
const (
	CloseNormal       = websocket.CloseNormalClosure
	CloseGoingAway    = websocket.CloseGoingAway
	CloseTokenMissing = 4001
	CloseInvalidToken = 4002
)

var (
	ErrSocketClosed   = errors.New("socket closed")
	ErrSendBufferFull = errors.New("send buffer full")
)

// Socket is the hub's view of one client connection. Send must not block.
type Socket interface {
	ID() string
	Send(frame ServerFrame) error
	Ping() error
	Close(code int, reason string) error
}

// WSSocket adapts a websocket connection to Socket. Frames are queued on a
// bounded outbox and written by WritePump; all writes to the underlying
// connection hold writeMu so there is a single writer at a time.
type WSSocket struct {
	id           string
	conn         *websocket.Conn
	outbox       chan []byte
	done         chan struct{}
	writeTimeout time.Duration
	logger       *slog.Logger

	writeMu sync.Mutex
	closed  bool
}

func NewWSSocket(conn *websocket.Conn, buffer int, writeTimeout time.Duration, logger *slog.Logger) *WSSocket {
	if buffer < 1 {
		buffer = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WSSocket{
		id:           uuid.NewString(),
		conn:         conn,
		outbox:       make(chan []byte, buffer),
		done:         make(chan struct{}),
		writeTimeout: writeTimeout,
		logger:       logger,
	}
}

func (s *WSSocket) ID() string {
	return s.id
}

func (s *WSSocket) Send(frame ServerFrame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}

	select {
	case <-s.done:
		return ErrSocketClosed
	default:
	}

	select {
	case s.outbox <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// WritePump drains the outbox until the socket is closed. It must be running
// for Send to make progress and must return before the connection is released.
func (s *WSSocket) WritePump() {
	for {
		select {
		case <-s.done:
			return
		case data := <-s.outbox:
			if err := s.write(data); err != nil {
				if !errors.Is(err, ErrSocketClosed) {
					s.logger.Warn("websocket write failed", "socket", s.id, "error", err)
					_ = s.Close(CloseGoingAway, "write failed")
				}
				return
			}
		}
	}
}

func (s *WSSocket) write(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.closed {
		return ErrSocketClosed
	}
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *WSSocket) Ping() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.closed {
		return ErrSocketClosed
	}
	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.writeTimeout))
}

// Close sends a close frame and closes the connection. Only the first call
// has any effect.
func (s *WSSocket) Close(code int, reason string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	close(s.done)

	msg := websocket.FormatCloseMessage(code, reason)
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(s.writeTimeout))
	return s.conn.Close()
}
