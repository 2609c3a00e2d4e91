package realtime

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"projectroom/internal/domain"
)

var (
	ErrAccessDenied = errors.New("access denied to project")
	ErrNotConnected = errors.New("socket is not registered")
)

const DefaultHeartbeatInterval = 30 * time.Second

type HubConfig struct {
	HeartbeatInterval time.Duration
	Logger            *slog.Logger
}

// Hub owns the connection registry and the room index. Every state change
// and every target selection happens under mu; frames are sent only after
// mu is released.
type Hub struct {
	mu       sync.Mutex
	registry *Registry
	rooms    *Rooms

	interval time.Duration
	logger   *slog.Logger
}

func NewHub(cfg HubConfig) *Hub {
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Hub{
		registry: NewRegistry(),
		rooms:    NewRooms(),
		interval: cfg.HeartbeatInterval,
		logger:   cfg.Logger,
	}
}

// Connect registers an authenticated socket with the projects its actor
// could access at connect time. A previous socket for the same actor is
// evicted from its rooms and closed.
func (h *Hub) Connect(actor domain.Actor, authorized []string, s Socket) {
	h.mu.Lock()
	replaced := h.registry.Register(actor, authorized, s)
	if replaced != nil {
		h.rooms.Evict(replaced)
	}
	h.mu.Unlock()

	if replaced != nil {
		h.logger.Info("websocket connection replaced",
			"actor_id", actor.ID, "role", actor.Role, "old_socket", replaced.ID(), "socket", s.ID())
		if err := replaced.Close(CloseNormal, "connection replaced"); err != nil {
			h.logger.Debug("close replaced socket", "socket", replaced.ID(), "error", err)
		}
	}

	h.logger.Info("websocket connected",
		"actor_id", actor.ID, "role", actor.Role, "socket", s.ID(), "projects", len(authorized))
	h.deliver(s, Info(msgConnected))
}

// Disconnect forgets a socket that closed on its own.
func (h *Hub) Disconnect(s Socket) {
	h.mu.Lock()
	removed := h.registry.Unregister(s)
	h.rooms.Evict(s)
	h.mu.Unlock()

	if removed {
		h.logger.Info("websocket disconnected", "socket", s.ID())
	}
}

func (h *Hub) Heartbeat(s Socket) {
	h.mu.Lock()
	h.registry.Heartbeat(s)
	h.mu.Unlock()
}

// HandleFrame dispatches one raw client frame. Malformed frames are answered
// with an error frame and otherwise ignored.
func (h *Hub) HandleFrame(s Socket, data []byte) error {
	frame, err := ParseClientFrame(data)
	if err != nil {
		h.deliver(s, Error(msgInvalidFormat))
		return err
	}

	switch f := frame.(type) {
	case JoinFrame:
		return h.Join(f.ProjectID, s)
	case LeaveFrame:
		return h.Leave(f.ProjectID, s)
	default:
		h.deliver(s, Error(msgInvalidFormat))
		return ErrMalformedFrame
	}
}

func (h *Hub) Join(projectID string, s Socket) error {
	h.mu.Lock()
	conn, ok := h.registry.Lookup(s)
	if !ok {
		h.mu.Unlock()
		return ErrNotConnected
	}
	if !conn.CanAccess(projectID) {
		h.mu.Unlock()
		h.deliver(s, Error(msgAccessDenied))
		return ErrAccessDenied
	}
	h.rooms.Add(projectID, s)
	h.mu.Unlock()

	h.deliver(s, Joined())
	return nil
}

// Leave removes the socket from the room. Leaving a room that was never
// joined is acknowledged all the same.
func (h *Hub) Leave(projectID string, s Socket) error {
	h.mu.Lock()
	conn, ok := h.registry.Lookup(s)
	if !ok {
		h.mu.Unlock()
		return ErrNotConnected
	}
	if !conn.CanAccess(projectID) {
		h.mu.Unlock()
		h.deliver(s, Error(msgAccessDenied))
		return ErrAccessDenied
	}
	h.rooms.Remove(projectID, s)
	h.mu.Unlock()

	h.deliver(s, Left())
	return nil
}

// ActiveActors returns the actors with a socket currently joined to the
// project room. Being connected without joining does not count.
func (h *Hub) ActiveActors(projectID string) domain.ActorSet {
	h.mu.Lock()
	defer h.mu.Unlock()

	active := domain.NewActorSet()
	for _, s := range h.rooms.Members(projectID) {
		if conn, ok := h.registry.Lookup(s); ok {
			active.Add(conn.Actor)
		}
	}
	return active
}

// DeliveryReport counts the frames a broadcast handed to sockets.
type DeliveryReport struct {
	Room     int
	Activity int
	Failed   int
}

// SendChatMessage sends the full frame to every socket in the project room
// and a chat activity envelope to every other connection allowed to see the
// project. Delivery is best effort.
func (h *Hub) SendChatMessage(frame MessageFrame, projectID string, sender domain.Actor) DeliveryReport {
	h.mu.Lock()
	members := h.rooms.Members(projectID)
	inRoom := make(map[Socket]struct{}, len(members))
	for _, s := range members {
		inRoom[s] = struct{}{}
	}
	var outside []Socket
	for _, conn := range h.registry.Connections() {
		if _, ok := inRoom[conn.Socket]; ok {
			continue
		}
		if conn.CanAccess(projectID) {
			outside = append(outside, conn.Socket)
		}
	}
	h.mu.Unlock()

	var report DeliveryReport
	for _, s := range members {
		if h.deliver(s, frame) {
			report.Room++
		} else {
			report.Failed++
		}
	}

	activity := ChatActivity(frame.Message)
	for _, s := range outside {
		if h.deliver(s, activity) {
			report.Activity++
		} else {
			report.Failed++
		}
	}

	h.logger.Debug("chat message broadcast",
		"project_id", projectID, "sender_id", sender.ID, "sender_role", sender.Role,
		"room", report.Room, "activity", report.Activity, "failed", report.Failed)
	return report
}

// PushNotification sends frame to the live connection of each actor, if any.
// It returns how many sockets accepted the frame.
func (h *Hub) PushNotification(frame NotificationFrame, actors []domain.Actor) int {
	h.mu.Lock()
	targets := make([]Socket, 0, len(actors))
	for _, actor := range actors {
		if conn, ok := h.registry.LookupActor(actor); ok {
			targets = append(targets, conn.Socket)
		}
	}
	h.mu.Unlock()

	delivered := 0
	for _, s := range targets {
		if h.deliver(s, frame) {
			delivered++
		}
	}
	return delivered
}

// Sweep runs one heartbeat interval: expired connections are removed and
// closed, the rest are pinged.
func (h *Hub) Sweep() {
	h.mu.Lock()
	expired, probe := h.registry.Sweep()
	for _, s := range expired {
		h.rooms.Evict(s)
	}
	h.mu.Unlock()

	for _, s := range expired {
		h.logger.Info("websocket heartbeat timeout", "socket", s.ID())
		_ = s.Close(CloseGoingAway, "heartbeat timeout")
	}
	for _, s := range probe {
		if err := s.Ping(); err != nil {
			h.logger.Debug("websocket ping failed", "socket", s.ID(), "error", err)
		}
	}
}

// Run sweeps on every heartbeat interval until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Sweep()
		}
	}
}

// Close drops all connections and rooms and closes every socket.
func (h *Hub) Close() {
	h.mu.Lock()
	sockets := h.registry.Reset()
	h.rooms.Reset()
	h.mu.Unlock()

	for _, s := range sockets {
		_ = s.Close(CloseGoingAway, "server shutting down")
	}
	h.logger.Info("websocket hub closed", "connections", len(sockets))
}

// Stats reports the number of registered connections and non-empty rooms.
func (h *Hub) Stats() (connections, rooms int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.registry.Len(), h.rooms.Count()
}

func (h *Hub) deliver(s Socket, frame ServerFrame) bool {
	if err := s.Send(frame); err != nil {
		h.logger.Warn("websocket delivery failed", "socket", s.ID(), "error", err)
		return false
	}
	return true
}
