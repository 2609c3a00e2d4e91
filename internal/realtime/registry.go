package realtime

import "projectroom/internal/domain"

// MaxMissedProbes is how many consecutive unanswered pings a connection may
// accumulate before a sweep terminates it.
const MaxMissedProbes = 2

// Connection is the registry entry for one authenticated socket.
type Connection struct {
	Actor  domain.Actor
	Socket Socket

	// Authorized is the set of project IDs the actor could access when the
	// socket was opened. It is never refreshed for the life of the socket.
	Authorized map[string]struct{}

	Alive  bool
	Missed int
}

// CanAccess reports whether the connection may see traffic for the project.
func (c *Connection) CanAccess(projectID string) bool {
	if c.Actor.Role == domain.RoleAdmin {
		return true
	}
	_, ok := c.Authorized[projectID]
	return ok
}

// Registry maps actors to their single live connection. It is not safe for
// concurrent use; Hub serializes access.
type Registry struct {
	byActor  map[domain.Actor]*Connection
	bySocket map[Socket]*Connection
}

func NewRegistry() *Registry {
	return &Registry{
		byActor:  make(map[domain.Actor]*Connection),
		bySocket: make(map[Socket]*Connection),
	}
}

// Register installs socket as the connection for actor. If the actor already
// had a different socket, that socket is returned so the caller can evict and
// close it.
func (r *Registry) Register(actor domain.Actor, authorized []string, socket Socket) Socket {
	snapshot := make(map[string]struct{}, len(authorized))
	for _, id := range authorized {
		snapshot[id] = struct{}{}
	}

	var replaced Socket
	if existing, ok := r.byActor[actor]; ok && existing.Socket != socket {
		replaced = existing.Socket
		delete(r.bySocket, existing.Socket)
	}
	// The same socket may already be registered under another actor.
	if prior, ok := r.bySocket[socket]; ok && prior.Actor != actor {
		delete(r.byActor, prior.Actor)
	}

	conn := &Connection{
		Actor:      actor,
		Socket:     socket,
		Authorized: snapshot,
		Alive:      true,
	}
	r.byActor[actor] = conn
	r.bySocket[socket] = conn
	return replaced
}

// Unregister removes the connection owning socket. A socket that was already
// replaced is a no-op, so its successor survives. Returns whether anything
// was removed.
func (r *Registry) Unregister(socket Socket) bool {
	conn, ok := r.bySocket[socket]
	if !ok {
		return false
	}
	delete(r.bySocket, socket)
	if current, ok := r.byActor[conn.Actor]; ok && current.Socket == socket {
		delete(r.byActor, conn.Actor)
	}
	return true
}

func (r *Registry) Heartbeat(socket Socket) bool {
	conn, ok := r.bySocket[socket]
	if !ok {
		return false
	}
	conn.Alive = true
	conn.Missed = 0
	return true
}

// Sweep advances the liveness protocol by one interval. Connections that
// have now missed MaxMissedProbes pings are removed and returned in expired;
// every other connection is marked not-alive and returned in probe so the
// caller can ping it.
func (r *Registry) Sweep() (expired, probe []Socket) {
	for actor, conn := range r.byActor {
		if !conn.Alive {
			conn.Missed++
			if conn.Missed >= MaxMissedProbes {
				delete(r.byActor, actor)
				delete(r.bySocket, conn.Socket)
				expired = append(expired, conn.Socket)
				continue
			}
		}
		conn.Alive = false
		probe = append(probe, conn.Socket)
	}
	return expired, probe
}

func (r *Registry) Lookup(socket Socket) (*Connection, bool) {
	conn, ok := r.bySocket[socket]
	return conn, ok
}

func (r *Registry) LookupActor(actor domain.Actor) (*Connection, bool) {
	conn, ok := r.byActor[actor]
	return conn, ok
}

func (r *Registry) Connections() []*Connection {
	out := make([]*Connection, 0, len(r.byActor))
	for _, conn := range r.byActor {
		out = append(out, conn)
	}
	return out
}

func (r *Registry) Len() int {
	return len(r.byActor)
}

// Reset drops every connection and returns their sockets.
func (r *Registry) Reset() []Socket {
	out := make([]Socket, 0, len(r.bySocket))
	for s := range r.bySocket {
		out = append(out, s)
	}
	r.byActor = make(map[domain.Actor]*Connection)
	r.bySocket = make(map[Socket]*Connection)
	return out
}
