package domain

type Role string

const (
	RoleAdmin              Role = "ADMIN"
	RoleProjectCoordinator Role = "PROJECT_COORDINATOR"
	RoleClientVendor       Role = "CLIENT_VENDOR"
	RoleClient             Role = "CLIENT"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleProjectCoordinator, RoleClientVendor, RoleClient:
		return true
	default:
		return false
	}
}

// IsClientSide reports whether the role belongs to the customer side of a
// project (a direct client or a client vendor).
func (r Role) IsClientSide() bool {
	return r == RoleClient || r == RoleClientVendor
}

// Actor is an authenticated identity. Clients live in their own table, so
// the same numeric ID can belong to a client and to a user; the pair is the key.
type Actor struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}

// Sender is the actor behind a domain action together with its display name.
type Sender struct {
	Actor
	Name string `json:"name"`
}

type User struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
	Role Role   `json:"role" db:"role"`
}

type ActorSet map[Actor]struct{}

func NewActorSet(actors ...Actor) ActorSet {
	set := make(ActorSet, len(actors))
	for _, a := range actors {
		set[a] = struct{}{}
	}
	return set
}

func (s ActorSet) Add(a Actor) {
	s[a] = struct{}{}
}

func (s ActorSet) Has(a Actor) bool {
	_, ok := s[a]
	return ok
}
