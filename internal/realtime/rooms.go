package realtime

// Rooms indexes sockets by the projects they joined. Both directions are kept
// so evicting a socket does not scan every room. Not safe for concurrent use.
type Rooms struct {
	members map[string]map[Socket]struct{}
	joined  map[Socket]map[string]struct{}
}

func NewRooms() *Rooms {
	return &Rooms{
		members: make(map[string]map[Socket]struct{}),
		joined:  make(map[Socket]map[string]struct{}),
	}
}

func (r *Rooms) Add(projectID string, s Socket) {
	room, ok := r.members[projectID]
	if !ok {
		room = make(map[Socket]struct{})
		r.members[projectID] = room
	}
	room[s] = struct{}{}

	projects, ok := r.joined[s]
	if !ok {
		projects = make(map[string]struct{})
		r.joined[s] = projects
	}
	projects[projectID] = struct{}{}
}

// Remove takes s out of one room. Removing a socket that is not a member is
// a no-op.
func (r *Rooms) Remove(projectID string, s Socket) bool {
	room, ok := r.members[projectID]
	if !ok {
		return false
	}
	if _, ok := room[s]; !ok {
		return false
	}
	delete(room, s)
	if len(room) == 0 {
		delete(r.members, projectID)
	}

	if projects, ok := r.joined[s]; ok {
		delete(projects, projectID)
		if len(projects) == 0 {
			delete(r.joined, s)
		}
	}
	return true
}

// Evict removes s from every room it joined and returns how many.
func (r *Rooms) Evict(s Socket) int {
	projects := r.joined[s]
	for projectID := range projects {
		room := r.members[projectID]
		delete(room, s)
		if len(room) == 0 {
			delete(r.members, projectID)
		}
	}
	delete(r.joined, s)
	return len(projects)
}

func (r *Rooms) Members(projectID string) []Socket {
	room := r.members[projectID]
	out := make([]Socket, 0, len(room))
	for s := range room {
		out = append(out, s)
	}
	return out
}

func (r *Rooms) Contains(projectID string, s Socket) bool {
	_, ok := r.members[projectID][s]
	return ok
}

// Count returns the number of non-empty rooms.
func (r *Rooms) Count() int {
	return len(r.members)
}

func (r *Rooms) Reset() {
	r.members = make(map[string]map[Socket]struct{})
	r.joined = make(map[Socket]map[string]struct{})
}
