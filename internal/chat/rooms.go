package chat

import "sync"

// Rooms groups connections by conversation key so a message fans out to every
// connection currently viewing that conversation. Rooms are lazily created on
// first join and garbage-collected when the last member leaves.
type Rooms struct {
	mu       sync.RWMutex
	rooms    map[string]map[string]Conn // conversationKey -> connID -> conn
	presence *Presence
}

func NewRooms(presence *Presence) *Rooms {
	return &Rooms{
		rooms:    make(map[string]map[string]Conn),
		presence: presence,
	}
}

func (r *Rooms) JoinRoom(key string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rooms[key] == nil {
		r.rooms[key] = make(map[string]Conn)
	}
	r.rooms[key][conn.ID()] = conn
}

func (r *Rooms) LeaveRoom(key string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms[key], conn.ID())
	if len(r.rooms[key]) == 0 {
		delete(r.rooms, key)
	}
}

// LeaveAll drops a connection from every room it joined. Called on
// disconnect, where socket.io no longer tells us which rooms those were.
func (r *Rooms) LeaveAll(conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, members := range r.rooms {
		delete(members, conn.ID())
		if len(members) == 0 {
			delete(r.rooms, key)
		}
	}
}

// Members returns the current size of a room.
func (r *Rooms) Members(key string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[key])
}

// Publish fans an event out to the room plus every connection registered for
// the receiver, whether or not it has joined the room. The second leg is what
// notifies a user who has the app open but not this conversation on screen.
// Delivery is fire-and-forget; the return value counts distinct connections
// pushed to.
func (r *Rooms) Publish(key, receiverID, event string, payload interface{}) int {
	r.mu.RLock()
	targets := make(map[string]Conn, len(r.rooms[key]))
	for id, c := range r.rooms[key] {
		targets[id] = c
	}
	r.mu.RUnlock()

	for _, c := range r.presence.ConnectionsFor(receiverID) {
		targets[c.ID()] = c
	}

	for _, c := range targets {
		c.Emit(event, payload)
	}
	return len(targets)
}
