package chat

import "sync"

// Presence tracks which users have live connections. It is process-local and
// never persisted: on restart everyone is offline until they reconnect.
// Presence is advisory, not authoritative: operations on unknown
// connections are no-ops, never errors.
type Presence struct {
	mu    sync.RWMutex
	users map[string]map[string]Conn // userID -> connID -> conn
	conns map[string]string          // connID -> userID
}

func NewPresence() *Presence {
	return &Presence{
		users: make(map[string]map[string]Conn),
		conns: make(map[string]string),
	}
}

// Join registers a connection under a user. Idempotent per connection.
// A user's first connection broadcasts presence.changed to everyone else.
func (p *Presence) Join(userID string, conn Conn) {
	p.mu.Lock()
	if _, seen := p.conns[conn.ID()]; seen {
		p.mu.Unlock()
		return
	}
	wasOffline := len(p.users[userID]) == 0
	if p.users[userID] == nil {
		p.users[userID] = make(map[string]Conn)
	}
	p.users[userID][conn.ID()] = conn
	p.conns[conn.ID()] = userID
	p.mu.Unlock()

	if wasOffline {
		p.broadcast(userID, true)
	}
}

// Leave removes a connection from whichever user it was registered under.
// Unknown connections are ignored. Returns the user that went fully offline,
// if any.
func (p *Presence) Leave(conn Conn) (userID string, wentOffline bool) {
	p.mu.Lock()
	userID, known := p.conns[conn.ID()]
	if !known {
		p.mu.Unlock()
		return "", false
	}
	delete(p.conns, conn.ID())
	delete(p.users[userID], conn.ID())
	if len(p.users[userID]) == 0 {
		delete(p.users, userID)
		wentOffline = true
	}
	p.mu.Unlock()

	if wentOffline {
		p.broadcast(userID, false)
	}
	return userID, wentOffline
}

func (p *Presence) IsOnline(userID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.users[userID]) > 0
}

// ConnectionsFor returns the live connections registered for a user.
func (p *Presence) ConnectionsFor(userID string) []Conn {
	p.mu.RLock()
	defer p.mu.RUnlock()
	conns := make([]Conn, 0, len(p.users[userID]))
	for _, c := range p.users[userID] {
		conns = append(conns, c)
	}
	return conns
}

// OnlineUsers returns the ids of users with at least one connection.
func (p *Presence) OnlineUsers() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	users := make([]string, 0, len(p.users))
	for id := range p.users {
		users = append(users, id)
	}
	return users
}

// broadcast pushes a presence.changed event to every registered connection
// except the transitioning user's own; they get the full roster on connect.
// Best-effort: a slow or dead socket just misses it.
func (p *Presence) broadcast(userID string, online bool) {
	p.mu.RLock()
	conns := make([]Conn, 0, len(p.conns))
	for uid, set := range p.users {
		if uid == userID {
			continue
		}
		for _, c := range set {
			conns = append(conns, c)
		}
	}
	p.mu.RUnlock()

	payload := map[string]interface{}{
		"userId":   userID,
		"isOnline": online,
	}
	for _, c := range conns {
		c.Emit(EventPresenceChanged, payload)
	}
}
