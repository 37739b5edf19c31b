package realtime

import (
	"sync"

	"github.com/Lamiaker/sou9i-sub003/internal/infrastructure/metrics"
)

// Router tracks websocket sessions and logical rooms (one room per
// conversation). Unlike a one-socket-per-user model, a user keeps a set of
// live connections, so a message reaches every open tab and device.
//
// The user and room registries are the only shared mutable state in the
// gateway; every mutation goes through the single RWMutex below.
type Router struct {
	mu        sync.RWMutex
	sessions  map[string]*Connection            // connectionID -> connection
	userConns map[string]map[string]*Connection // userID -> connectionID -> connection
	rooms     map[string]map[string]*Connection // conversationID -> connectionID -> connection
	connRooms map[string]map[string]struct{}    // connectionID -> set of conversationIDs
}

// NewRouter constructs an initialized Router.
func NewRouter() *Router {
	return &Router{
		sessions:  make(map[string]*Connection),
		userConns: make(map[string]map[string]*Connection),
		rooms:     make(map[string]map[string]*Connection),
		connRooms: make(map[string]map[string]struct{}),
	}
}

// Attach registers an authenticated connection and starts its write loop.
func (r *Router) Attach(conn *Connection) {
	r.mu.Lock()
	r.sessions[conn.ID] = conn
	conns := r.userConns[conn.UserID]
	if conns == nil {
		conns = make(map[string]*Connection)
		r.userConns[conn.UserID] = conns
	}
	conns[conn.ID] = conn
	r.connRooms[conn.ID] = make(map[string]struct{})
	r.mu.Unlock()

	metrics.ActiveConnections.Inc()
	conn.Start()
}

// Detach removes a connection from the user registry and every room it had
// joined. When the user's last connection goes away the user entry is dropped.
func (r *Router) Detach(conn *Connection) {
	r.mu.Lock()
	r.detachLocked(conn.ID)
	r.mu.Unlock()
}

// Join adds the connection to the conversation room. Participant checks
// happen before this call; the router only manages membership.
func (r *Router) Join(conversationID string, conn *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[conn.ID]; !ok {
		return
	}

	room := r.rooms[conversationID]
	if room == nil {
		room = make(map[string]*Connection)
		r.rooms[conversationID] = room
	}
	room[conn.ID] = conn
	r.connRooms[conn.ID][conversationID] = struct{}{}
}

// Leave removes the connection from the conversation room.
func (r *Router) Leave(conversationID string, conn *Connection) {
	r.mu.Lock()
	r.leaveLocked(conversationID, conn.ID)
	r.mu.Unlock()
}

// Broadcast writes payload to every member of the conversation room.
// excludeUserID, when non-empty, skips all of that user's connections
// (used for typing relays, which never echo back to the typist).
// The returned count is the number of connections that accepted the payload.
func (r *Router) Broadcast(conversationID string, payload []byte, excludeUserID string) int {
	r.mu.RLock()
	room := r.rooms[conversationID]
	targets := make([]*Connection, 0, len(room))
	for _, conn := range room {
		if excludeUserID != "" && conn.UserID == excludeUserID {
			continue
		}
		targets = append(targets, conn)
	}
	r.mu.RUnlock()

	delivered := 0
	for _, conn := range targets {
		if err := conn.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// NotifyUser delivers payload to every live connection of the given user,
// regardless of room membership. Best effort.
func (r *Router) NotifyUser(userID string, payload []byte) int {
	r.mu.RLock()
	conns := r.userConns[userID]
	targets := make([]*Connection, 0, len(conns))
	for _, conn := range conns {
		targets = append(targets, conn)
	}
	r.mu.RUnlock()

	delivered := 0
	for _, conn := range targets {
		if err := conn.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// ConnectionCount reports how many live connections the user currently has.
func (r *Router) ConnectionCount(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.userConns[userID])
}

// Close terminates all tracked connections and clears router state.
func (r *Router) Close() {
	r.mu.Lock()
	sessions := make([]*Connection, 0, len(r.sessions))
	for _, conn := range r.sessions {
		sessions = append(sessions, conn)
	}
	r.sessions = make(map[string]*Connection)
	r.userConns = make(map[string]map[string]*Connection)
	r.rooms = make(map[string]map[string]*Connection)
	r.connRooms = make(map[string]map[string]struct{})
	r.mu.Unlock()

	for _, conn := range sessions {
		metrics.ActiveConnections.Dec()
		conn.Close(1001, "router shutdown")
	}
}

func (r *Router) detachLocked(connectionID string) {
	conn, ok := r.sessions[connectionID]
	if !ok {
		return
	}
	delete(r.sessions, connectionID)
	metrics.ActiveConnections.Dec()

	if conns, ok := r.userConns[conn.UserID]; ok {
		delete(conns, connectionID)
		if len(conns) == 0 {
			delete(r.userConns, conn.UserID)
		}
	}

	for roomID := range r.connRooms[connectionID] {
		r.leaveLocked(roomID, connectionID)
	}
	delete(r.connRooms, connectionID)
}

func (r *Router) leaveLocked(conversationID string, connectionID string) {
	room := r.rooms[conversationID]
	if room == nil {
		return
	}
	delete(room, connectionID)
	if len(room) == 0 {
		delete(r.rooms, conversationID)
	}
	if memberships, ok := r.connRooms[connectionID]; ok {
		delete(memberships, conversationID)
	}
}
