// Package rooms maps room codes to live membership and the room's active
// page. It deals in session ids only, so it stays independent of whatever
// transport the sessions are connected over.
package rooms

import (
	"log"
	"sync"
)

// Room is one drawing room. Its embedded mutex serializes everything that
// must stay in log order for the room: membership changes, log mutations and
// broadcast fan-out all happen while holding it. Rooms never share locks, so
// unrelated rooms proceed fully in parallel.
type Room struct {
	sync.Mutex
	Code         string
	ActivePageID string
	Members      map[string]bool // session ids
}

// Registry tracks every room the process has seen. Rooms are created lazily
// on first join and kept around after the last member leaves: their pages
// live in the store anyway, and a returning client expects its drawing back.
type Registry struct {
	mu       sync.RWMutex
	rooms    map[string]*Room
	sessions map[string]string // session id -> room code
	newPage  func(roomCode string) string
}

func NewRegistry(newPage func(roomCode string) string) *Registry {
	return &Registry{
		rooms:    make(map[string]*Room),
		sessions: make(map[string]string),
		newPage:  newPage,
	}
}

// GetOrCreate returns the room for the code, creating it with a fresh empty
// page on first join.
func (r *Registry) GetOrCreate(code string) *Room {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[code]
	if !ok {
		room = &Room{
			Code:         code,
			ActivePageID: r.newPage(code),
			Members:      make(map[string]bool),
		}
		r.rooms[code] = room
		log.Printf("Created room %s with page %s", code, room.ActivePageID)
	}
	return room
}

// Get returns the room for the code, or nil if no session ever joined it.
func (r *Registry) Get(code string) *Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rooms[code]
}

// Join registers the session under the room, creating the room if absent,
// and returns the active page id plus a membership snapshot.
func (r *Registry) Join(code, sessionID string) (string, []string) {
	room := r.GetOrCreate(code)
	room.Lock()
	room.Members[sessionID] = true
	pageID := room.ActivePageID
	members := membersLocked(room)
	room.Unlock()
	r.Bind(sessionID, code)
	return pageID, members
}

// Bind records which room a session belongs to, for Leave lookups.
func (r *Registry) Bind(sessionID, code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sessionID] = code
}

// Leave removes the session from whatever room it is in. A session that
// never joined anything is a no-op.
func (r *Registry) Leave(sessionID string) {
	r.mu.Lock()
	code, ok := r.sessions[sessionID]
	if ok {
		delete(r.sessions, sessionID)
	}
	room := r.rooms[code]
	r.mu.Unlock()
	if !ok || room == nil {
		return
	}
	room.Lock()
	delete(room.Members, sessionID)
	remaining := len(room.Members)
	room.Unlock()
	log.Printf("Session %s left room %s (%d remaining)", sessionID, code, remaining)
}

// SetActivePage atomically updates the room's pointer; sessions joining
// afterwards replay the new page.
func (r *Registry) SetActivePage(code, pageID string) {
	room := r.Get(code)
	if room == nil {
		return
	}
	room.Lock()
	room.ActivePageID = pageID
	room.Unlock()
}

// MembersOf returns a snapshot of the room's current session ids.
func (r *Registry) MembersOf(code string) []string {
	room := r.Get(code)
	if room == nil {
		return nil
	}
	room.Lock()
	defer room.Unlock()
	return membersLocked(room)
}

func membersLocked(room *Room) []string {
	ids := make([]string, 0, len(room.Members))
	for id := range room.Members {
		ids = append(ids, id)
	}
	return ids
}
