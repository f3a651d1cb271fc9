// Package realtime is the relay at the center of the whiteboard: it accepts
// sessions, assigns them to rooms, replays the room's current page to
// joiners and fans every accepted event out to the rest of the room in the
// order the stroke log accepted it.
package realtime

import (
	"errors"
	"log"
	"sync"

	"github.com/pavnoorsra/pswhiteboard/models"
	"github.com/pavnoorsra/pswhiteboard/pages"
	"github.com/pavnoorsra/pswhiteboard/rooms"
	"github.com/pavnoorsra/pswhiteboard/strokelog"
)

// ErrNotJoined is returned for draw/undo/clear/new-page events from a
// session that has not joined a room yet.
var ErrNotJoined = errors.New("join a room first")

// Service wires sessions to the room registry, stroke log and page manager.
//
// Ordering rule: every room mutation and its fan-out happen while holding
// that room's lock. Two draws appended s1 then s2 are therefore enqueued to
// every member in that order, and a join replays a clean prefix: anything
// appended after the replay snapshot arrives as a later broadcast, so a
// joiner never misses a segment and never sees one twice.
type Service struct {
	registry *rooms.Registry
	log      *strokelog.Log
	pages    *pages.Manager

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewService(registry *rooms.Registry, strokeLog *strokelog.Log, pageManager *pages.Manager) *Service {
	return &Service{
		registry: registry,
		log:      strokeLog,
		pages:    pageManager,
		sessions: make(map[string]*Session),
	}
}

// Connect creates a session for a freshly accepted connection.
func (s *Service) Connect() *Session {
	sess := newSession()
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	log.Printf("Session %s connected", sess.ID)
	return sess
}

// Disconnect tears the session down: it leaves its room (no broadcast, the
// peers simply stop hearing from it) and is forgotten. Anything the log
// already accepted from it stays valid.
func (s *Service) Disconnect(sess *Session) {
	s.leaveRoom(sess)
	sess.setDisconnected()
	sess.Close()
	s.mu.Lock()
	delete(s.sessions, sess.ID)
	s.mu.Unlock()
	log.Printf("Session %s disconnected", sess.ID)
}

// Join puts the session in the room and replays the room's active page to it
// alone. Joining while already in a room is an explicit transition: leave
// the old room first, then join the new one.
func (s *Service) Join(sess *Session, code string) error {
	normalized, err := models.NormalizeRoomCode(code)
	if err != nil {
		return err
	}
	s.leaveRoom(sess)

	room := s.registry.GetOrCreate(normalized)
	room.Lock()
	pageID := room.ActivePageID
	segs, err := s.log.Replay(pageID)
	if err != nil {
		room.Unlock()
		return err
	}
	room.Members[sess.ID] = true
	s.deliver(sess.ID, models.ServerMessage{
		Type:     models.MsgReplayed,
		PageID:   pageID,
		Segments: segs,
	})
	room.Unlock()

	s.registry.Bind(sess.ID, normalized)
	sess.setJoined(room)
	log.Printf("Session %s joined room %s (page %s, %d segments replayed)", sess.ID, normalized, pageID, len(segs))
	return nil
}

// Draw appends the segment to the room's active page and forwards it to
// every other member. The author never gets its own stroke back: it already
// rendered it locally before the round-trip.
func (s *Service) Draw(sess *Session, seg models.StrokeSegment) error {
	room := sess.joinedRoom()
	if room == nil {
		return ErrNotJoined
	}
	room.Lock()
	defer room.Unlock()

	stored, err := s.log.Append(room.ActivePageID, seg)
	if err != nil {
		return err
	}
	s.fanout(room, models.ServerMessage{Type: models.MsgDrawn, Segment: &stored}, sess.ID)
	return nil
}

// Undo removes the page's most recent segment and tells every member,
// including the requester, which id to erase. The requester does not know
// the assigned id in advance, so unlike draws the removal is confirmed back.
// Undoing an empty page does nothing and broadcasts nothing.
func (s *Service) Undo(sess *Session) error {
	room := sess.joinedRoom()
	if room == nil {
		return ErrNotJoined
	}
	room.Lock()
	defer room.Unlock()

	seg, err := s.log.RemoveLast(room.ActivePageID)
	if errors.Is(err, strokelog.ErrEmptyPage) {
		return nil
	}
	if err != nil {
		return err
	}
	s.fanout(room, models.ServerMessage{Type: models.MsgRemoved, ID: seg.ID}, "")
	return nil
}

// Clear empties the room's active page and tells every member.
func (s *Service) Clear(sess *Session) error {
	room := sess.joinedRoom()
	if room == nil {
		return ErrNotJoined
	}
	room.Lock()
	defer room.Unlock()

	if err := s.log.Clear(room.ActivePageID); err != nil {
		return err
	}
	s.fanout(room, models.ServerMessage{Type: models.MsgCleared}, "")
	return nil
}

// NewPage allocates a fresh empty page, installs it as the room's active
// page and tells every member to reset its view. The old page stays in the
// store and can still be replayed by id.
func (s *Service) NewPage(sess *Session) error {
	room := sess.joinedRoom()
	if room == nil {
		return ErrNotJoined
	}
	pageID := s.pages.NewPage(room.Code)

	room.Lock()
	defer room.Unlock()
	room.ActivePageID = pageID
	s.fanout(room, models.ServerMessage{Type: models.MsgPageSwitched, PageID: pageID}, "")
	log.Printf("Room %s switched to page %s", room.Code, pageID)
	return nil
}

// Leave takes the session out of its room without tearing it down; it can
// join another room afterwards.
func (s *Service) Leave(sess *Session) {
	s.leaveRoom(sess)
}

func (s *Service) leaveRoom(sess *Session) {
	if sess.clearRoom() == nil {
		return
	}
	s.registry.Leave(sess.ID)
}

// fanout enqueues the message to every member except excludeID. Caller holds
// the room lock, which is what makes delivery order match log order.
func (s *Service) fanout(room *rooms.Room, msg models.ServerMessage, excludeID string) {
	for id := range room.Members {
		if id == excludeID {
			continue
		}
		s.deliver(id, msg)
	}
}

func (s *Service) deliver(sessionID string, msg models.ServerMessage) {
	s.mu.RLock()
	member := s.sessions[sessionID]
	s.mu.RUnlock()
	if member == nil {
		return
	}
	if !member.Send(msg) {
		// The member's buffer is full. Skipping a message would leave its
		// canvas silently out of sync forever; dropping the connection makes
		// it reconnect and replay instead.
		log.Printf("Session %s is not keeping up, dropping it", sessionID)
		member.Close()
	}
}
