package realtime

import (
	"sync"

	"github.com/google/uuid"

	"github.com/pavnoorsra/pswhiteboard/models"
	"github.com/pavnoorsra/pswhiteboard/rooms"
)

// State is where a session sits in its lifecycle. There are no other states:
// a session is either waiting to join, in exactly one room, or gone.
type State int

const (
	StateConnecting State = iota
	StateJoined
	StateDisconnected
)

// Session is one connected client, owned by the synchronization service and
// looked up by id. Everything the service wants delivered goes through the
// buffered outgoing channel; the transport drains it with a single writer.
type Session struct {
	ID string

	mu    sync.Mutex
	state State
	room  *rooms.Room

	outgoing chan models.ServerMessage
	done     chan struct{}
	once     sync.Once
}

// outgoingBuffer is how far a client may fall behind before it gets
// disconnected. A disconnected client reconnects and replays, so dropping
// the connection is safe; silently dropping one message is not.
const outgoingBuffer = 256

func newSession() *Session {
	return &Session{
		ID:       uuid.NewString(),
		outgoing: make(chan models.ServerMessage, outgoingBuffer),
		done:     make(chan struct{}),
	}
}

// Outgoing is the stream of messages to write to the client, in order.
func (s *Session) Outgoing() <-chan models.ServerMessage {
	return s.outgoing
}

// Done is closed when the session should be torn down.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close marks the session finished. Safe to call more than once.
func (s *Session) Close() {
	s.once.Do(func() { close(s.done) })
}

// Send enqueues a message for the client without blocking. It reports false
// when the buffer is full, which the service treats as a dead or hopelessly
// slow client.
func (s *Session) Send(msg models.ServerMessage) bool {
	select {
	case s.outgoing <- msg:
		return true
	default:
		return false
	}
}

func (s *Session) setJoined(room *rooms.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateJoined
	s.room = room
}

func (s *Session) setDisconnected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateDisconnected
	s.room = nil
}

// joinedRoom returns the room the session is in, or nil while connecting or
// after disconnect.
func (s *Session) joinedRoom() *rooms.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateJoined {
		return nil
	}
	return s.room
}

// clearRoom detaches the session from its room and returns it, or nil if it
// was not joined.
func (s *Session) clearRoom() *rooms.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateJoined {
		return nil
	}
	room := s.room
	s.state = StateConnecting
	s.room = nil
	return room
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
