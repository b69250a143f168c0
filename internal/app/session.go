package app

import (
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"chatrelay/internal/core"
	"chatrelay/internal/domain"
)

type SessionState int

const (
	StateUnjoined SessionState = iota
	StateJoined
	StateClosed
)

// Session is the per-connection protocol state machine. It validates
// inbound operations against the connection's lifecycle state and
// translates them into room registry operations.
//
// Unjoined -> Joined on a successful join; any state -> Closed on
// disconnect; no transition out of Closed.
type Session struct {
	id    core.SessionID
	rooms *RoomRegistry
	sink  core.Sink

	mu       sync.Mutex
	state    SessionState
	roomID   domain.RoomID
	username string
}

func NewSession(id core.SessionID, rooms *RoomRegistry, sink core.Sink) *Session {
	return &Session{id: id, rooms: rooms, sink: sink}
}

func (s *Session) ID() core.SessionID { return s.id }

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Room reports the joined room, if any.
func (s *Session) Room() (domain.RoomID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomID, s.state == StateJoined
}

func (s *Session) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username
}

// CreateRoom makes a fresh empty room and returns its identifier to the
// requester only. No join side effect: the client is expected to request
// a join next.
func (s *Session) CreateRoom() (domain.RoomID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateClosed:
		return "", ErrSessionClosed
	case StateJoined:
		return "", ErrAlreadyInRoom
	}
	room := s.rooms.CreateRoom()
	return room.ID(), nil
}

// Join binds the display name and enters the room. The history snapshot
// is replayed to the session's sink before any subsequent live event.
func (s *Session) Join(roomID domain.RoomID, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateClosed:
		return ErrSessionClosed
	case StateJoined:
		return ErrAlreadyInRoom
	}
	if err := domain.ValidateUsername(username); err != nil {
		return ErrInvalidName
	}
	if err := s.rooms.JoinRoom(roomID, s.id, username, s.sink); err != nil {
		return err
	}
	s.state = StateJoined
	s.roomID = roomID
	s.username = username
	return nil
}

// SendMessage posts to the session's current room. The resulting event
// is broadcast to the entire room, sender included.
func (s *Session) SendMessage(content string) (domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateClosed:
		return domain.Event{}, ErrSessionClosed
	case StateUnjoined:
		return domain.Event{}, ErrNotInRoom
	}
	if strings.TrimSpace(content) == "" {
		return domain.Event{}, ErrEmptyContent
	}
	return s.rooms.PostMessage(s.roomID, s.id, content)
}

// Disconnect closes the session, triggering an implicit leave if it was
// joined. Idempotent: the transport may report closure concurrently with
// an in-flight request, but the leave runs exactly once.
func (s *Session) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return
	}
	if s.state == StateJoined {
		s.rooms.LeaveRoom(s.roomID, s.id)
	}
	s.state = StateClosed
	log.Info().Str("module", "app.session").Str("sid", string(s.id)).Msg("session closed")
}
