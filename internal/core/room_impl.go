package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"chatrelay/internal/domain"
)

// member is what a room stores per connection: the display name bound at
// join time and the outbound sink to fan out to.
type member struct {
	username string
	sink     Sink
}

// roomImpl is a threadsafe in-memory room.
// It never closes adapter-owned resources.
type roomImpl struct {
	id           domain.RoomID
	cast         Broadcaster
	historyLimit int

	mu      sync.Mutex
	members map[SessionID]*member
	history []domain.Event
}

// NewRoom creates an empty room. historyLimit caps the retained history;
// zero or negative means unbounded.
func NewRoom(id domain.RoomID, cast Broadcaster, historyLimit int) Room {
	return &roomImpl{
		id:           id,
		cast:         cast,
		historyLimit: historyLimit,
		members:      make(map[SessionID]*member),
	}
}

func (r *roomImpl) ID() domain.RoomID { return r.id }

func (r *roomImpl) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

func (r *roomImpl) History() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Event, len(r.history))
	copy(out, r.history)
	return out
}

func (r *roomImpl) Join(sid SessionID, username string, sink Sink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[sid]; ok {
		return ErrAlreadyMember
	}

	// Replay before the member enters the live broadcast set, inside the
	// same critical section, so the member's stream is exactly
	// snapshot ++ subsequent broadcasts.
	snapshot := make([]domain.Event, len(r.history))
	copy(snapshot, r.history)
	if err := r.cast.DeliverHistory(snapshot, sink); err != nil {
		log.Warn().Str("module", "core.room").Str("room", string(r.id)).Str("sid", string(sid)).Err(err).Msg("history replay dropped")
	}

	r.members[sid] = &member{username: username, sink: sink}
	ev := domain.NewJoinedEvent(username)
	r.cast.Deliver(ev, r.targetsLocked(), sid)
	log.Info().Str("module", "core.room").Str("room", string(r.id)).Str("sid", string(sid)).Str("username", username).Msg("member joined")
	return nil
}

func (r *roomImpl) Leave(sid SessionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[sid]
	if !ok {
		return ErrNotMember
	}
	delete(r.members, sid)

	ev := domain.NewLeftEvent(m.username)
	r.cast.Deliver(ev, r.targetsLocked(), "")
	log.Info().Str("module", "core.room").Str("room", string(r.id)).Str("sid", string(sid)).Str("username", m.username).Msg("member left")
	return nil
}

func (r *roomImpl) PostMessage(sid SessionID, content string) (domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[sid]
	if !ok {
		return domain.Event{}, ErrUnauthorized
	}

	ev := domain.NewMessageEvent(m.username, content)
	r.history = append(r.history, ev)
	if r.historyLimit > 0 && len(r.history) > r.historyLimit {
		r.history = r.history[len(r.history)-r.historyLimit:]
	}

	// Sender included: its UI renders from the authoritative copy.
	r.cast.Deliver(ev, r.targetsLocked(), "")
	return ev, nil
}

// targetsLocked snapshots the member set for fan-out. Callers hold r.mu.
func (r *roomImpl) targetsLocked() []Target {
	out := make([]Target, 0, len(r.members))
	for sid, m := range r.members {
		out = append(out, Target{SID: sid, Sink: m.sink})
	}
	return out
}
