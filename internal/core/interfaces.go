package core

import (
	"errors"

	"chatrelay/internal/domain"
)

// Frame is a serialized wire payload (one JSON object per frame).
type Frame []byte

// SessionID is the connection handle used as the member-set key.
// Unique per live connection, system-wide.
type SessionID string

// Sink abstracts a member's outbound endpoint.
// Owned by the adapter; the adapter must Close() it.
// TrySend must never block: it either queues the frame or fails.
type Sink interface {
	TrySend(Frame) error
}

// Target pairs a member handle with its outbound sink for fan-out.
type Target struct {
	SID  SessionID
	Sink Sink
}

// PublishResult reports delivery stats/backpressure to the caller.
type PublishResult struct {
	SentTo  int
	Dropped []Target
}

// Broadcaster fans events out to member sinks. Implementations must not
// block: both methods run inside a room's critical section, so delivery
// order matches history append order for every member.
type Broadcaster interface {
	// Deliver sends one event to every target except exclude.
	// An empty exclude matches no one.
	Deliver(ev domain.Event, targets []Target, exclude SessionID) PublishResult

	// DeliverHistory replays a room's history snapshot to a single
	// newly joined member.
	DeliverHistory(snapshot []domain.Event, to Sink) error
}

var (
	ErrAlreadyMember = errors.New("already a member")
	ErrNotMember     = errors.New("not a member")
	ErrUnauthorized  = errors.New("not a member of this room")
)

// Room is the core-facing API of a room.
// It owns the membership set and the ordered history, but never touches
// transport resources beyond the Sink contract.
type Room interface {
	ID() domain.RoomID
	MemberCount() int
	History() []domain.Event

	// Join adds the member, replays the history snapshot to its sink and
	// broadcasts a join event to the rest of the room, all as one atomic
	// step relative to concurrent posts and leaves.
	Join(sid SessionID, username string, sink Sink) error

	// Leave removes the member and broadcasts a leave event to the
	// remaining members. Returns ErrNotMember if sid is not present;
	// callers must tolerate that silently.
	Leave(sid SessionID) error

	// PostMessage appends a message event and broadcasts it to the whole
	// room, sender included. Returns ErrUnauthorized if sid is not a
	// current member.
	PostMessage(sid SessionID, content string) (domain.Event, error)
}

// RoomInfo is a read-only view for APIs (no transport fields).
type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	MemberCount int           `json:"member_count"`
}
