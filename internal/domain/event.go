// Package domain contains entity without logic, just meta-data
package domain

import "time"

type EventType string

const (
	EventMessage EventType = "new_message"
	EventJoined  EventType = "user_joined"
	EventLeft    EventType = "user_left"
)

// Event is the unit of history and broadcast: an immutable, timestamped
// record of a message or membership change. The JSON encoding is the
// wire format sent to clients as-is.
type Event struct {
	Type      EventType `json:"type"`
	Username  string    `json:"username"`
	Content   string    `json:"content,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewMessageEvent(username, content string) Event {
	return Event{
		Type:      EventMessage,
		Username:  username,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

func NewJoinedEvent(username string) Event {
	return Event{
		Type:      EventJoined,
		Username:  username,
		Timestamp: time.Now().UTC(),
	}
}

func NewLeftEvent(username string) Event {
	return Event{
		Type:      EventLeft,
		Username:  username,
		Timestamp: time.Now().UTC(),
	}
}
