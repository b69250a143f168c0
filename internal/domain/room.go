package domain

// RoomID is the opaque identifier a client uses to address a room.
// Generated at creation, never reused while the room is live.
type RoomID string
