package app

import "errors"

// Protocol-level failures surfaced to the originating connection as a
// non-fatal error frame. None of them close the connection or affect
// other connections.
var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrAlreadyInRoom = errors.New("already in a room")
	ErrInvalidName   = errors.New("invalid display name")
	ErrEmptyContent  = errors.New("empty message content")
	ErrNotInRoom     = errors.New("not in a room")
	ErrRateLimited   = errors.New("message rate limit exceeded")
	ErrSessionClosed = errors.New("session closed")
)
