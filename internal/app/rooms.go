package app

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"chatrelay/internal/core"
	"chatrelay/internal/domain"
)

// roomIDLen is the number of UUID characters kept for a room identifier.
// Short enough to type, random enough to be unguessable.
const roomIDLen = 8

// RoomRegistry owns the mapping from room identifier to room state.
// Lifecycle-scoped: each serving component holds its own instance.
type RoomRegistry struct {
	cast         core.Broadcaster
	historyLimit int

	mu    sync.RWMutex
	rooms map[domain.RoomID]core.Room
}

func NewRoomRegistry(cast core.Broadcaster, historyLimit int) *RoomRegistry {
	return &RoomRegistry{
		cast:         cast,
		historyLimit: historyLimit,
		rooms:        make(map[domain.RoomID]core.Room),
	}
}

// CreateRoom generates a fresh identifier, inserts an empty room and
// returns it. Never fails; concurrent calls yield distinct identifiers.
func (g *RoomRegistry) CreateRoom() core.Room {
	g.mu.Lock()
	defer g.mu.Unlock()
	for {
		id := domain.RoomID(uuid.NewString()[:roomIDLen])
		if _, taken := g.rooms[id]; taken {
			continue
		}
		room := core.NewRoom(id, g.cast, g.historyLimit)
		g.rooms[id] = room
		log.Info().Str("module", "app.rooms").Str("room", string(id)).Msg("room created")
		return room
	}
}

func (g *RoomRegistry) GetRoom(id domain.RoomID) (core.Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	room, ok := g.rooms[id]
	return room, ok
}

// JoinRoom resolves the room and joins it while holding the registry
// read lock, so a concurrent RemoveIfEmpty on the same id either runs
// before the lookup (RoomNotFound) or after the join (room kept).
func (g *RoomRegistry) JoinRoom(id domain.RoomID, sid core.SessionID, username string, sink core.Sink) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	room, ok := g.rooms[id]
	if !ok {
		return ErrRoomNotFound
	}
	return room.Join(sid, username, sink)
}

// LeaveRoom removes the member and drops the room if it became empty.
// A missing room or member is benign: a disconnect-triggered leave may
// race an explicit one.
func (g *RoomRegistry) LeaveRoom(id domain.RoomID, sid core.SessionID) {
	g.mu.RLock()
	room, ok := g.rooms[id]
	g.mu.RUnlock()
	if !ok {
		return
	}
	if err := room.Leave(sid); err != nil {
		log.Debug().Str("module", "app.rooms").Str("room", string(id)).Str("sid", string(sid)).Err(err).Msg("leave no-op")
	}
	g.RemoveIfEmpty(id)
}

// PostMessage relays a message through the member's current room.
func (g *RoomRegistry) PostMessage(id domain.RoomID, sid core.SessionID, content string) (domain.Event, error) {
	g.mu.RLock()
	room, ok := g.rooms[id]
	g.mu.RUnlock()
	if !ok {
		// A joined session keeps its room alive, so this only happens for
		// messages racing the session's own departure.
		return domain.Event{}, core.ErrUnauthorized
	}
	return room.PostMessage(sid, content)
}

// RemoveIfEmpty drops a room only if its member count is currently zero.
// Idempotent; called after every departure.
func (g *RoomRegistry) RemoveIfEmpty(id domain.RoomID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	room, ok := g.rooms[id]
	if !ok {
		return
	}
	if room.MemberCount() == 0 {
		delete(g.rooms, id)
		log.Info().Str("module", "app.rooms").Str("room", string(id)).Msg("empty room removed")
	}
}

func (g *RoomRegistry) List() []core.RoomInfo {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]core.RoomInfo, 0, len(g.rooms))
	for id, room := range g.rooms {
		out = append(out, core.RoomInfo{ID: id, MemberCount: room.MemberCount()})
	}
	return out
}

func (g *RoomRegistry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}
