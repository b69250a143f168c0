package app

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatrelay/internal/core"
	"chatrelay/internal/domain"
)

func newTestRegistry() *RoomRegistry {
	return NewRoomRegistry(NewDispatcher(DropPolicy{}, nil), 500)
}

func TestCreateRoomConcurrentDistinctIDs(t *testing.T) {
	reg := newTestRegistry()

	const n = 64
	ids := make(chan domain.RoomID, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- reg.CreateRoom().ID()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[domain.RoomID]bool)
	for id := range ids {
		assert.Len(t, string(id), 8)
		assert.False(t, seen[id], "duplicate room id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
	assert.Equal(t, n, reg.Len())
}

func TestJoinRoomNotFound(t *testing.T) {
	reg := newTestRegistry()
	err := reg.JoinRoom("nope1234", "s1", "alice", newChanSink(4))
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestPostMessageOnMissingRoom(t *testing.T) {
	reg := newTestRegistry()
	_, err := reg.PostMessage("gone0000", "s1", "hi")
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestRemoveIfEmpty(t *testing.T) {
	reg := newTestRegistry()
	room := reg.CreateRoom()
	id := room.ID()

	require.NoError(t, reg.JoinRoom(id, "s1", "alice", newChanSink(4)))

	// Occupied room survives.
	reg.RemoveIfEmpty(id)
	_, ok := reg.GetRoom(id)
	assert.True(t, ok)

	// Departure of the last member removes it; repeat calls are no-ops.
	reg.LeaveRoom(id, "s1")
	_, ok = reg.GetRoom(id)
	assert.False(t, ok)
	reg.RemoveIfEmpty(id)
	assert.Equal(t, 0, reg.Len())
}

func TestLeaveRoomToleratesStrangers(t *testing.T) {
	reg := newTestRegistry()
	room := reg.CreateRoom()
	require.NoError(t, reg.JoinRoom(room.ID(), "s1", "alice", newChanSink(4)))

	// Leaving with an unknown handle must not disturb the room.
	reg.LeaveRoom(room.ID(), "ghost")
	_, ok := reg.GetRoom(room.ID())
	assert.True(t, ok)
	assert.Equal(t, 1, room.MemberCount())

	// And leaving an unknown room is silent too.
	reg.LeaveRoom("gone0000", "s1")
}

func TestRemoveIfEmptyRacingJoin(t *testing.T) {
	reg := newTestRegistry()
	room := reg.CreateRoom()
	id := room.ID()

	// Churn joins/leaves against empty-room reaping. The invariant: a
	// join that succeeded means the room was present and must stay
	// present until that member departs.
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			sid := core.SessionID(fmt.Sprintf("s%d", w))
			for i := 0; i < 200; i++ {
				if err := reg.JoinRoom(id, sid, "user", newChanSink(1)); err != nil {
					// Room already reaped: acceptable terminal state.
					assert.ErrorIs(t, err, ErrRoomNotFound)
					return
				}
				if r, ok := reg.GetRoom(id); assert.True(t, ok) {
					assert.Greater(t, r.MemberCount(), 0)
				}
				reg.LeaveRoom(id, sid)
			}
		}(w)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			reg.RemoveIfEmpty(id)
		}
	}()
	wg.Wait()

	// After all members are gone the room must not linger.
	reg.RemoveIfEmpty(id)
	_, ok := reg.GetRoom(id)
	assert.False(t, ok)
}
