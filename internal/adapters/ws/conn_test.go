package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatrelay/internal/core"
)

func TestConnTrySend(t *testing.T) {
	c := NewConn(nil, 2)

	require.NoError(t, c.TrySend(core.Frame("a")))
	require.NoError(t, c.TrySend(core.Frame("b")))

	// Full queue refuses instead of blocking.
	assert.ErrorIs(t, c.TrySend(core.Frame("c")), ErrBackpressure)

	assert.Equal(t, core.Frame("a"), <-c.send)
	require.NoError(t, c.TrySend(core.Frame("c")))
}

func TestConnClose(t *testing.T) {
	c := NewConn(nil, 2)
	require.NoError(t, c.TrySend(core.Frame("a")))

	c.Close()
	assert.ErrorIs(t, c.TrySend(core.Frame("b")), ErrConnClosed)

	// Close is idempotent.
	c.Close()

	// Queued frames stay readable so the write pump can drain them.
	f, ok := <-c.send
	assert.True(t, ok)
	assert.Equal(t, core.Frame("a"), f)
	_, ok = <-c.send
	assert.False(t, ok)
}
