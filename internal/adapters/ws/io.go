package ws

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"chatrelay/internal/app"
	"chatrelay/internal/core"
)

const writeDeadline = 5 * time.Second

// writePump drains the outbound queue onto the wire and pings the peer
// every ping period. It closes the connection on exit so a canceled
// context also unblocks the read pump.
func (ctl *Controller) writePump(ctx context.Context, c *Conn) {
	ping := time.NewTicker(ctl.cfg.PingPeriod)
	defer func() {
		ping.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "ws").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil {
				log.Error().Err(err).Str("module", "ws").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "ws").Msg("writePump write error")
				return
			}
		case <-ping.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeDeadline)); err != nil {
				log.Debug().Err(err).Str("module", "ws").Msg("writePump ping error")
				return
			}
		}
	}
}

// readPump consumes inbound frames until the peer goes away. Its defer
// is the single place the disconnect transition is triggered from, so
// the implicit leave runs exactly once per connection.
func (ctl *Controller) readPump(ctx context.Context, sess *app.Session, c *Conn, cancel context.CancelFunc) {
	sid := sess.ID()
	defer func() {
		log.Info().Str("module", "ws").Str("sid", string(sid)).Msg("readPump closing")
		ctl.sessions.Unbind(sid)
		ctl.limiter.Forget(sid)
		sess.Disconnect()
		c.Close()
		cancel()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Debug().Err(err).Str("module", "ws").Str("sid", string(sid)).Msg("readPump read error")
				return
			}
			ctl.handleFrame(sess, c, core.Frame(data))
		}
	}
}
