package ws

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"chatrelay/internal/app"
	"chatrelay/internal/core"
	"chatrelay/internal/domain"
)

// handleFrame decodes one inbound protocol frame and dispatches it.
// Unknown types are ignored without closing the connection.
func (ctl *Controller) handleFrame(sess *app.Session, c *Conn, data core.Frame) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad json")
		return
	}

	switch env.Type {
	case "create_room":
		ctl.handleCreateRoom(sess, c)
	case "join_room":
		ctl.handleJoin(sess, c, data)
	case "send_message":
		ctl.handleSend(sess, c, data)
	case "ping":
		ctl.handlePing(c)
	default:
		log.Warn().Str("module", "ws").Str("type", env.Type).Msg("unknown frame type")
	}
}

func (ctl *Controller) handleCreateRoom(sess *app.Session, c *Conn) {
	roomID, err := sess.CreateRoom()
	if err != nil {
		ctl.sendError(c, err)
		return
	}
	resp := struct {
		Type   string        `json:"type"`
		RoomID domain.RoomID `json:"roomId"`
	}{"room_created", roomID}
	ctl.sendJSON(c, resp)
}

func (ctl *Controller) handleJoin(sess *app.Session, c *Conn, data core.Frame) {
	var p struct {
		Type     string `json:"type"`
		RoomID   string `json:"roomId"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad join payload")
		ctl.sendError(c, err)
		return
	}

	// The history snapshot is replayed to this connection's queue inside
	// the join itself, so nothing to send on success.
	if err := sess.Join(domain.RoomID(p.RoomID), p.Username); err != nil {
		log.Debug().Err(err).Str("module", "ws").Str("sid", string(sess.ID())).Str("room", p.RoomID).Msg("join rejected")
		ctl.sendError(c, err)
		return
	}
	log.Info().Str("module", "ws").Str("sid", string(sess.ID())).Str("room", p.RoomID).Str("username", p.Username).Msg("join")
}

func (ctl *Controller) handleSend(sess *app.Session, c *Conn, data core.Frame) {
	var p struct {
		Type    string `json:"type"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad message payload")
		ctl.sendError(c, err)
		return
	}

	if !ctl.limiter.Allow(sess.ID()) {
		log.Warn().Str("module", "ws").Str("sid", string(sess.ID())).Msg("message rate limit")
		ctl.sendError(c, app.ErrRateLimited)
		return
	}

	// The event itself is fanned out to the whole room, sender included.
	if _, err := sess.SendMessage(p.Content); err != nil {
		ctl.sendError(c, err)
	}
}

func (ctl *Controller) handlePing(c *Conn) {
	resp := struct {
		Type string `json:"type"`
	}{"pong"}
	ctl.sendJSON(c, resp)
}

func (ctl *Controller) sendJSON(c *Conn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("sendJSON marshal")
		return
	}
	if err := c.TrySend(b); err != nil {
		log.Debug().Err(err).Str("module", "ws").Msg("sendJSON dropped")
	}
}

// sendError surfaces a rejected operation to the originating connection
// as a non-fatal error frame.
func (ctl *Controller) sendError(c *Conn, err error) {
	resp := struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}{"error", err.Error()}
	ctl.sendJSON(c, resp)
}
