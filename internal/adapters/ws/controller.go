package ws

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"chatrelay/internal/app"
	"chatrelay/internal/config"
	"chatrelay/internal/core"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Controller accepts chat connections and runs their protocol loops.
type Controller struct {
	cfg      *config.Config
	rooms    *app.RoomRegistry
	sessions *app.SessionRegistry
	limiter  *MessageRateLimiter
}

func NewController(cfg *config.Config, rooms *app.RoomRegistry, sessions *app.SessionRegistry) *Controller {
	return &Controller{
		cfg:      cfg,
		rooms:    rooms,
		sessions: sessions,
		limiter:  NewMessageRateLimiter(cfg.MessageLimit, cfg.MessageInterval),
	}
}

// HandleChat upgrades the request and starts the read/write pumps for a
// fresh session.
func (ctl *Controller) HandleChat(ctx context.Context, c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("ws upgrade")
		return
	}
	conn.SetReadLimit(ctl.cfg.ReadLimit)

	sid := core.SessionID(uuid.NewString())
	log.Info().Str("module", "ws").Str("sid", string(sid)).Str("client", c.GetString("client_token")).Msg("new connection")

	wc := NewConn(conn, ctl.cfg.SendBuffer)
	sess := app.NewSession(sid, ctl.rooms, wc)

	ctx, cancel := context.WithCancel(ctx)
	ctl.sessions.Bind(sid, sess, cancel)

	go ctl.writePump(ctx, wc)
	go ctl.readPump(ctx, sess, wc, cancel)
}
