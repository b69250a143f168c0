package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"chatrelay/internal/core"
	"chatrelay/internal/domain"
)

// KickFunc tears down one member's connection. Wired to the session
// registry's Cancel at startup; may be nil.
type KickFunc func(core.SessionID) bool

// Dispatcher serializes events and fans them out to member sinks.
// Delivery is best-effort: a closed or full sink is skipped, logged and
// handed to the backpressure policy, never allowed to block or fail
// delivery to other members.
type Dispatcher struct {
	policy Policy
	kick   KickFunc
}

func NewDispatcher(policy Policy, kick KickFunc) *Dispatcher {
	if policy == nil {
		policy = DropPolicy{}
	}
	return &Dispatcher{policy: policy, kick: kick}
}

func (d *Dispatcher) Deliver(ev domain.Event, targets []core.Target, exclude core.SessionID) core.PublishResult {
	res := core.PublishResult{}
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Str("module", "app.dispatcher").Err(err).Msg("event marshal")
		return res
	}

	for _, t := range targets {
		if exclude != "" && t.SID == exclude {
			continue
		}
		if err := t.Sink.TrySend(core.Frame(data)); err != nil {
			log.Debug().Str("module", "app.dispatcher").Str("sid", string(t.SID)).Err(err).Msg("delivery skipped")
			res.Dropped = append(res.Dropped, t)
			continue
		}
		res.SentTo++
	}

	for _, slow := range res.Dropped {
		switch d.policy.OnBackPressure(ev, slow) {
		case KickMember:
			if d.kick != nil && d.kick(slow.SID) {
				log.Warn().Str("module", "app.dispatcher").Str("sid", string(slow.SID)).Msg("kicked slow member")
			}
		case DropFrame, NoAction:
		}
	}

	log.Debug().Str("module", "app.dispatcher").Str("type", string(ev.Type)).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

// historyFrame is the replay envelope sent to a member at join time.
type historyFrame struct {
	Type    string         `json:"type"`
	History []domain.Event `json:"history"`
}

func (d *Dispatcher) DeliverHistory(snapshot []domain.Event, to core.Sink) error {
	if snapshot == nil {
		snapshot = []domain.Event{}
	}
	data, err := json.Marshal(historyFrame{Type: "chat_history", History: snapshot})
	if err != nil {
		log.Error().Str("module", "app.dispatcher").Err(err).Msg("history marshal")
		return err
	}
	return to.TrySend(core.Frame(data))
}
