package commands

import (
	"strings"

	"github.com/gfax/junkyard-gateway/pkg/bridge"
	"github.com/gfax/junkyard-gateway/pkg/bus"
	"github.com/gfax/junkyard-gateway/pkg/logger"
	"github.com/gfax/junkyard-gateway/pkg/schedule"
	"github.com/gfax/junkyard-gateway/pkg/session"
)

// sessionFor resolves the routing key and returns the live session, or nil.
// Commands against a nonexistent session are silent no-ops.
func (r *Router) sessionFor(msg bus.InboundMessage) *session.Session {
	s := r.registry.Get(session.ResolveKey(msg))
	if s != nil {
		s.Touch()
	}
	return s
}

// whisperActor sends a single private message to the acting user. Used for
// authorization denials and informational notices; never broadcast.
func (r *Router) whisperActor(msg bus.InboundMessage, phraseKey string) {
	r.bridge.Dispatch(bridge.Event{
		Kind:     bridge.KindWhisper,
		Channel:  msg.Channel,
		PlayerID: msg.SenderID,
		Text:     r.catalog.MustPhrase(phraseKey),
	})
}

func (r *Router) handleCreate(msg bus.InboundMessage) {
	key := session.ResolveKey(msg)
	if r.registry.Get(key) != nil {
		// Only the actor hears this; the room is not disturbed and the
		// existing game is left untouched.
		r.whisperActor(msg, "game:already-started")
		return
	}

	engine := r.factory(
		msg.SenderID,
		msg.SenderName,
		r.bridge.AnnounceFunc(key, msg.Channel),
		r.bridge.WhisperFunc(msg.Channel),
		r.catalog.Lang(),
	)
	s := session.NewSession(key, msg.Channel, engine)
	if err := r.registry.Create(key, s); err != nil {
		r.whisperActor(msg, "game:already-started")
		return
	}
	logger.InfoCF("router", "game created", map[string]interface{}{
		"key":     key,
		"manager": msg.SenderID,
	})

	// Delayed so the triggering message settles first on transports that
	// reorder back-to-back sends. Re-checks registry state at fire time; a
	// timer outliving its session is a no-op.
	schedule.After(r.advertiseDelay, func() {
		if r.registry.Get(key) == nil {
			return
		}
		r.bridge.Dispatch(bridge.Event{
			Kind:    bridge.KindAdvertise,
			Key:     key,
			Channel: msg.Channel,
			Text:    r.catalog.MustPhrase("game:advertise"),
		})
	})
}

func (r *Router) handleJoin(msg bus.InboundMessage) {
	s := r.sessionFor(msg)
	if s == nil {
		return
	}
	before := len(s.Engine.Players())
	if err := s.Engine.AddPlayer(msg.SenderID, msg.SenderName); err != nil {
		logger.DebugCF("router", "join rejected", map[string]interface{}{
			"sender": msg.SenderID, "error": err.Error(),
		})
		return
	}
	// Edge-triggered: only the join that brings the roster from one player
	// to two announces readiness.
	if !s.Engine.Started() && before == 1 && len(s.Engine.Players()) == 2 {
		r.bridge.Dispatch(bridge.Event{
			Kind:    bridge.KindReady,
			Key:     s.Key,
			Channel: s.Channel,
			Text:    r.catalog.MustPhrase("game:ready"),
		})
	}
}

func (r *Router) handleAddBot(msg bus.InboundMessage) {
	s := r.sessionFor(msg)
	if s == nil {
		return
	}
	var name string
	if fields := strings.Fields(msg.Content); len(fields) > 1 {
		name = fields[1]
	}
	if err := s.Engine.AddBot(name); err != nil {
		logger.DebugCF("router", "add-bot rejected", map[string]interface{}{"error": err.Error()})
	}
}

func (r *Router) handlePlay(msg bus.InboundMessage) {
	s := r.sessionFor(msg)
	if s == nil {
		return
	}
	req := ParseRequest(msg.Content, s.Engine.Players())
	if err := s.Engine.Play(msg.SenderID, req.Selections, req.Target); err != nil {
		logger.DebugCF("router", "play rejected", map[string]interface{}{"error": err.Error()})
	}
}

func (r *Router) handleDiscard(msg bus.InboundMessage) {
	s := r.sessionFor(msg)
	if s == nil {
		return
	}
	req := ParseRequest(msg.Content, s.Engine.Players())
	if err := s.Engine.Discard(msg.SenderID, req.Selections, req.Target); err != nil {
		logger.DebugCF("router", "discard rejected", map[string]interface{}{"error": err.Error()})
	}
}

func (r *Router) handlePass(msg bus.InboundMessage) {
	s := r.sessionFor(msg)
	if s == nil {
		return
	}
	if err := s.Engine.Pass(msg.SenderID); err != nil {
		logger.DebugCF("router", "pass rejected", map[string]interface{}{"error": err.Error()})
	}
}

func (r *Router) handleRemove(msg bus.InboundMessage) {
	s := r.sessionFor(msg)
	if s == nil {
		return
	}

	// "remove me" is a literal token, not a player alias; it bypasses the
	// roster-matching path entirely.
	var targetID string
	if fields := strings.Fields(msg.Content); len(fields) > 1 && strings.EqualFold(fields[1], "me") {
		targetID = msg.SenderID
	} else if req := ParseRequest(msg.Content, s.Engine.Players()); req.Target != nil {
		targetID = req.Target.ID
	}
	if targetID == "" {
		return
	}

	// Anyone may remove themself; removing others takes the manager.
	if targetID != msg.SenderID && s.Manager().ID != msg.SenderID {
		r.whisperActor(msg, "game:cannot-remove")
		return
	}
	if err := s.Engine.RemovePlayer(targetID); err != nil {
		logger.DebugCF("router", "remove rejected", map[string]interface{}{"error": err.Error()})
	}
}

func (r *Router) handleStatus(msg bus.InboundMessage) {
	s := r.sessionFor(msg)
	if s == nil {
		return
	}
	if err := s.Engine.WhisperStatus(msg.SenderID); err != nil {
		logger.DebugCF("router", "status rejected", map[string]interface{}{"error": err.Error()})
	}
}

func (r *Router) handleStart(msg bus.InboundMessage) {
	s := r.sessionFor(msg)
	if s == nil || s.Engine.Started() {
		return
	}
	if err := s.Engine.Start(); err != nil {
		logger.DebugCF("router", "start rejected", map[string]interface{}{"error": err.Error()})
	}
}

func (r *Router) handleStop(msg bus.InboundMessage) {
	s := r.sessionFor(msg)
	if s == nil {
		return
	}
	if s.Manager().ID != msg.SenderID {
		r.whisperActor(msg, "game:cannot-stop")
		return
	}
	s.Engine.Stop()
}

func (r *Router) handleTransfer(msg bus.InboundMessage) {
	s := r.sessionFor(msg)
	if s == nil {
		return
	}
	if s.Manager().ID != msg.SenderID {
		r.whisperActor(msg, "game:cannot-transfer")
		return
	}
	req := ParseRequest(msg.Content, s.Engine.Players())
	if req.Target == nil {
		return
	}
	if err := s.Engine.Transfer(*req.Target); err != nil {
		logger.DebugCF("router", "transfer rejected", map[string]interface{}{"error": err.Error()})
	}
}
