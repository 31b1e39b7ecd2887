// Package bridge turns engine notifications and gateway lifecycle events
// into ordered, audience-scoped outbound messages.
//
// Every event, whether an engine announce/whisper callback or one of the
// gateway's own advertise and ready notices, flows through one dispatcher
// as a structured Event rather than ad-hoc closures capturing router state.
package bridge

import (
	"time"

	"github.com/gfax/junkyard-gateway/pkg/junkyard"
	"github.com/gfax/junkyard-gateway/pkg/logger"
	"github.com/gfax/junkyard-gateway/pkg/session"
	"github.com/gfax/junkyard-gateway/pkg/storage"
)

// Enqueuer accepts outbound text for ordered delivery. Satisfied by
// outbound.Queue.
type Enqueuer interface {
	Enqueue(channel, chatID, text string)
}

// Kind classifies an event for dispatch.
type Kind string

const (
	KindAdvertise Kind = "advertise" // new-game broadcast to the routing key's audience
	KindReady     Kind = "ready"     // roster reached two players
	KindAnnounce  Kind = "announce"  // engine broadcast
	KindTerminal  Kind = "terminal"  // engine broadcast that ends the session
	KindWhisper   Kind = "whisper"   // engine private message to one player
)

// Event is one notification bound for chat.
type Event struct {
	Kind     Kind
	Key      string // routing key of the session
	Channel  string // transport name
	PlayerID string // whisper target
	Code     string // engine event code
	Text     string
	Bot      bool // whisper target is a bot
}

// Bridge owns session teardown on terminal events and all enqueueing of
// outbound text. history may be nil.
type Bridge struct {
	registry *session.Registry
	queue    Enqueuer
	history  *storage.History
}

func New(registry *session.Registry, queue Enqueuer, history *storage.History) *Bridge {
	return &Bridge{registry: registry, queue: queue, history: history}
}

// Dispatch routes one event. Broadcast-scoped events go to the session's
// routing-key chat; whispers go to the player's private chat unless the
// target is a bot. Terminal events clear the registry entry before the
// message is enqueued, so a create-game arriving right after the game ends
// is never rejected by a stale entry.
func (b *Bridge) Dispatch(ev Event) {
	switch ev.Kind {
	case KindWhisper:
		if ev.Bot {
			return
		}
		b.queue.Enqueue(ev.Channel, ev.PlayerID, ev.Text)
	case KindTerminal:
		b.teardown(ev)
		b.queue.Enqueue(ev.Channel, ev.Key, ev.Text)
	default:
		b.queue.Enqueue(ev.Channel, ev.Key, ev.Text)
	}
}

func (b *Bridge) teardown(ev Event) {
	s := b.registry.Get(ev.Key)
	b.registry.Clear(ev.Key)
	logger.InfoCF("bridge", "session ended", map[string]interface{}{
		"key":  ev.Key,
		"code": ev.Code,
	})
	if b.history == nil || s == nil {
		return
	}
	err := b.history.Record(storage.Record{
		Key:       ev.Key,
		Channel:   ev.Channel,
		Code:      ev.Code,
		Text:      ev.Text,
		StartedAt: s.CreatedAt,
		EndedAt:   time.Now(),
	})
	if err != nil {
		logger.WarnCF("bridge", "history record failed", map[string]interface{}{
			"key":   ev.Key,
			"error": err.Error(),
		})
	}
}

// AnnounceFunc adapts the engine's broadcast callback for a session. The
// terminal set is decided here, once, from the event code.
func (b *Bridge) AnnounceFunc(key, channel string) junkyard.AnnounceFunc {
	return func(code, text string, meta map[string]string) {
		kind := KindAnnounce
		if junkyard.IsTerminal(code) {
			kind = KindTerminal
		}
		b.Dispatch(Event{Kind: kind, Key: key, Channel: channel, Code: code, Text: text})
	}
}

// WhisperFunc adapts the engine's private callback for a session.
func (b *Bridge) WhisperFunc(channel string) junkyard.WhisperFunc {
	return func(playerID, code, text string, meta map[string]string) {
		b.Dispatch(Event{
			Kind:     KindWhisper,
			Channel:  channel,
			PlayerID: playerID,
			Code:     code,
			Text:     text,
			Bot:      meta["bot"] == "true",
		})
	}
}
