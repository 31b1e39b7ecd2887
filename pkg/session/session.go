// Package session tracks at most one live game per routing key.
//
// The routing key is the room identifier for room-scoped messages, else the
// initiating user's identifier. That single rule lets a user drive a public
// room's game from a private chat and vice versa.
package session

import (
	"sync"
	"time"

	"github.com/gfax/junkyard-gateway/pkg/bus"
	"github.com/gfax/junkyard-gateway/pkg/junkyard"
)

// Session is one pending or in-progress game bound to a routing key.
type Session struct {
	Key     string          // routing key (room or user identifier)
	Channel string          // transport the game was created on
	Engine  junkyard.Engine // opaque engine handle

	CreatedAt time.Time

	mu         sync.Mutex
	lastActive time.Time
}

// NewSession binds an engine instance to a routing key and transport.
func NewSession(key, channel string, engine junkyard.Engine) *Session {
	now := time.Now()
	return &Session{
		Key:        key,
		Channel:    channel,
		Engine:     engine,
		CreatedAt:  now,
		lastActive: now,
	}
}

// Manager returns the player currently authorized to administer the game.
// The engine is the source of truth, so a transfer can never leave this
// pointing at a non-member.
func (s *Session) Manager() junkyard.Player { return s.Engine.Manager() }

// Touch records command activity, deferring the idle reaper.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

// LastActive returns the time of the most recent command for this session.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// ResolveKey derives the routing key for an inbound message: the room
// identifier when the message is room-scoped, else the sender's identifier.
// Scope is decided by the peer kind, never by comparing identifier values,
// since a room and a participant may legitimately share one.
func ResolveKey(msg bus.InboundMessage) string {
	if msg.Peer.Kind == bus.PeerGroup {
		return msg.ChatID
	}
	return msg.SenderID
}
