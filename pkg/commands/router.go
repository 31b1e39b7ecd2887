// Package commands interprets inbound chat text as game commands and drives
// the engine. The router is the only code path that mutates sessions or
// calls engine commands.
package commands

import (
	"context"
	"strings"
	"time"

	"github.com/gfax/junkyard-gateway/pkg/bridge"
	"github.com/gfax/junkyard-gateway/pkg/bus"
	"github.com/gfax/junkyard-gateway/pkg/junkyard"
	"github.com/gfax/junkyard-gateway/pkg/logger"
	"github.com/gfax/junkyard-gateway/pkg/phrases"
	"github.com/gfax/junkyard-gateway/pkg/session"
)

// DefaultAdvertiseDelay lets the triggering message settle before the
// advertise broadcast on ordering-sensitive transports.
const DefaultAdvertiseDelay = 500 * time.Millisecond

type route struct {
	name    string
	match   func(text string) bool
	handler func(r *Router, msg bus.InboundMessage)
}

// Router matches inbound text against an ordered intent table and
// dispatches to a handler. First match wins; unmatched text is ignored.
type Router struct {
	registry       *session.Registry
	factory        junkyard.Factory
	bridge         *bridge.Bridge
	catalog        *phrases.Catalog
	advertiseDelay time.Duration
	routes         []route
}

func NewRouter(registry *session.Registry, factory junkyard.Factory, b *bridge.Bridge, catalog *phrases.Catalog, advertiseDelay time.Duration) *Router {
	if advertiseDelay <= 0 {
		advertiseDelay = DefaultAdvertiseDelay
	}
	r := &Router{
		registry:       registry,
		factory:        factory,
		bridge:         b,
		catalog:        catalog,
		advertiseDelay: advertiseDelay,
	}
	// Declared order matters: pass must precede play so "pa" is never read
	// as a play, and start precedes status.
	r.routes = []route{
		{"create", matchCreate, (*Router).handleCreate},
		{"join", tokenMatcher("join", 2), (*Router).handleJoin},
		{"add-bot", tokenMatcher("addbot", 3, "bot", "add-bot"), (*Router).handleAddBot},
		{"discard", tokenMatcher("discard", 1), (*Router).handleDiscard},
		{"pass", tokenMatcher("pass", 2), (*Router).handlePass},
		{"play", tokenMatcher("play", 1), (*Router).handlePlay},
		{"remove", tokenMatcher("remove", 3, "rm"), (*Router).handleRemove},
		{"start", tokenMatcher("start", 5), (*Router).handleStart},
		{"status", tokenMatcher("status", 2), (*Router).handleStatus},
		{"stop", tokenMatcher("stop", 4), (*Router).handleStop},
		{"transfer", tokenMatcher("transfer", 2), (*Router).handleTransfer},
	}
	return r
}

// Handle dispatches one inbound message to completion. A panicking handler
// is contained here so one malformed command can never take down the
// dispatch loop or affect unrelated sessions.
func (r *Router) Handle(msg bus.InboundMessage) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.ErrorCF("router", "handler panic recovered", map[string]interface{}{
				"channel": msg.Channel,
				"sender":  msg.SenderID,
				"panic":   rec,
			})
		}
	}()

	text := strings.TrimSpace(msg.Content)
	if text == "" {
		return
	}
	for _, rt := range r.routes {
		if rt.match(text) {
			logger.DebugCF("router", "dispatch", map[string]interface{}{
				"intent": rt.name,
				"sender": msg.SenderID,
			})
			rt.handler(r, msg)
			return
		}
	}
}

// Run consumes the inbound bus until ctx is done. Messages are handled to
// completion one at a time, which is what makes the registry's
// check-then-create sequence safe.
func (r *Router) Run(ctx context.Context, mb *bus.MessageBus) {
	logger.InfoC("router", "command consumer started")
	for {
		msg, ok := mb.ConsumeInbound(ctx)
		if !ok {
			return
		}
		r.Handle(msg)
	}
}

// matchCreate fires on the bare game name as the whole message, with or
// without a leading bang.
func matchCreate(text string) bool {
	word := strings.TrimPrefix(strings.ToLower(text), "!")
	return word == "junkyard" || word == "brawl"
}

// tokenMatcher builds an abbreviation-tolerant first-token matcher: every
// prefix of word no shorter than min counts, plus any literal aliases.
func tokenMatcher(word string, min int, aliases ...string) func(string) bool {
	accepted := make(map[string]bool, len(word)-min+1+len(aliases))
	for i := min; i <= len(word); i++ {
		accepted[word[:i]] = true
	}
	for _, alias := range aliases {
		accepted[alias] = true
	}
	return func(text string) bool {
		fields := strings.Fields(text)
		if len(fields) == 0 {
			return false
		}
		return accepted[strings.ToLower(fields[0])]
	}
}
