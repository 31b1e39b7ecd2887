// Package channels holds the transport adapters. Adapters are deliberately
// thin: they map platform messages to bus.InboundMessage (deciding direct
// vs. group scope) and deliver bus.OutboundMessage. Everything game-shaped
// happens elsewhere.
package channels

import (
	"context"
	"fmt"
	"sync"

	"github.com/gfax/junkyard-gateway/pkg/bus"
	"github.com/gfax/junkyard-gateway/pkg/logger"
)

// Channel is one messaging transport.
type Channel interface {
	Name() string
	Start(ctx context.Context) error
	Stop() error
	Send(msg bus.OutboundMessage) error
}

// Manager owns the registered transports and routes outbound messages to
// the one named in the message. It is the outbound queue's Sender.
type Manager struct {
	mu       sync.RWMutex
	channels map[string]Channel
	running  map[string]bool
}

func NewManager() *Manager {
	return &Manager{
		channels: make(map[string]Channel),
		running:  make(map[string]bool),
	}
}

func (m *Manager) RegisterChannel(ch Channel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels[ch.Name()] = ch
}

func (m *Manager) GetChannel(name string) (Channel, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ch, ok := m.channels[name]
	return ch, ok
}

// StartAll starts every registered channel. A channel failing to start is
// logged and skipped; the rest keep running.
func (m *Manager) StartAll(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, ch := range m.channels {
		if err := ch.Start(ctx); err != nil {
			logger.ErrorCF("channels", "channel failed to start", map[string]interface{}{
				"channel": name,
				"error":   err.Error(),
			})
			continue
		}
		m.running[name] = true
		logger.InfoCF("channels", "channel started", map[string]interface{}{"channel": name})
	}
}

func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, ch := range m.channels {
		if !m.running[name] {
			continue
		}
		if err := ch.Stop(); err != nil {
			logger.WarnCF("channels", "channel stop failed", map[string]interface{}{
				"channel": name,
				"error":   err.Error(),
			})
		}
		m.running[name] = false
	}
}

// GetStatus reports which channels are running.
func (m *Manager) GetStatus() map[string]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]bool, len(m.running))
	for name := range m.channels {
		out[name] = m.running[name]
	}
	return out
}

// Send routes one outbound message to its transport.
func (m *Manager) Send(msg bus.OutboundMessage) error {
	ch, ok := m.GetChannel(msg.Channel)
	if !ok {
		return fmt.Errorf("unknown channel %q", msg.Channel)
	}
	return ch.Send(msg)
}
