// Package bus carries inbound chat messages from transport adapters to the
// single command-consumer loop. Outbound traffic does not pass through here;
// it goes through the throttled outbound queue so delivery order is strict.
package bus

import (
	"context"
	"sync"
)

type MessageBus struct {
	inbound   chan InboundMessage
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

func NewMessageBus() *MessageBus {
	return &MessageBus{
		inbound: make(chan InboundMessage, 100),
	}
}

// PublishInbound never blocks: if the buffer is full the oldest message is
// dropped to make room. Transport goroutines must not stall on a slow consumer.
func (mb *MessageBus) PublishInbound(msg InboundMessage) {
	mb.mu.RLock()
	if mb.closed {
		mb.mu.RUnlock()
		return
	}
	mb.mu.RUnlock()

	select {
	case mb.inbound <- msg:
	default:
		// Channel full: drop oldest and retry
		select {
		case <-mb.inbound:
		default:
		}
		select {
		case mb.inbound <- msg:
		default:
		}
	}
}

// ConsumeInbound blocks until a message arrives or ctx is done.
func (mb *MessageBus) ConsumeInbound(ctx context.Context) (InboundMessage, bool) {
	select {
	case msg := <-mb.inbound:
		return msg, true
	case <-ctx.Done():
		return InboundMessage{}, false
	}
}

func (mb *MessageBus) Close() {
	mb.closeOnce.Do(func() {
		mb.mu.Lock()
		mb.closed = true
		mb.mu.Unlock()
		close(mb.inbound)
	})
}
