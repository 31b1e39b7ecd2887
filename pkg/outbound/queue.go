// Package outbound delivers chat messages in strict enqueue order with a
// minimum spacing between sends. Some transports garble ordering when
// messages go out back-to-back; the throttle is what keeps game narration
// readable.
package outbound

import (
	"context"
	"sync"
	"time"

	"github.com/gfax/junkyard-gateway/pkg/bus"
	"github.com/gfax/junkyard-gateway/pkg/logger"
)

// DefaultInterval is the minimum spacing between deliveries.
const DefaultInterval = 150 * time.Millisecond

// Sender delivers one message to a transport. Fire-and-forget: errors are
// logged here and never retried.
type Sender interface {
	Send(msg bus.OutboundMessage) error
}

// Queue is an unbounded FIFO drained at most one message per tick.
// No deduplication, no priority, no backpressure.
type Queue struct {
	mu       sync.Mutex
	items    []bus.OutboundMessage
	sender   Sender
	interval time.Duration
}

func NewQueue(sender Sender, interval time.Duration) *Queue {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Queue{sender: sender, interval: interval}
}

// Enqueue appends a message. Never blocks, never fails.
func (q *Queue) Enqueue(channel, chatID, text string) {
	q.mu.Lock()
	q.items = append(q.items, bus.OutboundMessage{Channel: channel, ChatID: chatID, Content: text})
	q.mu.Unlock()
}

// Len returns the number of undelivered messages.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Run drains the queue until ctx is done, delivering at most one message
// per tick in enqueue order.
func (q *Queue) Run(ctx context.Context) {
	ticker := time.NewTicker(q.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q.drainOne()
		}
	}
}

func (q *Queue) drainOne() {
	q.mu.Lock()
	if len(q.items) == 0 {
		q.mu.Unlock()
		return
	}
	msg := q.items[0]
	q.items = q.items[1:]
	q.mu.Unlock()

	if err := q.sender.Send(msg); err != nil {
		logger.WarnCF("outbound", "send failed, message dropped", map[string]interface{}{
			"channel": msg.Channel,
			"chat_id": msg.ChatID,
			"error":   err.Error(),
		})
	}
}
