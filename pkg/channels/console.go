package channels

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/gfax/junkyard-gateway/pkg/bus"
	"github.com/gfax/junkyard-gateway/pkg/logger"
)

// ConsoleChannel is a local stdin/stdout transport for development and
// solo play against bots. Every line is a direct message from one fixed
// user; there are no rooms.
type ConsoleChannel struct {
	userID string
	mb     *bus.MessageBus
	rl     *readline.Instance
}

func NewConsoleChannel(userID string, mb *bus.MessageBus) *ConsoleChannel {
	if userID == "" {
		userID = "console"
	}
	return &ConsoleChannel{userID: userID, mb: mb}
}

func (c *ConsoleChannel) Name() string { return "console" }

func (c *ConsoleChannel) Start(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "junkyard> ",
		InterruptPrompt: "^C",
	})
	if err != nil {
		return fmt.Errorf("console init: %w", err)
	}
	c.rl = rl

	go func() {
		defer rl.Close()
		for {
			line, err := rl.Readline()
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if err == io.EOF || ctx.Err() != nil {
				logger.InfoC("console", "console input closed")
				return
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			c.mb.PublishInbound(bus.InboundMessage{
				Channel:    c.Name(),
				SenderID:   c.userID,
				SenderName: c.userID,
				ChatID:     c.userID,
				Peer:       bus.Peer{Kind: bus.PeerDirect, ID: c.userID},
				Content:    line,
			})
		}
	}()
	return nil
}

func (c *ConsoleChannel) Stop() error {
	if c.rl != nil {
		return c.rl.Close()
	}
	return nil
}

func (c *ConsoleChannel) Send(msg bus.OutboundMessage) error {
	if c.rl == nil {
		return errors.New("console not started")
	}
	_, err := fmt.Fprintf(c.rl.Stdout(), "[%s] %s\n", msg.ChatID, msg.Content)
	return err
}
