package channels

import (
	"context"
	"fmt"
	"strings"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/gfax/junkyard-gateway/pkg/bus"
	"github.com/gfax/junkyard-gateway/pkg/logger"
)

// SlackChannel bridges Slack over Socket Mode. Channel and group messages
// are room-scoped; IMs are direct.
type SlackChannel struct {
	botToken string
	appToken string
	mb       *bus.MessageBus
	api      *slack.Client
	client   *socketmode.Client
	stop     context.CancelFunc
	botID    string
}

func NewSlackChannel(botToken, appToken string, mb *bus.MessageBus) *SlackChannel {
	return &SlackChannel{botToken: botToken, appToken: appToken, mb: mb}
}

func (s *SlackChannel) Name() string { return "slack" }

func (s *SlackChannel) Start(ctx context.Context) error {
	s.api = slack.New(s.botToken, slack.OptionAppLevelToken(s.appToken))
	auth, err := s.api.AuthTest()
	if err != nil {
		return fmt.Errorf("slack auth: %w", err)
	}
	s.botID = auth.UserID
	s.client = socketmode.New(s.api)

	runCtx, cancel := context.WithCancel(ctx)
	s.stop = cancel

	go s.eventLoop(runCtx)
	go func() {
		if err := s.client.RunContext(runCtx); err != nil && runCtx.Err() == nil {
			logger.ErrorCF("slack", "socket mode stopped", map[string]interface{}{"error": err.Error()})
		}
	}()
	return nil
}

func (s *SlackChannel) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-s.client.Events:
			if !ok {
				return
			}
			if evt.Type != socketmode.EventTypeEventsAPI {
				continue
			}
			payload, ok := evt.Data.(slackevents.EventsAPIEvent)
			if !ok {
				continue
			}
			s.client.Ack(*evt.Request)

			inner, ok := payload.InnerEvent.Data.(*slackevents.MessageEvent)
			if !ok || inner.User == "" || inner.User == s.botID || inner.BotID != "" {
				continue
			}
			text := strings.TrimSpace(inner.Text)
			if text == "" {
				continue
			}
			peer := bus.Peer{Kind: bus.PeerGroup, ID: inner.Channel}
			if inner.ChannelType == "im" {
				peer = bus.Peer{Kind: bus.PeerDirect, ID: inner.User}
			}
			s.mb.PublishInbound(bus.InboundMessage{
				Channel:    s.Name(),
				SenderID:   inner.User,
				SenderName: inner.User,
				ChatID:     inner.Channel,
				Peer:       peer,
				Content:    text,
			})
		}
	}
}

func (s *SlackChannel) Stop() error {
	if s.stop != nil {
		s.stop()
	}
	return nil
}

func (s *SlackChannel) Send(msg bus.OutboundMessage) error {
	// Whisper destinations are user IDs ("U..."); open an IM for those.
	chatID := msg.ChatID
	if strings.HasPrefix(chatID, "U") || strings.HasPrefix(chatID, "W") {
		im, _, _, err := s.api.OpenConversation(&slack.OpenConversationParameters{
			Users: []string{chatID},
		})
		if err != nil {
			return fmt.Errorf("slack open im: %w", err)
		}
		chatID = im.ID
	}
	_, _, err := s.api.PostMessage(chatID, slack.MsgOptionText(msg.Content, false))
	return err
}
