package channels

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mymmrac/telego"

	"github.com/gfax/junkyard-gateway/pkg/bus"
	"github.com/gfax/junkyard-gateway/pkg/logger"
)

// TelegramChannel bridges Telegram via long polling. Group and supergroup
// chats are room-scoped; private chats are direct.
type TelegramChannel struct {
	token string
	mb    *bus.MessageBus
	bot   *telego.Bot
	stop  context.CancelFunc
}

func NewTelegramChannel(token string, mb *bus.MessageBus) *TelegramChannel {
	return &TelegramChannel{token: token, mb: mb}
}

func (t *TelegramChannel) Name() string { return "telegram" }

func (t *TelegramChannel) Start(ctx context.Context) error {
	bot, err := telego.NewBot(t.token, telego.WithDiscardLogger())
	if err != nil {
		return fmt.Errorf("telegram init: %w", err)
	}
	t.bot = bot

	pollCtx, cancel := context.WithCancel(ctx)
	t.stop = cancel
	updates, err := bot.UpdatesViaLongPolling(pollCtx, nil)
	if err != nil {
		cancel()
		return fmt.Errorf("telegram long polling: %w", err)
	}

	go func() {
		for update := range updates {
			msg := update.Message
			if msg == nil || msg.From == nil || msg.Text == "" {
				continue
			}
			peer := bus.Peer{Kind: bus.PeerDirect, ID: strconv.FormatInt(msg.From.ID, 10)}
			if msg.Chat.Type != telego.ChatTypePrivate {
				peer = bus.Peer{Kind: bus.PeerGroup, ID: strconv.FormatInt(msg.Chat.ID, 10)}
			}
			name := msg.From.FirstName
			if msg.From.Username != "" {
				name = msg.From.Username
			}
			t.mb.PublishInbound(bus.InboundMessage{
				Channel:    t.Name(),
				SenderID:   strconv.FormatInt(msg.From.ID, 10),
				SenderName: name,
				ChatID:     strconv.FormatInt(msg.Chat.ID, 10),
				Peer:       peer,
				Content:    msg.Text,
			})
		}
		logger.InfoC("telegram", "update stream closed")
	}()
	return nil
}

func (t *TelegramChannel) Stop() error {
	if t.stop != nil {
		t.stop()
	}
	return nil
}

func (t *TelegramChannel) Send(msg bus.OutboundMessage) error {
	id, err := strconv.ParseInt(msg.ChatID, 10, 64)
	if err != nil {
		return fmt.Errorf("telegram chat id %q: %w", msg.ChatID, err)
	}
	_, err = t.bot.SendMessage(context.Background(), &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: id},
		Text:   msg.Content,
	})
	return err
}
