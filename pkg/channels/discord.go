package channels

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/gfax/junkyard-gateway/pkg/bus"
)

// DiscordChannel bridges Discord. Guild channels are room-scoped; DMs are
// direct. Whisper destinations arrive as user IDs, so the adapter keeps a
// set of chat IDs it has seen as rooms and opens a DM channel for the rest.
type DiscordChannel struct {
	token   string
	mb      *bus.MessageBus
	session *discordgo.Session

	mu    sync.RWMutex
	rooms map[string]bool
}

func NewDiscordChannel(token string, mb *bus.MessageBus) *DiscordChannel {
	return &DiscordChannel{token: token, mb: mb, rooms: make(map[string]bool)}
}

func (d *DiscordChannel) Name() string { return "discord" }

func (d *DiscordChannel) Start(ctx context.Context) error {
	session, err := discordgo.New("Bot " + d.token)
	if err != nil {
		return fmt.Errorf("discord init: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil || m.Author.Bot || m.Content == "" {
			return
		}
		peer := bus.Peer{Kind: bus.PeerDirect, ID: m.Author.ID}
		if m.GuildID != "" {
			peer = bus.Peer{Kind: bus.PeerGroup, ID: m.ChannelID}
			d.mu.Lock()
			d.rooms[m.ChannelID] = true
			d.mu.Unlock()
		}
		name := m.Author.Username
		if m.Member != nil && m.Member.Nick != "" {
			name = m.Member.Nick
		}
		d.mb.PublishInbound(bus.InboundMessage{
			Channel:    d.Name(),
			SenderID:   m.Author.ID,
			SenderName: name,
			ChatID:     m.ChannelID,
			Peer:       peer,
			Content:    m.Content,
		})
	})

	if err := session.Open(); err != nil {
		return fmt.Errorf("discord open: %w", err)
	}
	d.session = session
	return nil
}

func (d *DiscordChannel) Stop() error {
	if d.session != nil {
		return d.session.Close()
	}
	return nil
}

func (d *DiscordChannel) Send(msg bus.OutboundMessage) error {
	d.mu.RLock()
	isRoom := d.rooms[msg.ChatID]
	d.mu.RUnlock()

	chatID := msg.ChatID
	if !isRoom {
		// Not a room we've seen: treat as a user ID and DM them.
		dm, err := d.session.UserChannelCreate(msg.ChatID)
		if err != nil {
			return fmt.Errorf("discord dm channel: %w", err)
		}
		chatID = dm.ID
	}
	_, err := d.session.ChannelMessageSend(chatID, msg.Content)
	return err
}
