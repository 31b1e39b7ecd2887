// Package presenter renders card lists and emphasized text for a transport.
// The variant is chosen once at startup from config and injected into the
// engine; everything downstream only ever sees pre-rendered strings.
package presenter

import (
	"fmt"
	"strings"
)

// Presenter renders game text fragments for one family of transports.
type Presenter interface {
	// CardList renders a player's hand as a single line. Positions are
	// 1-based so the output lines up with play/discard selections.
	CardList(cards []string) string
	// Emphasis marks text that should stand out (winner lines, alerts).
	Emphasis(text string) string
	// Name returns the variant identifier used in config.
	Name() string
}

// New returns the presenter for a config variant name. Unknown names fall
// back to plain.
func New(variant string) Presenter {
	switch strings.ToLower(variant) {
	case "irc":
		return ircPresenter{}
	case "emoji":
		return emojiPresenter{}
	default:
		return plainPresenter{}
	}
}

type plainPresenter struct{}

func (plainPresenter) Name() string { return "plain" }

func (plainPresenter) CardList(cards []string) string {
	parts := make([]string, len(cards))
	for i, card := range cards {
		parts[i] = fmt.Sprintf("(%d) %s", i+1, card)
	}
	return strings.Join(parts, " ")
}

func (plainPresenter) Emphasis(text string) string { return text }

// ircPresenter uses mIRC control codes: 0x02 bold, 0x03 color prefix.
type ircPresenter struct{}

func (ircPresenter) Name() string { return "irc" }

func (ircPresenter) CardList(cards []string) string {
	parts := make([]string, len(cards))
	for i, card := range cards {
		parts[i] = fmt.Sprintf("\x0310(%d)\x03 %s", i+1, card)
	}
	return strings.Join(parts, " ")
}

func (ircPresenter) Emphasis(text string) string { return "\x02" + text + "\x02" }

type emojiPresenter struct{}

func (emojiPresenter) Name() string { return "emoji" }

func (emojiPresenter) CardList(cards []string) string {
	parts := make([]string, len(cards))
	for i, card := range cards {
		parts[i] = fmt.Sprintf("🃏 %d·%s", i+1, card)
	}
	return strings.Join(parts, "  ")
}

func (emojiPresenter) Emphasis(text string) string { return "✨ " + text + " ✨" }
