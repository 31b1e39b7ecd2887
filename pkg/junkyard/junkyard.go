// Package junkyard defines the card-game engine contract the gateway drives,
// plus a reference engine implementing the roster and lifecycle semantics.
// Card-effect rules live behind the Engine interface and are not the
// gateway's concern: the gateway only forwards commands and relays events.
package junkyard

import "errors"

// Event codes emitted through the announce/whisper callbacks. The terminal
// codes end the session; the gateway tears down its registry entry on them.
const (
	CodeStarted       = "game:started"
	CodePlayerJoined  = "game:player-joined"
	CodeBotAdded      = "game:bot-added"
	CodePlayerRemoved = "game:player-removed"
	CodeTransferred   = "game:transferred"
	CodePass          = "game:pass"
	CodePlay          = "game:play"
	CodeDiscard       = "game:discard"
	CodeStatus        = "game:status"
	CodeWinner        = "game:winner"
	CodeNoSurvivors   = "game:no-survivors"
	CodeStopped       = "game:stopped"
)

// IsTerminal reports whether code ends the game.
func IsTerminal(code string) bool {
	switch code {
	case CodeWinner, CodeNoSurvivors, CodeStopped:
		return true
	}
	return false
}

// Player is one roster entry. Bots never receive whispers.
type Player struct {
	ID   string
	Name string
	Bot  bool
}

// AnnounceFunc receives broadcast-scoped engine events.
type AnnounceFunc func(code, text string, meta map[string]string)

// WhisperFunc receives private-scoped engine events for one player.
// meta["bot"] is "true" when the target player is a bot.
type WhisperFunc func(playerID, code, text string, meta map[string]string)

// Engine is the command surface the gateway drives. Implementations own all
// game validation: double start, player limits, illegal moves. The engine
// may invoke its callbacks synchronously from any command.
type Engine interface {
	Players() []Player
	Manager() Player
	Started() bool

	AddPlayer(id, name string) error
	AddBot(name string) error
	Start() error
	Stop()
	Pass(playerID string) error
	Play(playerID string, selections []int, target *Player) error
	Discard(playerID string, selections []int, target *Player) error
	RemovePlayer(playerID string) error
	Transfer(target Player) error
	WhisperStatus(playerID string) error
}

// Factory constructs an engine for a new session. The gateway binds the
// callbacks to the session's routing key before calling it.
type Factory func(managerID, managerName string, announce AnnounceFunc, whisper WhisperFunc, lang string) Engine

var (
	ErrAlreadyStarted = errors.New("game already started")
	ErrNotStarted     = errors.New("game not started")
	ErrGameFull       = errors.New("game is full")
	ErrAlreadyJoined  = errors.New("player already joined")
	ErrNotInGame      = errors.New("player not in game")
	ErrBadSelection   = errors.New("selection out of range")
)
