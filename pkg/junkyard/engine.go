package junkyard

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/gfax/junkyard-gateway/pkg/phrases"
	"github.com/gfax/junkyard-gateway/pkg/presenter"
)

const maxPlayers = 10
const handSize = 5

// A flat deck of card names is enough to exercise hands, selections, and
// status rendering. Effects (attack values, counters) stay out of scope.
var deck = []string{
	"Gut Punch", "Neck Punch", "Uppercut", "Grab", "A Gun",
	"Tire", "Tire Iron", "Crane", "Magnet", "Dodge",
	"Block", "Armor", "Guard Dog", "Sub", "Mattress",
	"Meal Steal", "Soup", "Avalanche", "Wrench", "Siphon",
}

var botNames = []string{"Crusher", "Scrappy", "Rusty", "Socket", "Piston", "Gasket"}

type enginePlayer struct {
	Player
	hand []string
}

// BrawlEngine is the reference Engine. It implements the roster, manager,
// and lifecycle semantics faithfully; play/discard simply consume cards and
// announce, leaving effect resolution to a full rules engine.
type BrawlEngine struct {
	mu       sync.Mutex
	players  []*enginePlayer
	manager  *enginePlayer
	started  bool
	finished bool
	dealt    int

	announce AnnounceFunc
	whisper  WhisperFunc
	catalog  *phrases.Catalog
	render   presenter.Presenter
}

// Option configures a BrawlEngine at construction.
type Option func(*BrawlEngine)

// WithCatalog overrides the embedded phrase catalog.
func WithCatalog(c *phrases.Catalog) Option {
	return func(e *BrawlEngine) { e.catalog = c }
}

// WithPresenter sets the card-list renderer. Defaults to plain.
func WithPresenter(p presenter.Presenter) Option {
	return func(e *BrawlEngine) { e.render = p }
}

// NewEngine creates a game with the manager as its first player.
func NewEngine(managerID, managerName string, announce AnnounceFunc, whisper WhisperFunc, lang string, opts ...Option) *BrawlEngine {
	e := &BrawlEngine{
		announce: announce,
		whisper:  whisper,
		render:   presenter.New("plain"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.catalog == nil {
		cat, err := phrases.Load("", lang)
		if err != nil {
			panic(err) // embedded catalog is compiled in; this cannot fail at runtime
		}
		e.catalog = cat
	}
	mgr := &enginePlayer{Player: Player{ID: managerID, Name: managerName}}
	e.players = []*enginePlayer{mgr}
	e.manager = mgr
	return e
}

// NewFactory returns a Factory producing engines with the given options.
func NewFactory(opts ...Option) Factory {
	return func(managerID, managerName string, announce AnnounceFunc, whisper WhisperFunc, lang string) Engine {
		return NewEngine(managerID, managerName, announce, whisper, lang, opts...)
	}
}

func (e *BrawlEngine) Players() []Player {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Player, len(e.players))
	for i, p := range e.players {
		out[i] = p.Player
	}
	return out
}

func (e *BrawlEngine) Manager() Player {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.manager.Player
}

func (e *BrawlEngine) Started() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.started
}

func (e *BrawlEngine) AddPlayer(id, name string) error {
	e.mu.Lock()
	if e.find(id) != nil {
		e.mu.Unlock()
		return ErrAlreadyJoined
	}
	if len(e.players) >= maxPlayers {
		e.mu.Unlock()
		return ErrGameFull
	}
	p := &enginePlayer{Player: Player{ID: id, Name: name}}
	if e.started {
		p.hand = e.deal(handSize)
	}
	e.players = append(e.players, p)
	e.mu.Unlock()

	e.say(CodePlayerJoined, fmt.Sprintf(e.catalog.MustPhrase("game:player-joined"), name), nil)
	return nil
}

func (e *BrawlEngine) AddBot(name string) error {
	e.mu.Lock()
	if len(e.players) >= maxPlayers {
		e.mu.Unlock()
		return ErrGameFull
	}
	if name == "" {
		name = botNames[len(e.players)%len(botNames)]
	}
	p := &enginePlayer{Player: Player{ID: "bot-" + uuid.NewString()[:8], Name: name, Bot: true}}
	if e.started {
		p.hand = e.deal(handSize)
	}
	e.players = append(e.players, p)
	e.mu.Unlock()

	e.say(CodeBotAdded, fmt.Sprintf(e.catalog.MustPhrase("game:bot-added"), name), nil)
	return nil
}

func (e *BrawlEngine) Start() error {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return ErrAlreadyStarted
	}
	e.started = true
	for _, p := range e.players {
		p.hand = e.deal(handSize)
	}
	e.mu.Unlock()

	e.say(CodeStarted, e.render.Emphasis(e.catalog.MustPhrase("game:started")), nil)
	return nil
}

func (e *BrawlEngine) Stop() {
	e.mu.Lock()
	if e.finished {
		e.mu.Unlock()
		return
	}
	e.finished = true
	e.mu.Unlock()

	e.say(CodeStopped, e.catalog.MustPhrase("game:stopped"), nil)
}

func (e *BrawlEngine) Pass(playerID string) error {
	e.mu.Lock()
	p := e.find(playerID)
	if p == nil {
		e.mu.Unlock()
		return ErrNotInGame
	}
	if !e.started {
		e.mu.Unlock()
		return ErrNotStarted
	}
	e.mu.Unlock()

	e.say(CodePass, fmt.Sprintf(e.catalog.MustPhrase("game:pass"), p.Name), nil)
	return nil
}

func (e *BrawlEngine) Play(playerID string, selections []int, target *Player) error {
	return e.spend(playerID, selections, target, CodePlay, "game:play")
}

func (e *BrawlEngine) Discard(playerID string, selections []int, target *Player) error {
	return e.spend(playerID, selections, target, CodeDiscard, "game:discard")
}

// spend removes the selected cards from the player's hand and announces.
func (e *BrawlEngine) spend(playerID string, selections []int, target *Player, code, key string) error {
	e.mu.Lock()
	p := e.find(playerID)
	if p == nil {
		e.mu.Unlock()
		return ErrNotInGame
	}
	if !e.started {
		e.mu.Unlock()
		return ErrNotStarted
	}
	for _, sel := range selections {
		if sel < 1 || sel > len(p.hand) {
			e.mu.Unlock()
			return ErrBadSelection
		}
	}
	// Remove in descending position order so earlier removals don't shift
	// the positions of later ones.
	drop := make(map[int]bool, len(selections))
	for _, sel := range selections {
		drop[sel-1] = true
	}
	kept := p.hand[:0]
	for i, card := range p.hand {
		if !drop[i] {
			kept = append(kept, card)
		}
	}
	p.hand = kept
	name := p.Name
	e.mu.Unlock()

	meta := map[string]string{}
	if target != nil {
		meta["target"] = target.ID
	}
	e.say(code, fmt.Sprintf(e.catalog.MustPhrase(key), name, len(drop)), meta)
	return nil
}

func (e *BrawlEngine) RemovePlayer(playerID string) error {
	e.mu.Lock()
	p := e.find(playerID)
	if p == nil {
		e.mu.Unlock()
		return ErrNotInGame
	}
	kept := e.players[:0]
	for _, q := range e.players {
		if q.ID != playerID {
			kept = append(kept, q)
		}
	}
	e.players = kept
	if e.manager.ID == playerID && len(e.players) > 0 {
		e.manager = e.players[0]
	}
	name := p.Name
	remaining := len(e.players)
	started := e.started
	e.mu.Unlock()

	e.say(CodePlayerRemoved, fmt.Sprintf(e.catalog.MustPhrase("game:player-removed"), name), nil)
	switch {
	case remaining == 0:
		e.finish(CodeNoSurvivors, e.catalog.MustPhrase("game:no-survivors"))
	case remaining == 1 && started:
		winner := e.Players()[0]
		e.finish(CodeWinner, e.render.Emphasis(fmt.Sprintf(e.catalog.MustPhrase("game:winner"), winner.Name)))
	}
	return nil
}

func (e *BrawlEngine) Transfer(target Player) error {
	e.mu.Lock()
	p := e.find(target.ID)
	if p == nil {
		e.mu.Unlock()
		return ErrNotInGame
	}
	e.manager = p
	name := p.Name
	e.mu.Unlock()

	e.say(CodeTransferred, fmt.Sprintf(e.catalog.MustPhrase("game:transferred"), name), nil)
	return nil
}

func (e *BrawlEngine) WhisperStatus(playerID string) error {
	e.mu.Lock()
	p := e.find(playerID)
	if p == nil {
		e.mu.Unlock()
		return ErrNotInGame
	}
	hand := make([]string, len(p.hand))
	copy(hand, p.hand)
	bot := p.Bot
	e.mu.Unlock()

	if e.whisper != nil {
		text := fmt.Sprintf(e.catalog.MustPhrase("game:status"), e.render.CardList(hand))
		e.whisper(playerID, CodeStatus, text, map[string]string{"bot": fmt.Sprintf("%t", bot)})
	}
	return nil
}

// find must be called with e.mu held.
func (e *BrawlEngine) find(id string) *enginePlayer {
	for _, p := range e.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// deal must be called with e.mu held.
func (e *BrawlEngine) deal(n int) []string {
	hand := make([]string, 0, n)
	for i := 0; i < n; i++ {
		hand = append(hand, deck[e.dealt%len(deck)])
		e.dealt++
	}
	return hand
}

func (e *BrawlEngine) say(code, text string, meta map[string]string) {
	if e.announce != nil {
		e.announce(code, text, meta)
	}
}

func (e *BrawlEngine) finish(code, text string) {
	e.mu.Lock()
	if e.finished {
		e.mu.Unlock()
		return
	}
	e.finished = true
	e.mu.Unlock()
	e.say(code, text, nil)
}
