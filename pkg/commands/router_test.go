package commands

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gfax/junkyard-gateway/pkg/bridge"
	"github.com/gfax/junkyard-gateway/pkg/bus"
	"github.com/gfax/junkyard-gateway/pkg/junkyard"
	"github.com/gfax/junkyard-gateway/pkg/phrases"
	"github.com/gfax/junkyard-gateway/pkg/session"
)

type recordingQueue struct {
	mu   sync.Mutex
	msgs []bus.OutboundMessage
}

func (r *recordingQueue) Enqueue(channel, chatID, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, bus.OutboundMessage{Channel: channel, ChatID: chatID, Content: text})
}

func (r *recordingQueue) countTo(chatID, text string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.msgs {
		if m.ChatID == chatID && m.Content == text {
			n++
		}
	}
	return n
}

func (r *recordingQueue) anyTo(chatID, substring string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.msgs {
		if m.ChatID == chatID && strings.Contains(m.Content, substring) {
			return true
		}
	}
	return false
}

func newTestRouter(t *testing.T) (*Router, *session.Registry, *recordingQueue, *phrases.Catalog) {
	t.Helper()
	catalog, err := phrases.Load("", "en")
	if err != nil {
		t.Fatalf("load phrases: %v", err)
	}
	registry := session.NewRegistry()
	queue := &recordingQueue{}
	b := bridge.New(registry, queue, nil)
	router := NewRouter(registry, junkyard.NewFactory(junkyard.WithCatalog(catalog)), b, catalog, time.Millisecond)
	return router, registry, queue, catalog
}

func roomMsg(sender, name, text string) bus.InboundMessage {
	return bus.InboundMessage{
		Channel:    "console",
		SenderID:   sender,
		SenderName: name,
		ChatID:     "room-1",
		Peer:       bus.Peer{Kind: bus.PeerGroup, ID: "room-1"},
		Content:    text,
	}
}

func TestIntentMatching(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	tests := []struct {
		text string
		want string // route name, "" for no match
	}{
		{"!junkyard", "create"},
		{"junkyard", "create"},
		{"brawl", "create"},
		{"JUNKYARD", "create"},
		{"junkyard brawl", ""}, // create wants the whole message
		{"jo", "join"},
		{"join", "join"},
		{"bot", "add-bot"},
		{"addbot Crusher", "add-bot"},
		{"d 1", "discard"},
		{"discard 3 2 1", "discard"},
		{"pa", "pass"},
		{"pass", "pass"},
		{"p 1 2", "play"},
		{"pl 2 bob", "play"},
		{"play", "play"},
		{"rm bob", "remove"},
		{"rem me", "remove"},
		{"remove me", "remove"},
		{"st", "status"},
		{"stat", "status"},
		{"start", "start"},
		{"stop", "stop"},
		{"tr bob", "transfer"},
		{"transfer bob", "transfer"},
		{"hello there", ""},
		{"password", ""},
		{"played", ""},
	}
	for _, tt := range tests {
		got := ""
		for _, rt := range router.routes {
			if rt.match(tt.text) {
				got = rt.name
				break
			}
		}
		if got != tt.want {
			t.Errorf("match(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestCreateGameRegistersAndAdvertises(t *testing.T) {
	router, registry, queue, catalog := newTestRouter(t)

	router.Handle(roomMsg("u-1", "Alice", "!junkyard"))

	s := registry.Get("room-1")
	if s == nil {
		t.Fatal("no session registered for room-1")
	}
	if s.Manager().ID != "u-1" {
		t.Errorf("manager = %s, want u-1", s.Manager().ID)
	}

	// The advertise broadcast fires after the configured delay.
	advertise := catalog.MustPhrase("game:advertise")
	deadline := time.After(time.Second)
	for queue.countTo("room-1", advertise) == 0 {
		select {
		case <-deadline:
			t.Fatal("advertise was never broadcast")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestDuplicateCreateLeavesSessionUntouched(t *testing.T) {
	router, registry, queue, catalog := newTestRouter(t)

	router.Handle(roomMsg("u-1", "Alice", "junkyard"))
	first := registry.Get("room-1")
	router.Handle(roomMsg("u-2", "Bob", "junkyard"))

	if registry.Get("room-1") != first {
		t.Error("second create replaced the session")
	}
	if got := len(first.Engine.Players()); got != 1 {
		t.Errorf("roster size = %d, want 1 (unchanged)", got)
	}
	// Only the second actor hears about it, privately.
	notice := catalog.MustPhrase("game:already-started")
	if n := queue.countTo("u-2", notice); n != 1 {
		t.Errorf("already-started notices to u-2 = %d, want 1", n)
	}
	if n := queue.countTo("room-1", notice); n != 0 {
		t.Errorf("already-started notices to room = %d, want 0", n)
	}
}

func TestJoinReadyIsEdgeTriggered(t *testing.T) {
	router, _, queue, catalog := newTestRouter(t)
	ready := catalog.MustPhrase("game:ready")

	router.Handle(roomMsg("u-1", "Alice", "junkyard"))
	router.Handle(roomMsg("u-2", "Bob", "join"))
	if n := queue.countTo("room-1", ready); n != 1 {
		t.Fatalf("ready notices after second player = %d, want 1", n)
	}

	router.Handle(roomMsg("u-3", "Carol", "jo"))
	if n := queue.countTo("room-1", ready); n != 1 {
		t.Errorf("ready notices after third player = %d, want still 1", n)
	}
	// Re-joining does not shrink-and-regrow the roster into a second notice.
	router.Handle(roomMsg("u-2", "Bob", "join"))
	if n := queue.countTo("room-1", ready); n != 1 {
		t.Errorf("ready notices after duplicate join = %d, want still 1", n)
	}
}

func TestJoinWithoutSessionIsIgnored(t *testing.T) {
	router, registry, queue, _ := newTestRouter(t)
	router.Handle(roomMsg("u-1", "Alice", "join"))
	if registry.Get("room-1") != nil {
		t.Error("join created a session")
	}
	if len(queue.msgs) != 0 {
		t.Errorf("join without session produced %d messages, want 0", len(queue.msgs))
	}
}

func TestStopRequiresManager(t *testing.T) {
	router, registry, queue, catalog := newTestRouter(t)
	router.Handle(roomMsg("u-1", "Alice", "junkyard"))
	router.Handle(roomMsg("u-2", "Bob", "join"))

	router.Handle(roomMsg("u-2", "Bob", "stop"))
	if registry.Get("room-1") == nil {
		t.Fatal("non-manager stop tore down the session")
	}
	denial := catalog.MustPhrase("game:cannot-stop")
	if n := queue.countTo("u-2", denial); n != 1 {
		t.Errorf("denials to u-2 = %d, want exactly 1", n)
	}
	if n := queue.countTo("room-1", denial); n != 0 {
		t.Errorf("denial leaked to the room")
	}

	router.Handle(roomMsg("u-1", "Alice", "stop"))
	if registry.Get("room-1") != nil {
		t.Error("manager stop left the session registered")
	}
}

// A terminal event must free the key for an immediately following create.
func TestCreateSucceedsRightAfterStop(t *testing.T) {
	router, registry, queue, catalog := newTestRouter(t)
	router.Handle(roomMsg("u-1", "Alice", "junkyard"))
	router.Handle(roomMsg("u-1", "Alice", "stop"))
	router.Handle(roomMsg("u-2", "Bob", "junkyard"))

	s := registry.Get("room-1")
	if s == nil {
		t.Fatal("create after stop was rejected")
	}
	if s.Manager().ID != "u-2" {
		t.Errorf("new session manager = %s, want u-2", s.Manager().ID)
	}
	if n := queue.countTo("u-2", catalog.MustPhrase("game:already-started")); n != 0 {
		t.Error("create after stop answered with already-started")
	}
}

func TestRemoveSelfAndOthers(t *testing.T) {
	router, registry, queue, catalog := newTestRouter(t)
	router.Handle(roomMsg("u-1", "Alice", "junkyard"))
	router.Handle(roomMsg("u-2", "Bob", "join"))
	router.Handle(roomMsg("u-3", "Carol", "join"))
	s := registry.Get("room-1")

	// Anyone may remove themself, manager or not.
	router.Handle(roomMsg("u-3", "Carol", "remove me"))
	if got := len(s.Engine.Players()); got != 2 {
		t.Fatalf("roster after self-removal = %d, want 2", got)
	}

	// A non-manager removing someone else is denied privately.
	router.Handle(roomMsg("u-2", "Bob", "remove alice"))
	if got := len(s.Engine.Players()); got != 2 {
		t.Fatalf("roster after denied removal = %d, want 2", got)
	}
	if n := queue.countTo("u-2", catalog.MustPhrase("game:cannot-remove")); n != 1 {
		t.Errorf("denials to u-2 = %d, want 1", n)
	}

	// The manager may remove anyone.
	router.Handle(roomMsg("u-1", "Alice", "rm bob"))
	if got := len(s.Engine.Players()); got != 1 {
		t.Errorf("roster after manager removal = %d, want 1", got)
	}
}

func TestTransferRequiresManagerAndRosterMember(t *testing.T) {
	router, registry, queue, catalog := newTestRouter(t)
	router.Handle(roomMsg("u-1", "Alice", "junkyard"))
	router.Handle(roomMsg("u-2", "Bob", "join"))
	s := registry.Get("room-1")

	router.Handle(roomMsg("u-2", "Bob", "transfer bob"))
	if s.Manager().ID != "u-1" {
		t.Fatal("non-manager transfer changed the manager")
	}
	if n := queue.countTo("u-2", catalog.MustPhrase("game:cannot-transfer")); n != 1 {
		t.Errorf("denials to u-2 = %d, want 1", n)
	}

	// No resolvable target: nothing changes.
	router.Handle(roomMsg("u-1", "Alice", "transfer zed"))
	if s.Manager().ID != "u-1" {
		t.Fatal("transfer with unknown target changed the manager")
	}

	router.Handle(roomMsg("u-1", "Alice", "tr bob"))
	if s.Manager().ID != "u-2" {
		t.Errorf("manager = %s, want u-2 after transfer", s.Manager().ID)
	}
}

func TestPlayFromDirectChatReachesRoomGame(t *testing.T) {
	router, registry, queue, _ := newTestRouter(t)
	router.Handle(roomMsg("u-1", "Alice", "junkyard"))
	router.Handle(roomMsg("u-2", "Bob", "join"))
	router.Handle(roomMsg("u-1", "Alice", "start"))

	// Direct messages resolve to the sender's key, which has no session;
	// the command is silently ignored rather than crossing games.
	dm := bus.InboundMessage{
		Channel:    "console",
		SenderID:   "u-2",
		SenderName: "Bob",
		ChatID:     "u-2",
		Peer:       bus.Peer{Kind: bus.PeerDirect, ID: "u-2"},
		Content:    "status",
	}
	router.Handle(dm)
	if queue.anyTo("u-2", "Your hand") {
		t.Error("status crossed from a keyless direct chat into the room game")
	}

	// From the room, status whispers the hand privately.
	router.Handle(roomMsg("u-2", "Bob", "st"))
	if !queue.anyTo("u-2", "Your hand") {
		t.Error("status produced no private hand whisper")
	}
	if registry.Get("room-1") == nil {
		t.Error("status tore down the session")
	}
}

type panicEngine struct{ junkyard.Engine }

func (panicEngine) AddPlayer(id, name string) error { panic("boom") }

func TestHandlerPanicDoesNotKillDispatch(t *testing.T) {
	catalog, err := phrases.Load("", "en")
	if err != nil {
		t.Fatalf("load phrases: %v", err)
	}
	registry := session.NewRegistry()
	queue := &recordingQueue{}
	b := bridge.New(registry, queue, nil)
	factory := func(managerID, managerName string, announce junkyard.AnnounceFunc, whisper junkyard.WhisperFunc, lang string) junkyard.Engine {
		return panicEngine{junkyard.NewEngine(managerID, managerName, announce, whisper, lang, junkyard.WithCatalog(catalog))}
	}
	router := NewRouter(registry, factory, b, catalog, time.Millisecond)

	router.Handle(roomMsg("u-1", "Alice", "junkyard"))
	router.Handle(roomMsg("u-2", "Bob", "join")) // panics inside, recovered

	// The loop keeps serving unrelated commands afterwards.
	router.Handle(roomMsg("u-1", "Alice", "stop"))
	if registry.Get("room-1") != nil {
		t.Error("dispatch loop broken after handler panic")
	}
}
