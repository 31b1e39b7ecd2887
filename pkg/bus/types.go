package bus

// Peer identifies the routing peer for a message (direct chat or shared room).
type Peer struct {
	Kind string `json:"kind"` // "direct" | "group"
	ID   string `json:"id"`
}

const (
	PeerDirect = "direct"
	PeerGroup  = "group"
)

// InboundMessage is one line of chat text arriving from a transport adapter.
type InboundMessage struct {
	Channel    string            `json:"channel"` // transport name, e.g. "telegram"
	SenderID   string            `json:"sender_id"`
	SenderName string            `json:"sender_name"`
	ChatID     string            `json:"chat_id"`
	Peer       Peer              `json:"peer"`
	Content    string            `json:"content"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// OutboundMessage is a rendered line of text bound for a transport chat.
type OutboundMessage struct {
	Channel string `json:"channel"`
	ChatID  string `json:"chat_id"`
	Content string `json:"content"`
}
