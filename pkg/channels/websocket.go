package channels

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/gfax/junkyard-gateway/pkg/bus"
	"github.com/gfax/junkyard-gateway/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsFrame is the wire format: clients send {text}, the server sends
// {chat_id, text}.
type wsFrame struct {
	ChatID string `json:"chat_id,omitempty"`
	Text   string `json:"text"`
}

type wsClient struct {
	conn   *websocket.Conn
	send   chan []byte
	userID string
	name   string
	room   string // empty for a direct connection
}

// WebSocketChannel hosts a small room server for self-hosted chat clients.
// Connect with /ws?user=ID&name=Name[&room=ROOM]; messages sent on a room
// connection are room-scoped, others are direct.
type WebSocketChannel struct {
	listen string
	mb     *bus.MessageBus
	server *http.Server

	mu      sync.RWMutex
	clients map[*wsClient]bool
}

func NewWebSocketChannel(listen string, mb *bus.MessageBus) *WebSocketChannel {
	return &WebSocketChannel{
		listen:  listen,
		mb:      mb,
		clients: make(map[*wsClient]bool),
	}
}

func (w *WebSocketChannel) Name() string { return "websocket" }

func (w *WebSocketChannel) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", w.handleWS)
	w.server = &http.Server{Addr: w.listen, Handler: mux}

	go func() {
		if err := w.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.ErrorCF("ws", "listen failed", map[string]interface{}{"error": err.Error()})
		}
	}()
	go func() {
		<-ctx.Done()
		w.server.Close()
	}()
	return nil
}

func (w *WebSocketChannel) Stop() error {
	if w.server != nil {
		return w.server.Close()
	}
	return nil
}

func (w *WebSocketChannel) handleWS(rw http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	if userID == "" {
		http.Error(rw, "user query parameter required", http.StatusBadRequest)
		return
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = userID
	}
	conn, err := upgrader.Upgrade(rw, r, nil)
	if err != nil {
		return
	}

	client := &wsClient{
		conn:   conn,
		send:   make(chan []byte, 64),
		userID: userID,
		name:   name,
		room:   r.URL.Query().Get("room"),
	}
	w.mu.Lock()
	w.clients[client] = true
	w.mu.Unlock()
	logger.DebugCF("ws", "client connected", map[string]interface{}{"user": userID, "room": client.room})

	go w.writePump(client)
	w.readPump(client)
}

func (w *WebSocketChannel) readPump(client *wsClient) {
	defer func() {
		w.mu.Lock()
		if w.clients[client] {
			delete(w.clients, client)
			close(client.send)
		}
		w.mu.Unlock()
		client.conn.Close()
	}()

	for {
		_, data, err := client.conn.ReadMessage()
		if err != nil {
			return
		}
		var frame wsFrame
		if err := json.Unmarshal(data, &frame); err != nil || frame.Text == "" {
			continue
		}
		peer := bus.Peer{Kind: bus.PeerDirect, ID: client.userID}
		chatID := client.userID
		if client.room != "" {
			peer = bus.Peer{Kind: bus.PeerGroup, ID: client.room}
			chatID = client.room
		}
		w.mb.PublishInbound(bus.InboundMessage{
			Channel:    w.Name(),
			SenderID:   client.userID,
			SenderName: client.name,
			ChatID:     chatID,
			Peer:       peer,
			Content:    frame.Text,
		})
	}
}

func (w *WebSocketChannel) writePump(client *wsClient) {
	for data := range client.send {
		if err := client.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	client.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// Send delivers to every connection subscribed to the chat: members of the
// room, or the one user for a direct chat.
func (w *WebSocketChannel) Send(msg bus.OutboundMessage) error {
	data, err := json.Marshal(wsFrame{ChatID: msg.ChatID, Text: msg.Content})
	if err != nil {
		return fmt.Errorf("marshal ws frame: %w", err)
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	delivered := false
	for client := range w.clients {
		if client.room != msg.ChatID && client.userID != msg.ChatID {
			continue
		}
		select {
		case client.send <- data:
			delivered = true
		default:
			// Client too slow, drop the frame
		}
	}
	if !delivered {
		return fmt.Errorf("no websocket client for chat %q", msg.ChatID)
	}
	return nil
}
