package gui

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"futures-testnet-bot/internal/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 64
)

// Event types pushed to the page.
const (
	EventLog          = "log"
	EventConnectivity = "connectivity"
	EventTicker       = "ticker"
)

// Event is one message on /ws.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// wsRequest is what the page may send: {"op":"watch","symbol":"ETHUSDT"}.
type wsRequest struct {
	Op     string `json:"op"`
	Symbol string `json:"symbol"`
}

// Hub fans events out to every connected page.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex

	// onWatch is called when a page asks for another ticker symbol.
	onWatch func(symbol string)
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run serves register, unregister and broadcast until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			logger.Debug("ws client connected", "id", client.id, "total", n)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				logger.Debug("ws client disconnected", "id", client.id, "total", len(h.clients))
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// slow client
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues an event for all clients. It never blocks.
func (h *Hub) Broadcast(eventType string, data any) {
	message, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		logger.Error("ws marshal error", "error", err)
		return
	}
	select {
	case h.broadcast <- message:
	default:
		logger.Warn("ws broadcast buffer full, dropping event", "type", eventType)
	}
}

func (h *Hub) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Client is one websocket connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	id   string
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("ws read error", "id", c.id, "error", err)
			}
			return
		}

		var req wsRequest
		if err := json.Unmarshal(message, &req); err != nil {
			logger.Debug("ws invalid message", "id", c.id, "error", err)
			continue
		}
		switch req.Op {
		case "watch":
			if c.hub.onWatch != nil {
				c.hub.onWatch(req.Symbol)
			}
		default:
			logger.Debug("ws unknown op", "op", req.Op)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// one event per frame so the page can JSON.parse each message
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("ws upgrade error", "error", err)
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		id:   conn.RemoteAddr().String(),
	}

	// current state first, so the page does not wait for the next ping
	if snapshot, err := json.Marshal(Event{Type: EventConnectivity, Data: s.connectivity()}); err == nil {
		client.send <- snapshot
	}
	if t, ok := s.lastTicker(); ok {
		if quote, err := json.Marshal(Event{Type: EventTicker, Data: t}); err == nil {
			client.send <- quote
		}
	}

	select {
	case s.hub.register <- client:
	case <-s.hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
