// Package ws serves live zone snapshots of running games over websockets.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/okusnadi/SabberStone/internal/game/model"
	"github.com/okusnadi/SabberStone/internal/game/rules"
)

// Message types exchanged with inspector clients.
const (
	TypeSubscribe = "subscribe"
	TypeGameState = "game_state"
	TypeError     = "error"
)

// Message is the envelope of every websocket frame.
type Message struct {
	Type   string `json:"type"`
	GameID string `json:"game_id,omitempty"`
	Data   any    `json:"data,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one connected inspector.
type Client struct {
	conn   *websocket.Conn
	send   chan []byte
	gameID string // empty: every game
}

type subscription struct {
	client *Client
	gameID string
}

type outbound struct {
	gameID string
	data   []byte
}

// Hub fans game snapshots out to connected clients. Games are read through
// Game.Do, so hosts must drive attached games through it too.
type Hub struct {
	logger     *zap.Logger
	clients    map[*Client]bool
	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client
	subscribe  chan subscription
	done       chan struct{}
	mu         sync.RWMutex
	games      map[string]*model.Game
}

// NewHub creates a hub; call Run to start it.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger:     logger,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan outbound, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		subscribe:  make(chan subscription),
		done:       make(chan struct{}),
		games:      make(map[string]*model.Game),
	}
}

// Run serves the hub until ctx is done, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			h.logger.Info("inspector connected",
				zap.String("remote_addr", client.conn.RemoteAddr().String()),
			)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.logger.Info("inspector disconnected",
					zap.String("remote_addr", client.conn.RemoteAddr().String()),
				)
			}

		case sub := <-h.subscribe:
			if _, ok := h.clients[sub.client]; !ok {
				continue
			}
			sub.client.gameID = sub.gameID
			h.deliver(sub.client, h.snapshot(sub.gameID))

		case msg := <-h.broadcast:
			for client := range h.clients {
				if client.gameID != "" && client.gameID != msg.gameID {
					continue
				}
				h.deliver(client, msg.data)
			}
		}
	}
}

func (h *Hub) deliver(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		h.logger.Warn("dropping slow inspector",
			zap.String("remote_addr", client.conn.RemoteAddr().String()),
		)
		close(client.send)
		delete(h.clients, client)
	}
}

// snapshot encodes the current state of gameID, or an error message.
func (h *Hub) snapshot(gameID string) []byte {
	h.mu.RLock()
	g := h.games[gameID]
	h.mu.RUnlock()

	if g == nil {
		return h.errorMessage(gameID, "unknown game")
	}
	var view model.GameView
	if err := g.Do(func() error {
		view = g.View()
		return nil
	}); err != nil {
		h.logger.Error("failed to snapshot game", zap.String("game_id", gameID), zap.Error(err))
		return h.errorMessage(gameID, "snapshot failed")
	}
	data, err := json.Marshal(Message{Type: TypeGameState, GameID: gameID, Data: view})
	if err != nil {
		h.logger.Error("failed to encode game state", zap.String("game_id", gameID), zap.Error(err))
		return h.errorMessage(gameID, "snapshot failed")
	}
	return data
}

func (h *Hub) errorMessage(gameID, text string) []byte {
	data, err := json.Marshal(Message{Type: TypeError, GameID: gameID, Data: text})
	if err != nil {
		h.logger.Error("failed to encode error message", zap.String("game_id", gameID), zap.Error(err))
	}
	return data
}

// Broadcast queues msg for every client watching msg.GameID. It never
// blocks; when the queue is full the message is dropped.
func (h *Hub) Broadcast(msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode %s message: %w", msg.Type, err)
	}
	select {
	case h.broadcast <- outbound{gameID: msg.GameID, data: data}:
		return nil
	default:
		h.logger.Warn("inspector queue full",
			zap.String("game_id", msg.GameID),
			zap.String("type", msg.Type),
		)
		return fmt.Errorf("inspector queue full, dropped %s message", msg.Type)
	}
}

// Attach publishes a game_state message after every zone change in g.
// The returned function detaches the game.
func (h *Hub) Attach(g *model.Game) func() {
	h.mu.Lock()
	h.games[g.ID()] = g
	h.mu.Unlock()

	push := func(rules.Event) {
		if err := h.Broadcast(Message{Type: TypeGameState, GameID: g.ID(), Data: g.View()}); err != nil {
			h.logger.Debug("game state not sent", zap.String("game_id", g.ID()), zap.Error(err))
		}
	}
	handles := []int{
		g.Bus().SubscribeTyped(rules.EventZoneChange, push),
		g.Bus().SubscribeTyped(rules.EventEntityRemoved, push),
	}

	h.logger.Info("attached game to inspector", zap.String("game_id", g.ID()))
	return func() {
		for _, handle := range handles {
			g.Bus().Unsubscribe(handle)
		}
		h.mu.Lock()
		delete(h.games, g.ID())
		h.mu.Unlock()
	}
}

// ServeHTTP upgrades the request and registers the connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		conn: conn,
		send: make(chan []byte, 256),
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump(h)
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			h.logger.Debug("invalid inspector message", zap.Error(err))
			continue
		}
		switch msg.Type {
		case TypeSubscribe:
			select {
			case h.subscribe <- subscription{client: c, gameID: msg.GameID}:
			case <-h.done:
				return
			}
		default:
			h.logger.Debug("ignoring inspector message", zap.String("type", msg.Type))
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}
