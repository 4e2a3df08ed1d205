package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/hireloop/internal/pkg/metrics"
)

// Event types pushed to clients
const (
	EventMessage      = "message"
	EventNotification = "notification"
	EventRead         = "read"
	EventError        = "error"
)

// Event is the frame written to a client
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Inbound is a frame received from a connected user
type Inbound struct {
	// Type of frame: "message" or "read"
	Type string `json:"type"`

	ConversationID int64  `json:"conversationId"`
	Content        string `json:"content,omitempty"`

	// Set by the server, never trusted from the client
	UserID int64 `json:"-"`
}

type delivery struct {
	userID int64
	data   []byte
}

// Hub keeps the connected clients of every user and fans events out to them
type Hub struct {
	// Registered clients organized by user ID
	clients map[int64]map[*Client]bool

	deliver    chan delivery
	register   chan *Client
	unregister chan *Client
	// closed when Run returns
	done chan struct{}

	mu sync.RWMutex

	listenersMu sync.RWMutex
	listeners   []chan *Inbound

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		deliver:    make(chan delivery, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run handles registrations and deliveries until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case d := <-h.deliver:
			h.deliverToUser(d)
		}
	}
}

// join hands a new connection to Run. It reports false once the hub has stopped.
func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// leave hands a closed connection to Run; after shutdown closeAll already dropped it
func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true
	metrics.WebsocketConnections.Inc()

	h.logger.Info().
		Int64("userID", client.userID).
		Str("addr", client.remoteAddr()).
		Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

// removeLocked drops a client; callers hold h.mu
func (h *Hub) removeLocked(client *Client) {
	conns, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := conns[client]; !ok {
		return
	}

	delete(conns, client)
	close(client.send)
	metrics.WebsocketConnections.Dec()
	if len(conns) == 0 {
		delete(h.clients, client.userID)
	}

	h.logger.Info().
		Int64("userID", client.userID).
		Str("addr", client.remoteAddr()).
		Msg("Client unregistered")
}

func (h *Hub) deliverToUser(d delivery) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.clients[d.userID]
	if !ok {
		h.logger.Debug().Int64("userID", d.userID).Msg("User has no open connections")
		return
	}

	for client := range conns {
		select {
		case client.send <- d.data:
		default:
			// slow consumer
			h.logger.Warn().Int64("userID", d.userID).Msg("Dropping slow websocket client")
			h.removeLocked(client)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, conns := range h.clients {
		for client := range conns {
			h.removeLocked(client)
		}
	}
}

// SendToUser queues an event for every connection of a user
func (h *Hub) SendToUser(userID int64, eventType string, data interface{}) {
	payload, err := json.Marshal(Event{Type: eventType, Data: data, Timestamp: time.Now().UTC()})
	if err != nil {
		h.logger.Error().Err(err).Int64("userID", userID).Str("type", eventType).Msg("Failed to marshal websocket event")
		return
	}

	select {
	case h.deliver <- delivery{userID: userID, data: payload}:
	default:
		h.logger.Warn().Int64("userID", userID).Str("type", eventType).Msg("Websocket delivery queue full, event dropped")
	}
}

// IsOnline reports whether the user has at least one open connection
func (h *Hub) IsOnline(userID int64) bool {
	return h.ConnectionCount(userID) > 0
}

// ConnectionCount returns the number of open connections for a user
func (h *Hub) ConnectionCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// AddListener registers a channel receiving every inbound client frame
func (h *Hub) AddListener(listener chan *Inbound) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()
	h.listeners = append(h.listeners, listener)
}

// RemoveListener removes a listener from the hub
func (h *Hub) RemoveListener(listener chan *Inbound) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()

	for i, l := range h.listeners {
		if l == listener {
			h.listeners[i] = h.listeners[len(h.listeners)-1]
			h.listeners = h.listeners[:len(h.listeners)-1]
			break
		}
	}
}

func (h *Hub) dispatchInbound(in *Inbound) {
	h.listenersMu.RLock()
	defer h.listenersMu.RUnlock()

	for _, listener := range h.listeners {
		select {
		case listener <- in:
		default:
			h.logger.Warn().Int64("userID", in.UserID).Msg("Skipped slow inbound listener")
		}
	}
}
