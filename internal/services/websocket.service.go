package services

import (
	"encoding/json"
	"sync"
	"time"

	"gloves/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// WebSocketMessage represents a message sent over WebSocket
type WebSocketMessage struct {
	Type      string      `json:"type"` // "stream", "network", "ping", "pong", "error"
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// StreamPayload is pushed to every client on each tick
type StreamPayload struct {
	Motion    *models.MotionSample `json:"motion,omitempty"`
	Network   models.NetworkStatus `json:"network"`
	Timestamp time.Time            `json:"timestamp"`
}

// MotionSource is satisfied by MotionCollector
type MotionSource interface {
	Latest() (models.MotionSample, bool)
}

// NetworkSource is satisfied by Station
type NetworkSource interface {
	Status() models.NetworkStatus
}

// ClientConnection represents a connected WebSocket client
type ClientConnection struct {
	ID    string
	Conn  *websocket.Conn
	Send  chan WebSocketMessage
	Close chan bool
}

// WebSocketHub manages all connected WebSocket clients
type WebSocketHub struct {
	clients    map[string]*ClientConnection
	broadcast  chan WebSocketMessage
	register   chan *ClientConnection
	unregister chan string
	mu         sync.RWMutex
	interval   time.Duration
	done       chan struct{}
	stopOnce   sync.Once
	motion     MotionSource
	network    NetworkSource
	log        zerolog.Logger
}

// NewWebSocketHub creates the hub and starts its event loop
func NewWebSocketHub(motion MotionSource, network NetworkSource, interval time.Duration, log zerolog.Logger) *WebSocketHub {
	if interval <= 0 {
		interval = time.Second
	}
	h := &WebSocketHub{
		clients:    make(map[string]*ClientConnection),
		broadcast:  make(chan WebSocketMessage, 256),
		register:   make(chan *ClientConnection),
		unregister: make(chan string),
		interval:   interval,
		done:       make(chan struct{}),
		motion:     motion,
		network:    network,
		log:        log,
	}

	go h.run()

	return h
}

// run manages the hub's event loop
func (h *WebSocketHub) run() {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for id, client := range h.clients {
				delete(h.clients, id)
				close(client.Send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Info().Str("client", client.ID).Int("total", total).Msg("client connected")

		case clientID := <-h.unregister:
			h.mu.Lock()
			if client, exists := h.clients[clientID]; exists {
				delete(h.clients, clientID)
				close(client.Send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Info().Str("client", clientID).Int("total", total).Msg("client disconnected")

		case msg := <-h.broadcast:
			h.fanOut(msg)

		case <-ticker.C:
			data, err := json.Marshal(h.gatherStream())
			if err != nil {
				h.log.Error().Err(err).Msg("marshaling stream payload")
				continue
			}
			h.fanOut(WebSocketMessage{
				Type:      "stream",
				Timestamp: time.Now(),
				Data:      json.RawMessage(data),
			})
		}
	}
}

func (h *WebSocketHub) fanOut(msg WebSocketMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.Send <- msg:
		default:
			// Client's send channel is full, skip this message
		}
	}
}

func (h *WebSocketHub) gatherStream() *StreamPayload {
	payload := &StreamPayload{
		Network:   h.network.Status(),
		Timestamp: time.Now(),
	}
	if sample, ok := h.motion.Latest(); ok {
		payload.Motion = &sample
	}
	return payload
}

// Register adds a new client to the hub
func (h *WebSocketHub) Register(client *ClientConnection) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

// Unregister removes a client from the hub
func (h *WebSocketHub) Unregister(clientID string) {
	select {
	case h.unregister <- clientID:
	case <-h.done:
	}
}

// Broadcast sends a message to all connected clients
func (h *WebSocketHub) Broadcast(msg WebSocketMessage) {
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

// ClientCount returns the number of registered clients
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop closes every client channel and ends the event loop
func (h *WebSocketHub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}
