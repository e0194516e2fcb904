package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"go-vehicle-inspector/internal/logger"
	"go-vehicle-inspector/internal/observer"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Hub tracks connected dashboard clients and pushes each finished
// analysis to all of them.
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
	}
}

// Run processes hub events until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			logger.WithField("clients", total).Info("Websocket client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			total := len(h.clients)
			h.mu.Unlock()
			logger.WithField("clients", total).Info("Websocket client disconnected")

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					logger.WithError(err).Warn("Dropping unresponsive websocket client")
					delete(h.clients, client)
					client.Close()
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.Close()
		delete(h.clients, client)
	}
}

func (h *Hub) Register(client *websocket.Conn) {
	h.register <- client
}

func (h *Hub) Unregister(client *websocket.Conn) {
	h.unregister <- client
}

func (h *Hub) Broadcast(message []byte) {
	h.broadcast <- message
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// OnEvent implements observer.Observer: every analysis event goes out
// to connected clients as JSON.
func (h *Hub) OnEvent(_ context.Context, event observer.AnalysisEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"event_type": event.Type,
		}).Error("Failed to encode websocket event")
		return
	}

	// Never stall the request path when no reader drains the channel.
	select {
	case h.broadcast <- payload:
	default:
		logger.Warn("Websocket broadcast queue full, dropping event")
	}
}

func (h *Hub) Name() string {
	return "websocket_hub"
}
