package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"ai-ops-copilot-be/internal/pkg/logger"
	"ai-ops-copilot-be/pkg/events"

	"github.com/redis/go-redis/v9"
)

// Hub fans workflow events out to connected operator consoles. Operators may
// be connected from several devices, so clients are grouped per operator ID.
type Hub struct {
	clients map[string][]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance fan-out
	rdb *redis.Client

	// Dedicated Logger
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.OperatorID] = append(h.clients[client.OperatorID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Operator connected", map[string]interface{}{"operator_id": client.OperatorID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.OperatorID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.OperatorID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.OperatorID]) == 0 {
					delete(h.clients, client.OperatorID)
					h.logger.Info("Hub", "Operator disconnected", map[string]interface{}{"operator_id": client.OperatorID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// pushLocal queues data on each client's buffer and returns the clients
// whose buffers were full. Callers hand those to unregister after releasing
// the lock; Run is the only place a Send channel gets closed.
func (h *Hub) pushLocal(clients []*Client, data []byte) []*Client {
	var dead []*Client
	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			dead = append(dead, client)
		}
	}
	return dead
}

func (h *Hub) dropClients(dead []*Client) {
	for _, client := range dead {
		h.unregister <- client
	}
}

// Broadcast pushes a workflow event to every connected operator. Review
// requests go to everyone; whoever picks it up first decides.
func (h *Hub) Broadcast(event events.Event) {
	data, _ := json.Marshal(map[string]interface{}{
		"type":      event.EventType(),
		"data":      event.Payload(),
		"timestamp": event.Timestamp(),
	})

	h.mu.RLock()
	var dead []*Client
	for _, clients := range h.clients {
		dead = append(dead, h.pushLocal(clients, data)...)
	}
	h.mu.RUnlock()
	h.dropClients(dead)

	// Publish to Redis so other instances reach their operators too
	if h.rdb != nil {
		payload := map[string]interface{}{
			"target_operator_id": "*",
			"message":            json.RawMessage(data),
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), "cluster_events", jsonPayload)
	}
}

// Send delivers an event to one operator's devices only.
func (h *Hub) Send(operatorID string, event events.Event) {
	data, _ := json.Marshal(map[string]interface{}{
		"type":      event.EventType(),
		"data":      event.Payload(),
		"timestamp": event.Timestamp(),
	})

	h.mu.RLock()
	clients, localFound := h.clients[operatorID]
	h.mu.RUnlock()

	if localFound {
		dead := h.pushLocal(clients, data)
		if len(dead) > 0 {
			h.logger.Warn("Hub", "Client Send buffer full, dropping client", map[string]interface{}{"operator_id": operatorID})
		}
		h.dropClients(dead)
	}

	if h.rdb != nil {
		payload := map[string]interface{}{
			"target_operator_id": operatorID,
			"message":            json.RawMessage(data),
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), "cluster_events", jsonPayload)
	}
}

func (h *Hub) subscribeToRedis() {
	// All instances subscribe to "cluster_events". When a message arrives,
	// deliver it to matching local operators.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "cluster_events")
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			TargetOperatorID string          `json:"target_operator_id"`
			Message          json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		if payload.TargetOperatorID == "*" {
			h.mu.RLock()
			var dead []*Client
			for _, clients := range h.clients {
				dead = append(dead, h.pushLocal(clients, payload.Message)...)
			}
			h.mu.RUnlock()
			h.dropClients(dead)
			continue
		}

		h.mu.RLock()
		clients, ok := h.clients[payload.TargetOperatorID]
		h.mu.RUnlock()

		if ok {
			h.dropClients(h.pushLocal(clients, payload.Message))
		}
	}
}
