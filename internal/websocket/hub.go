package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"unsubly-be/internal/pkg/logger"
	"unsubly-be/pkg/events"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisChannel = "cancellation_events"

type Hub struct {
	// Registered clients map: UserID -> List of Clients (multi-device)
	clients map[uuid.UUID][]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance communication, may be nil
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
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
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.UserID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.UserID]) == 0 {
					delete(h.clients, client.UserID)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"user_id": client.UserID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// ConsumeLifecycle pumps engine lifecycle events from the in-process bus to
// the owning user's connected devices. Runs until the bus closes.
func (h *Hub) ConsumeLifecycle(ctx context.Context, bus *events.Bus) {
	messages, err := bus.Subscribe(ctx)
	if err != nil {
		h.logger.Error("Hub", "Failed to subscribe to lifecycle events", map[string]interface{}{"error": err.Error()})
		return
	}

	for msg := range messages {
		var env events.Envelope
		if err := json.Unmarshal(msg.Payload, &env); err != nil {
			h.logger.Warn("Hub", "Dropping malformed lifecycle event", map[string]interface{}{"error": err.Error()})
			msg.Ack()
			continue
		}
		msg.Ack()

		rawUserId, ok := env.Payload["user_id"].(string)
		if !ok {
			continue
		}
		userId, err := uuid.Parse(rawUserId)
		if err != nil {
			continue
		}

		data, err := json.Marshal(map[string]interface{}{
			"type": "cancellation_update",
			"data": env,
		})
		if err != nil {
			continue
		}
		h.Send(userId, data)
	}
}

// Send delivers one message to every device a user has connected, locally
// and (via redis) on other instances.
func (h *Hub) Send(userID uuid.UUID, data []byte) {
	h.mu.RLock()
	clients, localFound := h.clients[userID]
	h.mu.RUnlock()

	if localFound {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
				h.logger.Warn("Hub", "Client Send buffer full, dropping message", map[string]interface{}{"user_id": userID})
				close(client.Send)
				h.unregister <- client
			}
		}
	}

	if h.rdb != nil {
		payload := map[string]interface{}{
			"target_user_id": userID.String(),
			"message":        json.RawMessage(data),
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), redisChannel, jsonPayload)
	}
}

func (h *Hub) subscribeToRedis() {
	// Every instance subscribes to the shared channel and forwards only the
	// messages whose target user is connected locally.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, redisChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			TargetUserID string          `json:"target_user_id"`
			Message      json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		uid, err := uuid.Parse(payload.TargetUserID)
		if err != nil {
			continue
		}

		h.mu.RLock()
		clients, ok := h.clients[uid]
		h.mu.RUnlock()
		if !ok {
			continue
		}
		for _, client := range clients {
			select {
			case client.Send <- payload.Message:
			default:
				close(client.Send)
				h.unregister <- client
			}
		}
	}
}
