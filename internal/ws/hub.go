package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"findsync/internal/models"
	"findsync/internal/observability"
)

const eventNewItem = "new_item"

// Hub fans new item events out to every connected feed subscriber.
// Delivery is best effort: nothing is stored for late subscribers and a
// subscriber whose buffer is full is disconnected.
type Hub struct {
	clients map[*Client]struct{}
	mu      sync.RWMutex
	logger  *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Add registers a subscriber.
func (h *Hub) Add(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

// Remove unregisters a subscriber and closes its send channel once.
func (h *Hub) Remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// Count returns the number of connected subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastNewItem delivers a new_item event to the local subscribers.
func (h *Hub) BroadcastNewItem(ctx context.Context, item models.Item) error {
	payload, err := encodeNewItem(item)
	if err != nil {
		return err
	}
	h.Deliver(payload)
	return nil
}

// Deliver queues payload to every subscriber without blocking and returns
// how many accepted it.
func (h *Hub) Deliver(payload []byte) int {
	var (
		delivered int
		slow      []*Client
	)

	h.mu.RLock()
	for c := range h.clients {
		select {
		case c.send <- payload:
			delivered++
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("dropping slow feed subscriber", zap.String("conn_id", c.info.ConnID))
		h.Remove(c)
		h.publishWSEvent(c.info, "ws_dropped", "send buffer full")
	}
	observability.AddBroadcastDeliveries(delivered)
	return delivered
}

func encodeNewItem(item models.Item) ([]byte, error) {
	return json.Marshal(models.ItemEvent{Type: eventNewItem, Item: &item})
}

func (h *Hub) publishWSEvent(info ConnInfo, event, reason string) {
	observability.IncWSEvent(event)
	_ = observability.PublishEvent(context.Background(), wsRoutingKey, observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		RequestID: info.RequestID,
		TraceID:   info.TraceID,
		Payload: map[string]interface{}{
			"ws": map[string]interface{}{
				"kind":        "items",
				"event":       event,
				"conn_id":     info.ConnID,
				"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
				"reason":      reason,
			},
			"identity": map[string]interface{}{
				"device_id": info.DeviceID,
				"ip":        info.IP,
			},
		},
	})
}

const wsRoutingKey = "ws_events.items"
