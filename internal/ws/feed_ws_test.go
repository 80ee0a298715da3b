package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"findsync/internal/models"
)

func TestFeedSubscriberReceivesNewItem(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub(zap.NewNop())
	router := gin.New()
	router.GET("/ws/items", NewFeedWebSocketHandler(hub, zap.NewNop()).Handle)

	srv := httptest.NewServer(router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/items"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.BroadcastNewItem(context.Background(), models.Item{ID: 5, ItemName: "Wallet", PostType: "found"}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var event models.ItemEvent
	require.NoError(t, json.Unmarshal(payload, &event))
	assert.Equal(t, "new_item", event.Type)
	require.NotNil(t, event.Item)
	assert.Equal(t, 5, event.Item.ID)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}
