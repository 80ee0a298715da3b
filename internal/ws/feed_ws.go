package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"findsync/internal/observability"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// FeedWebSocketHandler serves the public new item feed.
type FeedWebSocketHandler struct {
	hub    *Hub
	logger *zap.Logger
}

// NewFeedWebSocketHandler constructs a FeedWebSocketHandler.
func NewFeedWebSocketHandler(hub *Hub, logger *zap.Logger) *FeedWebSocketHandler {
	return &FeedWebSocketHandler{hub: hub, logger: logger}
}

// Handle upgrades the connection and subscribes it to new item events.
func (h *FeedWebSocketHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("findsync/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	info := connInfoFromRequest(c.Request, span.SpanContext().TraceID().String())
	client := newClient(h.hub, conn, info)
	h.hub.Add(client)

	observability.IncWSActive()
	h.hub.publishWSEvent(info, "ws_connect", "")
	h.logger.Debug("feed subscriber connected", zap.String("conn_id", info.ConnID), zap.String("ip", info.IP))

	go client.writePump()
	go func() {
		err := client.readPump()
		observability.DecWSActive()

		reason := ""
		if err != nil {
			reason = err.Error()
		}
		if err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			h.hub.publishWSEvent(info, "ws_error", reason)
		}
		h.hub.publishWSEvent(info, "ws_disconnect", reason)
	}()
}
