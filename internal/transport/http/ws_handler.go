package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ashkanrb/agenthub-server/internal/realtime"
)

// WSHandler upgrades HTTP connections and streams realtime events for one
// channel per connection.
type WSHandler struct {
	hub *realtime.Hub
	log *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *realtime.Hub, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{hub: hub, log: logger}
}

// Handle subscribes the connection to the named channel and pushes each
// published event as a JSON text frame. The subscription ends when the
// client disconnects.
// GET /ws/:room
func (h *WSHandler) Handle(c *gin.Context) {
	room := c.Param("room")
	if room == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Str("room", room).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	events, subID := h.hub.Subscribe(ctx, room)
	h.log.Debug().Str("room", room).Str("subscriber_id", subID).Msg("ws subscribed")

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, events)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
			status = websocket.StatusInternalError
			reason = err.Error()
			h.log.Warn().Err(err).Str("room", room).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
	h.log.Debug().Str("room", room).Str("subscriber_id", subID).Msg("ws unsubscribed")
}

// readLoop drains inbound frames so the connection close is observed.
// Clients do not send meaningful data on this endpoint.
func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			return err
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, events <-chan []byte) error {
	for {
		select {
		case payload, ok := <-events:
			if !ok {
				return nil
			}
			if err := wsjson.Write(ctx, conn, json.RawMessage(payload)); err != nil {
				h.log.Error().Err(err).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
