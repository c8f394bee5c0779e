package peer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"unicode/utf8"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-client/internal/proto"
)

// WSHandler upgrades room requests and bridges them to the Hub.
type WSHandler struct {
	hub     *Hub
	maxRoom int
	log     *zerolog.Logger
}

// NewWSHandler builds a handler rejecting room names longer than maxRoom
// runes (no limit when maxRoom <= 0).
func NewWSHandler(hub *Hub, maxRoom int, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{hub: hub, maxRoom: maxRoom, log: logger}
}

// Serve handles GET /ws/chat/:room/.
func (h *WSHandler) Serve(c *gin.Context) {
	room := c.Param("room")
	if room == "" || (h.maxRoom > 0 && utf8.RuneCountInString(room) > h.maxRoom) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room name"})
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	client := NewClient(uuid.NewString(), c.Query(proto.UsernameParam), room)
	logger := h.log.With().Str("conn_id", client.ID).Str("room", room).Str("user", client.Name).Logger()

	h.hub.Join(client)
	defer h.hub.Leave(client)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client, &logger)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client, &logger)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		if s := websocket.CloseStatus(err); s != -1 {
			status = s
		}
		if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
			logger.Warn().Err(err).Msg("ws connection closed with error")
			status = websocket.StatusInternalError
			reason = "internal error"
		}
	}

	conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *Client, logger *zerolog.Logger) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		var in proto.Outgoing
		if err := json.Unmarshal(data, &in); err != nil {
			logger.Warn().Err(err).Msg("ignoring malformed frame")
			continue
		}
		h.hub.Send(client, in.Message)
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *Client, logger *zerolog.Logger) error {
	for {
		select {
		case frame, ok := <-client.Frames:
			if !ok {
				return nil
			}
			if err := conn.Write(ctx, websocket.MessageText, frame); err != nil {
				logger.Error().Err(err).Msg("write ws frame")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
