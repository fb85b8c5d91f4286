package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/emanuuele/girls-chat-api/internal/commands"
	"github.com/emanuuele/girls-chat-api/internal/events"
	"github.com/emanuuele/girls-chat-api/internal/redis"
	"github.com/emanuuele/girls-chat-api/internal/services"
	"github.com/emanuuele/girls-chat-api/internal/transport/httpdto"
	"github.com/emanuuele/girls-chat-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// clientFrame is what clients send over the socket: chat channel management
// and the socket-native send path (same pipeline as the HTTP endpoint).
type clientFrame struct {
	Action     string `json:"action"`
	ChatID     int64  `json:"chat_id,omitempty"`
	ReceiverID int64  `json:"receiver_id,omitempty"`
	Text       string `json:"text,omitempty"`
}

type Handler struct {
	auth     *services.AuthService
	messages *services.MessageService
	hub      *Hub
	presence *redis.PresenceStore
	log      *logger.Logger
}

func NewHandler(auth *services.AuthService, messages *services.MessageService, hub *Hub, presence *redis.PresenceStore, log *logger.Logger) *Handler {
	return &Handler{auth: auth, messages: messages, hub: hub, presence: presence, log: log}
}

func (h *Handler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	claims, err := h.auth.ParseAccessToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := NewClient(conn, claims.UserID)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.hub.Register(client)
	// Every connection receives the user's inbox-level events.
	h.hub.Subscribe(client, events.UserChannel(client.UserID))
	if h.presence != nil {
		if err := h.presence.TrackConnection(ctx, client.UserID, client.ID); err != nil {
			h.log.Warnf("presence track failed for user %d: %v", client.UserID, err)
		}
	}
	go client.WriteLoop(ctx)

	defer func() {
		if h.presence != nil {
			if err := h.presence.RemoveConnection(context.Background(), client.UserID, client.ID); err != nil {
				h.log.Warnf("presence remove failed for user %d: %v", client.UserID, err)
			}
		}
		h.hub.Unregister(client)
	}()

	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		if h.presence != nil {
			_ = h.presence.Heartbeat(ctx, client.UserID)
		}
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		h.handleFrame(ctx, client, data)
	}
}

func (h *Handler) handleFrame(ctx context.Context, client *Client, data []byte) {
	var frame clientFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		h.log.Warnf("ws: dropping malformed frame from user %d", client.UserID)
		return
	}

	switch frame.Action {
	case "subscribe":
		if frame.ChatID != 0 {
			h.hub.Subscribe(client, events.ChatChannel(frame.ChatID))
		}
	case "unsubscribe":
		if frame.ChatID != 0 {
			h.hub.Unsubscribe(client, events.ChatChannel(frame.ChatID))
		}
	case "send-message":
		_, err := h.messages.SendMessage(ctx, commands.SendMessageCommand{
			SenderID:   client.UserID,
			ReceiverID: frame.ReceiverID,
			Text:       frame.Text,
			ChatID:     frame.ChatID,
		})
		if err != nil {
			h.log.Errorf("ws: send-message from user %d failed: %v", client.UserID, err)
			h.sendError(client, err)
		}
	default:
		h.log.Warnf("ws: unknown action %q from user %d", frame.Action, client.UserID)
	}
}

func (h *Handler) sendError(client *Client, err error) {
	payload, marshalErr := json.Marshal(map[string]string{
		"event_type": "error",
		"error":      err.Error(),
	})
	if marshalErr != nil {
		return
	}
	client.SendMessage(payload)
}
