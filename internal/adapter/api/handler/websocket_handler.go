package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"hiawto/internal/adapter/api/middleware"
	ws "hiawto/internal/infrastructure/websocket"
	"hiawto/internal/usecase"
	"hiawto/pkg/errors"
)

type WebSocketHandler struct {
	wsManager        *ws.Manager
	messagingUseCase *usecase.MessagingUseCase
	authMiddleware   *middleware.AuthMiddleware
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: restrict to the app origins before launch
	},
}

func NewWebSocketHandler(wsManager *ws.Manager, messagingUseCase *usecase.MessagingUseCase, authMiddleware *middleware.AuthMiddleware) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:        wsManager,
		messagingUseCase: messagingUseCase,
		authMiddleware:   authMiddleware,
	}
}

// HandleWebSocket upgrades the connection and pumps events. Browsers cannot
// set headers on WebSocket dials, so the token may also arrive as a query
// parameter.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	userID, ok := c.Get("uid").(string)
	if !ok || userID == "" {
		token := c.QueryParam("token")
		if token == "" {
			return errors.Unauthorized("Authentication required", nil)
		}
		uid, err := h.authMiddleware.GetUIDFromToken(c.Request().Context(), token)
		if err != nil {
			return errors.Unauthorized("Invalid token", err)
		}
		userID = uid
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return errors.Internal("Failed to upgrade connection", err)
	}

	client := &ws.Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}

	h.wsManager.Register <- client

	go client.ReadPump(h.wsManager, h.handleClientEvent)
	go client.WritePump()

	return nil
}

// handleClientEvent dispatches one inbound frame. Malformed frames are
// logged and dropped rather than closing the connection.
func (h *WebSocketHandler) handleClientEvent(client *ws.Client, message []byte) {
	var envelope ws.Envelope
	if err := json.Unmarshal(message, &envelope); err != nil {
		log.Printf("Malformed websocket frame from %s: %v", client.UserID, err)
		return
	}

	ctx := context.Background()

	switch envelope.Type {
	case ws.EventPing:
		h.sendToClient(client, ws.Envelope{Type: ws.EventPong, Timestamp: time.Now().Format(time.RFC3339)})

	case ws.EventJoinThread:
		if envelope.ThreadID == "" {
			return
		}
		if _, err := h.messagingUseCase.GetThread(ctx, client.UserID, envelope.ThreadID); err != nil {
			h.sendError(client, "Cannot join thread")
			return
		}
		h.wsManager.JoinThreadRoom(envelope.ThreadID, client.UserID)

	case ws.EventLeaveThread:
		if envelope.ThreadID != "" {
			h.wsManager.LeaveThreadRoom(envelope.ThreadID, client.UserID)
		}

	case ws.EventTyping:
		var data ws.TypingData
		if !decodeData(envelope.Data, &data) {
			return
		}
		threadID := envelope.ThreadID
		if threadID == "" {
			threadID = data.ThreadID
		}
		if err := h.messagingUseCase.SetTyping(ctx, client.UserID, threadID, data.IsTyping); err != nil {
			log.Printf("Typing update failed for %s: %v", client.UserID, err)
		}

	case ws.EventMarkSeen:
		var data ws.MarkSeenData
		if !decodeData(envelope.Data, &data) {
			return
		}
		threadID := envelope.ThreadID
		if threadID == "" {
			threadID = data.ThreadID
		}
		if data.MessageID != "" {
			if err := h.messagingUseCase.MarkMessageSeen(ctx, client.UserID, threadID, data.MessageID); err != nil {
				log.Printf("Mark seen failed for %s: %v", client.UserID, err)
			}
			return
		}
		if err := h.messagingUseCase.MarkThreadSeen(ctx, client.UserID, threadID); err != nil {
			log.Printf("Mark thread seen failed for %s: %v", client.UserID, err)
		}

	case ws.EventDelivered:
		var data ws.MarkSeenData
		if !decodeData(envelope.Data, &data) {
			return
		}
		if err := h.messagingUseCase.MarkMessageDelivered(ctx, client.UserID, envelope.ThreadID, data.MessageID); err != nil {
			log.Printf("Mark delivered failed for %s: %v", client.UserID, err)
		}

	default:
		h.sendError(client, "Unknown event type: "+envelope.Type)
	}
}

func (h *WebSocketHandler) sendToClient(client *ws.Client, envelope ws.Envelope) {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return
	}
	select {
	case client.Send <- payload:
	default:
	}
}

func (h *WebSocketHandler) sendError(client *ws.Client, message string) {
	h.sendToClient(client, ws.Envelope{
		Type:      ws.EventError,
		Data:      map[string]string{"message": message},
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func decodeData(raw interface{}, out interface{}) bool {
	payload, err := json.Marshal(raw)
	if err != nil {
		return false
	}
	return json.Unmarshal(payload, out) == nil
}
