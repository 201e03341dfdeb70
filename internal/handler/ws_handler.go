package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/weiawesome/collab-service/internal/domain"
	"github.com/weiawesome/collab-service/internal/hub"
	"github.com/weiawesome/collab-service/internal/service"
	pkglog "github.com/weiawesome/collab-service/pkg/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// WSHandler handles WebSocket connections.
type WSHandler struct {
	hub     *hub.Hub
	service service.CollabService
}

// NewWSHandler creates a new WebSocket handler.
func NewWSHandler(h *hub.Hub, svc service.CollabService) *WSHandler {
	return &WSHandler{
		hub:     h,
		service: svc,
	}
}

// HandleWebSocket handles WebSocket upgrade and message routing.
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	l := pkglog.L()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(uuid.New().String(), h.hub, conn)

	// Membership and roster cleanup runs before the hub forgets the client.
	client.SetDisconnectHandler(func(c *hub.Client) {
		ctx := context.Background()
		if err := h.service.HandleDisconnect(ctx, c); err != nil {
			l.Error().Err(err).Str(pkglog.FieldConnectionID, c.ID).Msg("disconnect handler error")
		}
	})

	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(h.handleMessage)
}

func (h *WSHandler) handleMessage(client *hub.Client, message []byte) {
	l := pkglog.L()

	var base domain.BaseMessage
	if err := json.Unmarshal(message, &base); err != nil {
		client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid message format"))
		return
	}

	ctx := context.Background()

	switch base.Type {
	case domain.MsgTypeAuth:
		var msg domain.AuthMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid auth message"))
			return
		}
		if err := h.service.HandleAuth(ctx, client, msg.Token); err != nil {
			l.Error().Err(err).Str(pkglog.FieldConnectionID, client.ID).Msg("auth failed")
		}

	case domain.MsgTypeJoinRoom:
		var msg domain.JoinRoomMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid join_room message"))
			return
		}
		if err := h.service.HandleJoinRoom(ctx, client, msg.RoomID); err != nil {
			l.Error().Err(err).Str(pkglog.FieldConnectionID, client.ID).Msg("join room failed")
		}

	case domain.MsgTypeLeaveRoom:
		var msg domain.LeaveRoomMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid leave_room message"))
			return
		}
		if err := h.service.HandleLeaveRoom(ctx, client, msg.RoomID); err != nil {
			l.Error().Err(err).Str(pkglog.FieldConnectionID, client.ID).Msg("leave room failed")
		}

	case domain.MsgTypeUpdateCursor:
		var msg domain.UpdateCursorMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid update_cursor message"))
			return
		}
		if err := h.service.HandleUpdateCursor(ctx, client, msg.RoomID, msg.From, msg.To); err != nil {
			l.Error().Err(err).Str(pkglog.FieldConnectionID, client.ID).Msg("cursor update failed")
		}

	case domain.MsgTypeUpdateAwareness:
		var msg domain.UpdateAwarenessMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid update_awareness message"))
			return
		}
		if err := h.service.HandleUpdateAwareness(ctx, client, msg.RoomID, msg.Awareness); err != nil {
			l.Error().Err(err).Str(pkglog.FieldConnectionID, client.ID).Msg("awareness update failed")
		}

	case domain.MsgTypeDocUpdate:
		var msg domain.DocUpdateMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid doc_update message"))
			return
		}
		if err := h.service.HandleDocUpdate(ctx, client, msg.RoomID, msg.Payload); err != nil {
			l.Error().Err(err).Str(pkglog.FieldConnectionID, client.ID).Msg("doc update failed")
		}

	case domain.MsgTypeRequestSync:
		var msg domain.RequestSyncMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid request_sync message"))
			return
		}
		if err := h.service.HandleRequestSync(ctx, client, msg.RoomID); err != nil {
			l.Error().Err(err).Str(pkglog.FieldConnectionID, client.ID).Msg("request sync failed")
		}

	case domain.MsgTypeSendSyncData:
		var msg domain.SendSyncDataMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid send_sync_data message"))
			return
		}
		if err := h.service.HandleSendSyncData(ctx, client, msg.TargetID, msg.State); err != nil {
			l.Error().Err(err).Str(pkglog.FieldConnectionID, client.ID).Msg("send sync data failed")
		}

	case domain.MsgTypePing:
		client.SendMessage(map[string]string{"type": domain.MsgTypePong})

	default:
		client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Unknown message type"))
	}
}

// RegisterRoutes registers the WebSocket route.
func (h *WSHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/ws", h.HandleWebSocket)
}
