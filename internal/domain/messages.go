package domain

import (
	"encoding/json"
	"time"
)

// WebSocket message types from client.
const (
	MsgTypeAuth            = "auth"
	MsgTypeJoinRoom        = "join_room"
	MsgTypeLeaveRoom       = "leave_room"
	MsgTypeUpdateCursor    = "update_cursor"
	MsgTypeUpdateAwareness = "update_awareness"
	MsgTypeDocUpdate       = "doc_update"
	MsgTypeRequestSync     = "request_sync"
	MsgTypeSendSyncData    = "send_sync_data"
	MsgTypePing            = "ping"
)

// WebSocket message types to client.
const (
	MsgTypeAuthResult      = "auth_result"
	MsgTypeRoomJoined      = "room_joined"
	MsgTypeUserJoined      = "user_joined"
	MsgTypeUserLeft        = "user_left"
	MsgTypeCursorUpdate    = "cursor_update"
	MsgTypeAwarenessUpdate = "awareness_update"
	MsgTypeSyncRequested   = "sync_requested"
	MsgTypeSyncData        = "sync_data"
	MsgTypeUserOnline      = "user_online"
	MsgTypeUserOffline     = "user_offline"
	MsgTypeError           = "error"
	MsgTypePong            = "pong"
)

// BaseMessage is the base structure for all WebSocket messages.
type BaseMessage struct {
	Type string `json:"type"`
}

// Client -> Server messages

// AuthMessage is sent by client to authenticate and come online.
type AuthMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// JoinRoomMessage is sent by client to join a collaboration room.
type JoinRoomMessage struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
}

// LeaveRoomMessage is sent by client to leave a room.
type LeaveRoomMessage struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
}

// UpdateCursorMessage moves the client's cursor/selection.
type UpdateCursorMessage struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
	From   int    `json:"from"`
	To     int    `json:"to"`
}

// UpdateAwarenessMessage replaces the client's awareness payload.
type UpdateAwarenessMessage struct {
	Type      string          `json:"type"`
	RoomID    string          `json:"room_id"`
	Awareness json.RawMessage `json:"awareness"`
}

// DocUpdateMessage carries an opaque document update to relay to peers.
// The coordinator never inspects or merges the payload; content merge
// belongs to the document model on the clients.
type DocUpdateMessage struct {
	Type    string          `json:"type"`
	RoomID  string          `json:"room_id"`
	Payload json.RawMessage `json:"payload"`
}

// RequestSyncMessage asks room peers for a fresh document state snapshot.
type RequestSyncMessage struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
}

// SendSyncDataMessage answers a sync request with an opaque state blob,
// addressed to the requesting connection.
type SendSyncDataMessage struct {
	Type     string          `json:"type"`
	TargetID string          `json:"target_id"`
	State    json.RawMessage `json:"state"`
}

// Server -> Client messages

// AuthResultMessage is sent to client after authentication.
type AuthResultMessage struct {
	Type     string `json:"type"`
	Success  bool   `json:"success"`
	UserID   string `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
	Message  string `json:"message,omitempty"`
}

// RoomJoinedMessage confirms a join and carries the presence snapshot of
// the peers already in the room.
type RoomJoinedMessage struct {
	Type         string           `json:"type"`
	RoomID       string           `json:"room_id"`
	ConnectionID string           `json:"connection_id"`
	Presence     []MemberPresence `json:"presence"`
}

// UserJoinedMessage tells room peers a new member arrived.
type UserJoinedMessage struct {
	Type         string         `json:"type"`
	RoomID       string         `json:"room_id"`
	ConnectionID string         `json:"connection_id"`
	Presence     PresenceRecord `json:"presence"`
}

// UserLeftMessage tells room peers a member departed.
type UserLeftMessage struct {
	Type         string `json:"type"`
	RoomID       string `json:"room_id"`
	ConnectionID string `json:"connection_id"`
}

// CursorUpdateMessage relays a peer's cursor move.
type CursorUpdateMessage struct {
	Type         string         `json:"type"`
	RoomID       string         `json:"room_id"`
	ConnectionID string         `json:"connection_id"`
	Presence     PresenceRecord `json:"presence"`
}

// AwarenessUpdateMessage relays a peer's awareness payload.
type AwarenessUpdateMessage struct {
	Type         string          `json:"type"`
	RoomID       string          `json:"room_id"`
	ConnectionID string          `json:"connection_id"`
	Awareness    json.RawMessage `json:"awareness"`
}

// SyncRequestedMessage tells peers a connection wants a state snapshot.
type SyncRequestedMessage struct {
	Type         string `json:"type"`
	RoomID       string `json:"room_id"`
	ConnectionID string `json:"connection_id"`
}

// SyncDataMessage delivers an opaque state blob to the requester.
type SyncDataMessage struct {
	Type  string          `json:"type"`
	State json.RawMessage `json:"state"`
}

// UserOnlineMessage announces a user's first open connection.
type UserOnlineMessage struct {
	Type     string `json:"type"`
	UserID   string `json:"user_id"`
	Username string `json:"username,omitempty"`
}

// UserOfflineMessage announces a user's last connection closing.
type UserOfflineMessage struct {
	Type     string    `json:"type"`
	UserID   string    `json:"user_id"`
	LastSeen time.Time `json:"last_seen"`
}

// ErrorMessage is sent when an error occurs.
type ErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// NewErrorMessage creates a new error message.
func NewErrorMessage(code, message string) *ErrorMessage {
	return &ErrorMessage{
		Type:    MsgTypeError,
		Code:    code,
		Message: message,
	}
}
