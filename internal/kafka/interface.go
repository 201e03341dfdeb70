package kafka

import (
	"context"
	"time"
)

// Presence event types published for downstream consumers (attendance
// dashboards, analytics).
const (
	EventRoomJoined  = "presence.room_joined"
	EventRoomLeft    = "presence.room_left"
	EventUserOnline  = "presence.user_online"
	EventUserOffline = "presence.user_offline"
)

// PresenceEvent is one membership or roster transition.
type PresenceEvent struct {
	Type         string    `json:"type"`
	RoomID       string    `json:"room_id,omitempty"`
	UserID       string    `json:"user_id"`
	ConnectionID string    `json:"connection_id"`
	Timestamp    time.Time `json:"timestamp"`
}

// PresenceEventProducer publishes presence events to the event stream.
type PresenceEventProducer interface {
	ProduceEvent(ctx context.Context, event *PresenceEvent) error
	Close() error
}
