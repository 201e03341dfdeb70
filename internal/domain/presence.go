package domain

import (
	"encoding/json"
	"hash/fnv"
	"time"
)

// Cursor is a selection range inside the shared document.
type Cursor struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// PresenceRecord is the ephemeral per-connection state broadcast to room
// peers. The awareness payload is application-defined and relayed as-is.
type PresenceRecord struct {
	UserID      string          `json:"user_id"`
	DisplayName string          `json:"display_name"`
	Color       string          `json:"color"`
	Cursor      *Cursor         `json:"cursor,omitempty"`
	Awareness   json.RawMessage `json:"awareness,omitempty"`
	LastUpdated time.Time       `json:"last_updated"`
}

// MemberPresence pairs a presence record with the connection it belongs to.
type MemberPresence struct {
	ConnectionID string         `json:"connection_id"`
	Presence     PresenceRecord `json:"presence"`
}

// presenceColors is the palette cursors are rendered with. Assignment is
// deterministic per user so a user keeps their color across rejoins.
var presenceColors = []string{
	"#f44336", "#e91e63", "#9c27b0", "#673ab7",
	"#3f51b5", "#2196f3", "#009688", "#4caf50",
	"#ff9800", "#ff5722", "#795548", "#607d8b",
}

// ColorFor returns the presence color for a user.
func ColorFor(userID string) string {
	h := fnv.New32a()
	h.Write([]byte(userID))
	return presenceColors[h.Sum32()%uint32(len(presenceColors))]
}

// NewPresenceRecord creates the initial presence for a user joining a room.
func NewPresenceRecord(userID, displayName string) PresenceRecord {
	return PresenceRecord{
		UserID:      userID,
		DisplayName: displayName,
		Color:       ColorFor(userID),
		LastUpdated: time.Now(),
	}
}
