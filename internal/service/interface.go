package service

import (
	"context"
	"encoding/json"

	"github.com/weiawesome/collab-service/internal/hub"
)

// CollabService coordinates room membership, presence broadcast, and the
// peer sync handshake for live collaboration clients.
type CollabService interface {
	// HandleAuth verifies the client's token, binds the identity, and
	// announces the user online when this is their first connection.
	HandleAuth(ctx context.Context, client *hub.Client, token string) error

	// HandleJoinRoom authorizes and performs a room join, returning the
	// room's presence snapshot to the joiner.
	HandleJoinRoom(ctx context.Context, client *hub.Client, roomID string) error

	// HandleLeaveRoom handles an explicit leave.
	HandleLeaveRoom(ctx context.Context, client *hub.Client, roomID string) error

	// HandleUpdateCursor moves the client's cursor and relays it to peers.
	HandleUpdateCursor(ctx context.Context, client *hub.Client, roomID string, from, to int) error

	// HandleUpdateAwareness replaces the client's awareness payload and
	// relays it to peers.
	HandleUpdateAwareness(ctx context.Context, client *hub.Client, roomID string, awareness json.RawMessage) error

	// HandleDocUpdate relays an opaque document update to room peers.
	HandleDocUpdate(ctx context.Context, client *hub.Client, roomID string, payload json.RawMessage) error

	// HandleRequestSync asks room peers for a document state snapshot.
	HandleRequestSync(ctx context.Context, client *hub.Client, roomID string) error

	// HandleSendSyncData forwards a state snapshot to one connection.
	HandleSendSyncData(ctx context.Context, client *hub.Client, targetID string, state json.RawMessage) error

	// HandleDisconnect handles a client disconnecting.
	HandleDisconnect(ctx context.Context, client *hub.Client) error

	// Start starts background work (registry heartbeat).
	Start(ctx context.Context) error

	// Stop stops background work and flushes producers.
	Stop() error
}
