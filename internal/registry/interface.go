package registry

import "context"

// RoomRegistry advertises which coordinator instance hosts each active
// room, so dispatchers in a multi-instance deployment can route clients.
// Entries are best-effort leases: a crashed instance's keys expire.
type RoomRegistry interface {
	RegisterRoom(ctx context.Context, roomID string) error
	DeregisterRoom(ctx context.Context, roomID string) error
	Lookup(ctx context.Context, roomID string) (string, error)
	StartHeartbeat(ctx context.Context) error
	StopHeartbeat()
	Close() error
}
