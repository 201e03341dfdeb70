package guard

import (
	"context"
	"errors"
)

var (
	// ErrRoomNotFound means the backing room entity does not exist or is
	// soft-deleted.
	ErrRoomNotFound = errors.New("room not found")
	// ErrAccessDenied means the room exists but the user may not enter.
	ErrAccessDenied = errors.New("access denied")
)

// AccessGuard decides whether a user may enter a room. Consulted
// synchronously on every join; never on updates or broadcasts.
type AccessGuard interface {
	CanAccess(ctx context.Context, userID, roomID string) error
}

// AccessGuardFunc adapts a function to the AccessGuard interface.
type AccessGuardFunc func(ctx context.Context, userID, roomID string) error

func (f AccessGuardFunc) CanAccess(ctx context.Context, userID, roomID string) error {
	return f(ctx, userID, roomID)
}
