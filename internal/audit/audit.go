package audit

import (
	"context"

	"github.com/weiawesome/collab-service/pkg/log"
)

// Audit actions for the coordinator.
const (
	ActionAuth       = "collab.auth"
	ActionAuthFailed = "collab.auth_failed"
	ActionJoinRoom   = "collab.join_room"
	ActionJoinDenied = "collab.join_denied"
	ActionLeaveRoom  = "collab.leave_room"
	ActionDisconnect = "collab.disconnect"
	ActionOffline    = "collab.offline"
)

// Field constants for audit entries.
const (
	FieldAction = "action"
	FieldDetail = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action string, userID string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Msg(msg)
}

// LogWithRoom emits an audit log carrying the room the action applies to.
func LogWithRoom(ctx context.Context, action string, userID string, roomID string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(log.FieldRoomID, roomID).
		Msg(msg)
}
