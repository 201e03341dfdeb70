package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/weiawesome/collab-service/internal/audit"
	"github.com/weiawesome/collab-service/internal/domain"
	"github.com/weiawesome/collab-service/internal/guard"
	"github.com/weiawesome/collab-service/internal/hub"
	"github.com/weiawesome/collab-service/internal/kafka"
	"github.com/weiawesome/collab-service/internal/registry"
	"github.com/weiawesome/collab-service/pkg/jwt"
	pkglog "github.com/weiawesome/collab-service/pkg/log"
)

type collabService struct {
	hub      *hub.Hub
	verifier *jwt.Verifier
	guard    guard.AccessGuard
	producer kafka.PresenceEventProducer
	registry registry.RoomRegistry

	cancel context.CancelFunc
}

// NewCollabService creates a new CollabService instance. producer and
// reg are optional; pass nil to run without the event stream or the
// instance registry.
func NewCollabService(
	h *hub.Hub,
	verifier *jwt.Verifier,
	accessGuard guard.AccessGuard,
	producer kafka.PresenceEventProducer,
	reg registry.RoomRegistry,
) CollabService {
	return &collabService{
		hub:      h,
		verifier: verifier,
		guard:    accessGuard,
		producer: producer,
		registry: reg,
	}
}

func (s *collabService) HandleAuth(ctx context.Context, c *hub.Client, token string) error {
	claims, err := s.verifier.Verify(token)
	if err != nil {
		audit.Log(ctx, audit.ActionAuthFailed, "", "token rejected")
		c.SendMessage(&domain.AuthResultMessage{
			Type:    domain.MsgTypeAuthResult,
			Success: false,
			Message: "invalid token",
		})
		return fmt.Errorf("invalid token: %w", err)
	}

	c.Session.Authenticate(claims.UserID, claims.Username, claims.Email, claims.Roles)

	// The user-connection index doubles as the personal channel: every
	// toUser fan-out reaches all of this user's open connections.
	first := s.hub.BindUser(c, claims.UserID)
	if first {
		s.hub.BroadcastToAll(&domain.UserOnlineMessage{
			Type:     domain.MsgTypeUserOnline,
			UserID:   claims.UserID,
			Username: claims.Username,
		}, c.ID)
		s.produceEvent(ctx, &kafka.PresenceEvent{
			Type:         kafka.EventUserOnline,
			UserID:       claims.UserID,
			ConnectionID: c.ID,
			Timestamp:    time.Now().UTC(),
		})
	}

	audit.Log(ctx, audit.ActionAuth, claims.UserID, "client authenticated")

	return c.SendMessage(&domain.AuthResultMessage{
		Type:     domain.MsgTypeAuthResult,
		Success:  true,
		UserID:   claims.UserID,
		Username: claims.Username,
	})
}

func (s *collabService) HandleJoinRoom(ctx context.Context, c *hub.Client, roomID string) error {
	if !c.Session.IsAuthenticated() {
		return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeUnauthorized, "Not authenticated"))
	}
	userID := c.Session.GetUserID()

	if err := s.guard.CanAccess(ctx, userID, roomID); err != nil {
		audit.LogWithRoom(ctx, audit.ActionJoinDenied, userID, roomID, "join denied")
		switch {
		case errors.Is(err, guard.ErrRoomNotFound):
			return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeNotFound, "Room not found"))
		case errors.Is(err, guard.ErrAccessDenied):
			return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeForbidden, "Not allowed in this room"))
		default:
			return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeInternalError, "Failed to check room access"))
		}
	}

	presence := domain.NewPresenceRecord(userID, c.Session.GetUsername())
	res, ok := s.hub.JoinRoom(c, roomID, presence)
	if !ok {
		return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeInternalError, "Connection not registered"))
	}
	c.Session.SetRoom(roomID)

	// The hub already removed the old membership; peers of the previous
	// room still need to hear the departure.
	if res.PrevRoom != "" {
		s.broadcastDeparture(ctx, c, res.PrevRoom, res.PrevRoomEmptied)
	}

	// Snapshot first, then the join announcement to peers, so the joiner
	// builds its roster before peers start addressing it.
	if err := c.SendMessage(&domain.RoomJoinedMessage{
		Type:         domain.MsgTypeRoomJoined,
		RoomID:       roomID,
		ConnectionID: c.ID,
		Presence:     res.Snapshot,
	}); err != nil {
		return err
	}

	s.hub.BroadcastToRoom(roomID, &domain.UserJoinedMessage{
		Type:         domain.MsgTypeUserJoined,
		RoomID:       roomID,
		ConnectionID: c.ID,
		Presence:     presence,
	}, c.ID)

	if res.FirstMember {
		s.registerRoom(ctx, roomID)
	}

	s.produceEvent(ctx, &kafka.PresenceEvent{
		Type:         kafka.EventRoomJoined,
		RoomID:       roomID,
		UserID:       userID,
		ConnectionID: c.ID,
		Timestamp:    time.Now().UTC(),
	})
	audit.LogWithRoom(ctx, audit.ActionJoinRoom, userID, roomID, "client joined room")
	return nil
}

func (s *collabService) HandleLeaveRoom(ctx context.Context, c *hub.Client, roomID string) error {
	if !c.Session.ClearRoom(roomID) {
		return nil
	}
	s.announceDeparture(ctx, c, roomID)
	audit.LogWithRoom(ctx, audit.ActionLeaveRoom, c.Session.GetUserID(), roomID, "client left room")
	return nil
}

// announceDeparture removes the client from the room and, when it was
// still a member, tells the remaining peers. The membership check makes
// a leave racing a disconnect produce exactly one departure broadcast.
func (s *collabService) announceDeparture(ctx context.Context, c *hub.Client, roomID string) {
	left, emptied := s.hub.LeaveRoom(c.ID, roomID)
	if !left {
		return
	}
	s.broadcastDeparture(ctx, c, roomID, emptied)
}

// broadcastDeparture announces an already-performed membership removal:
// the peer-left event to the remaining members, the registry cleanup when
// the room emptied, and the stream event.
func (s *collabService) broadcastDeparture(ctx context.Context, c *hub.Client, roomID string, emptied bool) {
	s.hub.BroadcastToRoom(roomID, &domain.UserLeftMessage{
		Type:         domain.MsgTypeUserLeft,
		RoomID:       roomID,
		ConnectionID: c.ID,
	}, "")

	if emptied {
		s.deregisterRoom(ctx, roomID)
	}

	s.produceEvent(ctx, &kafka.PresenceEvent{
		Type:         kafka.EventRoomLeft,
		RoomID:       roomID,
		UserID:       c.Session.GetUserID(),
		ConnectionID: c.ID,
		Timestamp:    time.Now().UTC(),
	})
}

func (s *collabService) HandleUpdateCursor(ctx context.Context, c *hub.Client, roomID string, from, to int) error {
	if c.Session.CurrentRoom() != roomID {
		// Stale update from a connection that left or switched rooms.
		return nil
	}

	updated, ok := s.hub.UpdatePresence(roomID, c.ID, func(p *domain.PresenceRecord) {
		p.Cursor = &domain.Cursor{From: from, To: to}
		p.LastUpdated = time.Now()
	})
	if !ok {
		return nil
	}

	return s.hub.BroadcastToRoom(roomID, &domain.CursorUpdateMessage{
		Type:         domain.MsgTypeCursorUpdate,
		RoomID:       roomID,
		ConnectionID: c.ID,
		Presence:     updated,
	}, c.ID)
}

func (s *collabService) HandleUpdateAwareness(ctx context.Context, c *hub.Client, roomID string, awareness json.RawMessage) error {
	if c.Session.CurrentRoom() != roomID {
		return nil
	}

	_, ok := s.hub.UpdatePresence(roomID, c.ID, func(p *domain.PresenceRecord) {
		p.Awareness = awareness
		p.LastUpdated = time.Now()
	})
	if !ok {
		return nil
	}

	return s.hub.BroadcastToRoom(roomID, &domain.AwarenessUpdateMessage{
		Type:         domain.MsgTypeAwarenessUpdate,
		RoomID:       roomID,
		ConnectionID: c.ID,
		Awareness:    awareness,
	}, c.ID)
}

func (s *collabService) HandleDocUpdate(ctx context.Context, c *hub.Client, roomID string, payload json.RawMessage) error {
	if c.Session.CurrentRoom() != roomID {
		return nil
	}

	// Pass-through: the payload is an opaque document-model update and is
	// never inspected or merged here.
	return s.hub.BroadcastToRoom(roomID, &domain.DocUpdateMessage{
		Type:    domain.MsgTypeDocUpdate,
		RoomID:  roomID,
		Payload: payload,
	}, c.ID)
}

func (s *collabService) HandleRequestSync(ctx context.Context, c *hub.Client, roomID string) error {
	if c.Session.CurrentRoom() != roomID {
		return nil
	}

	// Best effort: any peer may answer, nobody has to. A requester alone
	// in the room simply hears nothing and retries client-side.
	return s.hub.BroadcastToRoom(roomID, &domain.SyncRequestedMessage{
		Type:         domain.MsgTypeSyncRequested,
		RoomID:       roomID,
		ConnectionID: c.ID,
	}, c.ID)
}

func (s *collabService) HandleSendSyncData(ctx context.Context, c *hub.Client, targetID string, state json.RawMessage) error {
	if !c.Session.IsAuthenticated() {
		return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeUnauthorized, "Not authenticated"))
	}
	return s.hub.SendToClient(targetID, &domain.SyncDataMessage{
		Type:  domain.MsgTypeSyncData,
		State: state,
	})
}

func (s *collabService) HandleDisconnect(ctx context.Context, c *hub.Client) error {
	// PopRoom and the membership check inside announceDeparture make this
	// safe to run twice for the same connection.
	if roomID := c.Session.PopRoom(); roomID != "" {
		s.announceDeparture(ctx, c, roomID)
		audit.LogWithRoom(ctx, audit.ActionDisconnect, c.Session.GetUserID(), roomID, "client disconnected from room")
	}

	userID, wentOffline := s.hub.UnbindUser(c)
	if wentOffline {
		s.hub.BroadcastToAll(&domain.UserOfflineMessage{
			Type:     domain.MsgTypeUserOffline,
			UserID:   userID,
			LastSeen: time.Now().UTC(),
		}, c.ID)
		s.produceEvent(ctx, &kafka.PresenceEvent{
			Type:         kafka.EventUserOffline,
			UserID:       userID,
			ConnectionID: c.ID,
			Timestamp:    time.Now().UTC(),
		})
		audit.Log(ctx, audit.ActionOffline, userID, "user offline")
	}
	return nil
}

func (s *collabService) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	if s.registry != nil {
		if err := s.registry.StartHeartbeat(ctx); err != nil {
			return fmt.Errorf("failed to start registry heartbeat: %w", err)
		}
	}

	l := pkglog.L()
	l.Info().Msg("collab service started")
	return nil
}

func (s *collabService) Stop() error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.registry != nil {
		s.registry.StopHeartbeat()
	}
	if s.producer != nil {
		if err := s.producer.Close(); err != nil {
			l := pkglog.L()
			l.Error().Err(err).Msg("failed to close kafka producer")
		}
	}
	return nil
}

// produceEvent publishes a presence event when a producer is configured.
// The event stream is non-critical; failures are logged and dropped.
func (s *collabService) produceEvent(ctx context.Context, event *kafka.PresenceEvent) {
	if s.producer == nil {
		return
	}
	if err := s.producer.ProduceEvent(ctx, event); err != nil {
		l := pkglog.L()
		l.Error().Err(err).Str("event_type", event.Type).Msg("failed to produce presence event")
	}
}

func (s *collabService) registerRoom(ctx context.Context, roomID string) {
	if s.registry == nil {
		return
	}
	if err := s.registry.RegisterRoom(ctx, roomID); err != nil {
		l := pkglog.L()
		l.Error().Err(err).Str(pkglog.FieldRoomID, roomID).Msg("failed to register room")
	}
}

func (s *collabService) deregisterRoom(ctx context.Context, roomID string) {
	if s.registry == nil {
		return
	}
	if err := s.registry.DeregisterRoom(ctx, roomID); err != nil {
		l := pkglog.L()
		l.Error().Err(err).Str(pkglog.FieldRoomID, roomID).Msg("failed to deregister room")
	}
}
