package hub

import (
	"encoding/json"
	"sync"

	"github.com/weiawesome/collab-service/internal/config"
	"github.com/weiawesome/collab-service/internal/domain"
	pkglog "github.com/weiawesome/collab-service/pkg/log"
)

// roomMember is one connection's seat in a room.
type roomMember struct {
	client   *Client
	presence domain.PresenceRecord
}

// Hub owns all shared connection state: the connection registry, the room
// membership table with per-member presence, and the user-connection index
// used for per-user fan-out. One instance per process; all methods are safe
// for concurrent use.
//
// Invariants held under h.mu:
//   - a connection is a member of at most one room (roomOf is the source
//     of truth, rooms mirrors it)
//   - rooms never contains an empty member set
//   - every room member and every user-index entry is in clients
type Hub struct {
	clients   map[string]*Client                // clientID -> client
	rooms     map[string]map[string]*roomMember // roomID -> clientID -> member
	roomOf    map[string]string                 // clientID -> roomID
	userConns map[string]map[string]*Client     // userID -> clientID -> client
	userOf    map[string]string                 // clientID -> userID
	mu        sync.RWMutex
	config    config.WebSocketConfig
}

// New creates a new Hub.
func New(cfg config.WebSocketConfig) *Hub {
	return &Hub{
		clients:   make(map[string]*Client),
		rooms:     make(map[string]map[string]*roomMember),
		roomOf:    make(map[string]string),
		userConns: make(map[string]map[string]*Client),
		userOf:    make(map[string]string),
		config:    cfg,
	}
}

// Register adds a client to the registry. Registering the same ID twice
// is a no-op.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.ID]; !ok {
		h.clients[c.ID] = c
	}
	h.mu.Unlock()
	l := pkglog.L()
	l.Debug().Str(pkglog.FieldConnectionID, c.ID).Msg("client registered")
}

// Unregister removes a client and cascades: any residual room membership
// is dropped (with empty-room GC) and the user index entry is removed.
// Returns the user ID that was bound, or "". Safe to call twice; the
// second call finds nothing to remove.
func (h *Hub) Unregister(c *Client) string {
	h.mu.Lock()
	userID := ""
	if _, ok := h.clients[c.ID]; ok {
		if roomID, inRoom := h.roomOf[c.ID]; inRoom {
			h.removeMemberLocked(roomID, c.ID)
		}
		userID, _ = h.unbindLocked(c.ID)
		delete(h.clients, c.ID)
		c.closeOnce.Do(func() { close(c.Send) })
	}
	h.mu.Unlock()
	l := pkglog.L()
	l.Debug().Str(pkglog.FieldConnectionID, c.ID).Msg("client unregistered")
	return userID
}

// IsRegistered reports whether a connection is in the registry.
func (h *Hub) IsRegistered(clientID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[clientID]
	return ok
}

// BindUser adds the client to the user-connection index. Returns true when
// this is the user's first open connection (the user just came online).
// Rebinding a connection to a different user drops the old index entry
// first; rebinding to the same user is a no-op.
func (h *Hub) BindUser(c *Client, userID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.ID]; !ok {
		return false
	}

	if cur, bound := h.userOf[c.ID]; bound {
		if cur == userID {
			return false
		}
		h.unbindLocked(c.ID)
	}

	conns, ok := h.userConns[userID]
	if !ok {
		conns = make(map[string]*Client)
		h.userConns[userID] = conns
	}
	first := len(conns) == 0
	conns[c.ID] = c
	h.userOf[c.ID] = userID
	return first
}

// UnbindUser removes the client from the user-connection index. Returns the
// user ID and true when this was the user's last connection (the user just
// went offline). Idempotent: a second call returns ("", false).
func (h *Hub) UnbindUser(c *Client) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.unbindLocked(c.ID)
}

func (h *Hub) unbindLocked(clientID string) (string, bool) {
	userID, ok := h.userOf[clientID]
	if !ok {
		return "", false
	}
	delete(h.userOf, clientID)

	conns := h.userConns[userID]
	delete(conns, clientID)
	if len(conns) == 0 {
		delete(h.userConns, userID)
		return userID, true
	}
	return userID, false
}

// IsUserOnline reports whether the user has at least one open connection.
func (h *Hub) IsUserOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userConns[userID]) > 0
}

// JoinResult reports the effects of a JoinRoom call, computed inside its
// critical section so callers never re-derive them from racing reads.
type JoinResult struct {
	// Snapshot holds the peers already in the room, the joiner excluded.
	Snapshot []domain.MemberPresence
	// PrevRoom is the room implicitly left, "" if none.
	PrevRoom string
	// PrevRoomEmptied reports whether the implicit leave emptied PrevRoom.
	PrevRoomEmptied bool
	// FirstMember reports whether the joiner is the room's first member.
	FirstMember bool
}

// JoinRoom makes the client a member of roomID with the given presence.
// If the client is in another room it is removed from there first, all in
// one critical section, so no interleaving observer sees it in both.
// Returns false when the client is not registered.
func (h *Hub) JoinRoom(c *Client, roomID string, presence domain.PresenceRecord) (JoinResult, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.ID]; !ok {
		return JoinResult{}, false
	}

	var res JoinResult
	if cur, inRoom := h.roomOf[c.ID]; inRoom && cur != roomID {
		res.PrevRoom = cur
		res.PrevRoomEmptied = h.removeMemberLocked(cur, c.ID)
	}

	members, ok := h.rooms[roomID]
	if !ok {
		members = make(map[string]*roomMember)
		h.rooms[roomID] = members
	}
	res.FirstMember = len(members) == 0
	members[c.ID] = &roomMember{client: c, presence: presence}
	h.roomOf[c.ID] = roomID

	res.Snapshot = make([]domain.MemberPresence, 0, len(members)-1)
	for id, m := range members {
		if id == c.ID {
			continue
		}
		res.Snapshot = append(res.Snapshot, domain.MemberPresence{ConnectionID: id, Presence: m.presence})
	}

	l := pkglog.L()
	l.Info().Str(pkglog.FieldConnectionID, c.ID).Str(pkglog.FieldRoomID, roomID).Msg("client joined room")
	return res, true
}

// LeaveRoom removes the client from roomID. left is false when the client
// was not a member, so callers can skip the departure broadcast on the
// second of two racing cleanups; emptied reports whether the room was
// garbage-collected by this leave.
func (h *Hub) LeaveRoom(clientID, roomID string) (left, emptied bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.roomOf[clientID] != roomID {
		return false, false
	}
	emptied = h.removeMemberLocked(roomID, clientID)

	l := pkglog.L()
	l.Info().Str(pkglog.FieldConnectionID, clientID).Str(pkglog.FieldRoomID, roomID).Msg("client left room")
	return true, emptied
}

// removeMemberLocked drops the membership entry and garbage-collects the
// room when it empties, reporting whether it did. Caller holds h.mu.
func (h *Hub) removeMemberLocked(roomID, clientID string) bool {
	emptied := false
	if members, ok := h.rooms[roomID]; ok {
		delete(members, clientID)
		if len(members) == 0 {
			delete(h.rooms, roomID)
			emptied = true
		}
	}
	delete(h.roomOf, clientID)
	return emptied
}

// UpdatePresence applies mutate to the client's presence in roomID and
// returns the updated copy. Returns false without calling mutate when the
// client is not currently a member of that room, which silently drops
// stale updates from connections that already left or switched rooms.
func (h *Hub) UpdatePresence(roomID, clientID string, mutate func(*domain.PresenceRecord)) (domain.PresenceRecord, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[roomID]
	if !ok {
		return domain.PresenceRecord{}, false
	}
	m, ok := members[clientID]
	if !ok {
		return domain.PresenceRecord{}, false
	}

	mutate(&m.presence)
	return m.presence, true
}

// Members returns a presence snapshot of the room. A room nobody is in
// yields an empty slice.
func (h *Hub) Members(roomID string) []domain.MemberPresence {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members := h.rooms[roomID]
	snapshot := make([]domain.MemberPresence, 0, len(members))
	for id, m := range members {
		snapshot = append(snapshot, domain.MemberPresence{ConnectionID: id, Presence: m.presence})
	}
	return snapshot
}

// MemberCount returns the number of connections in the room.
func (h *Hub) MemberCount(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// RoomCount returns the number of rooms with at least one member.
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// BroadcastToRoom sends a message to every member of the room, skipping
// the excluded connection (pass "" to reach everyone). Delivery to each
// member is non-blocking; a member whose send buffer is full is evicted
// rather than allowed to stall the others.
func (h *Hub) BroadcastToRoom(roomID string, message interface{}, exclude string) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.mu.RLock()
	for clientID, m := range h.rooms[roomID] {
		if clientID == exclude {
			continue
		}
		select {
		case m.client.Send <- data:
		default:
			// Client's send buffer is full
			go h.evict(m.client)
		}
	}
	h.mu.RUnlock()
	return nil
}

// SendToClient sends a message to a single connection. Unknown connection
// IDs are ignored; presence traffic is fire-and-forget.
func (h *Hub) SendToClient(clientID string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.mu.RLock()
	c, ok := h.clients[clientID]
	h.mu.RUnlock()
	if !ok {
		return nil
	}

	select {
	case c.Send <- data:
	default:
		go h.evict(c)
	}
	return nil
}

// SendToUser sends a message to every connection of a user, whatever room
// each is viewing.
func (h *Hub) SendToUser(userID string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.mu.RLock()
	for _, c := range h.userConns[userID] {
		select {
		case c.Send <- data:
		default:
			go h.evict(c)
		}
	}
	h.mu.RUnlock()
	return nil
}

// BroadcastToAll sends a message to every registered connection except the
// excluded one. Used for the global online/offline roster signals.
func (h *Hub) BroadcastToAll(message interface{}, exclude string) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.mu.RLock()
	for clientID, c := range h.clients {
		if clientID == exclude {
			continue
		}
		select {
		case c.Send <- data:
		default:
			go h.evict(c)
		}
	}
	h.mu.RUnlock()
	return nil
}

// evict closes the transport of a client whose send buffer is full. The
// read pump observes the close and runs the normal disconnect path, so
// peers still hear the departure and roster broadcasts.
func (h *Hub) evict(c *Client) {
	if c.Conn != nil {
		c.Conn.Close()
	}
}
