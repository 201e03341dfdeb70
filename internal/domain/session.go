package domain

import (
	"sync"
	"time"
)

// Session holds the per-connection state that outlives a single message:
// the authenticated identity and the room the connection is currently in.
type Session struct {
	ID            string
	UserID        string
	Username      string
	Email         string
	Roles         []string
	Authenticated bool
	CurrentRoomID string
	CreatedAt     time.Time
	LastActiveAt  time.Time
	mu            sync.RWMutex
}

// NewSession creates a new session for a connection.
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		CreatedAt:    now,
		LastActiveAt: now,
	}
}

// Authenticate binds the verified identity to the session.
func (s *Session) Authenticate(userID, username, email string, roles []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UserID = userID
	s.Username = username
	s.Email = email
	s.Roles = roles
	s.Authenticated = true
	s.LastActiveAt = time.Now()
}

// IsAuthenticated reports whether an identity is bound.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Authenticated
}

// SetRoom records the room the connection is a member of.
func (s *Session) SetRoom(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CurrentRoomID = roomID
	s.LastActiveAt = time.Now()
}

// ClearRoom clears the current room only if it matches roomID.
// Returns false when the session is in a different room (or none),
// which makes a racing leave/disconnect pair settle on one winner.
func (s *Session) ClearRoom(roomID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CurrentRoomID != roomID {
		return false
	}
	s.CurrentRoomID = ""
	s.LastActiveAt = time.Now()
	return true
}

// PopRoom atomically returns and clears the current room.
// A second call returns "", so disconnect cleanup runs at most once.
func (s *Session) PopRoom() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	roomID := s.CurrentRoomID
	s.CurrentRoomID = ""
	return roomID
}

// CurrentRoom returns the current room ID, or "" when not in a room.
func (s *Session) CurrentRoom() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.CurrentRoomID
}

// GetUserID returns the bound user ID.
func (s *Session) GetUserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.UserID
}

// GetUsername returns the bound username.
func (s *Session) GetUsername() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Username
}

// UpdateActivity updates the last active timestamp.
func (s *Session) UpdateActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastActiveAt = time.Now()
}
