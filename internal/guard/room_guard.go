package guard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Room represents room information from the Room Service.
type Room struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	OwnerID       string    `json:"owner_id"`
	Collaborators []string  `json:"collaborators"`
	Status        string    `json:"status"` // "active", "archived", "deleted"
	CreatedAt     time.Time `json:"created_at"`
}

// RoomResponse represents the API response wrapper.
type RoomResponse struct {
	Success bool   `json:"success"`
	Data    *Room  `json:"data"`
	Error   string `json:"error,omitempty"`
}

// RoomGuard authorizes joins against the Room Service over HTTP. Lookups
// are cached with a short TTL so a burst of joins into the same room does
// not hammer the service.
type RoomGuard struct {
	baseURL    string
	httpClient *http.Client
	cache      map[string]*cachedRoom
	cacheTTL   time.Duration
	mu         sync.RWMutex
}

type cachedRoom struct {
	room      *Room
	expiresAt time.Time
}

// NewRoomGuard creates a guard backed by the Room Service at baseURL.
func NewRoomGuard(baseURL string, cacheTTL time.Duration) *RoomGuard {
	return &RoomGuard{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache:    make(map[string]*cachedRoom),
		cacheTTL: cacheTTL,
	}
}

// CanAccess reports whether the user may enter the room: the room must be
// active and the user must be its owner or on its collaborator list. A
// soft-deleted or archived room is reported as not found, same as a
// missing one.
func (g *RoomGuard) CanAccess(ctx context.Context, userID, roomID string) error {
	room, err := g.getRoom(ctx, roomID)
	if err != nil {
		return err
	}

	if room.Status != "active" {
		return ErrRoomNotFound
	}

	if room.OwnerID == userID {
		return nil
	}
	for _, id := range room.Collaborators {
		if id == userID {
			return nil
		}
	}
	return ErrAccessDenied
}

func (g *RoomGuard) getRoom(ctx context.Context, roomID string) (*Room, error) {
	if room := g.getFromCache(roomID); room != nil {
		return room, nil
	}

	url := fmt.Sprintf("%s/api/v1/rooms/%s", g.baseURL, roomID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch room: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrRoomNotFound
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("room service returned status: %d", resp.StatusCode)
	}

	var roomResp RoomResponse
	if err := json.NewDecoder(resp.Body).Decode(&roomResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if !roomResp.Success || roomResp.Data == nil {
		return nil, fmt.Errorf("room service error: %s", roomResp.Error)
	}

	g.addToCache(roomID, roomResp.Data)

	return roomResp.Data, nil
}

// InvalidateCache removes a room from the cache.
func (g *RoomGuard) InvalidateCache(roomID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.cache, roomID)
}

func (g *RoomGuard) getFromCache(roomID string) *Room {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if cached, ok := g.cache[roomID]; ok {
		if time.Now().Before(cached.expiresAt) {
			return cached.room
		}
	}
	return nil
}

func (g *RoomGuard) addToCache(roomID string, room *Room) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.cache[roomID] = &cachedRoom{
		room:      room,
		expiresAt: time.Now().Add(g.cacheTTL),
	}
}
