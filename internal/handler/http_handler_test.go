package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/weiawesome/collab-service/internal/config"
	"github.com/weiawesome/collab-service/internal/domain"
	"github.com/weiawesome/collab-service/internal/hub"
)

func newTestRouter(t *testing.T) (*mux.Router, *hub.Hub) {
	t.Helper()
	h := hub.New(config.WebSocketConfig{
		PingInterval:   30 * time.Second,
		PongWait:       60 * time.Second,
		WriteWait:      10 * time.Second,
		MaxMessageSize: 65536,
	})
	router := mux.NewRouter()
	NewHTTPHandler(h).RegisterRoutes(router)
	return router, h
}

func TestGetPresence(t *testing.T) {
	router, h := newTestRouter(t)

	c := hub.NewClient("conn-a", h, nil)
	h.Register(c)
	if _, ok := h.JoinRoom(c, "doc_1", domain.NewPresenceRecord("user-a", "Alice")); !ok {
		t.Fatal("join failed")
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/rooms/doc_1/presence", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp PresenceResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.RoomID != "doc_1" || resp.Count != 1 {
		t.Errorf("response = %+v, want doc_1 with one member", resp)
	}
	if len(resp.Members) != 1 || resp.Members[0].ConnectionID != "conn-a" {
		t.Errorf("members = %+v, want conn-a", resp.Members)
	}
}

func TestGetPresence_EmptyRoom(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/rooms/doc_none/presence", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp PresenceResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 0 {
		t.Errorf("count = %d, want 0", resp.Count)
	}
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
