package guard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newRoomServer(t *testing.T, rooms map[string]*Room) (*httptest.Server, *int) {
	t.Helper()
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		parts := strings.Split(r.URL.Path, "/")
		roomID := parts[len(parts)-1]

		room, ok := rooms[roomID]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(RoomResponse{Success: true, Data: room})
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestRoomGuard_CanAccess(t *testing.T) {
	rooms := map[string]*Room{
		"doc_1": {
			ID:            "doc_1",
			OwnerID:       "owner-1",
			Collaborators: []string{"collab-1", "collab-2"},
			Status:        "active",
		},
		"doc_archived": {
			ID:      "doc_archived",
			OwnerID: "owner-1",
			Status:  "archived",
		},
	}
	srv, _ := newRoomServer(t, rooms)

	tests := []struct {
		name    string
		userID  string
		roomID  string
		wantErr error
	}{
		{name: "owner allowed", userID: "owner-1", roomID: "doc_1", wantErr: nil},
		{name: "collaborator allowed", userID: "collab-2", roomID: "doc_1", wantErr: nil},
		{name: "stranger denied", userID: "stranger", roomID: "doc_1", wantErr: ErrAccessDenied},
		{name: "missing room", userID: "owner-1", roomID: "doc_missing", wantErr: ErrRoomNotFound},
		{name: "archived room treated as missing", userID: "owner-1", roomID: "doc_archived", wantErr: ErrRoomNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewRoomGuard(srv.URL, time.Minute)
			err := g.CanAccess(context.Background(), tt.userID, tt.roomID)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("CanAccess() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CanAccess() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRoomGuard_CachesLookups(t *testing.T) {
	rooms := map[string]*Room{
		"doc_1": {ID: "doc_1", OwnerID: "owner-1", Status: "active"},
	}
	srv, hits := newRoomServer(t, rooms)
	g := NewRoomGuard(srv.URL, time.Minute)

	for i := 0; i < 3; i++ {
		if err := g.CanAccess(context.Background(), "owner-1", "doc_1"); err != nil {
			t.Fatalf("CanAccess() unexpected error: %v", err)
		}
	}

	if *hits != 1 {
		t.Errorf("room service hit %d times, want 1 (cached)", *hits)
	}

	g.InvalidateCache("doc_1")
	if err := g.CanAccess(context.Background(), "owner-1", "doc_1"); err != nil {
		t.Fatalf("CanAccess() unexpected error: %v", err)
	}
	if *hits != 2 {
		t.Errorf("room service hit %d times after invalidate, want 2", *hits)
	}
}

func TestRoomGuard_ServiceUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	g := NewRoomGuard(srv.URL, time.Minute)
	err := g.CanAccess(context.Background(), "owner-1", "doc_1")
	if err == nil {
		t.Fatal("CanAccess() should fail when the room service errors")
	}
	if errors.Is(err, ErrRoomNotFound) || errors.Is(err, ErrAccessDenied) {
		t.Errorf("CanAccess() error = %v, want a transport error", err)
	}
}
