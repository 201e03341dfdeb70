package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/weiawesome/collab-service/internal/domain"
	"github.com/weiawesome/collab-service/internal/hub"
)

// HTTPHandler serves the read-only presence API.
type HTTPHandler struct {
	hub *hub.Hub
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(h *hub.Hub) *HTTPHandler {
	return &HTTPHandler{hub: h}
}

// PresenceResponse is the API response for presence queries.
type PresenceResponse struct {
	RoomID  string                  `json:"room_id"`
	Count   int                     `json:"count"`
	Members []domain.MemberPresence `json:"members"`
}

// GetPresence handles GET /api/v1/rooms/{room_id}/presence
func (h *HTTPHandler) GetPresence(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	roomID := vars["room_id"]

	if roomID == "" {
		http.Error(w, "room_id is required", http.StatusBadRequest)
		return
	}

	members := h.hub.Members(roomID)
	response := PresenceResponse{
		RoomID:  roomID,
		Count:   len(members),
		Members: members,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// Health handles GET /health
func (h *HTTPHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// RegisterRoutes registers the HTTP API routes.
func (h *HTTPHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/rooms/{room_id}/presence", h.GetPresence).Methods(http.MethodGet)
}
