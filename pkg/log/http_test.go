package log

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

func TestHTTPMiddleware_RecordsStatusAndRequestID(t *testing.T) {
	mw := HTTPMiddleware(New(Config{Level: "disabled"}))
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}
	if rec.Header().Get(headerRequestID) == "" {
		t.Error("request id header not set")
	}
}

func TestHTTPMiddleware_PropagatesRequestID(t *testing.T) {
	mw := HTTPMiddleware(New(Config{Level: "disabled"}))
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
	req.Header.Set(headerRequestID, "req-123")
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get(headerRequestID); got != "req-123" {
		t.Errorf("request id = %q, want req-123", got)
	}
}

// WebSocket routes run through the same middleware, so the wrapped
// response writer must still support hijacking the connection.
func TestHTTPMiddleware_WebSocketUpgrade(t *testing.T) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	mw := HTTPMiddleware(New(Config{Level: "disabled"}))
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		conn.Close()
	}))

	server := httptest.NewServer(handler)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Errorf("status = %d, want 101", resp.StatusCode)
	}
}
