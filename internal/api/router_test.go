package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/websocket"

	"chatd/internal/broker"
	"chatd/internal/config"
	"chatd/internal/directory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{}
	cfg.Server.Name = "chatd-test"
	hub := broker.NewHub(directory.New())
	return NewServer(cfg, hub, broker.NewDispatcher(hub))
}

func doGet(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoint(t *testing.T) {
	rr := doGet(t, newTestServer(t), "/health")

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
	if body["sessions"] != float64(0) || body["online"] != float64(0) {
		t.Errorf("unexpected gauges: %v", body)
	}
}

func TestServerInfoEndpoint(t *testing.T) {
	rr := doGet(t, newTestServer(t), "/api/v1/server/info")

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var info ServerInfoResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &info); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if info.Name != "chatd-test" {
		t.Errorf("name = %q, want chatd-test", info.Name)
	}
	if info.MaxTransferBytes != 100*1024*1024 {
		t.Errorf("maxTransferBytes = %d", info.MaxTransferBytes)
	}
	if info.MaxInlineFileBytes != 200*1024 {
		t.Errorf("maxInlineFileBytes = %d", info.MaxInlineFileBytes)
	}
}

func TestStatsEndpoint(t *testing.T) {
	dir := directory.New()
	dir.Register("alice")
	dir.Register("bob")
	hub := broker.NewHub(dir)
	cfg := &config.Config{}
	srv := NewServer(cfg, hub, broker.NewDispatcher(hub))

	rr := doGet(t, srv, "/api/v1/stats")

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var stats StatsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if stats.Users != 2 || stats.Groups != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestSecurityHeaders(t *testing.T) {
	rr := doGet(t, newTestServer(t), "/health")

	if got := rr.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rr.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}

func TestUnknownRoute(t *testing.T) {
	rr := doGet(t, newTestServer(t), "/nope")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

// The gateway speaks the exact TCP frame protocol, one JSON document per
// text message.
func TestWebSocketGateway(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t))
	defer ts.Close()

	url := "ws" + ts.URL[len("http"):] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing gateway: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"action":"register","username":"wsuser"}`)); err != nil {
		t.Fatalf("writing frame: %v", err)
	}

	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("reading frame: %v", err)
	}
	var reply map[string]any
	if err := json.Unmarshal(msg, &reply); err != nil {
		t.Fatalf("decoding reply %q: %v", msg, err)
	}
	if reply["success"] != true || reply["message"] != "Registration successful" {
		t.Fatalf("unexpected reply: %v", reply)
	}
}
