package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fitlo/fitlo/internal/logger"
	"github.com/fitlo/fitlo/internal/models"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := New(logger.NewDiscard())
	h.Start(ctx)
	return h
}

func newServer(t *testing.T, h *Hub) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeWs(w, r, r.URL.Query().Get("competition"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// dial connects to the test server and waits for the subscription ack
func dial(t *testing.T, srv *httptest.Server, competition string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?competition=" + competition
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	msg := readMessage(t, conn)
	if msg.Type != TypeSubscribed {
		t.Fatalf("expected subscribed message, got %q", msg.Type)
	}
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) models.WSMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg models.WSMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return msg
}

func TestHub_SubscribeAck(t *testing.T) {
	h := startHub(t)
	srv := newServer(t, h)

	dial(t, srv, "spring")

	deadline := time.Now().Add(time.Second)
	for h.ClientCount("spring") != 1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := h.ClientCount("spring"); got != 1 {
		t.Errorf("expected 1 client, got %d", got)
	}
}

func TestHub_BroadcastOnlyToCompetition(t *testing.T) {
	h := startHub(t)
	srv := newServer(t, h)

	spring := dial(t, srv, "spring")
	summer := dial(t, srv, "summer")

	h.BroadcastLeaderboardUpdated("spring")
	h.BroadcastHeatUpdated("summer", 7)

	msg := readMessage(t, spring)
	if msg.Type != TypeLeaderboardUpdated {
		t.Errorf("expected leaderboard_updated, got %q", msg.Type)
	}
	payload, _ := msg.Payload.(map[string]interface{})
	if payload["competition"] != "spring" {
		t.Errorf("unexpected payload %v", msg.Payload)
	}

	msg = readMessage(t, summer)
	if msg.Type != TypeHeatUpdated {
		t.Errorf("expected heat_updated, got %q", msg.Type)
	}
	payload, _ = msg.Payload.(map[string]interface{})
	if payload["heat_id"] != float64(7) {
		t.Errorf("unexpected payload %v", msg.Payload)
	}

	// spring must not see summer's heat update
	spring.SetReadDeadline(time.Now().Add(150 * time.Millisecond))
	var extra models.WSMessage
	if err := spring.ReadJSON(&extra); err == nil {
		t.Errorf("unexpected message for other competition: %+v", extra)
	}
}

func TestHub_UnregisterOnClose(t *testing.T) {
	h := startHub(t)
	srv := newServer(t, h)

	conn := dial(t, srv, "spring")
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount("spring") != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := h.ClientCount("spring"); got != 0 {
		t.Errorf("expected client to be unregistered, got %d", got)
	}
}

func TestHub_BroadcastWithoutRunningLoopDoesNotBlock(t *testing.T) {
	h := New(logger.NewDiscard())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 300; i++ {
			h.BroadcastLeaderboardUpdated("spring")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked without a running hub")
	}
}

func TestHub_StopDisconnectsClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := New(logger.NewDiscard())
	h.Start(ctx)
	srv := newServer(t, h)

	conn := dial(t, srv, "spring")
	cancel()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	if got := h.ClientCount("spring"); got != 0 {
		t.Errorf("expected no clients after stop, got %d", got)
	}
}
