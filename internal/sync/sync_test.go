package sync

import (
	"bufio"
	"context"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"streamhub/pkg/models"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestTCPClientReceivesEvents(t *testing.T) {
	hub := NewHub()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewServer("", hub).Serve(ctx, ln) }()

	conn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	r := bufio.NewReader(conn)

	line, err := r.ReadString('\n')
	if err != nil || !strings.Contains(line, `"welcome"`) {
		t.Fatalf("welcome = %q, %v", line, err)
	}
	waitFor(t, func() bool { return hub.Stats().TCPClients == 1 })

	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	hub.Publish(WatchUpdate(models.WatchEvent{ProfileID: "p1", TitleID: "t1", PositionSec: 42, UpdatedAt: at}))

	line, err = r.ReadString('\n')
	if err != nil {
		t.Fatal(err)
	}
	var ev Event
	if err := json.Unmarshal([]byte(line), &ev); err != nil {
		t.Fatalf("decode %q: %v", line, err)
	}
	if ev.Type != TypeWatchUpdate || ev.TitleID != "t1" || ev.PositionSec != 42 {
		t.Fatalf("event = %+v", ev)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not stop")
	}
}

func TestWSProfileFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	r := gin.New()
	r.GET("/ws", WSHandler(hub))
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?profileId=p1"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer ws.Close()

	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, msg, err := ws.ReadMessage(); err != nil || !strings.Contains(string(msg), "websocket") {
		t.Fatalf("welcome = %q, %v", msg, err)
	}
	waitFor(t, func() bool { return hub.Stats().WSClients == 1 })

	now := time.Now().UTC()
	hub.Publish(LikeUpdate("p2", "other", true, now))
	hub.Publish(LikeUpdate("p1", "mine", false, now))

	_, msg, err := ws.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	var ev Event
	if err := json.Unmarshal(msg, &ev); err != nil {
		t.Fatal(err)
	}
	if ev.TitleID != "mine" || ev.Liked == nil || *ev.Liked {
		t.Fatalf("event = %+v", ev)
	}
}
