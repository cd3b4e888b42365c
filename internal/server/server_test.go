package server

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wirebound/wirebound/internal/protocol"
	"github.com/wirebound/wirebound/internal/session"
	"github.com/wirebound/wirebound/internal/testutil/testlog"
	"github.com/wirebound/wirebound/internal/transport/ws"
)

func startServer(t *testing.T) (*httptest.Server, session.Config) {
	t.Helper()
	cfg := session.DefaultConfig()

	srv, err := New("test-server", cfg)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(hs.Close)

	host, portStr, err := net.SplitHostPort(strings.TrimPrefix(hs.URL, "http://"))
	if err != nil {
		t.Fatalf("split addr: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parse port: %v", err)
	}
	cfg.Host = host
	cfg.Port = port
	return hs, cfg
}

func TestHealthAndReadyRoutes(t *testing.T) {
	testlog.Start(t)
	hs, _ := startServer(t)

	for _, path := range []string{"/healthz", "/ready"} {
		resp, err := http.Get(hs.URL + path)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		var body map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s status=%d", path, resp.StatusCode)
		}
		if body["component"] != "test-server" {
			t.Fatalf("%s component=%v", path, body["component"])
		}
	}
}

func TestMetricsRoute(t *testing.T) {
	testlog.Start(t)
	hs, _ := startServer(t)

	resp, err := http.Get(hs.URL + "/metrics")
	if err != nil {
		t.Fatalf("get /metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
}

func TestSocketGreetsAndEchoes(t *testing.T) {
	testlog.Start(t)
	hs, _ := startServer(t)

	wsURL := "ws" + strings.TrimPrefix(hs.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	_, frame, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read greeting: %v", err)
	}
	hello := protocol.DecodeMessage(frame)
	if hello.Urgency != protocol.Normal || hello.Text() != "connected" {
		t.Fatalf("greeting=%q urgency=%q", hello.Text(), hello.Urgency)
	}

	out, err := protocol.EncodeMessage(protocol.NewMessage(protocol.Critical, []byte("link degraded")))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, out); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, frame, err = conn.ReadMessage()
	if err != nil {
		t.Fatalf("read echo: %v", err)
	}
	echo := protocol.DecodeMessage(frame)
	if echo.Urgency != protocol.Critical {
		t.Fatalf("echo urgency=%q, want critical", echo.Urgency)
	}
	if echo.Text() != "link degraded" {
		t.Fatalf("echo payload=%q", echo.Text())
	}
}

func TestSessionAgainstServer(t *testing.T) {
	testlog.Start(t)
	_, cfg := startServer(t)

	dialer, err := ws.NewDialer(cfg)
	if err != nil {
		t.Fatalf("new dialer: %v", err)
	}

	received := make(chan protocol.Message, 16)
	handler := protocol.HandlerFuncs{
		Normal: func(msg protocol.Message) { received <- msg },
		Urgent: func(msg protocol.Message) { received <- msg },
	}
	s := session.New("test-client", cfg, dialer, handler)

	if err := s.Start([]byte("hello server")); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Greeting first, then the echo of the initial payload.
	want := []string{"connected", "hello server"}
	for _, expect := range want {
		select {
		case msg := <-received:
			if msg.Text() != expect {
				t.Fatalf("payload=%q, want %q", msg.Text(), expect)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %q", expect)
		}
	}

	s.Stop()
	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for shutdown")
	}
	if got := s.State(); got != session.StateClosed {
		t.Fatalf("state=%q, want closed", got)
	}
}
