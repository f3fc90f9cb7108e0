package infra

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// mockHandler implements StreamHandler for testing.
type mockHandler struct {
	url             string
	onConnectCalls  int32
	onMessageCalls  int32
	disconnectCalls int32
}

func (m *mockHandler) URL() string { return m.url }
func (m *mockHandler) ID() string  { return "MOCK" }
func (m *mockHandler) OnConnect(ctx context.Context, conn *websocket.Conn) error {
	atomic.AddInt32(&m.onConnectCalls, 1)
	return nil
}
func (m *mockHandler) OnMessage(ctx context.Context, msg []byte) {
	atomic.AddInt32(&m.onMessageCalls, 1)
}
func (m *mockHandler) OnPing(ctx context.Context, conn *websocket.Conn) error {
	return nil
}
func (m *mockHandler) OnDisconnect() {
	atomic.AddInt32(&m.disconnectCalls, 1)
}

// mockWSServer upgrades each request and hands the connection off.
func mockWSServer(t *testing.T, handler func(*websocket.Conn)) *httptest.Server {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer conn.Close()
		handler(conn)
	}))
}

func httpToWS(url string) string {
	return strings.Replace(url, "http://", "ws://", 1)
}

func TestWSWorker_ConnectAndReceive(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"test"}`))
		time.Sleep(100 * time.Millisecond)
	})
	defer server.Close()

	handler := &mockHandler{url: httpToWS(server.URL)}
	worker := NewWSWorker(handler)
	worker.ReadTimeout = 500 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	worker.Start(ctx)
	time.Sleep(200 * time.Millisecond)
	worker.Stop()

	if atomic.LoadInt32(&handler.onConnectCalls) == 0 {
		t.Error("OnConnect never called")
	}
	if atomic.LoadInt32(&handler.onMessageCalls) == 0 {
		t.Error("OnMessage never called")
	}
}

func TestWSWorker_DisconnectNotifiesHandler(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		// Drop the connection immediately after accepting it.
	})
	defer server.Close()

	handler := &mockHandler{url: httpToWS(server.URL)}
	worker := NewWSWorker(handler)
	worker.ReadTimeout = 200 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if atomic.LoadInt32(&handler.disconnectCalls) > 0 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	worker.Stop()

	if atomic.LoadInt32(&handler.disconnectCalls) == 0 {
		t.Error("OnDisconnect never called after server hangup")
	}
}

func TestWSWorker_StopIsIdempotentWithoutStart(t *testing.T) {
	handler := &mockHandler{url: "ws://127.0.0.1:0"}
	worker := NewWSWorker(handler)
	// Must not panic with no prior Start.
	worker.close()
}
