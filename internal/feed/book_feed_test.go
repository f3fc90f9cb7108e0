package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestWireLevel_Shapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		px   float64
		sz   float64
		ok   bool
	}{
		{"Tagged Strings", `{"px":"100.5","sz":"2"}`, 100.5, 2, true},
		{"Tagged Numbers", `{"px":100.5,"sz":2}`, 100.5, 2, true},
		{"Positional Strings", `["100.5","2"]`, 100.5, 2, true},
		{"Positional Numbers", `[100.5,2]`, 100.5, 2, true},
		{"Positional With Count", `["100.5","2",3]`, 100.5, 2, true},
		{"Positional Short", `["100.5"]`, 0, 0, false},
		{"Scalar", `42`, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l wireLevel
			err := json.Unmarshal([]byte(tt.raw), &l)
			if tt.ok && err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if l.Px != tt.px || l.Sz != tt.sz {
				t.Errorf("got (%v, %v); want (%v, %v)", l.Px, l.Sz, tt.px, tt.sz)
			}
		})
	}
}

func TestBookFeed_OnMessage(t *testing.T) {
	f := New("@142", "ws://unused")

	t.Run("Full Update Replaces Both Sides", func(t *testing.T) {
		f.OnMessage(context.Background(), []byte(
			`{"channel":"l2Book","data":{"coin":"@142","levels":[[{"px":"100","sz":"1"}],[{"px":"100.1","sz":"2"}]]}}`))

		snap, ok := f.Latest()
		if !ok {
			t.Fatal("snapshot not published")
		}
		bid, _ := snap.BestBid()
		ask, _ := snap.BestAsk()
		if bid != 100 || ask != 100.1 {
			t.Errorf("bid=%v ask=%v", bid, ask)
		}
	})

	t.Run("Partial Message Retains Previous", func(t *testing.T) {
		f.OnMessage(context.Background(), []byte(
			`{"channel":"l2Book","data":{"coin":"@142","levels":[[{"px":"99","sz":"1"}]]}}`))

		snap, ok := f.Latest()
		if !ok {
			t.Fatal("previous snapshot lost")
		}
		if bid, _ := snap.BestBid(); bid != 100 {
			t.Errorf("bid = %v; want previous 100", bid)
		}
	})

	t.Run("Malformed Message Discarded", func(t *testing.T) {
		f.OnMessage(context.Background(), []byte(`not json`))
		if _, ok := f.Latest(); !ok {
			t.Error("previous snapshot lost on malformed input")
		}
	})

	t.Run("Other Channel Ignored", func(t *testing.T) {
		f.OnMessage(context.Background(), []byte(`{"channel":"trades","data":{}}`))
		if _, ok := f.Latest(); !ok {
			t.Error("previous snapshot lost on unrelated channel")
		}
	})

	t.Run("Newest Overwrites Unconsumed", func(t *testing.T) {
		f.OnMessage(context.Background(), []byte(
			`{"channel":"l2Book","data":{"coin":"@142","levels":[[["101","1"]],[["101.2","1"]]]}}`))
		f.OnMessage(context.Background(), []byte(
			`{"channel":"l2Book","data":{"coin":"@142","levels":[[["102","1"]],[["102.2","1"]]]}}`))

		snap, ok := f.Latest()
		if !ok {
			t.Fatal("no snapshot")
		}
		if bid, _ := snap.BestBid(); bid != 102 {
			t.Errorf("bid = %v; want newest 102", bid)
		}
	})

	t.Run("Disconnect Clears Ready", func(t *testing.T) {
		f.OnDisconnect()
		if _, ok := f.Latest(); ok {
			t.Error("disconnected feed must report no price available")
		}
	})
}

func TestBookFeed_EndToEnd(t *testing.T) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Expect the subscribe request first.
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var sub map[string]any
		if err := json.Unmarshal(msg, &sub); err != nil || sub["method"] != "subscribe" {
			t.Errorf("unexpected first frame: %s", msg)
			return
		}

		conn.WriteMessage(websocket.TextMessage, []byte(
			`{"channel":"l2Book","data":{"coin":"@142","levels":[[["100","1"]],[["100.1","1"]]]}}`))
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	f := New("@142", strings.Replace(server.URL, "http://", "ws://", 1))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.Start(ctx)
	defer f.Stop()

	waitCtx, waitCancel := context.WithTimeout(ctx, 2*time.Second)
	defer waitCancel()
	if err := f.WaitReady(waitCtx); err != nil {
		t.Fatalf("WaitReady: %v", err)
	}

	snap, ok := f.Latest()
	if !ok {
		t.Fatal("no snapshot after ready")
	}
	bid, _ := snap.BestBid()
	ask, _ := snap.BestAsk()
	if bid != 100 || ask != 100.1 {
		t.Errorf("bid=%v ask=%v", bid, ask)
	}
}
