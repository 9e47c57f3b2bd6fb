package websocket

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// connPair dials a real WebSocket through httptest and returns the
// server-side wrapper plus the raw client conn
func connPair(t *testing.T, config Config) (*Connection, *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	serverSide := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serverSide <- ws
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	select {
	case ws := <-serverSide:
		conn := NewConnection(ws, config)
		t.Cleanup(func() { conn.Close() })
		return conn, client
	case <-time.After(2 * time.Second):
		t.Fatal("server side never upgraded")
		return nil, nil
	}
}

func TestNewConnectionHonorsBufferSize(t *testing.T) {
	config := DefaultConfig()
	config.BufferSize = 7
	conn, _ := connPair(t, config)

	if got := cap(conn.writeCh); got != 7 {
		t.Errorf("write queue capacity must follow config, got %d", got)
	}
}

func TestWriteJSONDeliversFrame(t *testing.T) {
	conn, client := connPair(t, DefaultConfig())

	if err := conn.WriteJSON(map[string]string{"event": "ping"}); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(data) != `{"event":"ping"}` {
		t.Errorf("unexpected frame: %s", data)
	}
}

// A dead transport must surface as a write error on later fanout attempts.
// The write loop exits when the underlying socket fails; subsequent WriteJSON
// calls return ErrConnectionClosed instead of panicking against the queue.
func TestWriteJSONAfterTransportDeath(t *testing.T) {
	config := DefaultConfig()
	config.WriteTimeout = 200 * time.Millisecond
	conn, client := connPair(t, config)

	// Kill the transport out from under the write loop
	conn.conn.UnderlyingConn().Close()
	client.Close()

	// The first write flushes into the dead socket and kills the loop; keep
	// writing until the failure is observed
	deadline := time.Now().Add(3 * time.Second)
	for {
		err := conn.WriteJSON(map[string]string{"event": "ping"})
		if err != nil {
			if !errors.Is(err, ErrConnectionClosed) && !errors.Is(err, ErrWriteTimeout) {
				t.Fatalf("unexpected error after transport death: %v", err)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("writes kept succeeding against a dead transport")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Once the loop is down every later write reports closed
	select {
	case <-conn.ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("write loop never cancelled the connection context")
	}
	if err := conn.WriteJSON(map[string]string{"event": "ping"}); !errors.Is(err, ErrConnectionClosed) {
		t.Errorf("expected ErrConnectionClosed, got %v", err)
	}
}

func TestWriteJSONAfterClose(t *testing.T) {
	conn, _ := connPair(t, DefaultConfig())

	if err := conn.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := conn.WriteJSON(map[string]string{"event": "ping"}); !errors.Is(err, ErrConnectionClosed) {
		t.Errorf("expected ErrConnectionClosed, got %v", err)
	}

	// Close stays idempotent
	if err := conn.Close(); err != nil {
		t.Errorf("second close must be a no-op, got %v", err)
	}
}
