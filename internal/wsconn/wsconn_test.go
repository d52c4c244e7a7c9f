package wsconn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"
)

// wsServer accepts connections, records the first text message of each
// and drops every connection before the last one.
func wsServer(t *testing.T, received chan<- string, dropFirst int) *httptest.Server {
	t.Helper()

	var accepts atomic.Int32
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		n := accepts.Add(1)

		_, data, err := conn.Read(r.Context())
		if err != nil {
			return
		}
		received <- string(data)

		if int(n) <= dropFirst {
			conn.Close(websocket.StatusGoingAway, "drop")
			return
		}
		<-r.Context().Done()
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func waitMsg(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case m := <-ch:
		return m
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
		return ""
	}
}

func TestClient_OnReconnect_ReplaysSubscription(t *testing.T) {
	received := make(chan string, 4)
	srv := wsServer(t, received, 1)
	defer srv.Close()

	c := New(Config{
		URL:            wsURL(srv),
		InitialBackoff: 10 * time.Millisecond,
		MaxBackoff:     100 * time.Millisecond,
	})
	c.OnReconnect(func(ctx context.Context) error {
		return c.Send(ctx, []byte("subscribe"))
	})

	ctx := context.Background()
	if err := c.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer c.Close()

	if err := c.Send(ctx, []byte("subscribe")); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	// First connection gets the explicit subscribe, then the server
	// drops it; the redialed connection must carry the replayed one.
	if got := waitMsg(t, received); got != "subscribe" {
		t.Errorf("first connection received %q", got)
	}
	if got := waitMsg(t, received); got != "subscribe" {
		t.Errorf("reconnected connection received %q", got)
	}
}

func TestClient_SendAfterClose(t *testing.T) {
	received := make(chan string, 1)
	srv := wsServer(t, received, 0)
	defer srv.Close()

	c := New(DefaultConfig(wsURL(srv)))
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	c.Close()

	if err := c.Send(context.Background(), []byte("late")); err != ErrClosed {
		t.Errorf("Send after Close = %v, want ErrClosed", err)
	}
}
