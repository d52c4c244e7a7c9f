package hermes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basketfx/txprep/business/oracle/domain"
	"github.com/basketfx/txprep/internal/logger"
)

func TestStream_ResubscribesAfterDrop(t *testing.T) {
	subs := make(chan string, 4)
	var accepts atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		n := accepts.Add(1)

		_, data, err := conn.Read(r.Context())
		if err != nil {
			return
		}
		subs <- string(data)

		// Hermes forgets the subscription with the connection; kill the
		// first one to force a redial.
		if n == 1 {
			conn.Close(websocket.StatusGoingAway, "drop")
			return
		}
		<-r.Context().Done()
	}))
	defer srv.Close()

	log := logger.New(testWriter{t}, logger.LevelError, "test", nil)
	stream := NewStream(StreamConfig{
		WSURL: "ws" + strings.TrimPrefix(srv.URL, "http"),
		Feeds: []domain.FeedID{testFeed},
	}, log)

	require.NoError(t, stream.Start(context.Background()))
	defer stream.Close()

	wantID := strings.TrimPrefix(testFeed.Hex(), "0x")
	for _, conn := range []string{"initial", "redialed"} {
		select {
		case msg := <-subs:
			assert.Contains(t, msg, `"subscribe"`, "%s connection", conn)
			assert.Contains(t, msg, wantID, "%s connection", conn)
		case <-time.After(10 * time.Second):
			t.Fatalf("%s connection never received a subscription", conn)
		}
	}
}
