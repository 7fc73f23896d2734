package live

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, srv *httptest.Server, scope string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?scope=" + scope
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// waitFor publishes once the hub has registered the session.
func waitFor(t *testing.T, h *Hub, conn *websocket.Conn, scope string) Event {
	t.Helper()
	require.Eventually(t, func() bool { return h.Sessions() > 0 }, 3*time.Second, 10*time.Millisecond)
	h.Publish(scope)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev Event
	require.NoError(t, json.Unmarshal(data, &ev))
	return ev
}

func TestPublishReachesScope(t *testing.T) {
	h := NewHub()
	t.Cleanup(func() { _ = h.Close() })
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = h.Subscribe(w, r, r.URL.Query().Get("scope"))
	}))
	t.Cleanup(srv.Close)

	conn := dial(t, srv, "g1")
	ev := waitFor(t, h, conn, "g1")
	assert.Equal(t, EventLeaderboardUpdated, ev.Type)
	assert.Equal(t, "g1", ev.Scope)
}

func TestGlobalSubscriberHearsGroupEvents(t *testing.T) {
	h := NewHub()
	t.Cleanup(func() { _ = h.Close() })
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = h.Subscribe(w, r, r.URL.Query().Get("scope"))
	}))
	t.Cleanup(srv.Close)

	conn := dial(t, srv, ScopeGlobal)
	ev := waitFor(t, h, conn, "g2")
	assert.Equal(t, "g2", ev.Scope)
}
