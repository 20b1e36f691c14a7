package notify

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synanno/maskdraw"
)

type wireSignal struct {
	Session string `json:"session"`
	Kind    string `json:"kind"`
	Mode    string `json:"mode"`
	Layer   string `json:"layer"`
	Err     string `json:"error"`
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// next reads signals until one of the given kind arrives.
func next(t *testing.T, conn *websocket.Conn, kind string) wireSignal {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		var s wireSignal
		require.NoError(t, json.Unmarshal(msg, &s))
		if s.Kind == kind {
			return s
		}
	}
}

func waitClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return h.Clients() == n }, 5*time.Second, 10*time.Millisecond)
}

func TestHubBroadcastsSessionSignals(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	a, b := dial(t, srv), dial(t, srv)
	waitClients(t, hub, 2)

	s := maskdraw.NewSession(nil, maskdraw.WithNotifier(hub), maskdraw.WithCanvasSize(32, 32))
	require.NoError(t, s.Dispatch(t.Context(), maskdraw.EnterDraw{}))

	for _, conn := range []*websocket.Conn{a, b} {
		got := next(t, conn, "modeChanged")
		assert.Equal(t, "DrawingCurve", got.Mode)
		assert.Equal(t, s.ID().String(), got.Session)
	}
	assert.Zero(t, hub.Dropped())
}

func TestHubReplaysLastSignal(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	hub.Notify(maskdraw.Signal{Kind: maskdraw.SignalFillFailed, Mode: maskdraw.DrawingCurve})
	hub.Notify(maskdraw.Signal{Kind: maskdraw.SignalSaveFinished, Mode: maskdraw.Saved, Layer: "curve"})

	conn := dial(t, srv)
	got := next(t, conn, "saveFinished")
	assert.Equal(t, "Saved", got.Mode)
	assert.Equal(t, "curve", got.Layer)
}

func TestHubDisconnect(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	waitClients(t, hub, 1)
	require.NoError(t, conn.Close())
	waitClients(t, hub, 0)

	// no clients left to deliver to
	hub.Notify(maskdraw.Signal{Kind: maskdraw.SignalVisibility})
	assert.Zero(t, hub.Dropped())
}

func TestHubClose(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	waitClients(t, hub, 1)
	require.NoError(t, hub.Close())
	assert.Zero(t, hub.Clients())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "err = %v", err)

	// signals after Close are discarded
	hub.Notify(maskdraw.Signal{Kind: maskdraw.SignalModeChanged})
	assert.Zero(t, hub.Clients())
}

func TestWithQueueSize(t *testing.T) {
	assert.Equal(t, 4, NewHub(WithQueueSize(4)).queueSize)
	assert.Equal(t, defaultQueueSize, NewHub(WithQueueSize(0)).queueSize)
}
