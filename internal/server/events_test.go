package server

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/gesture"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestEventHub_Broadcast(t *testing.T) {
	hub := NewEventHub(quietLogger())
	defer hub.Close()
	ts := httptest.NewServer(New(Config{Events: hub, Logger: quietLogger()}))
	defer ts.Close()

	base := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/events"
	textConn := dial(t, base)
	binConn := dial(t, base+"?format=cbor")
	require.Eventually(t, func() bool { return hub.Clients() == 2 }, 2*time.Second, 5*time.Millisecond)

	ev := gesture.Event{
		Label:     gesture.Next,
		Position:  gesture.Point{X: 12, Y: 34},
		Timestamp: time.Now().UTC().Truncate(time.Millisecond),
		Phase:     gesture.PhaseTap,
		Mode:      gesture.ModePresentation,
	}
	hub.OnGesture(ev)

	textConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	kind, payload, err := textConn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, kind)
	var fromJSON gesture.Event
	require.NoError(t, json.Unmarshal(payload, &fromJSON))
	assert.Equal(t, ev.Label, fromJSON.Label)
	assert.Equal(t, ev.Position, fromJSON.Position)
	assert.Equal(t, ev.Mode, fromJSON.Mode)

	binConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	kind, payload, err = binConn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, kind)
	var fromCBOR gesture.Event
	require.NoError(t, cbor.Unmarshal(payload, &fromCBOR))
	assert.Equal(t, ev.Label, fromCBOR.Label)
	assert.Equal(t, ev.Phase, fromCBOR.Phase)
	assert.True(t, ev.Timestamp.Equal(fromCBOR.Timestamp))
}

func TestEventHub_ClientLeaves(t *testing.T) {
	hub := NewEventHub(quietLogger())
	defer hub.Close()
	ts := httptest.NewServer(New(Config{Events: hub, Logger: quietLogger()}))
	defer ts.Close()

	conn := dial(t, "ws"+strings.TrimPrefix(ts.URL, "http")+"/api/events")
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 5*time.Millisecond)

	conn.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestEventHub_DropsWhenFull(t *testing.T) {
	hub := NewEventHub(quietLogger())
	hub.Close()

	for i := 0; i < eventQueue+3; i++ {
		hub.OnGesture(gesture.Event{Label: gesture.Move})
	}

	assert.Equal(t, int64(3), hub.Dropped())
	hub.Close()
}
