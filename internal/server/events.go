package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ayusman/mudra/internal/gesture"
)

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second
	pingEvery = (pongWait * 9) / 10

	eventQueue = 64
)

type eventClient struct {
	writeMu sync.Mutex
	binary  bool
}

// EventHub fans gesture events out to WebSocket clients. Clients get JSON
// text frames, or CBOR binary frames when they connect with ?format=cbor.
// It implements session.Observer.
type EventHub struct {
	upgrader websocket.Upgrader
	log      *logrus.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]*eventClient

	events  chan gesture.Event
	dropped atomic.Int64
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once
}

// NewEventHub starts a hub. Close stops it and disconnects every client.
func NewEventHub(log *logrus.Logger) *EventHub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	h := &EventHub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log:     log,
		clients: make(map[*websocket.Conn]*eventClient),
		events:  make(chan gesture.Event, eventQueue),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go h.broadcast(ctx)
	return h
}

// OnGesture queues ev for broadcast. Events are dropped when the queue is full.
func (h *EventHub) OnGesture(ev gesture.Event) {
	select {
	case h.events <- ev:
	default:
		h.dropped.Add(1)
	}
}

// Dropped returns how many events were discarded because the queue was full.
func (h *EventHub) Dropped() int64 {
	return h.dropped.Load()
}

// Clients returns the number of connected clients.
func (h *EventHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close stops broadcasting and closes all connections. It is safe to call
// more than once.
func (h *EventHub) Close() {
	h.once.Do(func() {
		h.cancel()
		<-h.done
		h.mu.Lock()
		for conn := range h.clients {
			conn.Close()
			delete(h.clients, conn)
		}
		h.mu.Unlock()
	})
}

// ServeHTTP upgrades the request and keeps the connection alive until the
// client goes away. Incoming messages are ignored.
func (h *EventHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Debug("websocket upgrade failed")
		return
	}
	conn.SetReadLimit(1 << 16)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	c := &eventClient{binary: r.URL.Query().Get("format") == "cbor"}
	h.mu.Lock()
	h.clients[conn] = c
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(pingEvery)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := c.write(conn, websocket.PingMessage, nil); err != nil {
					_ = conn.Close()
					return
				}
			}
		}
	}()

	go func() {
		defer close(done)
		defer h.removeClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *EventHub) broadcast(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-h.events:
			h.send(ev)
		}
	}
}

func (h *EventHub) send(ev gesture.Event) {
	text, err := json.Marshal(ev)
	if err != nil {
		h.log.WithError(err).Warn("failed to encode event")
		return
	}
	var bin []byte

	var stale []*websocket.Conn
	h.mu.Lock()
	for conn, c := range h.clients {
		kind, payload := websocket.TextMessage, text
		if c.binary {
			if bin == nil {
				if bin, err = cbor.Marshal(ev); err != nil {
					h.log.WithError(err).Warn("failed to encode event")
					continue
				}
			}
			kind, payload = websocket.BinaryMessage, bin
		}
		if err := c.write(conn, kind, payload); err != nil {
			stale = append(stale, conn)
		}
	}
	h.mu.Unlock()

	for _, conn := range stale {
		h.removeClient(conn)
	}
}

func (h *EventHub) removeClient(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

func (c *eventClient) write(conn *websocket.Conn, kind int, payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(kind, payload)
}
