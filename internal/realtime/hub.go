// Package realtime implements the websocket channel that notifies connected
// clients of review mutations.
package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/revuo/reviews-api/internal/api/metrics"
	"github.com/revuo/reviews-api/internal/core/domain"
)

const (
	sendBuffer   = 16
	writeTimeout = 10 * time.Second
	pongTimeout  = 60 * time.Second
	pingInterval = 30 * time.Second
	readLimit    = 512 // clients only ever send control frames
)

// envelope is the wire format emitted to subscribers.
type envelope struct {
	Event string             `json:"event"`
	Data  domain.ReviewEvent `json:"data"`
}

// Hub owns the set of connected subscribers for the lifetime of the process.
// Publish is fire-and-forget: every currently connected subscriber gets the
// event, there is no persistence or replay, and a subscriber that cannot keep
// up is disconnected rather than back-pressuring the publisher.
type Hub struct {
	log      zerolog.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The channel is read-only and carries no per-user data, so any
			// origin may subscribe.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Publish delivers the event to every connected subscriber.
func (h *Hub) Publish(event domain.ReviewEvent) {
	payload, err := json.Marshal(envelope{Event: "reviews", Data: event})
	if err != nil {
		h.log.Error().Err(err).Msg("marshal realtime envelope")
		return
	}

	var slow []*client
	h.mu.RLock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.log.Debug().Msg("dropping slow realtime subscriber")
		h.remove(c)
	}

	metrics.EventsPublishedTotal.Inc()
}

// ClientCount reports the current number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Handle upgrades the request to a websocket subscription.
//
// @Summary      Subscribe to review mutation events
// @Tags         realtime
// @Router       /ws [get]
func (h *Hub) Handle(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the failure response.
		return nil
	}

	cl := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.add(cl)

	go cl.writeLoop()
	cl.readLoop()
	h.remove(cl)
	return nil
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	metrics.WSClients.Set(float64(n))
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		_ = c.conn.Close()
		metrics.WSClients.Set(float64(n))
	}
}

// writeLoop drains the send channel and keeps the connection alive with
// pings. It exits when the channel is closed by remove.
func (c *client) writeLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case payload, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteControl(websocket.CloseMessage, nil, time.Now().Add(writeTimeout))
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}

// readLoop discards inbound frames; it exists to process control frames and
// to notice when the peer goes away.
func (c *client) readLoop() {
	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
