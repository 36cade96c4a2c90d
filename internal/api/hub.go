package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/rpaudel/gardenwatch-go/internal/alerting"
	"github.com/rpaudel/gardenwatch-go/internal/logger"
)

const (
	wsWriteWait      = 10 * time.Second
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = (wsPongWait * 9) / 10 // must be < pongWait
	wsMaxMessageSize = 4 * 1024
	wsSendBuffer     = 64
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// Validate Origin against Host to prevent cross-site WebSocket
		// hijacking. Non-browser clients (curl, wscat) omit Origin and
		// are allowed through for local tooling.
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

// wsClient is one connected websocket peer. Outbound messages go through
// a buffered channel so a slow peer never blocks the hub.
type wsClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub fans out live events (dispatched alerts, motion detections) to
// connected websocket clients. It subscribes to the event bus and wraps
// each event in a typed envelope.
type Hub struct {
	log logger.Logger

	mu      sync.Mutex
	clients map[*wsClient]struct{}
	closed  bool
}

// NewHub creates a hub and subscribes it to the bus.
func NewHub(bus *alerting.EventBus, log logger.Logger) *Hub {
	h := &Hub{
		log:     log,
		clients: make(map[*wsClient]struct{}),
	}
	if bus != nil {
		bus.Subscribe(h.handleEvent)
	}
	return h
}

// handleEvent marshals a bus event and broadcasts it.
func (h *Hub) handleEvent(event *alerting.Event) {
	payload, err := json.Marshal(map[string]any{
		"type":      event.Kind,
		"payload":   event.Payload,
		"timestamp": event.Timestamp,
	})
	if err != nil {
		h.log.Error("marshal websocket event", logger.Error(err))
		return
	}
	h.broadcast(payload)
}

func (h *Hub) broadcast(message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			// Peer is not draining its buffer; drop it.
			delete(h.clients, client)
			close(client.send)
		}
	}
}

// ClientCount returns the number of connected peers.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects all peers. New connections are rejected afterwards.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}

func (h *Hub) register(client *wsClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[client] = struct{}{}
	return true
}

func (h *Hub) unregister(client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
}

// HandleWS upgrades the connection and attaches it to the hub.
func (c *Controller) HandleWS(ctx echo.Context) error {
	conn, err := wsUpgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		c.log.Error("websocket upgrade failed", logger.Error(err))
		return err
	}

	client := &wsClient{
		hub:  c.hub,
		conn: conn,
		send: make(chan []byte, wsSendBuffer),
	}
	if !c.hub.register(client) {
		_ = conn.Close()
		return nil
	}

	go client.writePump()
	go client.readPump()
	return nil
}

// readPump discards inbound messages and detects peer disconnects. The
// hub only broadcasts; clients have nothing to say.
func (c *wsClient) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(wsMaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump forwards hub messages to the peer and keeps the connection
// alive with pings.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
