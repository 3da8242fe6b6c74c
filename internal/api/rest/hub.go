package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
)

const (
	// sendBuffer is how many messages a websocket client may lag behind.
	sendBuffer = 64
	// writeWait bounds a single websocket write.
	writeWait = 5 * time.Second
)

// Hub pushes engine events to connected browsers.
type Hub struct {
	// service provides the snapshot sent on connect.
	service Service
	// upgrader switches HTTP connections to websocket.
	upgrader websocket.Upgrader
	// allowedOrigins are cross-origin pages allowed to connect.
	allowedOrigins []string

	// mu protects clients.
	mu sync.RWMutex
	// clients are keyed by connection ID.
	clients map[string]*wsClient
}

// wsClient is one connected browser.
type wsClient struct {
	// id identifies the connection in logs.
	id string
	// conn is the websocket connection.
	conn *websocket.Conn
	// send queues messages for the writer goroutine.
	send chan []byte
}

// NewHub creates a hub serving snapshots from service.
func NewHub(service Service, allowedOrigins []string) *Hub {
	h := &Hub{
		service:        service,
		allowedOrigins: allowedOrigins,
		clients:        make(map[string]*wsClient),
	}

	h.upgrader = websocket.Upgrader{
		CheckOrigin: h.checkOrigin,
	}

	return h
}

// OnEvent implements engine.Observer. Slow clients lose events.
func (h *Hub) OnEvent(ctx context.Context, event domain.Event) {
	data, err := json.Marshal(newEventResponse(event))
	if err != nil {
		logger.ErrorKV(ctx, "Failed to marshal event", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		select {
		case client.send <- data:
		default:
			logger.WarnKV(ctx, "Websocket client is too slow, dropping event", "client", client.id, "type", event.Type)
		}
	}
}

// Clients returns the number of connected browsers.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		_ = client.conn.Close()
	}
}

// HandleWebSocket upgrades the request and streams events until the browser leaves.
func (h *Hub) HandleWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		logger.WarnKV(c.Request.Context(), "Websocket upgrade failed", "error", err)
		return
	}

	client := &wsClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	ctx := logger.WithKV(c.Request.Context(), "client", client.id)

	h.register(ctx, client)
	defer h.unregister(client)

	go client.writeLoop(ctx)

	logger.DebugKV(ctx, "Websocket client connected", "remote_addr", c.Request.RemoteAddr)

	// Browsers only listen; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.DebugKV(ctx, "Websocket read failed", "error", err)
			}

			break
		}
	}

	logger.DebugKV(ctx, "Websocket client disconnected")
}

// register queues the snapshot and adds the client in one step so no event precedes it.
func (h *Hub) register(ctx context.Context, client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	snapshot := domain.Event{
		Type:  domain.EventSnapshot,
		State: h.service.State(),
	}

	data, err := json.Marshal(newEventResponse(snapshot))
	if err != nil {
		logger.ErrorKV(ctx, "Failed to marshal snapshot", "error", err)
	} else {
		client.send <- data
	}

	h.clients[client.id] = client
}

// unregister removes the client and stops its writer.
func (h *Hub) unregister(client *wsClient) {
	h.mu.Lock()
	delete(h.clients, client.id)
	h.mu.Unlock()

	close(client.send)

	_ = client.conn.Close()
}

// writeLoop is the only writer of the connection.
func (c *wsClient) writeLoop(ctx context.Context) {
	for data := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			logger.DebugKV(ctx, "Websocket write failed", "error", err)

			_ = c.conn.Close()

			return
		}
	}
}

// checkOrigin accepts same-host pages and the configured origins.
func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	if slices.Contains(h.allowedOrigins, origin) {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil {
		return false
	}

	return u.Host == r.Host
}
