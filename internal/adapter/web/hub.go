package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
	sendBuffer     = 256
)

// Broadcaster sends a message to every connected browser.
type Broadcaster interface {
	Broadcast(msg Message)
}

// PrimarySender sends a message to the primary browser only.
type PrimarySender interface {
	SendPrimary(msg Message)
}

// Client is one websocket connection.
type Client struct {
	ID   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Send queues msg for this client only. Messages to a slow client are dropped.
func (c *Client) Send(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.hub.logger.Warn("failed to encode message", slog.String("type", string(msg.Type)), slog.Any("error", err))
		return
	}
	c.hub.post(envelope{client: c, data: data})
}

// sendIfPrimary queues msg for this client if it is the primary when the
// message is delivered.
func (c *Client) sendIfPrimary(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.hub.logger.Warn("failed to encode message", slog.String("type", string(msg.Type)), slog.Any("error", err))
		return
	}
	c.hub.post(envelope{client: c, primary: true, data: data})
}

// Hub tracks websocket clients and fans messages out to them.
// Client registration, removal and message delivery are serialized by the run loop.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	clients map[*Client]struct{}
	order   []*Client // connection order; the first is the primary client
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	outbox     chan envelope // broadcasts and direct messages, in order

	onConnect func(*Client)
	onMessage func(*Client, Message)
	onPrimary func(*Client)

	done      chan struct{}
	stopped   chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// envelope addresses data to one client, or to all when client is nil.
// With primary set, delivery is limited to the primary client.
type envelope struct {
	client  *Client
	primary bool
	data    []byte
}

// NewHub creates a hub. allowedOrigins lists extra origins allowed to connect;
// "*" allows any origin. Same-origin requests are always accepted.
func NewHub(logger *slog.Logger, allowedOrigins []string) *Hub {
	h := &Hub{
		logger:     logger.With("component", "web-hub"),
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		outbox:     make(chan envelope, sendBuffer),
		onConnect:  func(*Client) {},
		onMessage:  func(*Client, Message) {},
		onPrimary:  func(*Client) {},
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || slices.Contains(allowed, "*") || slices.Contains(allowed, origin) {
			return true
		}
		// Same origin
		return origin == "http://"+r.Host || origin == "https://"+r.Host
	}
}

// OnConnect sets the callback invoked after a client registers. Must be set before Start.
func (h *Hub) OnConnect(fn func(*Client)) { h.onConnect = fn }

// OnMessage sets the handler for inbound messages. Must be set before Start.
// It runs on the client's read goroutine.
func (h *Hub) OnMessage(fn func(*Client, Message)) { h.onMessage = fn }

// OnPrimaryChange sets the callback invoked when the primary client leaves and
// the next oldest client takes over. Must be set before Start.
func (h *Hub) OnPrimaryChange(fn func(*Client)) { h.onPrimary = fn }

// Start runs the hub loop in the background.
func (h *Hub) Start() {
	h.startOnce.Do(func() { go h.run() })
}

func (h *Hub) run() {
	defer close(h.stopped)
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case e := <-h.outbox:
			h.mu.RLock()
			clients := h.recipientsLocked(e)
			h.mu.RUnlock()
			for _, client := range clients {
				h.deliver(client, e.data)
			}

		case <-h.done:
			h.cleanup()
			return
		}
	}
}

func (h *Hub) recipientsLocked(e envelope) []*Client {
	var primary *Client
	if len(h.order) > 0 {
		primary = h.order[0]
	}
	switch {
	case e.primary && primary == nil:
		return nil
	case e.primary && e.client == nil:
		return []*Client{primary}
	case e.primary:
		if e.client != primary {
			return nil
		}
		return []*Client{primary}
	case e.client == nil:
		return slices.Clone(h.order)
	}
	if _, ok := h.clients[e.client]; ok {
		return []*Client{e.client}
	}
	return nil
}

func (h *Hub) deliver(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		h.logger.Warn("client send buffer full, disconnecting", slog.String("client", client.ID))
		h.removeClient(client)
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.order = append(h.order, client)
	count := len(h.order)
	h.mu.Unlock()

	h.logger.Info("client connected", slog.String("client", client.ID), slog.Int("clients", count))
}

// removeClient must only be called from the run loop.
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	wasPrimary := h.order[0] == client
	delete(h.clients, client)
	h.order = slices.DeleteFunc(h.order, func(c *Client) bool { return c == client })
	close(client.send)

	h.logger.Info("client disconnected", slog.String("client", client.ID), slog.Int("clients", len(h.order)))

	if wasPrimary && len(h.order) > 0 {
		next := h.order[0]
		h.logger.Info("primary client changed", slog.String("client", next.ID))
		// The callback sends through the outbox, which this loop drains.
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			h.onPrimary(next)
		}()
	}
}

func (h *Hub) cleanup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		close(client.send)
	}
	h.clients = make(map[*Client]struct{})
	h.order = nil
}

// Stop closes every connection and waits for the hub and client goroutines to exit.
// A hub that was never started just refuses further work.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
	})
	h.startOnce.Do(func() { close(h.stopped) })
	<-h.stopped
	h.wg.Wait()
}

// Broadcast queues msg for every client. It never blocks once the hub is stopped.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Warn("failed to encode message", slog.String("type", string(msg.Type)), slog.Any("error", err))
		return
	}
	h.post(envelope{data: data})
}

func (h *Hub) post(e envelope) {
	select {
	case h.outbox <- e:
	case <-h.done:
	}
}

// SendPrimary queues msg for the primary client only.
func (h *Hub) SendPrimary(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Warn("failed to encode message", slog.String("type", string(msg.Type)), slog.Any("error", err))
		return
	}
	h.post(envelope{primary: true, data: data})
}

// Primary returns the oldest connected client, whose browser reports drive playback.
func (h *Hub) Primary() *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.order) == 0 {
		return nil
	}
	return h.order[0]
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request and attaches the connection to the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := &Client{
		ID:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	h.wg.Add(2)
	select {
	case h.register <- client:
	case <-h.done:
		h.wg.Add(-2)
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()

	h.onConnect(client)
}

func (c *Client) readPump() {
	defer c.hub.wg.Done()
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read error", slog.String("client", c.ID), slog.Any("error", err))
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.hub.logger.Warn("invalid message format", slog.String("client", c.ID), slog.Any("error", err))
			continue
		}
		if msg.Type == MsgPing {
			pong, _ := NewMessage(MsgPong, nil)
			c.Send(pong)
			continue
		}
		c.hub.onMessage(c, msg)
	}
}

func (c *Client) writePump() {
	defer c.hub.wg.Done()

	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
