// internal/realtime/hub.go
//
// Per-room websocket fan-out.
// Responsibilities:
//   - Upgrade HTTP requests and subscribe the connection to one room.
//   - Broadcast room events to every subscriber of that room.
//   - Hand inbound frames to a caller-supplied handler, which can reply to the
//     sender only via Client.Send.
//
// Each connection has one writer goroutine fed by a buffered channel; a
// subscriber that cannot keep up is dropped instead of blocking the room.

package realtime

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 25 * time.Second
	maxMessage = 4 << 10
	sendBuffer = 32
)

// Handler processes one inbound frame from c.
type Handler func(ctx context.Context, c *Client, env Envelope)

// Hub tracks subscribers per room.
type Hub struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	rooms    map[string]map[*Client]struct{}
}

// Client is one websocket subscriber.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	roomID string
	send   chan []byte
	closed bool // guarded by hub.mu
}

// NewHub constructs a Hub accepting upgrades from allowedOrigin.
// An empty origin accepts any origin.
func NewHub(allowedOrigin string) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				o := r.Header.Get("Origin")
				return allowedOrigin == "" || o == "" || o == allowedOrigin
			},
		},
		rooms: make(map[string]map[*Client]struct{}),
	}
}

// Subscribers returns the number of clients in a room.
func (h *Hub) Subscribers(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// Publish sends an event to every subscriber of roomID.
func (h *Hub) Publish(roomID, typ string, payload any) {
	b, err := Encode(typ, payload)
	if err != nil {
		log.Error().Err(err).Str("roomId", roomID).Str("type", typ).Msg("encode event")
		return
	}
	h.mu.RLock()
	var slow []*Client
	for c := range h.rooms[roomID] {
		select {
		case c.send <- b:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		log.Warn().Str("roomId", roomID).Msg("dropping slow subscriber")
		h.remove(c)
	}
}

// CloseRoom disconnects every subscriber of roomID.
func (h *Hub) CloseRoom(roomID string) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.rooms[roomID]))
	for c := range h.rooms[roomID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		h.remove(c)
	}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.rooms[c.roomID]
	if !ok {
		set = make(map[*Client]struct{})
		h.rooms[c.roomID] = set
	}
	set[c] = struct{}{}
}

// remove unsubscribes c and closes its send channel exactly once.
func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	if set, ok := h.rooms[c.roomID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.rooms, c.roomID)
		}
	}
}

// Serve upgrades the request and subscribes it to roomID until the peer
// disconnects. Inbound frames are passed to handle.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, roomID string, handle Handler) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("roomId", roomID).Msg("websocket upgrade")
		return
	}
	c := &Client{hub: h, conn: conn, roomID: roomID, send: make(chan []byte, sendBuffer)}
	h.add(c)
	log.Debug().Str("roomId", roomID).Msg("subscriber joined")

	go c.writePump()
	c.readPump(context.WithoutCancel(r.Context()), handle)
}

// Send queues a frame for this client only.
func (c *Client) Send(typ string, payload any) {
	b, err := Encode(typ, payload)
	if err != nil {
		log.Error().Err(err).Str("type", typ).Msg("encode reply")
		return
	}
	c.hub.mu.RLock()
	full := false
	if !c.closed {
		select {
		case c.send <- b:
		default:
			full = true
		}
	}
	c.hub.mu.RUnlock()
	if full {
		c.hub.remove(c)
	}
}

// RoomID returns the room this client is subscribed to.
func (c *Client) RoomID() string { return c.roomID }

func (c *Client) readPump(ctx context.Context, handle Handler) {
	defer func() {
		c.hub.remove(c)
		_ = c.conn.Close()
		log.Debug().Str("roomId", c.roomID).Msg("subscriber left")
	}()
	c.conn.SetReadLimit(maxMessage)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("roomId", c.roomID).Msg("websocket read")
			}
			return
		}
		env, err := DecodeEnvelope(msg)
		if err != nil {
			c.Send(EventError, ErrorMsg{Error: "BAD_FRAME", Message: "Malformed message."})
			continue
		}
		if handle != nil {
			handle(ctx, c, env)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
