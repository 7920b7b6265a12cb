package websocket

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"servespot/internal/shared"
)

// ErrSendBufferFull is returned when a transport's outbound queue is full.
var ErrSendBufferFull = errors.New("websocket: send buffer full")

// Individual connection handler. Each connection runs a read pump and a
// write pump in their own goroutines; all shared state lives in the
// registry behind its lock.

const ( // ping pong (2-way heartbeat) to keep connection alive
	WriteWait      = 10 * time.Second    // max time to write a message to the peer
	PongWait       = 60 * time.Second    // max time to wait for pong from peer => no pong = no connection
	PingPeriod     = (PongWait * 9) / 10 // send ping before pong wait expires, slack for network jitter
	MaxMessageSize = 512                 // maximum message size allowed from peer
)

type Conn struct {
	ID          string          // transport ID, unique per connection
	UserID      string          // authenticated user ID from JWT claims
	UserRole    shared.Role     // authenticated role from JWT claims
	Conn        *websocket.Conn // underlying WebSocket connection
	SendChannel chan []byte     // buffered channel for outbound frames
	Registry    *Registry       // shared connection registry
}

// NewConn wraps an upgraded websocket connection.
func NewConn(id, userID string, role shared.Role, ws *websocket.Conn, registry *Registry) *Conn {
	return &Conn{
		ID:          id,
		UserID:      userID,
		UserRole:    role,
		Conn:        ws,
		SendChannel: make(chan []byte, 64),
		Registry:    registry,
	}
}

// Send queues one frame for the write pump. Dropping instead of blocking
// keeps a slow consumer from stalling publish for everyone else.
func (c *Conn) Send(data []byte) error {
	select {
	case c.SendChannel <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// ReadPump consumes inbound frames until the connection dies. Register
// commands update the registry; everything else is ignored. The deferred
// unregister is what garbage-collects the server-side binding, so a client
// must re-register after every reconnect.
func (c *Conn) ReadPump() {
	defer func() {
		c.Registry.Unregister(c.ID)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(PongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("unexpected close", "transport_id", c.ID, "error", err)
			}
			return
		}

		ev, err := EventFromJSON(data)
		if err != nil {
			continue
		}
		c.handleEvent(ev)
	}
}

// handleEvent binds the transport on a register command. The binding
// always comes from the validated token: a command claiming a different
// role or a different recipient id than the JWT carries is rejected, so
// a client can never subscribe to someone else's notifications.
func (c *Conn) handleEvent(ev *Event) {
	role, ok := RoleForRegister(ev.Type)
	if !ok {
		slog.Debug("ignoring unknown event", "transport_id", c.ID, "type", string(ev.Type))
		return
	}
	if role != c.UserRole {
		slog.Warn("register command rejected: role does not match token",
			"transport_id", c.ID, "claimed", role.String(), "authenticated", c.UserRole.String())
		return
	}

	var payload RegisterPayload
	if len(ev.Payload) > 0 {
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			slog.Debug("malformed register payload", "transport_id", c.ID, "error", err)
		}
	}
	if payload.RecipientID != "" && payload.RecipientID != c.UserID {
		slog.Warn("register command rejected: recipient id does not match token",
			"transport_id", c.ID, "claimed", payload.RecipientID, "authenticated", c.UserID)
		return
	}
	c.Registry.Register(c.ID, role, c.UserID, c)
}

// WritePump pushes queued frames and heartbeats to the peer.
func (c *Conn) WritePump() {
	ticker := time.NewTicker(PingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.SendChannel:
			c.Conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close tears down the connection and its registry binding.
func (c *Conn) Close() error {
	c.Registry.Unregister(c.ID)
	return c.Conn.Close()
}
