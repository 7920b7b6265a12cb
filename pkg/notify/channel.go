package notify

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event names on the wire. These mirror the server's websocket protocol.
const (
	EventRegisterVolunteer    = "registerVolunteer"
	EventRegisterOrganization = "registerOrganization"
	EventRegisterAdmin        = "registerAdmin"
	EventNewNotification      = "newNotification"
)

const (
	// MaxReconnectAttempts bounds the retry loop after a transport drop.
	// Exhausting it leaves the channel disconnected but usable for a
	// manual Connect later; it never crashes the client.
	MaxReconnectAttempts = 5
	reconnectBaseDelay   = time.Second
)

// ErrNotConnected is returned by Emit when the channel is down.
var ErrNotConnected = errors.New("notify: channel not connected")

// Handler consumes the payload of one named event.
type Handler func(payload json.RawMessage)

type event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Channel is a persistent, auto-reconnecting websocket to the server.
// Construction does not connect; call Connect once the user's identity is
// known. One instance is meant to live for the whole process (see Init).
type Channel struct {
	url   string
	token string

	mu         sync.Mutex
	conn       *websocket.Conn
	connected  bool
	connecting bool
	closed     bool
	nextID     int
	handlers   map[string][]subscription
	onConnect  []func()
}

type subscription struct {
	id int
	h  Handler
}

// NewChannel builds a channel without connecting.
func NewChannel(url, token string) *Channel {
	return &Channel{
		url:      url,
		token:    token,
		handlers: make(map[string][]subscription),
	}
}

// Connect dials the server and starts the read loop. Calling it while
// already connected, or while another Connect is mid-dial, is a no-op:
// exactly one transport exists at a time.
func (c *Channel) Connect() error {
	c.mu.Lock()
	if c.connected || c.connecting || c.closed {
		c.mu.Unlock()
		return nil
	}
	c.connecting = true
	c.mu.Unlock()

	conn, err := c.dial()

	c.mu.Lock()
	c.connecting = false
	if err != nil {
		c.mu.Unlock()
		return err
	}
	if c.closed || c.connected {
		c.mu.Unlock()
		conn.Close()
		return nil
	}
	c.conn = conn
	c.connected = true
	hooks := append([]func(){}, c.onConnect...)
	c.mu.Unlock()

	// re-run registration (and any other connect hooks) on every connect
	for _, hook := range hooks {
		hook()
	}

	go c.readLoop(conn)
	return nil
}

func (c *Channel) dial() (*websocket.Conn, error) {
	header := http.Header{}
	header.Add("Authorization", "Bearer "+c.token)

	conn, _, err := websocket.DefaultDialer.Dial(c.url, header)
	if err != nil {
		return nil, fmt.Errorf("connection failed: %w", err)
	}
	return conn, nil
}

// Connected reports whether the transport is currently up.
func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Emit sends a named event to the server.
func (c *Channel) Emit(eventType string, payload any) error {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		raw = data
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected || c.conn == nil {
		return ErrNotConnected
	}
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteJSON(event{Type: eventType, Payload: raw})
}

// On subscribes a handler to a named event and returns the function that
// removes it again.
func (c *Channel) On(eventType string, h Handler) (off func()) {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.handlers[eventType] = append(c.handlers[eventType], subscription{id: id, h: h})
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		subs := c.handlers[eventType]
		for i, sub := range subs {
			if sub.id == id {
				c.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// OnConnect registers a hook run after every successful connect,
// including reconnects. Registration commands belong here: the server
// forgets all bindings on disconnect, so they must be replayed each time.
func (c *Channel) OnConnect(hook func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onConnect = append(c.onConnect, hook)
}

// Register emits the role-specific registration command. An empty
// recipient id is the normal unauthenticated state: nothing is sent.
func (c *Channel) Register(role, recipientID string) error {
	if recipientID == "" {
		return nil
	}
	var eventType string
	switch role {
	case "volunteer":
		eventType = EventRegisterVolunteer
	case "organization":
		eventType = EventRegisterOrganization
	case "admin":
		eventType = EventRegisterAdmin
	default:
		return fmt.Errorf("notify: unknown role %q", role)
	}
	return c.Emit(eventType, map[string]string{"recipient_id": recipientID})
}

func (c *Channel) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			closed := c.closed
			c.connected = false
			c.conn = nil
			c.mu.Unlock()
			conn.Close()

			if !closed {
				c.reconnect()
			}
			return
		}

		var ev event
		if err := json.Unmarshal(data, &ev); err != nil {
			slog.Debug("notify: dropping malformed frame", "error", err)
			continue
		}

		c.mu.Lock()
		subs := append([]subscription{}, c.handlers[ev.Type]...)
		c.mu.Unlock()
		for _, sub := range subs {
			sub.h(ev.Payload)
		}
	}
}

// reconnect retries with exponential backoff up to MaxReconnectAttempts.
// Giving up leaves the channel in a disconnected state; the application
// keeps working off fetched history until the next manual Connect.
func (c *Channel) reconnect() {
	delay := reconnectBaseDelay
	for attempt := 1; attempt <= MaxReconnectAttempts; attempt++ {
		time.Sleep(delay)
		delay *= 2

		c.mu.Lock()
		if c.closed || c.connected {
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()

		if err := c.Connect(); err != nil {
			slog.Warn("notify: reconnect failed", "attempt", attempt, "error", err)
			continue
		}
		slog.Info("notify: reconnected", "attempt", attempt)
		return
	}
	slog.Error("notify: reconnect attempts exhausted; staying disconnected")
}

// Close shuts the channel down for good; no reconnection follows.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.connected = false
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}
