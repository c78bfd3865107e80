package wsclient

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/assitosante/notification-agent/internal/entity"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Event names emitted by the client
type Event string

const (
	EventConnected    Event = "connected"
	EventDisconnected Event = "disconnected"
	EventMessage      Event = "message"
	EventError        Event = "error"
)

const (
	defaultMaxReconnectAttempts = 5
	defaultReconnectDelay       = time.Second
	defaultHandshakeTimeout     = 10 * time.Second
)

// Handler receives the event payload: an *entity.Envelope for message
// events, an error for error events, nil otherwise.
type Handler func(data interface{})

type listener struct {
	id int64
	fn Handler
}

type Config struct {
	MaxReconnectAttempts int
	ReconnectDelay       time.Duration
	HandshakeTimeout     time.Duration
}

// Client keeps a single logical duplex channel to the backend notification
// feed. Connection drops are retried with a linearly growing delay up to the
// configured attempt cap; after that the client stays disconnected until
// Connect is called again.
type Client struct {
	dialer *websocket.Dialer

	maxReconnectAttempts int
	reconnectDelay       time.Duration

	mu                sync.Mutex
	conn              *websocket.Conn
	connected         bool
	reconnectAttempts int
	listeners         map[Event][]listener
	nextListenerID    int64
	generation        int
}

func NewClient(cfg Config) *Client {
	if cfg.MaxReconnectAttempts == 0 {
		cfg.MaxReconnectAttempts = defaultMaxReconnectAttempts
	}
	if cfg.ReconnectDelay == 0 {
		cfg.ReconnectDelay = defaultReconnectDelay
	}
	if cfg.HandshakeTimeout == 0 {
		cfg.HandshakeTimeout = defaultHandshakeTimeout
	}

	return &Client{
		dialer:               &websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout},
		maxReconnectAttempts: cfg.MaxReconnectAttempts,
		reconnectDelay:       cfg.ReconnectDelay,
		listeners:            make(map[Event][]listener),
	}
}

// Connect opens the socket and starts the read loop. A no-op while already
// connected. Resets the reconnect counter on success.
func (c *Client) Connect(url string) {
	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		logrus.Info("WebSocket already connected")
		return
	}
	c.mu.Unlock()

	conn, _, err := c.dialer.Dial(url, nil)
	if err != nil {
		logrus.Errorf("Error creating WebSocket connection: %v", err)
		c.emit(EventError, err)
		c.scheduleReconnect(url)
		return
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.reconnectAttempts = 0
	c.generation++
	generation := c.generation
	c.mu.Unlock()

	logrus.Info("WebSocket connected")
	c.emit(EventConnected, nil)

	go c.readLoop(conn, url, generation)
}

// Disconnect closes the socket without scheduling a reconnect. Idempotent.
func (c *Client) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.connected = false
	c.generation++ // invalidates the running read loop
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

// Send marshals the payload and transmits it only while connected; otherwise
// the message is dropped with a warning. Never returns an error to the
// caller and never touches a closed socket.
func (c *Client) Send(data interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected || c.conn == nil {
		logrus.Warn("WebSocket not connected. Cannot send message.")
		return
	}

	body, err := json.Marshal(data)
	if err != nil {
		logrus.Errorf("Error marshalling WebSocket message: %v", err)
		return
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, body); err != nil {
		logrus.Errorf("Error sending WebSocket message: %v", err)
	}
}

func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// On registers a handler for an event and returns its unsubscribe func.
// Handlers run in registration order.
func (c *Client) On(event Event, fn Handler) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextListenerID++
	id := c.nextListenerID
	c.listeners[event] = append(c.listeners[event], listener{id: id, fn: fn})

	return func() { c.off(event, id) }
}

func (c *Client) off(event Event, id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.listeners[event][:0]
	for _, l := range c.listeners[event] {
		if l.id != id {
			kept = append(kept, l)
		}
	}
	c.listeners[event] = kept
}

// OnNotification filters message events down to notification envelopes.
func (c *Client) OnNotification(fn func(notification entity.Notification)) func() {
	return c.onEnvelope(entity.EventNotification, func(payload json.RawMessage) {
		var n entity.Notification
		if err := json.Unmarshal(payload, &n); err != nil {
			logrus.Errorf("Error decoding notification payload: %v", err)
			return
		}
		fn(n)
	})
}

// OnMedicationReminder filters message events down to medication reminders.
func (c *Client) OnMedicationReminder(fn func(reminder entity.MedicationReminder)) func() {
	return c.onEnvelope(entity.EventMedicationReminder, func(payload json.RawMessage) {
		var r entity.MedicationReminder
		if err := json.Unmarshal(payload, &r); err != nil {
			logrus.Errorf("Error decoding medication reminder payload: %v", err)
			return
		}
		fn(r)
	})
}

// OnAppointmentUpdate filters message events down to appointment updates.
func (c *Client) OnAppointmentUpdate(fn func(appointment entity.Appointment)) func() {
	return c.onEnvelope(entity.EventAppointmentUpdate, func(payload json.RawMessage) {
		var a entity.Appointment
		if err := json.Unmarshal(payload, &a); err != nil {
			logrus.Errorf("Error decoding appointment payload: %v", err)
			return
		}
		fn(a)
	})
}

func (c *Client) onEnvelope(envelopeType string, fn func(payload json.RawMessage)) func() {
	return c.On(EventMessage, func(data interface{}) {
		env, ok := data.(*entity.Envelope)
		if !ok || env.Type != envelopeType {
			return
		}
		fn(env.Payload)
	})
}

func (c *Client) readLoop(conn *websocket.Conn, url string, generation int) {
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			c.handleClose(url, generation, err)
			return
		}

		var env entity.Envelope
		if err := json.Unmarshal(frame, &env); err != nil {
			logrus.Errorf("Error parsing WebSocket message: %v", err)
			continue
		}

		c.emit(EventMessage, &env)
	}
}

func (c *Client) handleClose(url string, generation int, err error) {
	c.mu.Lock()
	if c.generation != generation {
		// Disconnect or a newer Connect already took over; stale loop exits
		// without emitting or retrying.
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.connected = false
	c.mu.Unlock()

	logrus.Infof("WebSocket closed: %v", err)
	c.emit(EventDisconnected, nil)

	c.scheduleReconnect(url)
}

func (c *Client) scheduleReconnect(url string) {
	c.mu.Lock()
	if c.reconnectAttempts >= c.maxReconnectAttempts {
		c.mu.Unlock()
		logrus.Warnf("WebSocket reconnect attempts exhausted (%d)", c.maxReconnectAttempts)
		return
	}
	delay := c.reconnectDelay * time.Duration(c.reconnectAttempts)
	c.mu.Unlock()

	time.AfterFunc(delay, func() {
		c.mu.Lock()
		if c.connected || c.reconnectAttempts >= c.maxReconnectAttempts {
			c.mu.Unlock()
			return
		}
		c.reconnectAttempts++
		attempt := c.reconnectAttempts
		c.mu.Unlock()

		logrus.Infof("Attempting to reconnect... (%d/%d)", attempt, c.maxReconnectAttempts)
		c.Connect(url)
	})
}

// emit invokes the registered handlers in order. A panicking handler is
// recovered and logged so it cannot take down the others or the read loop.
func (c *Client) emit(event Event, data interface{}) {
	c.mu.Lock()
	handlers := make([]listener, len(c.listeners[event]))
	copy(handlers, c.listeners[event])
	c.mu.Unlock()

	for _, l := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logrus.Errorf("Error in WebSocket listener for %s: %v", event, r)
				}
			}()
			l.fn(data)
		}()
	}
}
