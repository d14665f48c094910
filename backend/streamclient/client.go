package streamclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"k8s.io/klog/v2"

	"github.com/harborview/app/backend/internal/config"
)

// ErrNotConnected is returned by Send when no connection is established.
var ErrNotConnected = errors.New("stream client not connected")

// Config captures the dependencies for a stream client.
type Config struct {
	// URL is the full websocket endpoint, e.g. ws://host/api/v1/stream/overview.
	URL string
	// Name tags log entries, e.g. "OverviewStream".
	Name string
	// Logger receives connection lifecycle messages. Optional.
	Logger Logger
	// BaseDelay overrides the first reconnect delay. Optional.
	BaseDelay time.Duration
	// MaxAttempts overrides the reconnect attempt cap. Optional.
	MaxAttempts int
}

// Client owns one logical websocket connection to a push endpoint. It
// reconnects with exponential backoff on abnormal closure and fans parsed
// frames out to registered listeners. All view stores on a channel share one
// client; only Disconnect closes the socket.
type Client struct {
	url         string
	name        string
	logger      Logger
	baseDelay   time.Duration
	maxAttempts int
	dialer      *websocket.Dialer

	// Injection points for tests.
	dialFunc  func() (*websocket.Conn, error)
	afterFunc func(time.Duration, func()) *time.Timer

	mu             sync.Mutex
	phase          phase
	conn           *websocket.Conn
	attempts       int
	lastErr        error
	reconnectTimer *time.Timer
	generation     uint64

	writeMu sync.Mutex

	listeners      map[string]map[Listener]struct{}
	catchAll       map[Listener]struct{}
	stateListeners map[StateListener]struct{}
}

// NewClient constructs a stream client for the given endpoint. The client
// starts disconnected; call Connect to establish the stream.
func NewClient(cfg Config) *Client {
	if cfg.Logger == nil {
		cfg.Logger = noopLogger{}
	}
	if cfg.Name == "" {
		cfg.Name = "StreamClient"
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = config.StreamReconnectBaseDelay
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = config.StreamMaxReconnectAttempts
	}

	c := &Client{
		url:         cfg.URL,
		name:        cfg.Name,
		logger:      cfg.Logger,
		baseDelay:   cfg.BaseDelay,
		maxAttempts: cfg.MaxAttempts,
		dialer: &websocket.Dialer{
			HandshakeTimeout: config.StreamHandshakeTimeout,
		},
		afterFunc:      time.AfterFunc,
		listeners:      make(map[string]map[Listener]struct{}),
		catchAll:       make(map[Listener]struct{}),
		stateListeners: make(map[StateListener]struct{}),
	}
	c.dialFunc = func() (*websocket.Conn, error) {
		conn, _, err := c.dialer.Dial(c.url, nil)
		return conn, err
	}
	return c
}

// Connect opens the underlying connection. It is idempotent: while connected
// or connecting it does nothing. A manual Connect cancels any pending retry
// and resumes a dormant client.
func (c *Client) Connect() {
	c.mu.Lock()
	if c.phase != phaseDisconnected {
		c.mu.Unlock()
		return
	}
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
	c.phase = phaseConnecting
	gen := c.generation
	c.mu.Unlock()

	go c.dial(gen)
}

// Disconnect closes the connection with a normal close status and cancels any
// scheduled reconnect. It is idempotent and safe to call before Connect.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.generation++
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
	conn := c.conn
	c.conn = nil
	wasConnected := c.phase == phaseConnected
	c.phase = phaseDisconnected
	c.attempts = 0
	c.lastErr = nil
	c.mu.Unlock()

	if conn != nil {
		c.writeMu.Lock()
		deadline := time.Now().Add(config.StreamWriteTimeout)
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			deadline,
		)
		_ = conn.Close()
		c.writeMu.Unlock()
	}
	if wasConnected {
		c.notifyState()
	}
}

// State reports the current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{Connected: c.phase == phaseConnected, LastError: c.lastErr}
}

// Send writes one JSON document to the stream.
func (c *Client) Send(v any) error {
	c.mu.Lock()
	conn := c.conn
	connected := c.phase == phaseConnected
	c.mu.Unlock()
	if !connected || conn == nil {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.SetWriteDeadline(time.Now().Add(config.StreamWriteTimeout)); err != nil {
		c.logger.Warn(fmt.Sprintf("%s: write deadline failed: %v", c.name, err), c.name)
	}
	return conn.WriteJSON(v)
}

func (c *Client) dial(gen uint64) {
	conn, err := c.dialFunc()

	c.mu.Lock()
	if c.generation != gen || c.phase != phaseConnecting {
		c.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return
	}
	if err != nil {
		c.phase = phaseDisconnected
		c.lastErr = err
		c.logger.Warn(fmt.Sprintf("%s: connect failed: %v", c.name, err), c.name)
		c.scheduleReconnectLocked()
		c.mu.Unlock()
		c.notifyState()
		return
	}
	c.conn = conn
	c.phase = phaseConnected
	c.attempts = 0
	c.lastErr = nil
	c.mu.Unlock()

	c.logger.Info(fmt.Sprintf("%s: connected to %s", c.name, c.url), c.name)
	c.notifyState()
	go c.readLoop(conn, gen)
}

func (c *Client) readLoop(conn *websocket.Conn, gen uint64) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			c.handleReadError(conn, gen, err)
			return
		}
		c.dispatchPayload(payload)
	}
}

func (c *Client) handleReadError(conn *websocket.Conn, gen uint64, err error) {
	_ = conn.Close()

	c.mu.Lock()
	if c.generation != gen || c.conn != conn {
		// Disconnect already tore this connection down.
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.phase = phaseDisconnected
	if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		c.lastErr = nil
		c.mu.Unlock()
		c.logger.Info(fmt.Sprintf("%s: stream closed", c.name), c.name)
		c.notifyState()
		return
	}
	c.lastErr = err
	c.logger.Warn(fmt.Sprintf("%s: stream error: %v", c.name, err), c.name)
	c.scheduleReconnectLocked()
	c.mu.Unlock()
	c.notifyState()
}

// scheduleReconnectLocked arms the next backoff timer. Callers hold c.mu.
func (c *Client) scheduleReconnectLocked() {
	if c.attempts >= c.maxAttempts {
		c.logger.Warn(fmt.Sprintf("%s: reconnect attempts exhausted, going dormant", c.name), c.name)
		return
	}
	delay := c.baseDelay << c.attempts
	c.attempts++
	attempt := c.attempts
	gen := c.generation

	c.reconnectTimer = c.afterFunc(delay, func() {
		c.mu.Lock()
		if c.generation != gen || c.phase != phaseDisconnected {
			c.mu.Unlock()
			return
		}
		c.reconnectTimer = nil
		c.phase = phaseConnecting
		c.mu.Unlock()
		c.dial(gen)
	})
	c.logger.Info(fmt.Sprintf("%s: reconnect attempt %d/%d in %s", c.name, attempt, c.maxAttempts, delay), c.name)
}

// dispatchPayload splits a push into newline-delimited JSON documents and
// parses each independently so one malformed line never drops the rest.
func (c *Client) dispatchPayload(payload []byte) {
	for _, line := range bytes.Split(payload, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var frame Frame
		if err := json.Unmarshal(line, &frame); err != nil {
			klog.V(2).Infof("%s: skipping malformed frame: %v", c.name, err)
			continue
		}
		frame.Raw = append(json.RawMessage(nil), line...)
		c.dispatch(frame)
	}
}

func (c *Client) dispatch(frame Frame) {
	c.mu.Lock()
	targets := make([]Listener, 0, len(c.listeners[frame.Type])+len(c.catchAll))
	for l := range c.listeners[frame.Type] {
		targets = append(targets, l)
	}
	for l := range c.catchAll {
		targets = append(targets, l)
	}
	c.mu.Unlock()

	for _, l := range targets {
		c.deliver(l, frame)
	}
}

// deliver isolates listener panics so one failing subscriber cannot block
// delivery to the others.
func (c *Client) deliver(l Listener, frame Frame) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error(fmt.Sprintf("%s: listener panic for %q frame: %v", c.name, frame.Type, r), c.name)
		}
	}()
	l.HandleFrame(frame)
}

// On registers a listener for frames of the given type. Registering the same
// listener twice does not duplicate delivery.
func (c *Client) On(frameType string, l Listener) {
	if l == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	set, ok := c.listeners[frameType]
	if !ok {
		set = make(map[Listener]struct{})
		c.listeners[frameType] = set
	}
	set[l] = struct{}{}
}

// Off removes a typed listener registration.
func (c *Client) Off(frameType string, l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	set := c.listeners[frameType]
	delete(set, l)
	if len(set) == 0 {
		delete(c.listeners, frameType)
	}
}

// OnAll registers a listener for every frame regardless of type.
func (c *Client) OnAll(l Listener) {
	if l == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.catchAll[l] = struct{}{}
}

// OffAll removes a catch-all registration.
func (c *Client) OffAll(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.catchAll, l)
}

// AddStateListener registers for connection state changes. Duplicate
// registrations collapse to one.
func (c *Client) AddStateListener(l StateListener) {
	if l == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stateListeners[l] = struct{}{}
}

// RemoveStateListener drops a state listener registration.
func (c *Client) RemoveStateListener(l StateListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.stateListeners, l)
}

func (c *Client) notifyState() {
	c.mu.Lock()
	state := State{Connected: c.phase == phaseConnected, LastError: c.lastErr}
	targets := make([]StateListener, 0, len(c.stateListeners))
	for l := range c.stateListeners {
		targets = append(targets, l)
	}
	c.mu.Unlock()

	for _, l := range targets {
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.logger.Error(fmt.Sprintf("%s: state listener panic: %v", c.name, r), c.name)
				}
			}()
			l.HandleState(state)
		}()
	}
}
