package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Config carries the transport tuning shared by the handler and every
// connection it creates
type Config struct {
	PingInterval time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BufferSize   int
}

// DefaultConfig returns transport settings with a 30s heartbeat
func DefaultConfig() Config {
	return Config{
		PingInterval: 30 * time.Second,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 10 * time.Second,
		BufferSize:   100,
	}
}

// Connection implements the interfaces.Connection interface
// ARCHITECTURAL DISCOVERY: WebSocket writes must be serialized to prevent race
// conditions - no fanout logic lives in the connection wrapper
type Connection struct {
	conn          *websocket.Conn
	config        Config
	writeCh       chan []byte // FUNCTIONAL DISCOVERY: Buffer absorbs fanout bursts without blocking engines
	userID        string      // Set after token validation
	authenticated bool
	ctx           context.Context
	cancel        context.CancelFunc
	closeOnce     sync.Once
	mu            sync.RWMutex // Protect auth fields
}

// NewConnection creates a new WebSocket connection wrapper
func NewConnection(conn *websocket.Conn, config Config) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Connection{
		conn:          conn,
		config:        config,
		writeCh:       make(chan []byte, config.BufferSize),
		ctx:           ctx,
		cancel:        cancel,
		authenticated: false,
	}

	// Start the single writer goroutine
	go c.writeLoop()

	return c
}

// ARCHITECTURAL DISCOVERY: Single writer goroutine pattern eliminates races
// FUNCTIONAL DISCOVERY: writeCh is never closed - the loop exiting on a
// transport failure cancels the context instead, so a concurrent fanout
// WriteJSON observes ErrConnectionClosed rather than a send on a closed
// channel. Queued frames for the dead transport are simply abandoned.
func (c *Connection) writeLoop() {
	defer c.cancel()

	for {
		select {
		case data := <-c.writeCh:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout)); err != nil {
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// WriteJSON sends a JSON payload through the single-writer channel.
// FUNCTIONAL DISCOVERY: A write against a closed connection is a silent
// failure mode for fanout - it returns an error here and the engines treat it
// as a delivery miss, never a thrown fault
func (c *Connection) WriteJSON(v interface{}) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	data, err := json.Marshal(v)
	if err != nil {
		return ErrInvalidJSON
	}

	select {
	case c.writeCh <- data:
		return nil
	case <-time.After(c.config.WriteTimeout):
		return ErrWriteTimeout
	case <-c.ctx.Done():
		return ErrConnectionClosed
	}
}

// Close shuts the connection down exactly once
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		if c.conn != nil {
			err = c.conn.Close()
		}
	})
	return err
}

// SetUserID binds the authenticated identity to the handle
// TECHNICAL DISCOVERY: Identity comes from the validated token subject, never
// from a client-claimed field in the payload
func (c *Connection) SetUserID(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = userID
	c.authenticated = true
}

func (c *Connection) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authenticated
}

func (c *Connection) GetUserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}
