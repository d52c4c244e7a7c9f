// Package wsconn provides a WebSocket client with automatic reconnection.
package wsconn

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// State represents the connection state.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
)

// ErrClosed is returned after Close has been called.
var ErrClosed = errors.New("wsconn: client closed")

// Config holds WebSocket client configuration.
type Config struct {
	URL            string
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	MaxReconnects  int // 0 = infinite
	PingInterval   time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(url string) Config {
	return Config{
		URL:            url,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		MaxReconnects:  0, // infinite
		PingInterval:   30 * time.Second,
	}
}

// Client is a reconnecting WebSocket client. Incoming messages are
// delivered on the Messages channel; the read loop survives connection
// drops by redialing with exponential backoff.
type Client struct {
	config Config

	state   State
	stateMu sync.RWMutex

	conn   *websocket.Conn
	connMu sync.Mutex

	messages    chan []byte
	done        chan struct{}
	once        sync.Once
	onReconnect func(ctx context.Context) error
}

// New creates a new WebSocket client.
func New(config Config) *Client {
	return &Client{
		config:   config,
		state:    StateDisconnected,
		messages: make(chan []byte, 100),
		done:     make(chan struct{}),
	}
}

// Connect dials the endpoint and starts the read and ping loops.
// It returns once the first connection attempt succeeds.
func (c *Client) Connect(ctx context.Context) error {
	c.setState(StateConnecting)

	conn, _, err := websocket.Dial(ctx, c.config.URL, nil)
	if err != nil {
		c.setState(StateDisconnected)
		return err
	}

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	c.setState(StateConnected)

	go c.readLoop()
	go c.pingLoop()

	return nil
}

// OnReconnect registers a callback invoked after every successful
// redial, before reads resume on the new connection. Used to replay
// session state such as subscriptions. Must be set before Connect.
func (c *Client) OnReconnect(fn func(ctx context.Context) error) {
	c.onReconnect = fn
}

// Send sends a text message through the WebSocket.
func (c *Client) Send(ctx context.Context, msg []byte) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	c.connMu.Lock()
	conn := c.conn
	c.connMu.Unlock()

	if conn == nil {
		return errors.New("wsconn: not connected")
	}
	return conn.Write(ctx, websocket.MessageText, msg)
}

// Messages returns the channel for receiving messages.
// The channel is closed when the client is closed.
func (c *Client) Messages() <-chan []byte {
	return c.messages
}

// State returns the current connection state.
func (c *Client) State() State {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

// Close gracefully closes the WebSocket connection.
func (c *Client) Close() error {
	c.once.Do(func() {
		close(c.done)

		c.connMu.Lock()
		if c.conn != nil {
			c.conn.Close(websocket.StatusNormalClosure, "shutdown")
			c.conn = nil
		}
		c.connMu.Unlock()

		c.setState(StateDisconnected)
	})
	return nil
}

func (c *Client) readLoop() {
	defer close(c.messages)

	reconnects := 0
	backoff := c.config.InitialBackoff

	for {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		if conn == nil {
			return
		}

		_, data, err := conn.Read(context.Background())
		if err != nil {
			select {
			case <-c.done:
				return
			default:
			}

			if c.config.MaxReconnects > 0 && reconnects >= c.config.MaxReconnects {
				c.setState(StateDisconnected)
				return
			}

			c.setState(StateReconnecting)
			reconnects++

			select {
			case <-c.done:
				return
			case <-time.After(backoff):
			}

			backoff *= 2
			if backoff > c.config.MaxBackoff {
				backoff = c.config.MaxBackoff
			}

			newConn, _, dialErr := websocket.Dial(context.Background(), c.config.URL, nil)
			if dialErr != nil {
				continue
			}

			c.connMu.Lock()
			c.conn = newConn
			c.connMu.Unlock()

			if c.onReconnect != nil {
				hookCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				hookErr := c.onReconnect(hookCtx)
				cancel()
				if hookErr != nil {
					// The fresh connection is useless without its session
					// state; drop it and let the next read error redial.
					newConn.Close(websocket.StatusInternalError, "reconnect hook failed")
					continue
				}
			}

			c.setState(StateConnected)
			backoff = c.config.InitialBackoff
			continue
		}

		reconnects = 0

		select {
		case c.messages <- data:
		case <-c.done:
			return
		default:
			// Drop when the consumer falls behind; price updates supersede
			// each other anyway.
		}
	}
}

func (c *Client) pingLoop() {
	if c.config.PingInterval <= 0 {
		return
	}

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.Lock()
			conn := c.conn
			c.connMu.Unlock()

			if conn == nil {
				continue
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			_ = conn.Ping(ctx)
			cancel()
		}
	}
}

func (c *Client) setState(state State) {
	c.stateMu.Lock()
	c.state = state
	c.stateMu.Unlock()
}
