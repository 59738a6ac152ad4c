package runtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/GriffinCanCode/ChatRelay/backend/internal/shared/id"
	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client is a port over the privileged agent's websocket
type Client struct {
	conn   *websocket.Conn
	logger *zap.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan []byte
	closed  bool
	done    chan struct{}
}

// Dial connects to a /runtime endpoint such as ws://127.0.0.1:8787/runtime
func Dial(ctx context.Context, url string, header http.Header, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("dial runtime: %w", err)
	}

	c := &Client{
		conn:    conn,
		logger:  logger,
		pending: make(map[string]chan []byte),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Send writes message in a fresh envelope and waits for the matching reply
func (c *Client) Send(ctx context.Context, message []byte) ([]byte, error) {
	envID := id.NewEnvelopeID().String()
	ch := make(chan []byte, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrPortClosed
	}
	c.pending[envID] = ch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, envID)
		c.mu.Unlock()
	}()

	frame, err := sonic.Marshal(Envelope{ID: envID, Message: message})
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}

	c.writeMu.Lock()
	err = c.conn.WriteMessage(websocket.TextMessage, frame)
	c.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("write envelope: %w", err)
	}

	select {
	case reply := <-ch:
		return reply, nil
	case <-c.done:
		return nil, ErrPortClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Client) readLoop() {
	defer c.shutdown()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if !errors.Is(err, websocket.ErrCloseSent) && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				c.logger.Debug("runtime read ended", zap.Error(err))
			}
			return
		}

		var env Envelope
		if err := sonic.Unmarshal(data, &env); err != nil || env.ID == "" {
			c.logger.Warn("dropping malformed runtime frame", zap.Error(err))
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[env.ID]
		c.mu.Unlock()
		if !ok {
			c.logger.Debug("dropping reply with no pending request", zap.String("id", env.ID))
			continue
		}
		select {
		case ch <- env.Message:
		default:
		}
	}
}

func (c *Client) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.done)
	}
}

// Close closes the connection; pending sends fail with ErrPortClosed
func (c *Client) Close() error {
	c.writeMu.Lock()
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()

	err := c.conn.Close()
	c.shutdown()
	return err
}
