// Per-connection plumbing: the read/write pumps that sit between a
// gorilla websocket connection and its chat session.
package server

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"groupchat/internal/chat"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

var (
	errClientGone     = errors.New("client connection is gone")
	errSendBufferFull = errors.New("send buffer full")
)

// Client owns the websocket connection behind one chat session. The read
// pump feeds inbound frames to the session; the write pump drains the
// buffered send channel back to the peer. The session's send capability
// is enqueue, so a slow or dead peer surfaces as a delivery error rather
// than a blocked broadcast.
type Client struct {
	conn    *websocket.Conn
	session *chat.Session
	gateway *Gateway
	limiter *tokenBucket
	logger  *slog.Logger

	maxMessageSize int64
	rateLimit      int

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func newClient(conn *websocket.Conn, cfg Config, gateway *Gateway, logger *slog.Logger) *Client {
	conn.SetReadLimit(cfg.MaxMessageSize)

	return &Client{
		conn:           conn,
		gateway:        gateway,
		limiter:        newTokenBucket(cfg.RateLimitBurst, cfg.RateLimitRefill),
		logger:         logger.With("remote", conn.RemoteAddr().String()),
		maxMessageSize: cfg.MaxMessageSize,
		rateLimit:      cfg.RateLimitBurst,
		send:           make(chan []byte, cfg.SendBufferSize),
	}
}

// bindSession attaches the chat session once it exists. Must happen
// before the pumps start.
func (c *Client) bindSession(s *chat.Session) {
	c.session = s
}

// enqueue is the session's send capability. It never blocks: a full
// buffer or a closed client is reported as an error and the payload is
// dropped.
func (c *Client) enqueue(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errClientGone
	}
	select {
	case c.send <- payload:
		return nil
	default:
		return errSendBufferFull
	}
}

// closeSend marks the client dead and closes the send channel, exactly
// once, so the write pump can finish.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) readPump() {
	defer func() {
		c.gateway.remove(c)
		c.session.HandleClose()
		c.closeSend()
		if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
			c.logger.Debug("closing connection after read pump", "error", err)
		}
	}()

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Warn("setting initial read deadline", "error", err)
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.logReadEnd(err)
			return
		}

		if !c.limiter.allow() {
			c.logger.Warn("rate limit exceeded; discarding message", "burst", c.rateLimit)
			continue
		}

		// Bad input costs the client this message, never the connection.
		if err := c.session.HandleMessage(raw); err != nil {
			c.logger.Warn("dropping inbound message", "error", err)
		}
	}
}

// logReadEnd classifies the error that ended the read loop.
func (c *Client) logReadEnd(err error) {
	switch {
	case errors.Is(err, websocket.ErrReadLimit):
		c.logger.Warn("message exceeded maximum size", "limit", c.maxMessageSize)
	case websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure):
		c.logger.Info("client disconnected", "error", err)
	case errors.Is(err, io.EOF), isExpectedCloseError(err):
		c.logger.Info("connection closed", "error", err)
	default:
		c.logger.Warn("websocket read error", "error", err)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
			c.logger.Debug("closing connection after write pump", "error", err)
		}
	}()

	for {
		select {
		case payload, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				if !isExpectedCloseError(err) {
					c.logger.Debug("write failed", "error", err)
				}
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// isExpectedCloseError reports whether err is part of a normal
// connection teardown.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "use of closed network connection") ||
		strings.Contains(msg, "websocket: close sent") ||
		strings.Contains(msg, "broken pipe")
}
