// Gateway keeps track of every live websocket client so the process can
// close them all during shutdown and wait for their pumps to drain.
package server

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Gateway is the connection-level registry of the transport layer. It
// knows nothing about rooms; room membership lives in the chat package.
type Gateway struct {
	logger *slog.Logger

	mu      sync.Mutex
	clients map[*Client]struct{}
	wg      sync.WaitGroup
}

// NewGateway returns an empty gateway.
func NewGateway(logger *slog.Logger) *Gateway {
	return &Gateway{
		logger:  logger,
		clients: make(map[*Client]struct{}),
	}
}

// start registers the client and launches its pump goroutines.
func (g *Gateway) start(c *Client) {
	g.mu.Lock()
	g.clients[c] = struct{}{}
	total := len(g.clients)
	g.mu.Unlock()

	g.logger.Info("client connected", "clients", total)

	g.wg.Add(2)
	go func() {
		defer g.wg.Done()
		c.writePump()
	}()
	go func() {
		defer g.wg.Done()
		c.readPump()
	}()
}

// remove forgets a client whose connection ended. Safe to call for a
// client that was already removed.
func (g *Gateway) remove(c *Client) {
	g.mu.Lock()
	if _, ok := g.clients[c]; ok {
		delete(g.clients, c)
		total := len(g.clients)
		g.mu.Unlock()
		g.logger.Info("client disconnected", "clients", total)
		return
	}
	g.mu.Unlock()
}

// ClientCount reports how many connections are currently tracked.
func (g *Gateway) ClientCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.clients)
}

// Shutdown closes every live connection and waits up to timeout for the
// pump goroutines to finish. Returns context.DeadlineExceeded when some
// pumps are still running at the deadline.
func (g *Gateway) Shutdown(timeout time.Duration) error {
	g.mu.Lock()
	clients := make([]*Client, 0, len(g.clients))
	for c := range g.clients {
		clients = append(clients, c)
	}
	g.mu.Unlock()

	g.logger.Info("closing client connections", "clients", len(clients))
	for _, c := range clients {
		c.closeSend()
		if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
			c.logger.Debug("closing connection during shutdown", "error", err)
		}
	}

	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		g.logger.Info("gateway shutdown complete")
		return nil
	case <-time.After(timeout):
		g.logger.Warn("gateway shutdown timed out")
		return context.DeadlineExceeded
	}
}
