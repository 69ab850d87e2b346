package chat

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxJokeBytes caps how much of the provider response is read.
const maxJokeBytes = 4 << 10

// JokeProvider returns one joke per call. Implementations must honor ctx
// cancellation.
type JokeProvider interface {
	Fetch(ctx context.Context) (string, error)
}

// JokeClient fetches plain-text jokes from an HTTP API, icanhazdadjoke.com
// in the default configuration. Every request is bounded by the client
// timeout so a stalled provider cannot jam a session.
type JokeClient struct {
	url    string
	client *http.Client
}

// NewJokeClient builds a provider against url with the given per-request
// timeout.
func NewJokeClient(url string, timeout time.Duration) *JokeClient {
	return &JokeClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch performs one GET against the provider and returns the trimmed
// response body.
func (c *JokeClient) Fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("building joke request: %w", err)
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching joke: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("joke provider returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxJokeBytes))
	if err != nil {
		return "", fmt.Errorf("reading joke body: %w", err)
	}
	return strings.TrimSpace(string(body)), nil
}
