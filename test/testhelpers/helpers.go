// Package testhelpers provides shared utilities for integration tests:
// spinning up a full relay on an ephemeral port, dialing websocket
// clients into rooms, and exchanging protocol envelopes with deadlines.
package testhelpers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"groupchat/internal/chat"
	"groupchat/internal/server"
)

// TestConfig returns a permissive configuration suited to tests: every
// origin allowed and a rate limit no test will hit.
func TestConfig() server.Config {
	return server.Config{
		Host:            "127.0.0.1",
		AllowedOrigins:  "*",
		MaxMessageSize:  512,
		SendBufferSize:  64,
		RateLimitBurst:  1000,
		RateLimitRefill: time.Second,
		JokeTimeout:     time.Second,
		ShutdownTimeout: 2 * time.Second,
		LogLevel:        "error",
	}
}

// StaticJokes satisfies chat.JokeProvider with a canned response.
type StaticJokes struct {
	Joke string
}

// Fetch returns the canned joke.
func (s StaticJokes) Fetch(_ context.Context) (string, error) {
	return s.Joke, nil
}

// NewChatServer starts a complete relay on an httptest server and
// returns it with its gateway for shutdown assertions.
func NewChatServer(t *testing.T, cfg server.Config, jokes chat.JokeProvider) (*httptest.Server, *server.Gateway) {
	t.Helper()

	logger := server.NewLogger(cfg.LogLevel)
	gateway := server.NewGateway(logger)
	ws := server.NewWebSocketHandler(cfg, gateway, chat.NewRegistry(), jokes, logger)

	ts := httptest.NewServer(server.SetupRoutes(ws))
	t.Cleanup(ts.Close)
	return ts, gateway
}

// Dial opens a websocket connection into the named room.
func Dial(t *testing.T, ts *httptest.Server, room string) *websocket.Conn {
	t.Helper()
	return DialWithOrigin(t, ts, room, "http://localhost:8080")
}

// DialWithOrigin opens a websocket connection presenting the given
// Origin header, for access-control tests.
func DialWithOrigin(t *testing.T, ts *httptest.Server, room, origin string) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?room=" + url.QueryEscape(room)
	header := http.Header{}
	header.Set("Origin", origin)

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if resp != nil {
		_ = resp.Body.Close()
	}
	require.NoError(t, err, "websocket dial failed")
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// Send writes v as a JSON frame.
func Send(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(v))
}

// Join sends the join message for the given display name.
func Join(t *testing.T, conn *websocket.Conn, name string) {
	t.Helper()
	Send(t, conn, map[string]string{"type": "join", "name": name})
}

// ReadEnvelope reads the next outbound envelope, failing the test after
// a short deadline so a missing delivery cannot hang the suite.
func ReadEnvelope(t *testing.T, conn *websocket.Conn) chat.Outgoing {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg chat.Outgoing
	require.NoError(t, conn.ReadJSON(&msg), "expected an envelope before the read deadline")
	return msg
}

// ExpectNote reads the next envelope and asserts it is a note with the
// exact text.
func ExpectNote(t *testing.T, conn *websocket.Conn, text string) {
	t.Helper()

	msg := ReadEnvelope(t, conn)
	require.Equal(t, "note", msg.Type)
	require.Equal(t, text, msg.Text)
}
