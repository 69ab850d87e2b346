package chat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
)

// sink records everything a session delivers, standing in for the
// transport send capability.
type sink struct {
	mu   sync.Mutex
	fail bool
	msgs []Outgoing
}

func (s *sink) send(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail {
		return errors.New("connection gone")
	}
	var msg Outgoing
	if err := json.Unmarshal(payload, &msg); err != nil {
		return err
	}
	s.msgs = append(s.msgs, msg)
	return nil
}

func (s *sink) all() []Outgoing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Outgoing(nil), s.msgs...)
}

func (s *sink) byType(msgType string) []Outgoing {
	var out []Outgoing
	for _, msg := range s.all() {
		if msg.Type == msgType {
			out = append(out, msg)
		}
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubJokes satisfies JokeProvider without the network.
type stubJokes struct {
	joke string
	err  error
}

func (s stubJokes) Fetch(_ context.Context) (string, error) {
	return s.joke, s.err
}
