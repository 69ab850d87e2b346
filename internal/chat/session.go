package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// SendFunc delivers one encoded payload to the client behind a session.
// The transport layer supplies it when the connection is established; it
// may fail at any time once the peer is gone.
type SendFunc func(payload []byte) error

// Session is the server-side state bound to one client connection. It is
// created when the connection is established with a chosen room name,
// joins the room when the client sends a join message, and is torn down
// by HandleClose when the connection drops.
//
// The transport goroutine owns the session; name is the only field other
// goroutines read (during listings and lookups), so it sits behind its
// own lock.
type Session struct {
	id     uuid.UUID
	room   *Room
	send   SendFunc
	jokes  JokeProvider
	logger *slog.Logger

	mu     sync.RWMutex
	name   string
	joined bool

	closeOnce sync.Once
}

// NewSession binds a new session to the named room, creating the room on
// first use. The session is not yet a room member; membership starts
// when the client sends its join message.
func NewSession(registry *Registry, roomName string, send SendFunc, jokes JokeProvider, logger *slog.Logger) *Session {
	id := uuid.New()
	room := registry.Get(roomName)

	logger = logger.With("session", id.String(), "room", room.Name())
	logger.Info("session created")

	return &Session{
		id:     id,
		room:   room,
		send:   send,
		jokes:  jokes,
		logger: logger,
	}
}

// ID returns the session's connection-scoped identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Name returns the current display name, empty until the client joins.
func (s *Session) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

// swapName installs a new display name and returns the previous one.
func (s *Session) swapName(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.name
	s.name = name
	return old
}

// HandleMessage interprets one raw inbound payload and dispatches on its
// type field. A malformed payload or unrecognized type is reported as an
// error; the caller decides whether to drop the message or the
// connection. State changes from a successfully dispatched message are
// already applied when HandleMessage returns.
func (s *Session) HandleMessage(raw []byte) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	switch env.Type {
	case TypeJoin:
		var p joinPayload
		if err := decodePayload(raw, &p); err != nil {
			return err
		}
		s.handleJoin(p.Name)
	case TypeChat:
		var p chatPayload
		if err := decodePayload(raw, &p); err != nil {
			return err
		}
		s.handleChat(p.Text)
	case TypeNameChange:
		var p nameChangePayload
		if err := decodePayload(raw, &p); err != nil {
			return err
		}
		s.handleNameChange(p.Text)
	case TypeGetJoke:
		s.handleJoke()
	case TypeGetMembers:
		s.handleMembers()
	case TypePrivateMessage:
		var p privateMessagePayload
		if err := decodePayload(raw, &p); err != nil {
			return err
		}
		s.handlePrivateMessage(p.User, p.Text)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMessageType, env.Type)
	}
	return nil
}

// handleJoin sets the display name, enters the room, and announces the
// arrival to every member, the newcomer included.
func (s *Session) handleJoin(name string) {
	s.mu.Lock()
	s.name = name
	s.joined = true
	s.mu.Unlock()

	s.room.Join(s)
	s.logger.Info("joined", "name", name)
	s.room.Broadcast(Note(fmt.Sprintf("%s joined %q.", name, s.room.Name())))
}

// handleChat fans a chat line out to the whole room, sender included.
func (s *Session) handleChat(text string) {
	s.room.Broadcast(Chat(s.Name(), text))
}

// handleNameChange swaps the display name and announces the rename. Room
// membership is untouched.
func (s *Session) handleNameChange(newName string) {
	oldName := s.swapName(newName)
	s.logger.Info("renamed", "from", oldName, "to", newName)
	s.room.Broadcast(Note(fmt.Sprintf("%s has changed their name to %s!", oldName, newName)))
}

// handleJoke fetches a joke from the external provider and answers this
// session only. The fetch runs in its own goroutine so a slow provider
// never stalls the read loop, and well away from any room lock.
func (s *Session) handleJoke() {
	go func() {
		joke, err := s.jokes.Fetch(context.Background())
		if err != nil {
			s.logger.Warn("joke fetch failed", "error", err)
			s.Send(Note("The joke service is not answering. Try again later."))
			return
		}
		s.Send(Note(joke + "."))
	}()
}

// handleMembers answers this session only with the comma-joined display
// names of everyone currently in the room.
func (s *Session) handleMembers() {
	s.Send(Note(strings.Join(s.room.MemberNames(), ", ")))
}

// handlePrivateMessage delivers text to the first room member whose
// display name matches user, confirming to the sender; a miss is
// reported back to the sender and reaches nobody else.
func (s *Session) handlePrivateMessage(user, text string) {
	target, found := s.room.findMember(user)
	if !found {
		s.Send(Note(fmt.Sprintf("No user found in room: %s", user)))
		return
	}
	target.Send(Note(text))
	s.Send(Note("Message sent!"))
}

// HandleClose leaves the room and announces the departure. The transport
// calls it exactly once per connection; repeated calls are absorbed.
// A session that never joined leaves silently.
func (s *Session) HandleClose() {
	s.closeOnce.Do(func() {
		s.mu.RLock()
		name, joined := s.name, s.joined
		s.mu.RUnlock()

		s.room.Leave(s)
		if joined {
			s.room.Broadcast(Note(fmt.Sprintf("%s left %s.", name, s.room.Name())))
		}
		s.logger.Info("session closed")
	})
}

// Send marshals msg and pushes it through the transport capability.
// Failures are swallowed: a client that disappeared mid-broadcast must
// not take the fanout down with it.
func (s *Session) Send(msg Outgoing) {
	payload, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("encoding outbound message", "error", err)
		return
	}
	if err := s.send(payload); err != nil {
		s.logger.Debug("dropping undeliverable message", "error", err)
	}
}
