// Message envelopes exchanged with clients. Inbound payloads carry a
// "type" discriminator selecting one of the variants below; outbound
// payloads are always a "note" or a "chat".
package chat

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Inbound message types accepted from clients.
const (
	TypeJoin           = "join"
	TypeChat           = "chat"
	TypeNameChange     = "name-change"
	TypeGetJoke        = "get-joke"
	TypeGetMembers     = "get-members"
	TypePrivateMessage = "private-message"
)

// Outbound message types.
const (
	TypeNote = "note"
)

var (
	// ErrMalformedMessage reports a payload that is not valid JSON or is
	// missing a field its variant requires.
	ErrMalformedMessage = errors.New("malformed message")

	// ErrUnknownMessageType reports a payload whose type field matches no
	// known variant.
	ErrUnknownMessageType = errors.New("unknown message type")
)

var validate = validator.New()

type envelope struct {
	Type string `json:"type"`
}

type joinPayload struct {
	Name string `json:"name" validate:"required"`
}

type chatPayload struct {
	Text string `json:"text" validate:"required"`
}

type nameChangePayload struct {
	Text string `json:"text" validate:"required"`
}

type privateMessagePayload struct {
	User string `json:"user" validate:"required"`
	Text string `json:"text" validate:"required"`
}

// decodePayload unmarshals raw into the variant struct v and checks the
// fields that variant declares as required.
func decodePayload(raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return nil
}

// Outgoing is the envelope written back to clients. Exactly two shapes
// leave the server: {"type":"note","text":...} and
// {"type":"chat","name":...,"text":...}.
type Outgoing struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
	Text string `json:"text"`
}

// Note builds a system/informational message.
func Note(text string) Outgoing {
	return Outgoing{Type: TypeNote, Text: text}
}

// Chat builds a broadcast chat line attributed to name.
func Chat(name, text string) Outgoing {
	return Outgoing{Type: TypeChat, Name: name, Text: text}
}
