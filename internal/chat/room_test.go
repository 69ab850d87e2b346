package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMember(t *testing.T, registry *Registry, room, name string) (*Session, *sink) {
	t.Helper()
	out := &sink{}
	s := NewSession(registry, room, out.send, nil, discardLogger())
	require.NoError(t, s.HandleMessage([]byte(`{"type":"join","name":"`+name+`"}`)))
	return s, out
}

func TestRoom_JoinThenLeaveRestoresMemberSet(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	room := registry.Get("lobby")

	s := NewSession(registry, "lobby", (&sink{}).send, nil, discardLogger())

	req.Equal(0, room.Len())
	room.Join(s)
	req.Equal(1, room.Len())
	room.Leave(s)
	req.Equal(0, room.Len())

	// Leaving again is a no-op.
	room.Leave(s)
	req.Equal(0, room.Len())
}

func TestRoom_JoinIsIdempotent(t *testing.T) {
	registry := NewRegistry()
	room := registry.Get("lobby")
	s := NewSession(registry, "lobby", (&sink{}).send, nil, discardLogger())

	room.Join(s)
	room.Join(s)

	require.Equal(t, 1, room.Len())
}

func TestRoom_BroadcastReachesEveryMemberIncludingSender(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	room := registry.Get("lobby")

	_, outA := newMember(t, registry, "lobby", "A")
	_, outB := newMember(t, registry, "lobby", "B")
	_, outC := newMember(t, registry, "lobby", "C")

	room.Broadcast(Chat("A", "hi"))

	for _, out := range []*sink{outA, outB, outC} {
		chats := out.byType(TypeChat)
		req.Len(chats, 1)
		req.Equal("A", chats[0].Name)
		req.Equal("hi", chats[0].Text)
	}
}

func TestRoom_BroadcastSurvivesFailingMember(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	room := registry.Get("lobby")

	_, outA := newMember(t, registry, "lobby", "A")
	_, outB := newMember(t, registry, "lobby", "B")
	outA.fail = true

	room.Broadcast(Note("still here"))

	for _, note := range outA.byType(TypeNote) {
		req.NotEqual("still here", note.Text)
	}
	notes := outB.byType(TypeNote)
	req.NotEmpty(notes)
	req.Equal("still here", notes[len(notes)-1].Text)
}

func TestRoom_MemberNames(t *testing.T) {
	registry := NewRegistry()
	room := registry.Get("lobby")

	newMember(t, registry, "lobby", "A")
	newMember(t, registry, "lobby", "B")

	assert.ElementsMatch(t, []string{"A", "B"}, room.MemberNames())
}
