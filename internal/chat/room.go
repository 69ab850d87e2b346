package chat

import (
	"sync"

	"github.com/samber/lo"
)

// Room is one named channel: the set of sessions that receive each
// other's broadcasts. Membership is mutated only through Join and Leave;
// a session belongs to at most one room for its whole life.
type Room struct {
	name string

	mu      sync.RWMutex
	members map[*Session]struct{}
}

// NewRoom constructs an empty room. Callers normally go through
// Registry.Get instead.
func NewRoom(name string) *Room {
	return &Room{
		name:    name,
		members: make(map[*Session]struct{}),
	}
}

// Name returns the room's registry key.
func (r *Room) Name() string {
	return r.name
}

// Join adds s to the member set. Joining twice is a no-op.
func (r *Room) Join(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[s] = struct{}{}
}

// Leave removes s from the member set. Leaving a room the session is not
// in is a no-op.
func (r *Room) Leave(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members, s)
}

// Len reports the current member count.
func (r *Room) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

// snapshot copies the member set so broadcast and lookup can iterate
// without holding the lock while delivering.
func (r *Room) snapshot() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Keys(r.members)
}

// Broadcast delivers msg to every current member, the sender included.
// Delivery is best-effort per member; one dead connection never stops
// the rest of the fanout.
func (r *Room) Broadcast(msg Outgoing) {
	for _, member := range r.snapshot() {
		member.Send(msg)
	}
}

// MemberNames returns the display names of the current members. Order is
// unspecified and duplicate names are possible.
func (r *Room) MemberNames() []string {
	return lo.Map(r.snapshot(), func(s *Session, _ int) string {
		return s.Name()
	})
}

// findMember returns the first member whose display name matches. Names
// are not enforced unique, so ties resolve to an arbitrary match.
func (r *Room) findMember(name string) (*Session, bool) {
	return lo.Find(r.snapshot(), func(s *Session) bool {
		return s.Name() == name
	})
}
