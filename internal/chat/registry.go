package chat

import "sync"

// Registry maps room names to live Room instances. Rooms are created on
// first reference and kept for the life of the process; nothing ever
// removes one. The registry is built once in main and handed to the
// transport layer, there is no package-level instance.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Room)}
}

// Get returns the room with the given name, creating it on first
// reference. Safe for concurrent use; creation happens exactly once per
// name no matter how many sessions race on it.
func (r *Registry) Get(name string) *Room {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[name]
	if !ok {
		room = NewRoom(name)
		r.rooms[name] = room
	}
	return room
}

// Len reports how many rooms exist.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}
