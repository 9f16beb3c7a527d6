package model

import "sync"

// Registry maps usernames to players, creating a player on first
// login. Entries are never removed, so a returning user keeps the
// rating earned under that name.
type Registry struct {
	mu      sync.RWMutex
	players map[string]*Player
}

// NewRegistry creates an empty player registry.
func NewRegistry() *Registry {
	return &Registry{players: make(map[string]*Player)}
}

// Register returns the player with the given name, creating one with
// the initial rating on first sight.
func (r *Registry) Register(name string) *Player {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.players[name]; ok {
		return p
	}
	p := NewPlayer(name)
	r.players[name] = p
	return p
}

// Get returns the player with the given name, or nil.
func (r *Registry) Get(name string) *Player {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.players[name]
}

// Count returns the number of registered players.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}
