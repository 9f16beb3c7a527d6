package server

import (
	"errors"
	"fmt"
	"sync"

	"github.com/udisondev/jeux/internal/model"
)

var (
	ErrServerFull   = errors.New("server full")
	ErrShuttingDown = errors.New("server shutting down")
)

// Registry tracks live sessions in a fixed number of slots and carries
// the logout barrier: WaitEmpty unblocks once every registered session
// has finished its teardown and unregistered.
type Registry struct {
	mu       sync.RWMutex
	slots    []*Session
	draining bool

	wg sync.WaitGroup
}

// NewRegistry creates a registry with capacity slots.
func NewRegistry(capacity int) *Registry {
	return &Registry{slots: make([]*Session, capacity)}
}

// Register claims a free slot for sess. It fails when every slot is
// taken or the server has started draining.
func (r *Registry) Register(sess *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.draining {
		return ErrShuttingDown
	}
	for i, cur := range r.slots {
		if cur == nil {
			r.slots[i] = sess
			r.wg.Add(1)
			return nil
		}
	}
	return ErrServerFull
}

// Unregister frees sess's slot. Callers finish the session's logout
// before unregistering, so the barrier only opens after every farewell
// has gone out.
func (r *Registry) Unregister(sess *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, cur := range r.slots {
		if cur == sess {
			r.slots[i] = nil
			r.wg.Done()
			return
		}
	}
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, cur := range r.slots {
		if cur != nil {
			n++
		}
	}
	return n
}

// Sessions returns a snapshot of live sessions in slot order.
func (r *Registry) Sessions() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Session, 0, len(r.slots))
	for _, cur := range r.slots {
		if cur != nil {
			out = append(out, cur)
		}
	}
	return out
}

// FindByName returns the session logged in as name, or nil.
func (r *Registry) FindByName(name string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, cur := range r.slots {
		if cur == nil {
			continue
		}
		if p := cur.Player(); p != nil && p.Name() == name {
			return cur
		}
	}
	return nil
}

// Login atomically claims name for sess: the claim fails while any
// other live session is logged in under the same name. On success the
// player is fetched from players, created on first login, and bound to
// sess.
func (r *Registry) Login(sess *Session, players *model.Registry, name string) (*model.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, cur := range r.slots {
		if cur == nil || cur == sess {
			continue
		}
		if p := cur.Player(); p != nil && p.Name() == name {
			return nil, fmt.Errorf("%q already logged in", name)
		}
	}

	player := players.Register(name)
	sess.setPlayer(player)
	return player, nil
}

// ShutdownAll starts the drain: no further registrations are accepted
// and every live session's read side is half-closed, sending each
// service loop through its normal logout path.
func (r *Registry) ShutdownAll() {
	r.mu.Lock()
	r.draining = true
	sessions := make([]*Session, 0, len(r.slots))
	for _, cur := range r.slots {
		if cur != nil {
			sessions = append(sessions, cur)
		}
	}
	r.mu.Unlock()

	for _, sess := range sessions {
		sess.ShutdownRead()
	}
}

// WaitEmpty blocks until every registered session has unregistered.
func (r *Registry) WaitEmpty() {
	r.wg.Wait()
}
