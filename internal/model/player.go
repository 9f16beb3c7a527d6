// Package model holds per-user server state: players and their ratings.
// A player outlives any single connection; ratings persist for as long
// as the server runs.
package model

import (
	"math"
	"sync"

	"github.com/udisondev/jeux/internal/game"
)

// InitialRating is assigned on first login.
const InitialRating = 1500

// ratingK is the Elo K-factor: the maximum rating change per game.
const ratingK = 32

// Player is a registered user.
type Player struct {
	mu     sync.Mutex
	name   string
	rating int
}

// NewPlayer creates a player with the initial rating.
func NewPlayer(name string) *Player {
	return &Player{name: name, rating: InitialRating}
}

// Name returns the username. Names never change after registration.
func (p *Player) Name() string { return p.name }

// Rating returns the current rating.
func (p *Player) Rating() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rating
}

func (p *Player) adjustRating(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rating += delta
}

// PostResult applies the Elo adjustment for a finished game between
// first and second, passed in role order. winner is the winning side,
// or RoleNone for a draw. Expected scores follow the standard logistic
// curve; deltas are truncated toward zero. Callers post each result
// exactly once.
func PostResult(first, second *Player, winner game.Role) {
	var s1, s2 float64
	switch winner {
	case game.RoleFirst:
		s1, s2 = 1, 0
	case game.RoleSecond:
		s1, s2 = 0, 1
	default:
		s1, s2 = 0.5, 0.5
	}

	r1 := float64(first.Rating())
	r2 := float64(second.Rating())
	e1 := 1 / (1 + math.Pow(10, (r2-r1)/400))
	e2 := 1 / (1 + math.Pow(10, (r1-r2)/400))

	first.adjustRating(int(ratingK * (s1 - e1)))
	second.adjustRating(int(ratingK * (s2 - e2)))
}
