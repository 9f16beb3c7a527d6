package model

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/jeux/internal/game"
)

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	p := r.Register("alice")
	require.NotNil(t, p)
	assert.Equal(t, "alice", p.Name())
	assert.Equal(t, InitialRating, p.Rating())
	assert.Equal(t, 1, r.Count())
}

func TestRegistry_RegisterExisting(t *testing.T) {
	r := NewRegistry()

	first := r.Register("alice")
	second := r.Register("alice")

	assert.Same(t, first, second)
	assert.Equal(t, 1, r.Count())
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()
	p := r.Register("alice")

	assert.Same(t, p, r.Get("alice"))
	assert.Nil(t, r.Get("nobody"))
}

func TestRegistry_RatingSurvivesReRegister(t *testing.T) {
	r := NewRegistry()

	alice := r.Register("alice")
	bob := r.Register("bob")
	PostResult(alice, bob, game.RoleFirst)

	// Logging in again under the same name finds the same player.
	again := r.Register("alice")
	assert.Same(t, alice, again)
	assert.Equal(t, 1516, again.Rating())
}

func TestRegistry_ConcurrentRegisterSameName(t *testing.T) {
	r := NewRegistry()

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines)

	players := make([]*Player, goroutines)
	for i := range goroutines {
		go func(idx int) {
			defer wg.Done()
			players[idx] = r.Register("alice")
		}(i)
	}

	wg.Wait()

	assert.Equal(t, 1, r.Count())
	for _, p := range players {
		require.NotNil(t, p)
		assert.Same(t, players[0], p)
	}
}

func TestRegistry_ConcurrentRegisterDistinctNames(t *testing.T) {
	r := NewRegistry()

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := range goroutines {
		go func(idx int) {
			defer wg.Done()
			r.Register(fmt.Sprintf("player%d", idx))
		}(i)
	}

	wg.Wait()

	assert.Equal(t, goroutines, r.Count())
}
