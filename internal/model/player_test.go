package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/jeux/internal/game"
)

func TestNewPlayer(t *testing.T) {
	p := NewPlayer("alice")
	assert.Equal(t, "alice", p.Name())
	assert.Equal(t, InitialRating, p.Rating())
}

func TestPostResult_EvenMatch(t *testing.T) {
	first := NewPlayer("alice")
	second := NewPlayer("bob")

	PostResult(first, second, game.RoleFirst)

	assert.Equal(t, 1516, first.Rating())
	assert.Equal(t, 1484, second.Rating())
}

func TestPostResult_SecondWins(t *testing.T) {
	first := NewPlayer("alice")
	second := NewPlayer("bob")

	PostResult(first, second, game.RoleSecond)

	assert.Equal(t, 1484, first.Rating())
	assert.Equal(t, 1516, second.Rating())
}

func TestPostResult_DrawEqualRatings(t *testing.T) {
	first := NewPlayer("alice")
	second := NewPlayer("bob")

	PostResult(first, second, game.RoleNone)

	assert.Equal(t, InitialRating, first.Rating())
	assert.Equal(t, InitialRating, second.Rating())
}

func TestPostResult_DrawPullsRatingsTogether(t *testing.T) {
	first := NewPlayer("alice")
	second := NewPlayer("bob")
	first.adjustRating(16)   // 1516
	second.adjustRating(-16) // 1484

	PostResult(first, second, game.RoleNone)

	assert.Equal(t, 1515, first.Rating())
	assert.Equal(t, 1485, second.Rating())
}

func TestPostResult_UpsetWin(t *testing.T) {
	first := NewPlayer("alice")
	second := NewPlayer("bob")
	first.adjustRating(-100) // 1400
	second.adjustRating(100) // 1600

	PostResult(first, second, game.RoleFirst)

	// The weaker side gains more than an even match would pay out.
	assert.Equal(t, 1424, first.Rating())
	assert.Equal(t, 1576, second.Rating())
}

func TestPostResult_ExpectedWinPaysLittle(t *testing.T) {
	first := NewPlayer("alice")
	second := NewPlayer("bob")
	first.adjustRating(400) // 1900

	PostResult(first, second, game.RoleFirst)

	require.Greater(t, first.Rating(), 1900)
	assert.Less(t, first.Rating()-1900, 16)
	assert.Equal(t, first.Rating()-1900, InitialRating-second.Rating())
}
