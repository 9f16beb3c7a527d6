package game

import (
	"errors"
	"fmt"
)

var (
	ErrBadRole = errors.New("invalid role")
	ErrBadMove = errors.New("unparsable move")
)

// Move is a parsed, validated move: a board cell and the role playing it.
type Move struct {
	cell int // 0..8
	role Role
}

// ParseMove interprets text as a move by role. The first byte selects
// the cell by its one-based number; anything after it is ignored, so
// the rendered form of a move parses back to itself.
func ParseMove(role Role, text string) (Move, error) {
	if !role.Valid() {
		return Move{}, fmt.Errorf("%w: %d", ErrBadRole, role)
	}
	if len(text) == 0 || text[0] < '1' || text[0] > '9' {
		return Move{}, fmt.Errorf("%w: %q", ErrBadMove, text)
	}
	return Move{cell: int(text[0] - '1'), role: role}, nil
}

// Cell returns the zero-based board index.
func (m Move) Cell() int { return m.cell }

// Role returns the side making the move.
func (m Move) Role() Role { return m.role }

// String renders the move the way it is shown to players: the
// one-based cell receiving the player's mark, as in "5<-X".
func (m Move) String() string {
	return fmt.Sprintf("%d<-%c", m.cell+1, m.role.Mark())
}
