// Package game implements a single tic-tac-toe match: roles, move
// parsing, turn order, win detection and board rendering.
package game

import (
	"errors"
	"strings"
	"sync"
)

// Role identifies a side in a game. The zero value means no side: an
// empty board cell, or a drawn result.
type Role uint8

const (
	RoleNone   Role = 0 // empty cell / draw
	RoleFirst  Role = 1 // moves first, plays X
	RoleSecond Role = 2 // moves second, plays O
)

// Valid reports whether r is a playable side.
func (r Role) Valid() bool { return r == RoleFirst || r == RoleSecond }

func (r Role) String() string {
	switch r {
	case RoleFirst:
		return "first"
	case RoleSecond:
		return "second"
	default:
		return "none"
	}
}

// Opponent returns the other side, or RoleNone for RoleNone.
func (r Role) Opponent() Role {
	switch r {
	case RoleFirst:
		return RoleSecond
	case RoleSecond:
		return RoleFirst
	default:
		return RoleNone
	}
}

// Mark returns the board character for the role: 'X', 'O' or space.
func (r Role) Mark() byte {
	switch r {
	case RoleFirst:
		return 'X'
	case RoleSecond:
		return 'O'
	default:
		return ' '
	}
}

var (
	ErrGameOver     = errors.New("game is over")
	ErrNotYourTurn  = errors.New("not this player's turn")
	ErrCellOccupied = errors.New("cell already occupied")
)

// Three rows, three columns, two diagonals.
var winLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Game is the state of one match. All methods are safe for concurrent
// use by both players' connections.
type Game struct {
	mu     sync.Mutex
	board  [9]Role
	next   Role
	over   bool
	winner Role // RoleNone on draw
}

// New returns an empty board with the first player to move.
func New() *Game {
	return &Game{next: RoleFirst}
}

// Apply plays m if it is legal: the game is still running, it is m's
// side to move and the target cell is empty. A move that ends the game
// still flips the side to move, so the final rendered board shows the
// player who would have moved next.
func (g *Game) Apply(m Move) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.over {
		return ErrGameOver
	}
	if m.role != g.next {
		return ErrNotYourTurn
	}
	if g.board[m.cell] != RoleNone {
		return ErrCellOccupied
	}

	g.board[m.cell] = m.role
	g.checkOver()
	g.next = g.next.Opponent()
	return nil
}

// Resign ends the game in favor of role's opponent. It is an error if
// the game has already terminated.
func (g *Game) Resign(role Role) error {
	if !role.Valid() {
		return ErrBadRole
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.over {
		return ErrGameOver
	}
	g.over = true
	g.winner = role.Opponent()
	return nil
}

// Over reports whether the game has terminated.
func (g *Game) Over() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.over
}

// Winner returns the winning side, or RoleNone while the game is
// running and on a draw.
func (g *Game) Winner() Role {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.winner
}

// Render returns the board as shown to players: three marked rows
// separated by dashed lines, then whose mark moves next. The result is
// always exactly 40 bytes.
func (g *Game) Render() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var b strings.Builder
	b.Grow(40)
	for row := range 3 {
		if row > 0 {
			b.WriteString("-----\n")
		}
		for col := range 3 {
			if col > 0 {
				b.WriteByte('|')
			}
			b.WriteByte(g.board[row*3+col].Mark())
		}
		b.WriteByte('\n')
	}
	b.WriteByte(g.next.Mark())
	b.WriteString(" to move\n")
	return b.String()
}

// checkOver updates the terminal state after a move. Completed lines
// are checked before the full-board draw, so a move that fills the
// board and completes a line wins. Caller holds g.mu.
func (g *Game) checkOver() {
	for _, line := range winLines {
		first := g.board[line[0]]
		if first != RoleNone && first == g.board[line[1]] && first == g.board[line[2]] {
			g.over = true
			g.winner = first
			return
		}
	}
	for _, cell := range g.board {
		if cell == RoleNone {
			return
		}
	}
	g.over = true
	g.winner = RoleNone
}
