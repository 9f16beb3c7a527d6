package server

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/udisondev/jeux/internal/game"
)

// InvitationState is the lifecycle of an invitation.
type InvitationState int32

const (
	InvitationOpen     InvitationState = iota // sent, awaiting the target's answer
	InvitationAccepted                        // game created and running
	InvitationClosed                          // revoked, declined, or game finished
)

var (
	ErrInvitationNotOpen = errors.New("invitation not open")
	ErrInvitationClosed  = errors.New("invitation already closed")
	ErrGameRunning       = errors.New("game still running")
)

// Invitation pairs two sessions for one prospective game. The source
// proposed it and chose the target's role; once the target accepts,
// the invitation owns the running game. Each side refers to it by its
// own local id, so the invitation itself carries a uuid to correlate
// both sides in the logs.
type Invitation struct {
	id         uuid.UUID
	source     *Session
	target     *Session
	sourceRole game.Role
	targetRole game.Role

	mu    sync.Mutex
	state InvitationState
	game  *game.Game
}

// NewInvitation creates an open invitation from source to target. The
// source picked targetRole for the target and plays the other side.
func NewInvitation(source, target *Session, targetRole game.Role) *Invitation {
	return &Invitation{
		id:         uuid.New(),
		source:     source,
		target:     target,
		sourceRole: targetRole.Opponent(),
		targetRole: targetRole,
	}
}

// ID returns the correlation id used in logs.
func (inv *Invitation) ID() uuid.UUID { return inv.id }

// Source returns the inviting session.
func (inv *Invitation) Source() *Session { return inv.source }

// Target returns the invited session.
func (inv *Invitation) Target() *Session { return inv.target }

// SourceRole returns the side the source plays.
func (inv *Invitation) SourceRole() game.Role { return inv.sourceRole }

// TargetRole returns the side the target plays.
func (inv *Invitation) TargetRole() game.Role { return inv.targetRole }

// RoleOf returns the side s plays, or RoleNone for a stranger.
func (inv *Invitation) RoleOf(s *Session) game.Role {
	switch s {
	case inv.source:
		return inv.sourceRole
	case inv.target:
		return inv.targetRole
	default:
		return game.RoleNone
	}
}

// Peer returns the session opposite s, or nil for a stranger.
func (inv *Invitation) Peer(s *Session) *Session {
	switch s {
	case inv.source:
		return inv.target
	case inv.target:
		return inv.source
	default:
		return nil
	}
}

// State returns the current lifecycle state.
func (inv *Invitation) State() InvitationState {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.state
}

// Game returns the running game, or nil before acceptance.
func (inv *Invitation) Game() *game.Game {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.game
}

// Accept moves the invitation from open to accepted and starts the
// game. Accepting twice, or after a close, is an error.
func (inv *Invitation) Accept() (*game.Game, error) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	if inv.state != InvitationOpen {
		return nil, ErrInvitationNotOpen
	}
	inv.state = InvitationAccepted
	inv.game = game.New()
	return inv.game, nil
}

// Close ends the invitation's life. A running game is resigned on
// behalf of role; a game that already reached its end needs no resign;
// RoleNone closes only gameless or finished ones. A second close is an
// error, so of all the racing ways an invitation can die — resign,
// final move, logout on either side — exactly one caller proceeds
// with teardown.
func (inv *Invitation) Close(role game.Role) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	if inv.state == InvitationClosed {
		return ErrInvitationClosed
	}
	switch {
	case inv.game == nil || inv.game.Over():
	case !role.Valid():
		return ErrGameRunning
	default:
		if err := inv.game.Resign(role); err != nil {
			return err
		}
	}
	inv.state = InvitationClosed
	return nil
}
