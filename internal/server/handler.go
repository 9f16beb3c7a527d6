package server

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/udisondev/jeux/internal/game"
	"github.com/udisondev/jeux/internal/model"
	"github.com/udisondev/jeux/internal/protocol"
)

// Handler processes one request at a time for any session. State
// changes commit before peers are notified, and the requester's
// ACK/NACK always goes out last, so a client that hears ACK knows its
// peers were told first.
type Handler struct {
	sessions *Registry
	players  *model.Registry
}

// NewHandler creates the request handler.
func NewHandler(sessions *Registry, players *model.Registry) *Handler {
	return &Handler{sessions: sessions, players: players}
}

// Handle dispatches one request. The returned error means the response
// could not be delivered and the service loop should tear down.
func (h *Handler) Handle(sess *Session, p *protocol.Packet) error {
	if p.Type != protocol.TypeLogin && sess.Player() == nil {
		slog.Warn("request before login", "type", p.Type, "remote", sess.Remote())
		return sess.SendNack()
	}

	switch p.Type {
	case protocol.TypeLogin:
		return h.handleLogin(sess, p)
	case protocol.TypeUsers:
		return h.handleUsers(sess)
	case protocol.TypeInvite:
		return h.handleInvite(sess, p)
	case protocol.TypeRevoke:
		return h.handleRevoke(sess, p)
	case protocol.TypeAccept:
		return h.handleAccept(sess, p)
	case protocol.TypeDecline:
		return h.handleDecline(sess, p)
	case protocol.TypeMove:
		return h.handleMove(sess, p)
	case protocol.TypeResign:
		return h.handleResign(sess, p)
	default:
		slog.Warn("unexpected packet type", "type", p.Type, "remote", sess.Remote())
		return sess.SendNack()
	}
}

// handleLogin binds a player to the session. The username is the
// payload as-is; a name already logged in elsewhere, an empty name, or
// a second LOGIN on the same session is refused.
func (h *Handler) handleLogin(sess *Session, p *protocol.Packet) error {
	if sess.Player() != nil {
		slog.Warn("second login attempt", "username", sess.Player().Name(), "remote", sess.Remote())
		return sess.SendNack()
	}

	name := string(p.Payload)
	if name == "" {
		slog.Warn("login with empty username", "remote", sess.Remote())
		return sess.SendNack()
	}

	player, err := h.sessions.Login(sess, h.players, name)
	if err != nil {
		slog.Warn("login refused", "username", name, "remote", sess.Remote(), "err", err)
		return sess.SendNack()
	}

	slog.Info("login", "username", player.Name(), "rating", player.Rating(), "remote", sess.Remote())
	return sess.SendAck(nil)
}

// handleUsers answers with one line per logged-in player, the
// requester included: username, a tab, the rating, a newline.
func (h *Handler) handleUsers(sess *Session) error {
	var sb strings.Builder
	for _, cur := range h.sessions.Sessions() {
		player := cur.Player()
		if player == nil {
			continue
		}
		fmt.Fprintf(&sb, "%s\t%d\n", player.Name(), player.Rating())
	}
	return sess.SendAck([]byte(sb.String()))
}

// handleInvite creates an invitation to the player named in the
// payload, who will play the role in the header. The target learns its
// own id for the invitation from INVITED; the source learns its id
// from the ACK.
func (h *Handler) handleInvite(sess *Session, p *protocol.Packet) error {
	targetRole := game.Role(p.Role)
	if !targetRole.Valid() {
		slog.Warn("invite with invalid role", "role", p.Role, "remote", sess.Remote())
		return sess.SendNack()
	}

	targetName := string(p.Payload)
	target := h.sessions.FindByName(targetName)
	if target == nil || target == sess {
		slog.Warn("invite target unavailable", "target", targetName, "remote", sess.Remote())
		return sess.SendNack()
	}

	inv := NewInvitation(sess, target, targetRole)
	srcID, err := sess.AddInvitation(inv)
	if err != nil {
		slog.Warn("invite refused", "invitation", inv.ID(), "err", err)
		return sess.SendNack()
	}
	tgtID, err := target.AddInvitation(inv)
	if err != nil {
		sess.RemoveInvitation(inv)
		slog.Warn("invite refused", "invitation", inv.ID(), "err", err)
		return sess.SendNack()
	}

	source := sess.Player()
	slog.Info("invitation sent",
		"invitation", inv.ID(),
		"source", source.Name(),
		"target", targetName,
		"targetRole", targetRole)

	target.Send(&protocol.Packet{
		Type:    protocol.TypeInvited,
		ID:      tgtID,
		Role:    uint8(targetRole),
		Payload: []byte(source.Name()),
	})
	return sess.Send(&protocol.Packet{Type: protocol.TypeAck, ID: srcID})
}

// handleRevoke withdraws an open invitation. Only the source may
// revoke, and only before the target accepts.
func (h *Handler) handleRevoke(sess *Session, p *protocol.Packet) error {
	inv := sess.Invitation(p.ID)
	if inv == nil {
		return sess.SendNack()
	}
	if err := h.revoke(sess, inv); err != nil {
		slog.Warn("revoke refused", "invitation", inv.ID(), "remote", sess.Remote(), "err", err)
		return sess.SendNack()
	}
	return sess.SendAck(nil)
}

// handleDecline refuses an open invitation. Only the target declines.
func (h *Handler) handleDecline(sess *Session, p *protocol.Packet) error {
	inv := sess.Invitation(p.ID)
	if inv == nil {
		return sess.SendNack()
	}
	if err := h.decline(sess, inv); err != nil {
		slog.Warn("decline refused", "invitation", inv.ID(), "remote", sess.Remote(), "err", err)
		return sess.SendNack()
	}
	return sess.SendAck(nil)
}

// handleAccept starts the game. The first board goes to whoever moves
// first: inside the source's ACCEPTED when the source opens, otherwise
// inside the target's ACK.
func (h *Handler) handleAccept(sess *Session, p *protocol.Packet) error {
	inv := sess.Invitation(p.ID)
	if inv == nil || inv.Target() != sess {
		return sess.SendNack()
	}
	source := inv.Source()
	srcID, ok := source.IDOf(inv)
	if !ok {
		return sess.SendNack()
	}

	g, err := inv.Accept()
	if err != nil {
		slog.Warn("accept refused", "invitation", inv.ID(), "remote", sess.Remote(), "err", err)
		return sess.SendNack()
	}

	slog.Info("invitation accepted",
		"invitation", inv.ID(),
		"source", source.Player().Name(),
		"target", sess.Player().Name())

	board := []byte(g.Render())
	accepted := &protocol.Packet{Type: protocol.TypeAccepted, ID: srcID}
	if inv.SourceRole() == game.RoleFirst {
		accepted.Payload = board
	}
	source.Send(accepted)

	ack := &protocol.Packet{Type: protocol.TypeAck, ID: p.ID}
	if inv.TargetRole() == game.RoleFirst {
		ack.Payload = board
	}
	return sess.Send(ack)
}

// handleMove applies a move to the game behind the invitation. The
// peer always receives the resulting board, and a move that ends the
// game finishes it for both sides before the mover's ACK.
func (h *Handler) handleMove(sess *Session, p *protocol.Packet) error {
	inv := sess.Invitation(p.ID)
	if inv == nil {
		return sess.SendNack()
	}
	g := inv.Game()
	if g == nil {
		return sess.SendNack()
	}
	peer := inv.Peer(sess)
	peerID, ok := peer.IDOf(inv)
	if !ok {
		return sess.SendNack()
	}

	m, err := game.ParseMove(inv.RoleOf(sess), string(p.Payload))
	if err != nil {
		slog.Warn("move refused", "invitation", inv.ID(), "remote", sess.Remote(), "err", err)
		return sess.SendNack()
	}
	if err := g.Apply(m); err != nil {
		slog.Warn("move refused", "invitation", inv.ID(), "move", m.String(), "err", err)
		return sess.SendNack()
	}

	slog.Info("move applied",
		"invitation", inv.ID(),
		"username", sess.Player().Name(),
		"move", m.String())

	peer.Send(&protocol.Packet{
		Type:    protocol.TypeMoved,
		ID:      peerID,
		Payload: []byte(g.Render()),
	})

	if g.Over() && inv.Close(game.RoleNone) == nil {
		h.finishGame(sess, inv, peerID)
	}
	return sess.SendAck(nil)
}

// handleResign gives up the game behind the invitation.
func (h *Handler) handleResign(sess *Session, p *protocol.Packet) error {
	inv := sess.Invitation(p.ID)
	if inv == nil {
		return sess.SendNack()
	}
	if err := h.resign(sess, inv); err != nil {
		slog.Warn("resign refused", "invitation", inv.ID(), "remote", sess.Remote(), "err", err)
		return sess.SendNack()
	}
	return sess.SendAck(nil)
}

// Logout cleans up everything sess owns before it unregisters: open
// invitations are revoked or declined, accepted ones resigned whatever
// the session's side. A revoke or decline that loses a race to the
// peer's accept falls back to resigning the fresh game. Remaining
// errors are races with the peers' own teardown and are left alone.
func (h *Handler) Logout(sess *Session) {
	for _, inv := range sess.Invitations() {
		var err error
		switch {
		case inv.Game() != nil:
			err = h.resign(sess, inv)
		case inv.Source() == sess:
			if err = h.revoke(sess, inv); errors.Is(err, ErrGameRunning) {
				err = h.resign(sess, inv)
			}
		default:
			if err = h.decline(sess, inv); errors.Is(err, ErrGameRunning) {
				err = h.resign(sess, inv)
			}
		}
		if err != nil {
			slog.Debug("logout cleanup", "invitation", inv.ID(), "err", err)
		}
	}

	if player := sess.Player(); player != nil {
		slog.Info("logout", "username", player.Name(), "rating", player.Rating())
	}
}

// revoke withdraws inv on behalf of its source. Committing the close
// is the serialization point: a concurrent accept or decline leaves
// nothing here to do.
func (h *Handler) revoke(sess *Session, inv *Invitation) error {
	if inv.Source() != sess {
		return fmt.Errorf("only the source may revoke")
	}
	if err := inv.Close(game.RoleNone); err != nil {
		return err
	}
	if _, err := sess.RemoveInvitation(inv); err != nil {
		return err
	}

	target := inv.Target()
	if tgtID, err := target.RemoveInvitation(inv); err == nil {
		target.Send(&protocol.Packet{Type: protocol.TypeRevoked, ID: tgtID})
	}
	slog.Info("invitation revoked", "invitation", inv.ID())
	return nil
}

// decline refuses inv on behalf of its target.
func (h *Handler) decline(sess *Session, inv *Invitation) error {
	if inv.Target() != sess {
		return fmt.Errorf("only the target may decline")
	}
	if err := inv.Close(game.RoleNone); err != nil {
		return err
	}
	if _, err := sess.RemoveInvitation(inv); err != nil {
		return err
	}

	source := inv.Source()
	if srcID, err := source.RemoveInvitation(inv); err == nil {
		source.Send(&protocol.Packet{Type: protocol.TypeDeclined, ID: srcID})
	}
	slog.Info("invitation declined", "invitation", inv.ID())
	return nil
}

// resign ends the running game in the peer's favor. Closing the
// invitation doubles as the claim on the game's end: whoever loses the
// race, to a final move or to the peer resigning first, stops here.
func (h *Handler) resign(sess *Session, inv *Invitation) error {
	role := inv.RoleOf(sess)
	if !role.Valid() {
		return fmt.Errorf("session is not part of the invitation")
	}
	if inv.Game() == nil {
		return fmt.Errorf("no game to resign")
	}
	peer := inv.Peer(sess)
	peerID, ok := peer.IDOf(inv)
	if !ok {
		return fmt.Errorf("invitation gone from peer's list")
	}
	if err := inv.Close(role); err != nil {
		return err
	}

	slog.Info("game resigned", "invitation", inv.ID(), "username", sess.Player().Name())
	peer.Send(&protocol.Packet{Type: protocol.TypeResigned, ID: peerID})
	h.finishGame(sess, inv, peerID)
	return nil
}

// finishGame settles a game that just reached a terminal state: ENDED
// to the acting side then to the peer, only then the invitation leaves
// both lists, and the rating adjustment is posted exactly once, with
// the players in role order.
func (h *Handler) finishGame(sess *Session, inv *Invitation, peerID uint8) {
	winner := inv.Game().Winner()
	peer := inv.Peer(sess)

	if ownID, ok := sess.IDOf(inv); ok {
		sess.Send(&protocol.Packet{Type: protocol.TypeEnded, ID: ownID, Role: uint8(winner)})
	}
	peer.Send(&protocol.Packet{Type: protocol.TypeEnded, ID: peerID, Role: uint8(winner)})

	sess.RemoveInvitation(inv)
	peer.RemoveInvitation(inv)

	first, second := inv.Source().Player(), inv.Target().Player()
	if inv.SourceRole() != game.RoleFirst {
		first, second = second, first
	}
	model.PostResult(first, second, winner)

	slog.Info("game ended",
		"invitation", inv.ID(),
		"winner", winner,
		"first", first.Name(), "firstRating", first.Rating(),
		"second", second.Name(), "secondRating", second.Rating())
}
