package server

import (
	"errors"
	"fmt"
	"math"
	"net"
	"sync"

	"github.com/udisondev/jeux/internal/model"
	"github.com/udisondev/jeux/internal/protocol"
)

var (
	ErrSessionClosed  = errors.New("session closed")
	ErrInvitationList = errors.New("invitation list full")
)

// netMu serializes outbound writes across all sessions, so frames
// fanned out to several clients never interleave mid-frame.
var netMu sync.Mutex

// Session is one client connection: the socket, the player bound to it
// by LOGIN, and the invitations addressed by this client's local ids.
type Session struct {
	conn   net.Conn
	remote string

	mu      sync.Mutex
	player  *model.Player
	invites []*Invitation // sparse; index is the client-visible id

	closeOnce sync.Once
	closeCh   chan struct{}
}

// NewSession wraps an accepted connection.
func NewSession(conn net.Conn) *Session {
	return &Session{
		conn:    conn,
		remote:  conn.RemoteAddr().String(),
		closeCh: make(chan struct{}),
	}
}

// Remote returns the client's address for logging.
func (s *Session) Remote() string { return s.remote }

// Player returns the logged-in player, or nil before LOGIN.
func (s *Session) Player() *model.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player
}

func (s *Session) setPlayer(p *model.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player = p
}

// Send stamps and writes one packet to the client. Sending on a closed
// session fails without touching the connection.
func (s *Session) Send(p *protocol.Packet) error {
	select {
	case <-s.closeCh:
		return ErrSessionClosed
	default:
	}

	netMu.Lock()
	defer netMu.Unlock()
	if err := protocol.WritePacket(s.conn, p); err != nil {
		return fmt.Errorf("sending %v to %s: %w", p.Type, s.remote, err)
	}
	return nil
}

// SendAck confirms the current request with an optional payload.
func (s *Session) SendAck(payload []byte) error {
	return s.Send(&protocol.Packet{Type: protocol.TypeAck, Payload: payload})
}

// SendNack rejects the current request.
func (s *Session) SendNack() error {
	return s.Send(&protocol.Packet{Type: protocol.TypeNack})
}

// AddInvitation stores inv in the lowest free slot and returns the id
// the client will use to refer to it.
func (s *Session) AddInvitation(inv *Invitation) (uint8, error) {
	select {
	case <-s.closeCh:
		return 0, ErrSessionClosed
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, cur := range s.invites {
		if cur == nil {
			s.invites[i] = inv
			return uint8(i), nil
		}
	}
	if len(s.invites) > math.MaxUint8 {
		return 0, ErrInvitationList
	}
	s.invites = append(s.invites, inv)
	return uint8(len(s.invites) - 1), nil
}

// RemoveInvitation frees inv's slot and returns the id it had.
func (s *Session) RemoveInvitation(inv *Invitation) (uint8, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, cur := range s.invites {
		if cur == inv {
			s.invites[i] = nil
			return uint8(i), nil
		}
	}
	return 0, fmt.Errorf("invitation not in list")
}

// Invitation returns the invitation the client calls id, or nil.
func (s *Session) Invitation(id uint8) *Invitation {
	s.mu.Lock()
	defer s.mu.Unlock()

	if int(id) >= len(s.invites) {
		return nil
	}
	return s.invites[id]
}

// IDOf returns inv's id in this session's list.
func (s *Session) IDOf(inv *Invitation) (uint8, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, cur := range s.invites {
		if cur == inv {
			return uint8(i), true
		}
	}
	return 0, false
}

// Invitations returns a snapshot of the live invitations.
func (s *Session) Invitations() []*Invitation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Invitation, 0, len(s.invites))
	for _, inv := range s.invites {
		if inv != nil {
			out = append(out, inv)
		}
	}
	return out
}

// Close marks the session closed so later sends fail fast. Safe to
// call more than once; the connection itself is closed by the service
// loop.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.closeCh) })
}

// ShutdownRead half-closes the read side: the service loop wakes with
// EOF and drains through its normal logout path, while writes stay
// open for the farewell notifications.
func (s *Session) ShutdownRead() {
	if tc, ok := s.conn.(*net.TCPConn); ok {
		tc.CloseRead()
		return
	}
	s.conn.Close()
}
