package server

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/jeux/internal/game"
	"github.com/udisondev/jeux/internal/protocol"
)

func newTestInvitation(t *testing.T) *Invitation {
	t.Helper()
	return NewInvitation(newTestSession(t), newTestSession(t), game.RoleSecond)
}

func TestSession_AddInvitation_SequentialIDs(t *testing.T) {
	sess := newTestSession(t)

	for want := range uint8(3) {
		id, err := sess.AddInvitation(newTestInvitation(t))
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}
}

func TestSession_AddInvitation_ReusesFreedSlot(t *testing.T) {
	sess := newTestSession(t)

	first := newTestInvitation(t)
	middle := newTestInvitation(t)
	last := newTestInvitation(t)
	for _, inv := range []*Invitation{first, middle, last} {
		_, err := sess.AddInvitation(inv)
		require.NoError(t, err)
	}

	id, err := sess.RemoveInvitation(middle)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), id)
	assert.Nil(t, sess.Invitation(1))

	// The freed slot is the lowest one, so the next add lands there.
	next := newTestInvitation(t)
	id, err = sess.AddInvitation(next)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), id)
	assert.Equal(t, next, sess.Invitation(1))
}

func TestSession_RemoveInvitation_Absent(t *testing.T) {
	sess := newTestSession(t)
	_, err := sess.RemoveInvitation(newTestInvitation(t))
	assert.Error(t, err)
}

func TestSession_IDOf(t *testing.T) {
	sess := newTestSession(t)
	inv := newTestInvitation(t)

	_, ok := sess.IDOf(inv)
	assert.False(t, ok)

	want, err := sess.AddInvitation(inv)
	require.NoError(t, err)

	got, ok := sess.IDOf(inv)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestSession_Invitations_SkipsFreedSlots(t *testing.T) {
	sess := newTestSession(t)

	kept := newTestInvitation(t)
	dropped := newTestInvitation(t)
	_, err := sess.AddInvitation(dropped)
	require.NoError(t, err)
	_, err = sess.AddInvitation(kept)
	require.NoError(t, err)
	_, err = sess.RemoveInvitation(dropped)
	require.NoError(t, err)

	assert.Equal(t, []*Invitation{kept}, sess.Invitations())
}

func TestSession_Send(t *testing.T) {
	client, srv := net.Pipe()
	t.Cleanup(func() {
		client.Close()
		srv.Close()
	})
	sess := NewSession(srv)

	got := make(chan *protocol.Packet, 1)
	go func() {
		p, err := protocol.ReadPacket(client)
		if err == nil {
			got <- p
		}
		close(got)
	}()

	require.NoError(t, sess.Send(&protocol.Packet{
		Type:    protocol.TypeInvited,
		ID:      3,
		Role:    2,
		Payload: []byte("alice"),
	}))

	p, ok := <-got
	require.True(t, ok, "client read no packet")
	assert.Equal(t, protocol.TypeInvited, p.Type)
	assert.Equal(t, uint8(3), p.ID)
	assert.Equal(t, uint8(2), p.Role)
	assert.Equal(t, []byte("alice"), p.Payload)
}

func TestSession_ClosedSessionRefusesWork(t *testing.T) {
	sess := newTestSession(t)
	sess.Close()
	sess.Close() // idempotent

	err := sess.Send(&protocol.Packet{Type: protocol.TypeAck})
	assert.ErrorIs(t, err, ErrSessionClosed)

	_, err = sess.AddInvitation(newTestInvitation(t))
	assert.ErrorIs(t, err, ErrSessionClosed)
}
