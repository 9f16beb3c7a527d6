package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/udisondev/jeux/internal/config"
	"github.com/udisondev/jeux/internal/model"
	"github.com/udisondev/jeux/internal/protocol"
)

// Server accepts game clients on a TCP port and runs one service loop
// per connection.
type Server struct {
	cfg      config.GameServer
	port     int
	players  *model.Registry
	sessions *Registry
	handler  *Handler

	listener net.Listener
	mu       sync.Mutex
}

// NewServer creates a game server listening on port once Run is called.
func NewServer(cfg config.GameServer, port int) *Server {
	players := model.NewRegistry()
	sessions := NewRegistry(cfg.MaxClients)
	return &Server{
		cfg:      cfg,
		port:     port,
		players:  players,
		sessions: sessions,
		handler:  NewHandler(sessions, players),
	}
}

// Sessions returns the session registry.
func (s *Server) Sessions() *Registry { return s.sessions }

// Players returns the player registry.
func (s *Server) Players() *model.Registry { return s.players }

// Addr returns the listening address, or nil before Run.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Close stops the listener. Established connections are not touched.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

// Drain performs a graceful shutdown: stop accepting, wake every
// client's service loop and wait until all of them have logged out and
// unregistered.
func (s *Server) Drain() {
	s.Close()
	s.sessions.ShutdownAll()
	s.sessions.WaitEmpty()
}

// Run listens on the configured address and serves until ctx is
// canceled or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.BindAddress, s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	return s.Serve(ctx, ln)
}

// Serve accepts connections from ln until ctx is canceled or ln is
// closed, then waits for every service loop to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	var wg sync.WaitGroup
	wg.Go(func() {
		slog.Info("game server started", "address", ln.Addr(), "max_clients", s.cfg.MaxClients)
		s.acceptLoop(ctx, &wg, ln)
	})

	wg.Wait()

	return nil
}

func (s *Server) acceptLoop(ctx context.Context, wg *sync.WaitGroup, ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			slog.Error("failed to accept new connection", "err", err)
			continue
		}
		wg.Go(func() {
			s.serveConn(ctx, conn)
		})
	}
}

// serveConn is the per-connection service loop: register the session,
// read and dispatch requests until the stream ends, then log out and
// unregister. Unregistering strictly follows the logout so the drain
// barrier only opens once every farewell notification is on the wire.
func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	sess := NewSession(conn)
	if err := s.sessions.Register(sess); err != nil {
		slog.Warn("connection refused", "remote", sess.Remote(), "err", err)
		return
	}
	slog.Info("new connection", "remote", sess.Remote())

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			sess.ShutdownRead()
		case <-done:
		}
	}()

	for {
		p, err := protocol.ReadPacket(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				slog.Warn("dropping connection", "remote", sess.Remote(), "err", err)
			}
			break
		}
		slog.Debug("packet received",
			"type", p.Type, "id", p.ID, "role", p.Role, "size", len(p.Payload),
			"remote", sess.Remote())

		if !p.Type.IsRequest() {
			slog.Warn("non-request packet from client", "type", p.Type, "remote", sess.Remote())
			if sess.SendNack() != nil {
				break
			}
			continue
		}
		if err := s.handler.Handle(sess, p); err != nil {
			slog.Warn("dropping connection", "remote", sess.Remote(), "err", err)
			break
		}
	}

	s.handler.Logout(sess)
	sess.Close()
	s.sessions.Unregister(sess)
	slog.Info("connection closed", "remote", sess.Remote())
}
