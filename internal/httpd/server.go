package httpd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Executor runs closures asynchronously; *worker.Pool satisfies it
type Executor interface {
	Execute(fn func()) error
}

// Server accepts TCP connections and submits one job per connection
type Server struct {
	executor Executor
	handler  *Handler
	logger   zerolog.Logger

	mu       sync.Mutex
	listener net.Listener
}

// NewServer creates a server dispatching connections to executor
func NewServer(executor Executor, handler *Handler, logger zerolog.Logger) *Server {
	return &Server{
		executor: executor,
		handler:  handler,
		logger:   logger,
	}
}

// Listen binds addr. It must be called before Serve.
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	return nil
}

// Addr returns the bound address, or nil before Listen
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve accepts connections until ctx is done, the listener fails, or the
// executor refuses a connection. It returns nil after a shutdown requested
// through ctx.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return errors.New("server is not listening")
	}

	defer ln.Close()
	stop := context.AfterFunc(ctx, func() {
		ln.Close()
	})
	defer stop()

	s.logger.Info().Str("addr", ln.Addr().String()).Msg("accepting connections")

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		connID := uuid.NewString()
		s.logger.Info().
			Str("conn_id", connID).
			Str("remote", conn.RemoteAddr().String()).
			Msg("connection established")

		log := s.logger.With().Str("conn_id", connID).Logger()
		handler := &Handler{config: s.handler.config, logger: log}
		if err := s.executor.Execute(func() {
			handler.Serve(conn)
		}); err != nil {
			log.Error().Err(err).Msg("dispatch failed")
			conn.Close()
			return fmt.Errorf("dispatch connection %s: %w", connID, err)
		}
	}
}

// ListenAndServe binds addr and serves until ctx is done
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if err := s.Listen(addr); err != nil {
		return err
	}
	return s.Serve(ctx)
}
