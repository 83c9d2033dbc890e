// Package server implements the encrypted command server: a listener whose
// accept goroutine wraps each connection in a client, a registry of live
// clients for shutdown, and the dispatcher that turns frames into packets.
//
// The accept loop is fail-stop. The first Accept error that is not caused by
// Stop ends the loop, closes the listener and leaves the server stopped; it
// is never retried. The cause is logged and available through Err.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"sync/atomic"

	"meisapps/cmdsrv/pkg/client"
	"meisapps/cmdsrv/pkg/config"
	"meisapps/cmdsrv/pkg/format"
	"meisapps/cmdsrv/pkg/log"
	"meisapps/cmdsrv/pkg/semaphore"
	"meisapps/cmdsrv/pkg/transport"
)

// Server accepts connections and dispatches their packets to a Handler.
type Server struct {
	cfg     *config.Server
	handler Handler
	logger  *log.Logger
	deps    *config.Dependencies
	decrypt config.DecryptFunc

	reg     *registry
	running atomic.Bool

	mu      sync.Mutex // serializes Start and Stop
	l       net.Listener
	cancel  context.CancelFunc
	done    chan struct{}
	logFile *os.File
	traffic *log.TrafficLog

	errMu sync.Mutex
	err   error
}

// New creates a stopped server.
// The deps parameter is optional and can be nil to use default implementations.
func New(cfg *config.Server, h Handler, logger *log.Logger, deps *config.Dependencies) (*Server, error) {
	if h == nil {
		return nil, errors.New("handler is nil")
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}

	done := make(chan struct{})
	close(done)

	return &Server{
		cfg:     cfg,
		handler: h,
		logger:  logger,
		deps:    deps,
		decrypt: config.GetDecryptFunc(deps),
		reg:     &registry{},
		done:    done,
	}, nil
}

// Start opens the listener and launches the accept goroutine.
// It does nothing if the server is already running.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return nil
	}
	<-s.done // a previous accept goroutine may still be on its way out
	if s.cancel != nil {
		s.cancel() // left over from a run that died on its own
	}
	s.closeTrafficLog()

	addr := format.Addr(s.cfg.Host, s.cfg.Port)
	l, err := transport.Listen(s.cfg.Protocol, addr, s.deps)
	if err != nil {
		return fmt.Errorf("transport.Listen(%s, %s): %w", s.cfg.Protocol, addr, err)
	}

	if s.cfg.LogFile != "" {
		s.traffic, s.logFile, err = log.OpenTrafficLog(s.cfg.LogFile)
		if err != nil {
			l.Close()
			return fmt.Errorf("opening traffic log %s: %w", s.cfg.LogFile, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.l = l
	s.cancel = cancel
	s.done = make(chan struct{})
	s.setErr(nil)
	s.reg.reopen()

	s.running.Store(true)
	go s.acceptLoop(ctx, l, semaphore.New(s.cfg.MaxConns, s.cfg.Timeout), s.done)

	s.logger.InfoMsg("Server started on %s://%s\n", s.cfg.Protocol, l.Addr())
	return nil
}

func (s *Server) acceptLoop(ctx context.Context, l net.Listener, sem *semaphore.ConnSemaphore, done chan struct{}) {
	defer close(done)

	for s.running.Load() {
		conn, err := l.Accept()
		if err != nil {
			// Stop closes the listener after clearing running, so only an
			// unexpected failure wins this swap
			if s.running.CompareAndSwap(true, false) {
				s.setErr(err)
				s.logger.ErrorMsg("Accept loop stopped, server is down: %s\n", err)
				l.Close()
			}
			return
		}

		s.handle(ctx, conn, sem)
	}
}

func (s *Server) handle(ctx context.Context, conn net.Conn, sem *semaphore.ConnSemaphore) {
	if err := sem.Acquire(ctx); err != nil {
		s.logger.ErrorMsg("Rejecting connection from %s: %s\n", conn.RemoteAddr(), err)
		conn.Close()
		return
	}

	c := client.New(log.NewLoggedConn(conn, s.traffic), s.dispatch, s.logger)
	if !s.reg.add(c) {
		c.Close() // stopping
		sem.Release()
		return
	}
	c.OnClose(func(c *client.Client) {
		s.reg.remove(c)
		sem.Release()
	})

	s.logger.InfoMsg("New connection %s from %s\n", c.ID(), c.RemoteAddr())
}

// Stop closes all clients and the listener and waits for the accept
// goroutine to exit. It does nothing if the server is not running.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	s.cancel()
	s.closeClients()

	err := s.l.Close()
	<-s.done
	s.closeTrafficLog()

	s.logger.InfoMsg("Server stopped\n")
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("closing listener: %w", err)
	}
	return nil
}

// Serve starts the server and blocks until ctx is cancelled or the accept
// loop fails, then stops it. In both cases every connection of the run is
// closed and the traffic log is released before Serve returns.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
	case <-s.Done():
	}

	stopErr := s.Stop()
	if err := s.Err(); err != nil {
		// the loop died on its own, so Stop had nothing to do
		s.mu.Lock()
		if !s.running.Load() {
			s.closeClients()
			s.closeTrafficLog()
		}
		s.mu.Unlock()
		return fmt.Errorf("accept loop: %w", err)
	}
	return stopErr
}

// closeClients drains the registry and closes every client, best effort.
func (s *Server) closeClients() {
	for _, c := range s.reg.drain() {
		if err := c.Close(); err != nil {
			s.logger.VerboseMsg("Closing connection %s: %s\n", c.ID(), err)
		}
	}
}

func (s *Server) closeTrafficLog() {
	if s.logFile != nil {
		s.logFile.Close()
		s.logFile = nil
		s.traffic = nil
	}
}

func (s *Server) setErr(err error) {
	s.errMu.Lock()
	s.err = err
	s.errMu.Unlock()
}

// Err returns why the accept loop died on its own, or nil if it did not.
func (s *Server) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

// Running reports whether the accept loop is active.
func (s *Server) Running() bool {
	return s.running.Load()
}

// Done is closed when the current accept goroutine has exited.
func (s *Server) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Addr returns the listener address of the current or last run, nil before the first Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.l == nil {
		return nil
	}
	return s.l.Addr()
}

// Clients returns the live clients in accept order.
func (s *Server) Clients() []*client.Client {
	return s.reg.snapshot()
}
