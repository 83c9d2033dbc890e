// Package mux carries many logical connections over one TCP connection using
// yamux. On the listening side every stream opened by a peer is returned by
// Accept as its own net.Conn.
package mux

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"sync"

	"github.com/hashicorp/yamux"

	"meisapps/cmdsrv/pkg/config"
	"meisapps/cmdsrv/pkg/transport/tcp"
)

// Listener accepts yamux streams from all sessions on a TCP listener.
type Listener struct {
	nl net.Listener

	streams chan net.Conn
	closed  chan struct{}

	mu       sync.Mutex
	sessions map[*yamux.Session]struct{}
	err      error
	once     sync.Once
}

// Listen creates a TCP listener on addr and starts accepting yamux sessions.
func Listen(addr string, deps *config.Dependencies) (net.Listener, error) {
	nl, err := tcp.Listen(addr, deps)
	if err != nil {
		return nil, err
	}

	l := &Listener{
		nl:       nl,
		streams:  make(chan net.Conn),
		closed:   make(chan struct{}),
		sessions: make(map[*yamux.Session]struct{}),
	}
	go l.acceptSessions()

	return l, nil
}

func (l *Listener) acceptSessions() {
	for {
		conn, err := l.nl.Accept()
		if err != nil {
			l.shutdown(fmt.Errorf("Accept(): %w", err))
			return
		}

		sess, err := yamux.Server(conn, muxConfig())
		if err != nil {
			conn.Close()
			continue
		}

		if !l.track(sess) {
			sess.Close()
			return
		}
		go l.acceptStreams(sess)
	}
}

func (l *Listener) acceptStreams(sess *yamux.Session) {
	defer l.untrack(sess)

	for {
		stream, err := sess.Accept()
		if err != nil {
			return // session gone, the peer may reconnect
		}

		select {
		case l.streams <- stream:
		case <-l.closed:
			stream.Close()
			return
		}
	}
}

func (l *Listener) track(sess *yamux.Session) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	select {
	case <-l.closed:
		return false
	default:
	}
	l.sessions[sess] = struct{}{}
	return true
}

func (l *Listener) untrack(sess *yamux.Session) {
	l.mu.Lock()
	delete(l.sessions, sess)
	l.mu.Unlock()
}

// Accept waits for the next stream from any session.
func (l *Listener) Accept() (net.Conn, error) {
	select {
	case s := <-l.streams:
		return s, nil
	case <-l.closed:
		l.mu.Lock()
		defer l.mu.Unlock()
		return nil, l.err
	}
}

// Close stops accepting sessions and tears down all of them.
func (l *Listener) Close() error {
	l.shutdown(net.ErrClosed)
	err := l.nl.Close()
	if errors.Is(err, net.ErrClosed) {
		err = nil
	}

	l.mu.Lock()
	sessions := make([]*yamux.Session, 0, len(l.sessions))
	for s := range l.sessions {
		sessions = append(sessions, s)
	}
	l.mu.Unlock()

	for _, s := range sessions {
		s.Close() // best effort
	}
	return err
}

// shutdown records the first reason the listener stopped.
func (l *Listener) shutdown(err error) {
	l.once.Do(func() {
		l.mu.Lock()
		l.err = err
		l.mu.Unlock()
		close(l.closed)
	})
}

// Addr returns the listener's network address.
func (l *Listener) Addr() net.Addr {
	return l.nl.Addr()
}

var _ net.Listener = (*Listener)(nil)

// Dial opens a yamux session to addr and returns its first stream.
// Closing the stream also closes the session.
func Dial(ctx context.Context, addr string, deps *config.Dependencies) (net.Conn, error) {
	conn, err := tcp.Dial(ctx, addr, deps)
	if err != nil {
		return nil, err
	}

	sess, err := yamux.Client(conn, muxConfig())
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("yamux.Client(conn): %w", err)
	}

	stream, err := sess.Open()
	if err != nil {
		sess.Close()
		return nil, fmt.Errorf("session.Open(): %w", err)
	}

	return &sessionStream{Conn: stream, sess: sess}, nil
}

type sessionStream struct {
	net.Conn
	sess *yamux.Session
}

func (s *sessionStream) Close() error {
	err := s.Conn.Close()
	s.sess.Close()
	return err
}

func muxConfig() *yamux.Config {
	cfg := yamux.DefaultConfig()
	cfg.LogOutput = nil
	cfg.Logger = log.New(io.Discard, "", log.LstdFlags) // discard all console logging in yamux
	return cfg
}
