// Package ws provides the WebSocket transport.
// Frames travel as binary WebSocket messages; both sides see a net.Conn.
package ws

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"meisapps/cmdsrv/pkg/config"
	"meisapps/cmdsrv/pkg/transport/tcp"
)

const subprotocol = "bin"

// Listener serves WebSocket upgrades over HTTP and hands out each upgraded
// socket through Accept.
type Listener struct {
	nl  net.Listener
	srv *http.Server

	conns  chan net.Conn
	closed chan struct{}

	once   sync.Once
	mu     sync.Mutex
	srvErr error
}

// Listen starts an HTTP server on addr that upgrades every request to a WebSocket.
func Listen(addr string, deps *config.Dependencies) (net.Listener, error) {
	nl, err := tcp.Listen(addr, deps)
	if err != nil {
		return nil, err
	}

	l := &Listener{
		nl:     nl,
		conns:  make(chan net.Conn),
		closed: make(chan struct{}),
	}
	l.srv = &http.Server{
		Handler:           http.HandlerFunc(l.upgrade),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		err := l.srv.Serve(nl)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.mu.Lock()
			l.srvErr = err
			l.mu.Unlock()
		}
		l.shutdown()
	}()

	return l, nil
}

func (l *Listener) upgrade(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols: []string{subprotocol},
	})
	if err != nil {
		return // Accept already wrote the HTTP error
	}

	conn := newConn(websocket.NetConn(context.Background(), c, websocket.MessageBinary))

	select {
	case l.conns <- conn:
	case <-l.closed:
		conn.Close()
		return
	}

	// the hijacked connection lives as long as this handler
	<-conn.done
}

// Accept waits for the next upgraded WebSocket connection.
func (l *Listener) Accept() (net.Conn, error) {
	select {
	case conn := <-l.conns:
		return conn, nil
	case <-l.closed:
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.srvErr != nil {
			return nil, fmt.Errorf("http.Server.Serve(): %w", l.srvErr)
		}
		return nil, net.ErrClosed
	}
}

// Close stops the HTTP server. Already accepted connections stay open.
func (l *Listener) Close() error {
	l.shutdown()
	err := l.srv.Close()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (l *Listener) shutdown() {
	l.once.Do(func() { close(l.closed) })
}

// Addr returns the listener's network address.
func (l *Listener) Addr() net.Addr {
	return l.nl.Addr()
}

var _ net.Listener = (*Listener)(nil)

// conn signals the HTTP handler goroutine when the socket is closed.
type conn struct {
	net.Conn
	done chan struct{}
	once sync.Once
}

func newConn(c net.Conn) *conn {
	return &conn{Conn: c, done: make(chan struct{})}
}

func (c *conn) Close() error {
	err := c.Conn.Close()
	c.once.Do(func() { close(c.done) })
	return err
}
