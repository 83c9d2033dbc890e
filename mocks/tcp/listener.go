package tcp

import (
	"net"
	"sync"
)

// MockTCPListener is a mock implementation of net.TCPListener.
type MockTCPListener struct {
	addr    *net.TCPAddr
	connCh  chan *MockTCPConn
	failCh  chan error
	closeCh chan struct{}
	closed  bool
	mu      sync.Mutex
	network *MockTCPNetwork
}

// Accept waits for and returns the next connection to the listener.
func (l *MockTCPListener) Accept() (net.Conn, error) {
	select {
	case err := <-l.failCh:
		return nil, err
	default:
	}

	select {
	case conn := <-l.connCh:
		return conn, nil
	case err := <-l.failCh:
		return nil, err
	case <-l.closeCh:
		return nil, net.ErrClosed
	}
}

// FailAccept makes the pending or next Accept call return err.
func (l *MockTCPListener) FailAccept(err error) {
	select {
	case l.failCh <- err:
	default:
	}
}

// Close closes the listener and frees its address.
func (l *MockTCPListener) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	close(l.closeCh)

	l.network.mu.Lock()
	delete(l.network.listeners, l.addr.String())
	l.network.mu.Unlock()

	return nil
}

// Closed reports whether Close has been called.
func (l *MockTCPListener) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// Addr returns the listener's network address.
func (l *MockTCPListener) Addr() net.Addr {
	return l.addr
}

var _ net.Listener = (*MockTCPListener)(nil)
