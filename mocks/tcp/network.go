// Package tcp provides an in-memory TCP network for tests.
// Listeners and dialers communicate through net.Pipe pairs; no sockets are opened.
package tcp

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"
)

// MockTCPNetwork simulates a TCP network for testing without real network connections.
type MockTCPNetwork struct {
	listeners    map[string]*MockTCPListener
	mu           sync.Mutex
	listenerCond *sync.Cond // signals listener changes

	listens  int
	nextPort int
}

// NewMockTCPNetwork creates a new mock TCP network.
func NewMockTCPNetwork() *MockTCPNetwork {
	m := &MockTCPNetwork{
		listeners: make(map[string]*MockTCPListener),
		nextPort:  40000,
	}
	m.listenerCond = sync.NewCond(&m.mu)
	return m
}

// ListenTCP creates a mock TCP listener on the specified address.
// Port 0 is replaced by a free mock port, like the kernel would.
func (m *MockTCPNetwork) ListenTCP(network string, laddr *net.TCPAddr) (net.Listener, error) {
	if network != "tcp" {
		return nil, fmt.Errorf("unsupported network type: %s", network)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	addr := *laddr
	if addr.IP == nil {
		addr.IP = net.IPv4(127, 0, 0, 1)
	}
	if addr.Port == 0 {
		m.nextPort++
		addr.Port = m.nextPort
	}

	key := addr.String()
	if _, exists := m.listeners[key]; exists {
		return nil, fmt.Errorf("address already in use: %s", key)
	}

	listener := &MockTCPListener{
		addr:    &addr,
		connCh:  make(chan *MockTCPConn, 10),
		failCh:  make(chan error, 1),
		closeCh: make(chan struct{}),
		network: m,
	}
	m.listeners[key] = listener
	m.listens++
	m.listenerCond.Broadcast()

	return listener, nil
}

// Listens returns how many listeners have been opened on the network so far.
func (m *MockTCPNetwork) Listens() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listens
}

// DialTCP creates a mock TCP connection to the specified address.
func (m *MockTCPNetwork) DialTCP(network string, laddr, raddr *net.TCPAddr) (net.Conn, error) {
	if network != "tcp" {
		return nil, fmt.Errorf("unsupported network type: %s", network)
	}

	m.mu.Lock()
	listener, exists := m.listeners[raddr.String()]
	if laddr == nil {
		m.nextPort++
		laddr = &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: m.nextPort}
	}
	m.mu.Unlock()

	if !exists {
		return nil, fmt.Errorf("connection refused: no listener on %s", raddr.String())
	}

	clientConn, serverConn := net.Pipe()

	mockClient := &MockTCPConn{
		Conn:       clientConn,
		localAddr:  laddr,
		remoteAddr: raddr,
	}
	mockServer := &MockTCPConn{
		Conn:       serverConn,
		localAddr:  raddr,
		remoteAddr: laddr,
	}

	select {
	case listener.connCh <- mockServer:
	case <-listener.closeCh:
		clientConn.Close()
		serverConn.Close()
		return nil, fmt.Errorf("connection refused: listener closed")
	case <-time.After(1 * time.Second):
		clientConn.Close()
		serverConn.Close()
		return nil, fmt.Errorf("connection timeout")
	}

	return mockClient, nil
}

// DialTCPContext matches config.TCPDialerFunc.
func (m *MockTCPNetwork) DialTCPContext(ctx context.Context, network string, laddr, raddr *net.TCPAddr) (net.Conn, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	return m.DialTCP(network, laddr, raddr)
}

// WaitForListener waits for a listener to be created on addr within the
// given timeout in milliseconds.
func (m *MockTCPNetwork) WaitForListener(addr string, timeoutMs int) (*MockTCPListener, error) {
	deadline := time.Now().Add(time.Duration(timeoutMs) * time.Millisecond)

	m.mu.Lock()
	defer m.mu.Unlock()

	for {
		if l, exists := m.listeners[addr]; exists {
			return l, nil
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("timeout waiting for listener on %s", addr)
		}

		// wake up periodically to re-check the deadline
		go func() {
			time.Sleep(50 * time.Millisecond)
			m.listenerCond.Broadcast()
		}()
		m.listenerCond.Wait()
	}
}
