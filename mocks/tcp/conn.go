package tcp

import (
	"net"
	"sync/atomic"
)

// MockTCPConn is one end of an in-memory connection with TCP addresses.
type MockTCPConn struct {
	net.Conn
	localAddr  *net.TCPAddr
	remoteAddr *net.TCPAddr

	closes atomic.Int32
}

// LocalAddr returns the local network address.
func (c *MockTCPConn) LocalAddr() net.Addr {
	return c.localAddr
}

// RemoteAddr returns the remote network address.
func (c *MockTCPConn) RemoteAddr() net.Addr {
	return c.remoteAddr
}

// Close closes the pipe and counts the call.
func (c *MockTCPConn) Close() error {
	c.closes.Add(1)
	return c.Conn.Close()
}

// Closes returns how often Close has been called.
func (c *MockTCPConn) Closes() int {
	return int(c.closes.Load())
}

var _ net.Conn = (*MockTCPConn)(nil)
