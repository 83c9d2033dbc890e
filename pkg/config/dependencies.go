package config

import (
	"context"
	"io"
	"net"
	"os"

	"meisapps/cmdsrv/pkg/crypto"
)

// Dependencies contains injectable dependencies for testing and customization.
// All fields are optional and will use default implementations if nil.
type Dependencies struct {
	TCPDialer      TCPDialerFunc
	TCPListener    TCPListenerFunc
	PacketListener PacketListenerFunc
	Stdin          StdinFunc
	Decrypt        DecryptFunc
}

// TCPDialerFunc is a function that dials a TCP connection.
// It returns a net.Conn to allow for mock implementations.
type TCPDialerFunc func(ctx context.Context, network string, laddr, raddr *net.TCPAddr) (net.Conn, error)

// TCPListenerFunc is a function that creates a TCP listener.
// It returns a net.Listener to allow for mock implementations.
type TCPListenerFunc func(network string, laddr *net.TCPAddr) (net.Listener, error)

// PacketListenerFunc is a function that creates a packet listener.
// It returns a net.PacketConn to allow for mock implementations.
type PacketListenerFunc func(network, address string) (net.PacketConn, error)

// StdinFunc is a function that returns a reader for stdin.
type StdinFunc func() io.Reader

// DecryptFunc decrypts the payload of one frame with the shared key.
type DecryptFunc func(data []byte, key string) ([]byte, error)

// GetTCPDialerFunc returns the TCP dialer function from dependencies, or a default implementation.
// If deps is nil or deps.TCPDialer is nil, returns a function that uses net.Dialer.
func GetTCPDialerFunc(deps *Dependencies) TCPDialerFunc {
	if deps != nil && deps.TCPDialer != nil {
		return deps.TCPDialer
	}
	return func(ctx context.Context, network string, laddr, raddr *net.TCPAddr) (net.Conn, error) {
		d := net.Dialer{}
		if laddr != nil {
			d.LocalAddr = laddr
		}
		return d.DialContext(ctx, network, raddr.String())
	}
}

// GetTCPListenerFunc returns the TCP listener function from dependencies, or a default implementation.
// The default listener sets SO_REUSEADDR so a stopped server's port can be bound again at once.
func GetTCPListenerFunc(deps *Dependencies) TCPListenerFunc {
	if deps != nil && deps.TCPListener != nil {
		return deps.TCPListener
	}
	return func(network string, laddr *net.TCPAddr) (net.Listener, error) {
		lc := net.ListenConfig{Control: reuseAddrControl}
		return lc.Listen(context.Background(), network, laddr.String())
	}
}

// GetPacketListenerFunc returns the packet listener function from dependencies, or a default implementation.
// If deps is nil or deps.PacketListener is nil, returns a function that uses net.ListenPacket.
func GetPacketListenerFunc(deps *Dependencies) PacketListenerFunc {
	if deps != nil && deps.PacketListener != nil {
		return deps.PacketListener
	}
	return func(network, address string) (net.PacketConn, error) {
		return net.ListenPacket(network, address)
	}
}

// GetStdinFunc returns the stdin function from dependencies, or a default implementation.
// If deps is nil or deps.Stdin is nil, returns a function that uses os.Stdin.
func GetStdinFunc(deps *Dependencies) StdinFunc {
	if deps != nil && deps.Stdin != nil {
		return deps.Stdin
	}
	return func() io.Reader {
		return os.Stdin
	}
}

// GetDecryptFunc returns the decrypt function from dependencies, or crypto.DecryptPacket.
func GetDecryptFunc(deps *Dependencies) DecryptFunc {
	if deps != nil && deps.Decrypt != nil {
		return deps.Decrypt
	}
	return crypto.DecryptPacket
}
