// Package tcp provides the plain TCP transport.
package tcp

import (
	"context"
	"fmt"
	"net"

	"meisapps/cmdsrv/pkg/config"
)

// Listen creates a TCP listener on addr.
// The deps parameter is optional and can be nil to use default implementations.
func Listen(addr string, deps *config.Dependencies) (net.Listener, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("net.ResolveTCPAddr(tcp, %s): %w", addr, err)
	}

	listen := config.GetTCPListenerFunc(deps)
	l, err := listen("tcp", tcpAddr)
	if err != nil {
		return nil, fmt.Errorf("listen(tcp, %s): %w", addr, err)
	}

	return l, nil
}

// Dial establishes a TCP connection to addr with keep-alive enabled.
func Dial(ctx context.Context, addr string, deps *config.Dependencies) (net.Conn, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("net.ResolveTCPAddr(tcp, %s): %w", addr, err)
	}

	dial := config.GetTCPDialerFunc(deps)
	conn, err := dial(ctx, "tcp", nil, tcpAddr)
	if err != nil {
		return nil, fmt.Errorf("dial(tcp, %s): %w", addr, err)
	}

	if tc, ok := conn.(*net.TCPConn); ok {
		tc.SetKeepAlive(true)
	}
	return conn, nil
}
