// Package transport creates listeners and dialers for the supported protocols.
// Every transport is surfaced as a plain net.Listener / net.Conn so the server's
// accept loop does not depend on the protocol:
//
//   - tcp: plain TCP sockets
//   - ws:  WebSocket (binary messages) over HTTP
//   - udp: reliable UDP sessions using KCP
//   - mux: yamux sessions over TCP, each stream is one connection
//
// Example usage:
//
//	l, err := transport.Listen(config.ProtoTCP, "127.0.0.1:8080", deps)
//	conn, err := transport.Dial(ctx, config.ProtoWS, "localhost:8080", 10*time.Second, deps)
package transport

import (
	"context"
	"fmt"
	"net"
	"time"

	"meisapps/cmdsrv/pkg/config"
	"meisapps/cmdsrv/pkg/transport/mux"
	"meisapps/cmdsrv/pkg/transport/tcp"
	"meisapps/cmdsrv/pkg/transport/udp"
	"meisapps/cmdsrv/pkg/transport/ws"
)

// Listen opens a listener for proto on addr.
func Listen(proto config.Protocol, addr string, deps *config.Dependencies) (net.Listener, error) {
	switch proto {
	case config.ProtoTCP:
		return tcp.Listen(addr, deps)
	case config.ProtoWS:
		return ws.Listen(addr, deps)
	case config.ProtoUDP:
		return udp.Listen(addr, deps)
	case config.ProtoMux:
		return mux.Listen(addr, deps)
	default:
		return nil, fmt.Errorf("unsupported protocol %d", proto)
	}
}

// Dial connects to addr using proto. A zero timeout means no timeout.
func Dial(ctx context.Context, proto config.Protocol, addr string, timeout time.Duration, deps *config.Dependencies) (net.Conn, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	switch proto {
	case config.ProtoTCP:
		return tcp.Dial(ctx, addr, deps)
	case config.ProtoWS:
		return ws.Dial(ctx, addr)
	case config.ProtoUDP:
		return udp.Dial(ctx, addr, deps)
	case config.ProtoMux:
		return mux.Dial(ctx, addr, deps)
	default:
		return nil, fmt.Errorf("unsupported protocol %d", proto)
	}
}
