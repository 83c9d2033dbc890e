// Package udp provides a reliable UDP transport using KCP.
// A KCP session only becomes visible to the listener once the client has
// sent its first segment.
//
// KCP has no close handshake. When one side closes, the peer is not told:
// its reads block until a deadline or the dial timeout fires. A send
// waiting for replies over udp:// therefore ends on --wait, not on the
// server going away.
package udp

import (
	"context"
	"errors"
	"fmt"
	"net"

	kcp "github.com/xtaci/kcp-go/v5"

	"meisapps/cmdsrv/pkg/config"
)

// Listener accepts KCP sessions on a UDP socket.
type Listener struct {
	kl *kcp.Listener
	pc net.PacketConn
}

// Listen creates a KCP listener on addr.
// The deps parameter is optional and can be nil to use default implementations.
func Listen(addr string, deps *config.Dependencies) (net.Listener, error) {
	if _, err := net.ResolveUDPAddr("udp", addr); err != nil {
		return nil, fmt.Errorf("net.ResolveUDPAddr(udp, %s): %w", addr, err)
	}

	listen := config.GetPacketListenerFunc(deps)
	pc, err := listen("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen(udp, %s): %w", addr, err)
	}

	// no KCP-level crypto or FEC, payloads are encrypted above this layer
	kl, err := kcp.ServeConn(nil, 0, 0, pc)
	if err != nil {
		pc.Close()
		return nil, fmt.Errorf("kcp.ServeConn(): %w", err)
	}

	return &Listener{kl: kl, pc: pc}, nil
}

// Accept waits for the next KCP session.
func (l *Listener) Accept() (net.Conn, error) {
	s, err := l.kl.AcceptKCP()
	if err != nil {
		return nil, fmt.Errorf("AcceptKCP(): %w", err)
	}

	tune(s)
	return s, nil
}

// Close stops the listener and releases the UDP socket.
func (l *Listener) Close() error {
	err := l.kl.Close()
	if perr := l.pc.Close(); err == nil && !errors.Is(perr, net.ErrClosed) {
		err = perr
	}
	return err
}

// Addr returns the listener's network address.
func (l *Listener) Addr() net.Addr {
	return l.pc.LocalAddr()
}

var _ net.Listener = (*Listener)(nil)

// Dial establishes a KCP session to addr.
func Dial(ctx context.Context, addr string, deps *config.Dependencies) (net.Conn, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("net.ResolveUDPAddr(udp, %s): %w", addr, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	listen := config.GetPacketListenerFunc(deps)
	pc, err := listen("udp", ":0")
	if err != nil {
		return nil, fmt.Errorf("listen(udp, :0): %w", err)
	}

	s, err := kcp.NewConn(raddr.String(), nil, 0, 0, pc)
	if err != nil {
		pc.Close()
		return nil, fmt.Errorf("kcp.NewConn(%s): %w", raddr, err)
	}

	tune(s)
	return &session{UDPSession: s, pc: pc}, nil
}

// session owns the packet conn it was dialed on.
type session struct {
	*kcp.UDPSession
	pc net.PacketConn
}

func (s *session) Close() error {
	err := s.UDPSession.Close()
	s.pc.Close()
	return err
}

// SetNoDelay(nodelay, interval, resend, nc): low latency, fast resend, no congestion control
func tune(s *kcp.UDPSession) {
	s.SetNoDelay(1, 10, 2, 1)
	s.SetStreamMode(true)
	s.SetWindowSize(1024, 1024)
}
