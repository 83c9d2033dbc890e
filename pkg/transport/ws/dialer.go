package ws

import (
	"context"
	"fmt"
	"net"

	"github.com/coder/websocket"
)

// Dial opens a WebSocket connection to ws://addr.
func Dial(ctx context.Context, addr string) (net.Conn, error) {
	url := fmt.Sprintf("ws://%s", addr)

	c, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		Subprotocols: []string{subprotocol},
	})
	if err != nil {
		return nil, fmt.Errorf("websocket.Dial(%s): %w", url, err)
	}

	// ctx only bounds the handshake; the connection outlives it
	return websocket.NetConn(context.Background(), c, websocket.MessageBinary), nil
}
