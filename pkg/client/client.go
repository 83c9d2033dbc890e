// Package client wraps one transport connection carrying encrypted frames.
//
// A Client owns a read goroutine that delivers every complete frame to a
// DataFunc, strictly in arrival order. It is used on both ends: the server
// wraps every accepted connection, the send command wraps its dialed one.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/google/uuid"

	"meisapps/cmdsrv/pkg/config"
	"meisapps/cmdsrv/pkg/crypto"
	"meisapps/cmdsrv/pkg/format"
	"meisapps/cmdsrv/pkg/log"
	"meisapps/cmdsrv/pkg/transport"
	"meisapps/cmdsrv/pkg/wire"
)

// DataFunc receives one raw frame. Returning an error ends the connection.
type DataFunc func(c *Client, frame []byte) error

// Client is a connected peer.
type Client struct {
	id     string
	conn   net.Conn
	onData DataFunc
	logger *log.Logger

	wmu sync.Mutex // serializes frame writes

	mu       sync.Mutex
	onClose  []func(*Client)
	finished bool
	err      error

	closeOnce sync.Once
	done      chan struct{}
}

// New wraps conn and starts reading frames from it.
func New(conn net.Conn, onData DataFunc, logger *log.Logger) *Client {
	c := &Client{
		id:     uuid.NewString(),
		conn:   conn,
		onData: onData,
		logger: logger,
		done:   make(chan struct{}),
	}

	go c.readLoop()
	return c
}

// Dial connects to the configured server and wraps the connection.
// The deps parameter is optional and can be nil to use default implementations.
func Dial(ctx context.Context, cfg *config.Client, onData DataFunc, logger *log.Logger, deps *config.Dependencies) (*Client, error) {
	addr := format.Addr(cfg.Host, cfg.Port)

	conn, err := transport.Dial(ctx, cfg.Protocol, addr, cfg.Timeout, deps)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s://%s: %w", cfg.Protocol, addr, err)
	}

	return New(conn, onData, logger), nil
}

func (c *Client) readLoop() {
	r := wire.NewReader(c.conn)

	var err error
	for {
		var frame []byte
		frame, err = r.ReadFrame()
		if err != nil {
			break
		}

		if c.onData == nil {
			continue
		}
		if err = c.onData(c, frame); err != nil {
			err = fmt.Errorf("handling frame: %w", err)
			break
		}
	}

	c.finish(err)
}

// finish records why the read loop stopped and closes the connection.
func (c *Client) finish(err error) {
	select {
	case <-c.done:
		// closed locally, the read error is a consequence
		err = nil
	default:
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		err = nil
	}

	if err != nil {
		c.logger.ErrorMsg("Connection %s (%s): %s\n", c.id, c.RemoteAddr(), err)
	} else {
		c.logger.VerboseMsg("Connection %s (%s) closed\n", c.id, c.RemoteAddr())
	}

	c.mu.Lock()
	c.err = err
	c.mu.Unlock()

	c.Close()

	c.mu.Lock()
	hooks := c.onClose
	c.onClose = nil
	c.finished = true
	c.mu.Unlock()

	for _, fn := range hooks {
		fn(c)
	}
}

// OnClose registers fn to run once the read loop has ended.
// If it already has, fn runs immediately.
func (c *Client) OnClose(fn func(*Client)) {
	c.mu.Lock()
	if c.finished {
		c.mu.Unlock()
		fn(c)
		return
	}
	c.onClose = append(c.onClose, fn)
	c.mu.Unlock()
}

// ID uniquely identifies the connection in logs.
func (c *Client) ID() string {
	return c.id
}

// RemoteAddr returns the peer address.
func (c *Client) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Send encrypts data with key and writes it as frame [id][payload].
func (c *Client) Send(id uint8, data []byte, key string) error {
	payload, err := crypto.EncryptPacket(data, key)
	if err != nil {
		return fmt.Errorf("crypto.EncryptPacket(): %w", err)
	}

	return c.WriteFrame(append([]byte{id}, payload...))
}

// WriteFrame writes one raw frame.
func (c *Client) WriteFrame(frame []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	if err := wire.WriteFrame(c.conn, frame); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

// Close closes the connection. It is safe to call more than once.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

// Done is closed once Close has been called.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err returns the reason the read loop stopped, nil for a clean shutdown.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}
