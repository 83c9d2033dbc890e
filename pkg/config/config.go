// Package config holds the validated settings of the server and client
// commands and the injectable dependencies used by tests.
package config

import (
	"fmt"
	"time"
)

// Protocol identifies the transport a server listens on or a client dials.
type Protocol int

// Supported transports.
const (
	ProtoTCP Protocol = iota + 1
	ProtoWS
	ProtoUDP
	ProtoMux
)

func (p Protocol) String() string {
	switch p {
	case ProtoTCP:
		return "tcp"
	case ProtoWS:
		return "ws"
	case ProtoUDP:
		return "udp"
	case ProtoMux:
		return "mux"
	default:
		return ""
	}
}

// ParseProtocol maps a scheme name to its Protocol.
func ParseProtocol(s string) (Protocol, error) {
	for _, p := range []Protocol{ProtoTCP, ProtoWS, ProtoUDP, ProtoMux} {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown protocol %q", s)
}

// DefaultTimeout bounds dials and connection slot waits.
const DefaultTimeout = 10 * time.Second

// Server configures a command server.
type Server struct {
	Protocol Protocol
	Host     string
	Port     int // 0 picks a free port
	Key      string
	Verbose  bool

	MaxConns int           // 0 means unlimited
	Timeout  time.Duration // wait for a free connection slot when MaxConns is reached
	LogFile  string        // raw traffic log, empty to disable
}

// Validate ...
func (c *Server) Validate() []error {
	var errors []error

	if c.Protocol.String() == "" {
		errors = append(errors, fmt.Errorf("invalid protocol %d", c.Protocol))
	}

	if c.Port < 0 || c.Port > 65535 {
		errors = append(errors, fmt.Errorf("port %d not in [0, 65535]", c.Port))
	}

	if c.Key == "" {
		errors = append(errors, fmt.Errorf("key must not be empty"))
	}

	if c.MaxConns < 0 {
		errors = append(errors, fmt.Errorf("max connections must not be negative"))
	}

	if c.Timeout < 0 {
		errors = append(errors, fmt.Errorf("timeout must not be negative"))
	}

	return errors
}

// Client configures the sending side.
type Client struct {
	Protocol Protocol
	Host     string
	Port     int
	Key      string
	Timeout  time.Duration
	Verbose  bool
}

// Validate ...
func (c *Client) Validate() []error {
	var errors []error

	if c.Protocol.String() == "" {
		errors = append(errors, fmt.Errorf("invalid protocol %d", c.Protocol))
	}

	if err := validatePort(c.Port); err != nil {
		errors = append(errors, fmt.Errorf("port: %w", err))
	}

	if c.Key == "" {
		errors = append(errors, fmt.Errorf("key must not be empty"))
	}

	if c.Timeout < 0 {
		errors = append(errors, fmt.Errorf("timeout must not be negative"))
	}

	return errors
}
