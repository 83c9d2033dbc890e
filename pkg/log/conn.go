package log

import (
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"
)

// TrafficLog records raw connection traffic as hex dumps.
// One TrafficLog is shared by all connections of a server.
type TrafficLog struct {
	w  io.Writer
	mu sync.Mutex
}

// NewTrafficLog returns a TrafficLog writing to w.
func NewTrafficLog(w io.Writer) *TrafficLog {
	return &TrafficLog{w: w}
}

// OpenTrafficLog creates or appends to the file at path.
func OpenTrafficLog(path string) (*TrafficLog, *os.File, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, err
	}

	return NewTrafficLog(f), f, nil
}

func (t *TrafficLog) record(dir string, addr net.Addr, b []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, err := fmt.Fprintf(t.w, "%s %s %s %d bytes\n%s", time.Now().Format(time.RFC3339Nano), addr, dir, len(b), hex.Dump(b))
	return err
}

// loggedConn wraps a net.Conn and records all read/write operations.
type loggedConn struct {
	net.Conn
	log *TrafficLog
}

func (lc *loggedConn) Read(b []byte) (int, error) {
	n, err := lc.Conn.Read(b)
	if n > 0 {
		if lerr := lc.log.record("<", lc.Conn.RemoteAddr(), b[:n]); lerr != nil {
			return n, fmt.Errorf("reading: %w", lerr)
		}
	}
	return n, err
}

func (lc *loggedConn) Write(b []byte) (int, error) {
	n, err := lc.Conn.Write(b)
	if n > 0 {
		if lerr := lc.log.record(">", lc.Conn.RemoteAddr(), b[:n]); lerr != nil {
			return n, fmt.Errorf("writing: %w", lerr)
		}
	}
	return n, err
}

// NewLoggedConn wraps a network connection to record all data read from and written to it.
// A nil TrafficLog returns conn unchanged.
func NewLoggedConn(conn net.Conn, t *TrafficLog) net.Conn {
	if t == nil {
		return conn
	}

	return &loggedConn{Conn: conn, log: t}
}
