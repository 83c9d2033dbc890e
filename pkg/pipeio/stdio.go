// Package pipeio adapts the process's standard streams for the send command.
package pipeio

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/muesli/cancelreader"
)

// Stdio provides a ReadWriteCloser over an input and an output stream.
// Reads go through a cancelreader, so Close interrupts a blocked Read.
type Stdio struct {
	stdin            io.Reader
	cancellableStdin cancelreader.CancelReader

	stdout io.Writer
}

// NewStdio wraps in and out. Nil arguments default to os.Stdin and os.Stdout.
func NewStdio(in io.Reader, out io.Writer) *Stdio {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}

	s := Stdio{
		stdin:  in,
		stdout: out,
	}

	cancellableStdin, err := cancelreader.NewReader(in)
	if err != nil {
		return &s
	}

	s.cancellableStdin = cancellableStdin
	return &s
}

// Read reads from stdin, using the cancelable reader if available.
func (s *Stdio) Read(p []byte) (n int, err error) {
	if s.cancellableStdin != nil {
		return s.cancellableStdin.Read(p)
	}

	return s.stdin.Read(p)
}

// Write writes to stdout.
func (s *Stdio) Write(p []byte) (n int, err error) {
	return s.stdout.Write(p)
}

// Close cancels any pending reads from stdin.
func (s *Stdio) Close() error {
	if s.cancellableStdin != nil {
		s.cancellableStdin.Cancel()
	}
	return nil
}

// ScanLines calls fn for every line read from s until EOF, a failing fn, or
// ctx being cancelled. Cancellation interrupts a blocked read and returns ctx.Err().
func (s *Stdio) ScanLines(ctx context.Context, fn func(line string) error) error {
	stop := context.AfterFunc(ctx, func() { s.Close() })
	defer stop()

	sc := bufio.NewScanner(s)
	for sc.Scan() {
		if err := fn(sc.Text()); err != nil {
			return err
		}
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return sc.Err()
}
