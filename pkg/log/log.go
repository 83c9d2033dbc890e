// Package log provides coloured console logging for cmdsrv.
// A Logger carries the verbosity setting and output stream; the package-level
// helpers write to stderr and are meant for CLI code.
package log

import (
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

var red = color.New(color.FgRed).FprintfFunc()
var blue = color.New(color.FgBlue).FprintfFunc()
var yellow = color.New(color.FgYellow).FprintfFunc()
var grey = color.New(color.FgHiBlack).FprintfFunc()

// ErrorMsg prints an error message to stderr in red color.
func ErrorMsg(format string, a ...interface{}) {
	red(os.Stderr, "[!] Error: "+format, a...)
}

// InfoMsg prints an informational message to stderr in blue color.
func InfoMsg(format string, a ...interface{}) {
	blue(os.Stderr, "[+] "+format, a...)
}

// Logger writes coloured messages to an output stream.
// It is safe for concurrent use; lines from different goroutines are not interleaved.
type Logger struct {
	out     io.Writer
	verbose bool

	mu sync.Mutex
}

// NewLogger returns a Logger writing to stderr.
func NewLogger(verbose bool) *Logger {
	return NewLoggerTo(os.Stderr, verbose)
}

// NewLoggerTo returns a Logger writing to w.
func NewLoggerTo(w io.Writer, verbose bool) *Logger {
	return &Logger{out: w, verbose: verbose}
}

// Verbose reports whether verbose messages are printed.
func (l *Logger) Verbose() bool {
	return l != nil && l.verbose
}

// ErrorMsg prints an error message in red.
func (l *Logger) ErrorMsg(format string, a ...interface{}) {
	l.print(red, "[!] Error: "+format, a...)
}

// WarnMsg prints a warning in yellow.
func (l *Logger) WarnMsg(format string, a ...interface{}) {
	l.print(yellow, "[~] "+format, a...)
}

// InfoMsg prints an informational message in blue.
func (l *Logger) InfoMsg(format string, a ...interface{}) {
	l.print(blue, "[+] "+format, a...)
}

// VerboseMsg prints a debug message, only if the logger is verbose.
func (l *Logger) VerboseMsg(format string, a ...interface{}) {
	if !l.Verbose() {
		return
	}
	l.print(grey, "[v] "+format, a...)
}

// a nil Logger discards everything
func (l *Logger) print(fn func(io.Writer, string, ...interface{}), format string, a ...interface{}) {
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.out, format, a...)
}
