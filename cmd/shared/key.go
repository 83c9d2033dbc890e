package shared

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// ErrNoKey is returned when no key was given and none can be prompted for.
var ErrNoKey = errors.New("no key given: use --key or run in a terminal")

// ResolveKey returns key if set. Otherwise it prompts on out and reads the
// key from in without echo, which requires in to be a terminal.
func ResolveKey(key string, in *os.File, out io.Writer) (string, error) {
	if key != "" {
		return key, nil
	}

	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return "", ErrNoKey
	}

	fmt.Fprint(out, "Key: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("term.ReadPassword(): %w", err)
	}
	if len(b) == 0 {
		return "", ErrNoKey
	}

	return string(b), nil
}
