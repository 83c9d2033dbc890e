package shared

import (
	"errors"
	"io"
	"os"
	"testing"
)

func TestResolveKey(t *testing.T) {
	t.Parallel()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() error = %v", err)
	}
	defer r.Close()
	defer w.Close()

	got, err := ResolveKey("from-flag", r, io.Discard)
	if err != nil || got != "from-flag" {
		t.Errorf("ResolveKey(flag) = %q, %v", got, err)
	}

	// a pipe is not a terminal, so there is nothing to prompt on
	if _, err := ResolveKey("", r, io.Discard); !errors.Is(err, ErrNoKey) {
		t.Errorf("ResolveKey(\"\", pipe) error = %v, want ErrNoKey", err)
	}
}
