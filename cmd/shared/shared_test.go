package shared

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v3"
)

func TestGetCommonFlags(t *testing.T) {
	t.Parallel()

	want := map[string]bool{KeyFlag: false, VerboseFlag: false, TimeoutFlag: false}
	for _, f := range GetCommonFlags() {
		for _, name := range f.Names() {
			if _, ok := want[name]; ok {
				want[name] = true
			}
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("flag %q missing", name)
		}
	}
}

func TestGetBaseDescription(t *testing.T) {
	t.Parallel()

	desc := GetBaseDescription()
	for _, proto := range []string{"tcp", "ws", "udp", "mux"} {
		if !strings.Contains(desc, proto) {
			t.Errorf("description does not mention %s", proto)
		}
	}
}

func TestTimeout(t *testing.T) {
	t.Parallel()

	var got time.Duration
	cmd := &cli.Command{
		Name:  "test",
		Flags: GetCommonFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			got = Timeout(cmd)
			return nil
		},
	}

	if err := cmd.Run(context.Background(), []string{"test", "--timeout", "250"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got != 250*time.Millisecond {
		t.Errorf("Timeout() = %v, want 250ms", got)
	}
}
