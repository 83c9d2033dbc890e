package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestErrorMsg(t *testing.T) {
	// Capture stderr
	old := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	ErrorMsg("test error: %s", "something")

	w.Close()
	os.Stderr = old

	var buf bytes.Buffer
	buf.ReadFrom(r)
	output := buf.String()

	if !strings.Contains(output, "test error: something") {
		t.Errorf("ErrorMsg() output does not contain expected text: %q", output)
	}
}

func TestLogger_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		verbose bool
		log     func(l *Logger)
		want    string
	}{
		{"info", false, func(l *Logger) { l.InfoMsg("Server started\n") }, "[+] Server started"},
		{"warn", false, func(l *Logger) { l.WarnMsg("Malformed packet\n") }, "[~] Malformed packet"},
		{"error", false, func(l *Logger) { l.ErrorMsg("boom %d\n", 1) }, "[!] Error: boom 1"},
		{"verbose on", true, func(l *Logger) { l.VerboseMsg("detail\n") }, "[v] detail"},
		{"verbose off", false, func(l *Logger) { l.VerboseMsg("detail\n") }, ""},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			l := NewLoggerTo(&buf, tc.verbose)
			tc.log(l)

			if tc.want == "" {
				if buf.Len() != 0 {
					t.Errorf("expected no output, got %q", buf.String())
				}
				return
			}
			if !strings.Contains(buf.String(), tc.want) {
				t.Errorf("output = %q, want it to contain %q", buf.String(), tc.want)
			}
		})
	}
}

func TestLogger_Nil(t *testing.T) {
	t.Parallel()

	var l *Logger
	l.InfoMsg("ignored\n")
	l.ErrorMsg("ignored\n")
	if l.Verbose() {
		t.Error("nil logger reports verbose")
	}
}
