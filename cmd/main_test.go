package main

import (
	"testing"
)

func TestNewApp(t *testing.T) {
	t.Parallel()

	app := newApp()
	want := []string{"serve", "send", "genkey", "version"}
	if len(app.Commands) != len(want) {
		t.Fatalf("app has %d commands, want %d", len(app.Commands), len(want))
	}
	for i, name := range want {
		if app.Commands[i].Name != name {
			t.Errorf("command %d = %q, want %q", i, app.Commands[i].Name, name)
		}
	}
}
