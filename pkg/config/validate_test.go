package config

import (
	"testing"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cfgs     []ValidatableConfig
		wantErrs int
	}{
		{
			name:     "no configs",
			cfgs:     []ValidatableConfig{},
			wantErrs: 0,
		},
		{
			name: "one valid config",
			cfgs: []ValidatableConfig{
				&Server{Protocol: ProtoTCP, Port: 8080, Key: "k"},
			},
			wantErrs: 0,
		},
		{
			name: "multiple configs with errors",
			cfgs: []ValidatableConfig{
				&Server{Protocol: ProtoTCP, Port: 8080},
				&Client{Protocol: ProtoTCP, Port: 0, Key: "k"},
			},
			wantErrs: 2,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			errs := Validate(tc.cfgs...)
			if len(errs) != tc.wantErrs {
				t.Errorf("Validate() returned %d errors, want %d", len(errs), tc.wantErrs)
			}
		})
	}
}

func TestValidatePort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		port    int
		wantErr bool
	}{
		{"valid port 1", 1, false},
		{"valid port 8080", 8080, false},
		{"valid port 65535", 65535, false},
		{"invalid port 0", 0, true},
		{"invalid port -1", -1, true},
		{"invalid port 65536", 65536, true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := validatePort(tc.port)
			if (err != nil) != tc.wantErr {
				t.Errorf("validatePort(%d) error = %v, wantErr %v", tc.port, err, tc.wantErr)
			}
		})
	}
}

func TestGetDefaults(t *testing.T) {
	t.Parallel()

	if GetTCPListenerFunc(nil) == nil || GetTCPDialerFunc(nil) == nil ||
		GetPacketListenerFunc(nil) == nil || GetStdinFunc(nil) == nil || GetDecryptFunc(nil) == nil {
		t.Fatal("default dependency is nil")
	}

	called := false
	deps := &Dependencies{Decrypt: func(data []byte, key string) ([]byte, error) {
		called = true
		return data, nil
	}}
	GetDecryptFunc(deps)(nil, "")
	if !called {
		t.Error("GetDecryptFunc did not return the injected function")
	}
}
