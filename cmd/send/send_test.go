package send

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	mocks_tcp "meisapps/cmdsrv/mocks/tcp"
	"meisapps/cmdsrv/pkg/client"
	"meisapps/cmdsrv/pkg/config"
	"meisapps/cmdsrv/pkg/handler"
	"meisapps/cmdsrv/pkg/pipeio"
	"meisapps/cmdsrv/pkg/server"
)

const testKey = "send-test"

func startServer(t *testing.T, port int, h server.Handler) *config.Dependencies {
	t.Helper()

	mockNet := mocks_tcp.NewMockTCPNetwork()
	deps := &config.Dependencies{TCPListener: mockNet.ListenTCP, TCPDialer: mockNet.DialTCPContext}

	srv, err := server.New(&config.Server{Protocol: config.ProtoTCP, Host: "127.0.0.1", Port: port, Key: testKey}, h, nil, deps)
	if err != nil {
		t.Fatalf("server.New() error = %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { srv.Stop() })

	return deps
}

func clientConfig(port int) *config.Client {
	return &config.Client{Protocol: config.ProtoTCP, Host: "127.0.0.1", Port: port, Key: testKey, Timeout: time.Second}
}

func TestGetCommand(t *testing.T) {
	t.Parallel()

	cmd := GetCommand()
	if cmd.Name != "send" {
		t.Errorf("command name = %q; want %q", cmd.Name, "send")
	}
	if cmd.Action == nil {
		t.Fatal("command action should not be nil")
	}
}

func TestRun_EchoReplies(t *testing.T) {
	t.Parallel()

	deps := startServer(t, 7100, handler.Echo(testKey, nil))

	var out bytes.Buffer
	stdio := pipeio.NewStdio(strings.NewReader("one\ntwo\nthree\n"), &out)
	opts := options{id: 0x05, wait: 5 * time.Second}

	if err := run(context.Background(), clientConfig(7100), opts, stdio, nil, deps); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	want := "[0x05] one\n[0x05] two\n[0x05] three\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestRun_NoRepliesDoesNotHang(t *testing.T) {
	t.Parallel()

	got := make(chan string, 4)
	deps := startServer(t, 7101, server.HandlerFunc(func(_ *client.Client, id uint8, data []byte) {
		got <- string(data)
	}))

	var out bytes.Buffer
	stdio := pipeio.NewStdio(strings.NewReader("quiet\n"), &out)
	opts := options{id: 0x01, wait: 50 * time.Millisecond}

	start := time.Now()
	if err := run(context.Background(), clientConfig(7101), opts, stdio, nil, deps); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("run() waited far longer than --wait")
	}

	select {
	case line := <-got:
		if line != "quiet" {
			t.Errorf("server got %q", line)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server never received the line")
	}
	if out.Len() != 0 {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestRun_DialFailure(t *testing.T) {
	t.Parallel()

	mockNet := mocks_tcp.NewMockTCPNetwork()
	deps := &config.Dependencies{TCPDialer: mockNet.DialTCPContext}
	stdio := pipeio.NewStdio(strings.NewReader("x\n"), &bytes.Buffer{})

	if err := run(context.Background(), clientConfig(7102), options{id: 1}, stdio, nil, deps); err == nil {
		t.Error("run() without a server succeeded")
	}
}
