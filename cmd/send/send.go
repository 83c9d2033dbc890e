// Package send provides the send command, which reads lines from stdin and
// sends each one as an encrypted packet.
package send

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/urfave/cli/v3"

	"meisapps/cmdsrv/cmd/shared"
	"meisapps/cmdsrv/pkg/client"
	"meisapps/cmdsrv/pkg/config"
	"meisapps/cmdsrv/pkg/crypto"
	"meisapps/cmdsrv/pkg/log"
	"meisapps/cmdsrv/pkg/pipeio"
)

const categorySend = "send"

const idFlag = "id"
const waitFlag = "wait"

// GetCommand returns the send command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:        "send",
		Usage:       "Send stdin lines as encrypted packets and print replies",
		Description: shared.GetBaseDescription(),
		ArgsUsage:   shared.GetArgsUsage(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			proto, host, port, err := shared.ParseTransport(cmd.Args().First())
			if err != nil {
				return err
			}

			id, err := shared.ParseID(cmd.String(idFlag))
			if err != nil {
				return err
			}

			cfg := &config.Client{
				Protocol: proto,
				Host:     host,
				Port:     port,
				Key:      cmd.String(shared.KeyFlag),
				Timeout:  shared.Timeout(cmd),
				Verbose:  cmd.Bool(shared.VerboseFlag),
			}

			if errors := config.Validate(cfg); len(errors) > 0 {
				return shared.ValidationError(errors)
			}

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()
			shared.SetupSignalHandling(cancel)

			opts := options{
				id:   id,
				wait: time.Duration(cmd.Int(waitFlag)) * time.Millisecond,
			}
			return run(ctx, cfg, opts, pipeio.NewStdio(config.GetStdinFunc(nil)(), nil), log.NewLogger(cfg.Verbose), nil)
		},
		Flags: getFlags(),
	}
}

type options struct {
	id   uint8
	wait time.Duration // how long to wait for outstanding replies after EOF
}

// run sends every line read from stdio and writes replies to it until
// input ends or ctx is cancelled.
func run(ctx context.Context, cfg *config.Client, opts options, stdio *pipeio.Stdio, logger *log.Logger, deps *config.Dependencies) error {
	var (
		mu      sync.Mutex
		pending int
		eof     bool
		settled = make(chan struct{}) // closed when the last reply after EOF arrives
	)

	onData := func(c *client.Client, frame []byte) error {
		if len(frame) < 2 {
			logger.WarnMsg("Malformed packet from server (%d bytes)\n", len(frame))
			return nil
		}
		data, err := crypto.DecryptPacket(frame[1:], cfg.Key)
		if err != nil {
			return fmt.Errorf("decrypting reply: %w", err)
		}
		if _, err := fmt.Fprintf(stdio, "[%#02x] %s\n", frame[0], data); err != nil {
			return err
		}

		mu.Lock()
		pending--
		if eof && pending == 0 {
			close(settled)
		}
		mu.Unlock()
		return nil
	}

	c, err := client.Dial(ctx, cfg, onData, logger, deps)
	if err != nil {
		return err
	}
	defer c.Close()
	logger.VerboseMsg("Connected to %s\n", c.RemoteAddr())

	err = stdio.ScanLines(ctx, func(line string) error {
		mu.Lock()
		pending++
		mu.Unlock()
		return c.Send(opts.id, []byte(line), cfg.Key)
	})
	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("sending: %w", err)
	}

	mu.Lock()
	eof = true
	outstanding := pending
	mu.Unlock()
	if outstanding <= 0 || opts.wait <= 0 {
		return nil
	}

	select {
	case <-settled:
	case <-c.Done():
	case <-ctx.Done():
	case <-time.After(opts.wait):
		logger.VerboseMsg("Giving up on %d outstanding replies\n", outstanding)
	}
	return c.Err()
}

func getFlags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:     idFlag,
			Aliases:  []string{"i"},
			Usage:    "Packet id, 0-255",
			Category: categorySend,
			Value:    "1",
			Required: false,
		},
		&cli.IntFlag{
			Name:     waitFlag,
			Aliases:  []string{"w"},
			Usage:    "Milliseconds to wait for replies after the last line",
			Category: categorySend,
			Value:    1000,
			Required: false,
		},
	}

	return append(flags, shared.GetCommonFlags()...)
}
