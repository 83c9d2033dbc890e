// Package serve provides the serve command, which runs the encrypted
// command server until it is interrupted.
package serve

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"meisapps/cmdsrv/cmd/shared"
	"meisapps/cmdsrv/pkg/config"
	"meisapps/cmdsrv/pkg/handler"
	"meisapps/cmdsrv/pkg/log"
	"meisapps/cmdsrv/pkg/server"
)

const categoryServe = "serve"

const maxConnsFlag = "max-conns"
const echoFlag = "echo"
const logFileFlag = "log"

// GetCommand returns the serve command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:        "serve",
		Usage:       "Accept connections and handle encrypted packets",
		Description: shared.GetBaseDescription(),
		ArgsUsage:   shared.GetArgsUsage(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			proto, host, port, err := shared.ParseTransport(cmd.Args().First())
			if err != nil {
				return err
			}

			key, err := shared.ResolveKey(cmd.String(shared.KeyFlag), os.Stdin, os.Stderr)
			if err != nil {
				return err
			}

			cfg := &config.Server{
				Protocol: proto,
				Host:     host,
				Port:     port,
				Key:      key,
				Verbose:  cmd.Bool(shared.VerboseFlag),
				MaxConns: int(cmd.Int(maxConnsFlag)),
				Timeout:  shared.Timeout(cmd),
				LogFile:  cmd.String(logFileFlag),
			}

			if errors := config.Validate(cfg); len(errors) > 0 {
				return shared.ValidationError(errors)
			}

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()
			shared.SetupSignalHandling(cancel)

			return run(ctx, cfg, cmd.Bool(echoFlag), log.NewLogger(cfg.Verbose), nil)
		},
		Flags: getFlags(),
	}
}

// run serves until ctx is cancelled.
func run(ctx context.Context, cfg *config.Server, echo bool, logger *log.Logger, deps *config.Dependencies) error {
	h := handler.Logging(logger)
	if echo {
		h = handler.Chain(h, handler.Echo(cfg.Key, logger))
	}

	srv, err := server.New(cfg, h, logger, deps)
	if err != nil {
		return fmt.Errorf("server.New(): %w", err)
	}

	if err := srv.Serve(ctx); err != nil {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}

func getFlags() []cli.Flag {
	flags := []cli.Flag{
		&cli.IntFlag{
			Name:     maxConnsFlag,
			Aliases:  []string{"m"},
			Usage:    "Maximum number of simultaneous connections, 0 for no limit",
			Category: categoryServe,
			Value:    0,
			Required: false,
		},
		&cli.BoolFlag{
			Name:     echoFlag,
			Aliases:  []string{"e"},
			Usage:    "Send every packet back to its sender",
			Category: categoryServe,
			Value:    false,
			Required: false,
		},
		&cli.StringFlag{
			Name:     logFileFlag,
			Aliases:  []string{"l"},
			Usage:    "Append a hex dump of all traffic to this file",
			Category: categoryServe,
			Value:    "",
			Required: false,
		},
	}

	return append(flags, shared.GetCommonFlags()...)
}
