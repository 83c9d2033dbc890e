// Package version provides the version command.
package version

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

// Version is set at build time with -ldflags "-X meisapps/cmdsrv/cmd/version.Version=...".
var Version = "unknown"

// GetCommand returns the version command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Program version",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return printVersion(os.Stdout, Version)
		},
		Flags: []cli.Flag{},
	}
}

func printVersion(w io.Writer, v string) error {
	_, err := fmt.Fprintln(w, v)
	return err
}
