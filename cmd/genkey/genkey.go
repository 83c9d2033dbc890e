// Package genkey provides the genkey command, which prints a random key
// suitable for --key.
package genkey

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"meisapps/cmdsrv/pkg/crypto"
)

const lengthFlag = "length"

// GetCommand returns the genkey command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:  "genkey",
		Usage: "Print a random key",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return generate(os.Stdout, int(cmd.Int(lengthFlag)))
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:     lengthFlag,
				Aliases:  []string{"n"},
				Usage:    "Key length in characters",
				Value:    32,
				Required: false,
			},
		},
	}
}

func generate(w io.Writer, length int) error {
	key, err := crypto.GenerateRandomString(length)
	if err != nil {
		return fmt.Errorf("crypto.GenerateRandomString(%d): %w", length, err)
	}

	_, err = fmt.Fprintln(w, key)
	return err
}
