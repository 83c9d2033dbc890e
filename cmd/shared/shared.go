// Package shared provides common CLI flag definitions and utility functions
// used across cmdsrv's command-line interface.
package shared

import (
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"meisapps/cmdsrv/pkg/log"
)

const categoryCommon = "common"

// KeyFlag is the name of the flag to specify the shared packet key.
const KeyFlag = "key"

// VerboseFlag is the name of the flag to enable verbose logging.
const VerboseFlag = "verbose"

// TimeoutFlag is the name of the flag to specify operation timeout in milliseconds.
const TimeoutFlag = "timeout"

// GetBaseDescription returns the base description text for transport
// specifications used in CLI commands.
func GetBaseDescription() string {
	return strings.Join([]string{
		"Specify transport like this: tcp://127.0.0.1:123 (supports tcp|ws|udp|mux)",
		"You can omit the host when listening to bind to all interfaces.",
	}, "\n")
}

// GetArgsUsage returns the arguments usage string for CLI commands.
func GetArgsUsage() string {
	return "transport"
}

// GetCommonFlags returns the flags shared by serve and send.
func GetCommonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     KeyFlag,
			Aliases:  []string{"k"},
			Usage:    "Shared key used to encrypt packets",
			Category: categoryCommon,
			Value:    "",
			Required: false,
		},
		&cli.BoolFlag{
			Name:     VerboseFlag,
			Aliases:  []string{"v"},
			Usage:    "Verbose logging",
			Category: categoryCommon,
			Value:    false,
			Required: false,
		},
		&cli.IntFlag{
			Name:     TimeoutFlag,
			Aliases:  []string{"t"},
			Usage:    "Operation timeout in milliseconds (dialing, waiting for a free connection slot)",
			Category: categoryCommon,
			Value:    10000,
			Required: false,
		},
	}
}

// Timeout reads the timeout flag as a duration.
func Timeout(cmd *cli.Command) time.Duration {
	return time.Duration(cmd.Int(TimeoutFlag)) * time.Millisecond
}

// ValidationError logs every validation error and returns the error a
// command exits with.
func ValidationError(errs []error) error {
	log.ErrorMsg("Argument validation errors:\n")
	for _, err := range errs {
		log.ErrorMsg(" - %s\n", err)
	}
	return fmt.Errorf("exiting")
}
