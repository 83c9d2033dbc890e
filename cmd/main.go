package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"meisapps/cmdsrv/cmd/genkey"
	"meisapps/cmdsrv/cmd/send"
	"meisapps/cmdsrv/cmd/serve"
	"meisapps/cmdsrv/cmd/version"
	"meisapps/cmdsrv/pkg/log"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.ErrorMsg("%s\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "cmdsrv",
		Usage: "Encrypted command server and client",
		Commands: []*cli.Command{
			serve.GetCommand(),
			send.GetCommand(),
			genkey.GetCommand(),
			version.GetCommand(),
		},
	}
}
