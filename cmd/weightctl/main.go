package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "weightctl"
	app.Usage = "command-line client for the weight registry"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "server, s",
			Value:  "http://localhost:8080",
			Usage:  "weight registry base url",
			EnvVar: "WEIGHTCTL_SERVER",
		},
		cli.DurationFlag{
			Name:  "timeout",
			Usage: "request timeout, 0 uses the client default",
		},
	}
	app.Commands = []cli.Command{
		newCreateCommand(),
		newUpdateCommand(),
		newGetCommand(),
		newListCommand(),
		newDeleteCommand(),
		newResolveCommand(),
	}
	return app
}
