package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"syscall"

	"github.com/lightningnetwork/towercheck/build"
	"github.com/urfave/cli"
	"golang.org/x/term"
)

const defaultRPCServer = "localhost:8000"

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[tccli] %v\n", err)
	os.Exit(1)
}

// actionDecorator is used to add additional information and error handling
// to command actions.
func actionDecorator(f func(*cli.Context) error) func(*cli.Context) error {
	return func(c *cli.Context) error {
		if err := f(c); err != nil {
			// Exit errors already carry their message and code.
			if _, ok := err.(*cli.ExitError); ok {
				return err
			}

			return fmt.Errorf("%s: %w", c.Command.Name, err)
		}

		return nil
	}
}

func getContext() context.Context {
	return context.Background()
}

func printJSON(resp interface{}) {
	b, err := json.MarshalIndent(resp, "", "    ")
	if err != nil {
		fatal(err)
	}

	fmt.Printf("%s\n", b)
}

func main() {
	app := cli.NewApp()
	app.Name = "tccli"
	app.Version = build.Version() + " commit=" + build.Commit
	app.Usage = "verify whether a watchtower honoured an appointment"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rpcserver",
			Value: defaultRPCServer,
			Usage: "The host:port of the towercheck daemon.",
		},
		cli.StringFlag{
			Name: "network, n",
			Usage: "The network the chain backend runs on, e.g. " +
				"mainnet, testnet, regtest, signet or simnet.",
			Value: "mainnet",
		},
	}
	app.Commands = []cli.Command{
		verifyCommand,
		checkCommand,
		demoCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}

// readPassword prompts with text and reads a password from the terminal
// without echoing it.
func readPassword(text string) ([]byte, error) {
	fmt.Print(text)

	// syscall.Stdin is not an int on windows.
	pw, err := term.ReadPassword(int(syscall.Stdin)) // nolint:unconvert
	fmt.Println()

	return pw, err
}
