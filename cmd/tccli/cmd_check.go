package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lightningnetwork/towercheck/bundle"
	"github.com/lightningnetwork/towercheck/checkrpc"
	"github.com/urfave/cli"
)

var checkCommand = cli.Command{
	Name:      "check",
	Category:  "Verification",
	Usage:     "Submit a bundle to a running towercheck daemon.",
	ArgsUsage: "bundle-file",
	Flags: []cli.Flag{
		cli.DurationFlag{
			Name:  "timeout",
			Value: time.Minute,
			Usage: "how long to wait for the daemon's answer",
		},
	},
	Action: actionDecorator(checkBundle),
}

func checkBundle(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.ShowCommandHelp(ctx, "check")
	}

	b, err := bundle.ReadFile(ctx.Args().First())
	if err != nil {
		return err
	}

	resp, err := postBundle(
		ctx.GlobalString("rpcserver"), b, ctx.Duration("timeout"),
	)
	if err != nil {
		return err
	}

	printJSON(resp)

	if !resp.Success {
		return cli.NewExitError("", 2)
	}

	return nil
}

// postBundle submits b to the /check endpoint of the daemon at server.
func postBundle(server string, b *bundle.Bundle,
	timeout time.Duration) (*checkrpc.CheckResponse, error) {

	body, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: timeout}
	httpResp, err := client.Post(
		"http://"+server+"/check", "application/json",
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to reach daemon: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	var resp checkrpc.CheckResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unexpected answer (status %d): %s",
			httpResp.StatusCode, respBody)
	}

	return &resp, nil
}
