package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/lightningnetwork/towercheck/bundle"
	"github.com/lightningnetwork/towercheck/chainreg"
	"github.com/lightningnetwork/towercheck/tccfg"
	"github.com/lightningnetwork/towercheck/txsource"
	"github.com/lightningnetwork/towercheck/verifier"
	"github.com/urfave/cli"
	"golang.org/x/term"
)

var verifyCommand = cli.Command{
	Name:      "verify",
	Category:  "Verification",
	Usage:     "Verify a bundle against a chain backend.",
	ArgsUsage: "bundle-file",
	Description: `
	Verify the receipts, subscription window and broadcast transaction of
	the bundle stored in bundle-file (JSON or binary), connecting to the
	chain backend directly instead of going through a running daemon.

	The command exits with status 2 if the tower did not honour the
	appointment.
	`,
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "chainbackend",
			Value: "esplora",
			Usage: "the backend to query, bitcoind or esplora",
		},
		cli.StringFlag{
			Name:  "bitcoind.rpchost",
			Value: "localhost",
			Usage: "the bitcoind RPC address",
		},
		cli.StringFlag{
			Name:  "bitcoind.rpcuser",
			Usage: "the bitcoind RPC user",
		},
		cli.StringFlag{
			Name: "bitcoind.rpcpass",
			Usage: "the bitcoind RPC password, prompted for " +
				"when a user is set and this is empty",
		},
		cli.StringFlag{
			Name:  "esplora.url",
			Value: "https://blockstream.info/api",
			Usage: "the base URL of the Esplora API",
		},
		cli.Float64Flag{
			Name:  "esplora.ratelimit",
			Usage: "maximum requests per second, 0 for no limit",
		},
		cli.DurationFlag{
			Name:  "fetchtimeout",
			Value: verifier.DefaultFetchTimeout,
			Usage: "how long to wait for the chain backend",
		},
		cli.BoolFlag{
			Name:  "json",
			Usage: "print the result as JSON",
		},
	},
	Action: actionDecorator(verifyBundle),
}

// verifyResult is the printable form of a verification result.
type verifyResult struct {
	Verified bool                 `json:"verified"`
	Outcome  verifier.Outcome     `json:"outcome"`
	Error    string               `json:"error,omitempty"`
	Chain    verifier.ChainReport `json:"chain"`
	Duration string               `json:"duration"`
}

func verifyBundle(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.ShowCommandHelp(ctx, "verify")
	}

	b, err := bundle.ReadFile(ctx.Args().First())
	if err != nil {
		return err
	}

	params, err := networkParams(ctx.GlobalString("network"))
	if err != nil {
		return err
	}

	source, cleanUp, err := newSource(ctx, params)
	if err != nil {
		return err
	}
	defer cleanUp()

	v, err := verifier.New(&verifier.Config{
		Source:       source,
		FetchTimeout: ctx.Duration("fetchtimeout"),
	})
	if err != nil {
		return err
	}

	res := v.Verify(getContext(), b)

	out := &verifyResult{
		Verified: res.Verified(),
		Outcome:  res.Outcome,
		Chain:    res.Chain,
		Duration: res.Duration.Round(time.Millisecond).String(),
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}

	if ctx.Bool("json") {
		printJSON(out)
	} else {
		renderResult(os.Stdout, b, out)
	}

	if !res.Verified() {
		return cli.NewExitError("", 2)
	}

	return nil
}

// renderResult prints a human readable table of the verification.
func renderResult(w io.Writer, b *bundle.Bundle, res *verifyResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Appointment %v", b.Appointment.Locator)

	t.AppendRows([]table.Row{
		{"User", b.UserID},
		{"Tower", b.TowerID},
		{"Subscription", fmt.Sprintf("[%d, %d]",
			b.RegReceipt.SubscriptionStart,
			b.RegReceipt.SubscriptionExpiry)},
		{"Start block", b.AppReceipt.StartBlock},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Registration receipt", checkMark(res.Chain.RegReceipt)},
		{"User signature", checkMark(res.Chain.UserSignature)},
		{"Appointment receipt", checkMark(res.Chain.AppReceipt)},
	})
	t.AppendSeparator()
	t.AppendRow(table.Row{"Outcome", res.Outcome})
	if res.Error != "" {
		t.AppendRow(table.Row{"Reason", res.Error})
	}
	t.AppendRow(table.Row{"Took", res.Duration})

	t.Render()
}

func checkMark(ok bool) string {
	if ok {
		return "valid"
	}

	return "INVALID"
}

// networkParams maps a network name to its chain parameters.
func networkParams(network string) (*chaincfg.Params, error) {
	switch network {
	case "mainnet":
		return &chaincfg.MainNetParams, nil
	case "testnet":
		return &chaincfg.TestNet3Params, nil
	case "regtest":
		return &chaincfg.RegressionNetParams, nil
	case "signet":
		return &chaincfg.SigNetParams, nil
	case "simnet":
		return &chaincfg.SimNetParams, nil
	default:
		return nil, fmt.Errorf("unknown network: %v", network)
	}
}

// newSource connects to the backend selected on the command line.
func newSource(ctx *cli.Context,
	params *chaincfg.Params) (txsource.Source, func(), error) {

	bitcoindCfg := tccfg.DefaultBitcoind()
	bitcoindCfg.RPCHost = ctx.String("bitcoind.rpchost")
	bitcoindCfg.RPCUser = ctx.String("bitcoind.rpcuser")
	bitcoindCfg.RPCPass = ctx.String("bitcoind.rpcpass")

	esploraCfg := tccfg.DefaultEsploraConfig()
	esploraCfg.URL = ctx.String("esplora.url")
	esploraCfg.RateLimit = ctx.Float64("esplora.ratelimit")

	backend := ctx.String("chainbackend")

	// Ask for the password instead of requiring it in the shell history.
	if backend == chainreg.BitcoindBackendName &&
		bitcoindCfg.RPCUser != "" && bitcoindCfg.RPCPass == "" &&
		term.IsTerminal(int(os.Stdin.Fd())) {

		pw, err := readPassword("bitcoind RPC password: ")
		if err != nil {
			return nil, nil, err
		}
		bitcoindCfg.RPCPass = string(pw)
	}

	return chainreg.NewSource(&chainreg.Config{
		Backend:   backend,
		Bitcoind:  bitcoindCfg,
		Esplora:   esploraCfg,
		NetParams: params,
	})
}
