package main

import (
	"encoding/hex"
	"os"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/lightningnetwork/towercheck/bundle"
	"github.com/urfave/cli"
)

var demoCommand = cli.Command{
	Name:     "demo",
	Category: "Development",
	Usage:    "Generate a correctly signed example bundle.",
	Description: `
	Generate fresh user and tower keys and a bundle in which the tower
	registered the user, accepted an appointment one block into the
	subscription and issued receipts for both. The appointment points at a
	random transaction that was never broadcast, so verifying the bundle
	against a real chain yields TransactionNotResponded.
	`,
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "out",
			Value: "bundle.json",
			Usage: "the file the bundle is written to",
		},
		cli.BoolFlag{
			Name:  "binary",
			Usage: "write the bundle in the binary encoding",
		},
		cli.UintFlag{
			Name:  "start",
			Value: uint(bundle.DefaultFixtureParams().SubscriptionStart),
			Usage: "the first block of the subscription",
		},
		cli.UintFlag{
			Name:  "expiry",
			Value: uint(bundle.DefaultFixtureParams().SubscriptionExpiry),
			Usage: "the last block of the subscription",
		},
		cli.UintFlag{
			Name:  "startblock",
			Value: uint(bundle.DefaultFixtureParams().StartBlock),
			Usage: "the start block of the appointment receipt",
		},
		cli.BoolFlag{
			Name:  "showkeys",
			Usage: "print the generated private keys",
		},
	},
	Action: actionDecorator(demo),
}

func demo(ctx *cli.Context) error {
	userKey, err := btcec.NewPrivateKey()
	if err != nil {
		return err
	}
	towerKey, err := btcec.NewPrivateKey()
	if err != nil {
		return err
	}

	params := bundle.DefaultFixtureParams()
	params.SubscriptionStart = uint32(ctx.Uint("start"))
	params.SubscriptionExpiry = uint32(ctx.Uint("expiry"))
	params.StartBlock = uint32(ctx.Uint("startblock"))

	b, err := bundle.NewSigned(userKey, towerKey, params)
	if err != nil {
		return err
	}

	out := ctx.String("out")
	if err := bundle.WriteFile(out, b, ctx.Bool("binary")); err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendRows([]table.Row{
		{"Bundle", out},
		{"User", b.UserID},
		{"Tower", b.TowerID},
		{"Locator", b.Appointment.Locator},
		{"Start block", b.AppReceipt.StartBlock},
	})
	if ctx.Bool("showkeys") {
		t.AppendSeparator()
		t.AppendRows([]table.Row{
			{"User key", hex.EncodeToString(userKey.Serialize())},
			{"Tower key", hex.EncodeToString(towerKey.Serialize())},
		})
	}
	t.Render()

	return nil
}
