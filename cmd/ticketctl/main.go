package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
	"go.uber.org/zap"
)

func main() {
	err := newApp().Run(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "ticketctl"
	app.Usage = "Manage ticket contract and buy tickets"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "config, c", Usage: "Path to YAML configuration file"},
		cli.StringFlag{Name: "rpc, r", Usage: "Network address of the Neo RPC server"},
		cli.StringFlag{Name: "wallet, w", Usage: "Path to NEP-6 wallet"},
		cli.StringFlag{Name: "address, a", Usage: "Wallet account to sign transactions (default account if omitted)"},
		cli.StringFlag{Name: "contract", Usage: "Ticket contract address or 0x-prefixed script hash"},
		cli.DurationFlag{Name: "timeout, t", Usage: "Transaction acceptance timeout"},
		cli.BoolFlag{Name: "debug, d", Usage: "Enable debug logging"},
	}
	app.Commands = []cli.Command{
		deployCommand(),
		purchaseCommand(),
		addVerifierCommand(),
		clearCommand(),
		burnCommand(),
		infoCommand(),
		proofCommand(),
	}

	return app
}

func newLogger(ctx *cli.Context) (*zap.Logger, error) {
	if ctx.GlobalBool("debug") {
		return zap.NewDevelopment()
	}

	c := zap.NewProductionConfig()
	c.Encoding = "console"
	c.DisableStacktrace = true

	return c.Build()
}

// environment groups services shared by all commands.
type environment struct {
	cfg *Config
	log *zap.Logger
}

func newEnvironment(ctx *cli.Context) (*environment, error) {
	cfg, err := loadConfig(ctx.GlobalString("config"))
	if err != nil {
		return nil, err
	}

	cfg.applyFlags(ctx)

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	l, err := newLogger(ctx)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	return &environment{cfg: cfg, log: l}, nil
}
