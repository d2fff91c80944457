package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/urfave/cli"
	"gopkg.in/yaml.v3"
)

// Config is ticketctl configuration. Values from the file are overridden by
// command line flags.
type Config struct {
	RPC      RPCConfig    `yaml:"rpc"`
	Wallet   WalletConfig `yaml:"wallet"`
	Contract string       `yaml:"contract"`
}

// RPCConfig configures Neo RPC connection.
type RPCConfig struct {
	Endpoint       string        `yaml:"endpoint"`
	DialTimeout    time.Duration `yaml:"dial_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// WaitTimeout limits waiting for transaction acceptance.
	WaitTimeout time.Duration `yaml:"wait_timeout"`
}

// WalletConfig selects the signing account.
type WalletConfig struct {
	Path    string `yaml:"path"`
	Address string `yaml:"address"`
	// Password is asked interactively if empty.
	Password string `yaml:"password"`
}

func defaultConfig() *Config {
	return &Config{
		RPC: RPCConfig{
			DialTimeout:    15 * time.Second,
			RequestTimeout: 15 * time.Second,
			WaitTimeout:    time.Minute,
		},
	}
}

// loadConfig reads the config file on top of the defaults. Empty path means
// defaults only.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	return cfg, nil
}

// applyFlags overrides config values with set global flags.
func (c *Config) applyFlags(ctx *cli.Context) {
	if s := ctx.GlobalString("rpc"); s != "" {
		c.RPC.Endpoint = s
	}
	if s := ctx.GlobalString("wallet"); s != "" {
		c.Wallet.Path = s
	}
	if s := ctx.GlobalString("address"); s != "" {
		c.Wallet.Address = s
	}
	if s := ctx.GlobalString("contract"); s != "" {
		c.Contract = s
	}
	if d := ctx.GlobalDuration("timeout"); d > 0 {
		c.RPC.WaitTimeout = d
	}
}

func (c *Config) validate() error {
	switch {
	case c.RPC.Endpoint == "":
		return errors.New("missing Neo RPC endpoint")
	case c.Wallet.Path == "":
		return errors.New("missing wallet path")
	case c.RPC.WaitTimeout <= 0:
		return errors.New("non-positive wait timeout")
	}

	return nil
}

func (c *Config) contractHash() (util.Uint160, error) {
	if c.Contract == "" {
		return util.Uint160{}, errors.New("missing contract address")
	}

	return parseAccount(c.Contract)
}

// parseAccount accepts either Neo address or 0x-prefixed little-endian hex.
func parseAccount(s string) (util.Uint160, error) {
	if len(s) > 2 && s[:2] == "0x" {
		return util.Uint160DecodeStringLE(s[2:])
	}

	h, err := address.StringToUint160(s)
	if err != nil {
		return util.Uint160DecodeStringLE(s)
	}

	return h, nil
}
