// Package cli implements the c13 command line tool.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/c13studio/c13-sdk/pkg/chains"
	"github.com/c13studio/c13-sdk/pkg/config"
	"github.com/c13studio/c13-sdk/pkg/sdk"
)

// Environment variables read when no config file is given.
const (
	EnvPrivateKey = "C13_PRIVATE_KEY"
	EnvAccount    = "C13_ACCOUNT"
)

type globalFlags struct {
	cfgPath string
	chainID uint64
	debug   bool
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:     "c13",
		Short:   "Read balances and send transfers on Morph",
		Long:    `c13 reads native and ERC-20 balances and sends transfers on Morph mainnet and the Morph Hoodi testnet.`,
		Version: sdk.Version,

		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&g.cfgPath, "config", "", "YAML config file (default: environment only)")
	root.PersistentFlags().Uint64Var(&g.chainID, "chain", 0, "chain ID (default: config or Morph mainnet)")
	root.PersistentFlags().BoolVar(&g.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newChainsCmd(),
		newTokensCmd(g),
		newFeeCmd(g),
		newClassifyCmd(),
		newValidateCmd(g),
		newBalanceCmd(g),
		newSendCmd(g),
		newHealthCmd(g),
	)
	return root
}

// loadConfig reads the config file if any, else the environment, and
// applies the global flags. A missing .env file is not an error.
func (g *globalFlags) loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	var cfg *config.Config
	if g.cfgPath != "" {
		var err error
		if cfg, err = config.Load(g.cfgPath); err != nil {
			return nil, err
		}
	} else {
		cfg = &config.Config{
			PrivateKey: os.Getenv(EnvPrivateKey),
			Account:    os.Getenv(EnvAccount),
		}
	}
	if g.chainID != 0 {
		cfg.DefaultChainID = g.chainID
	}
	if g.debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// chain returns the chain selected by flags without dialing anything.
func (g *globalFlags) chain() (uint64, error) {
	if g.chainID != 0 {
		if !chains.IsSupported(g.chainID) {
			return 0, fmt.Errorf("%w: %d", config.ErrUnsupportedChain, g.chainID)
		}
		return g.chainID, nil
	}
	if g.cfgPath != "" {
		cfg, err := g.loadConfig()
		if err != nil {
			return 0, err
		}
		return cfg.DefaultChainID, nil
	}
	return chains.MainnetID, nil
}

func (g *globalFlags) newSDK(ctx context.Context) (*sdk.Core, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	return sdk.New(ctx, cfg)
}
