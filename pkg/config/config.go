// Package config defines the runtime configuration for the SDK: the default
// chain, RPC endpoint overrides, the optional signing key, wallet connector
// preferences, debug mode and operation timeouts. It also provides loading,
// validation and defaulting helpers.
package config

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/c13studio/c13-sdk/pkg/chains"
)

// DefaultPreferredConnectors are matched against connector IDs, in order.
var DefaultPreferredConnectors = []string{"bitget", "bitkeep"}

// ErrUnsupportedChain is returned for chain IDs outside the registry.
var ErrUnsupportedChain = errors.New("unsupported chain")

// Config holds all SDK settings required to initialize chain clients and
// the wallet. Use Validate to fill implicit defaults and to check fields.
type Config struct {
	// DefaultChainID selects the chain used when the wallet has none.
	// Default: Morph mainnet (2818).
	DefaultChainID uint64 `json:"default_chain_id" yaml:"default_chain_id"`
	// RPCEndpoints overrides the registry RPC URL per chain ID.
	RPCEndpoints map[uint64]string `json:"rpc_endpoints" yaml:"rpc_endpoints"`
	// PrivateKey is the hex-encoded ECDSA private key used for transfers
	// (optional if you only read balances).
	PrivateKey string `json:"private_key" yaml:"private_key"`
	// Account is the address to read balances for when no PrivateKey is set.
	Account string `json:"account" yaml:"account"`
	// PreferredConnectors lists connector ID fragments to prefer over the
	// generic injected connector. Default: bitget, bitkeep.
	PreferredConnectors []string `json:"preferred_connectors" yaml:"preferred_connectors"`
	// Debug enables verbose logging.
	Debug bool `json:"debug" yaml:"debug"`
	// Timeouts configures per-operation timeouts. See Timeouts.WithDefaults for defaults.
	Timeouts Timeouts `json:"timeouts" yaml:"timeouts"`

	privateKey *ecdsa.PrivateKey
}

// Timeouts controls SDK operation deadlines.
// Zero values will be replaced by sane defaults in WithDefaults.
type Timeouts struct {
	Dial        time.Duration `json:"dial" yaml:"dial"`                 // RPC dial/connect
	ChainRead   time.Duration `json:"chain_read" yaml:"chain_read"`     // eth_call, balance etc
	ChainSubmit time.Duration `json:"chain_submit" yaml:"chain_submit"` // sign and send tx
	ReceiptWait time.Duration `json:"receipt_wait" yaml:"receipt_wait"` // wait tx
	SessionTTL  time.Duration `json:"session_ttl" yaml:"session_ttl"`   // wallet session store
}

// Validate normalizes the configuration by applying implicit defaults for
// DefaultChainID, PreferredConnectors and Timeouts, and verifies that every
// configured chain is in the registry and that the key and account parse.
func (c *Config) Validate() error {
	if c.DefaultChainID == 0 {
		c.DefaultChainID = chains.MainnetID
	}
	if !chains.IsSupported(c.DefaultChainID) {
		return fmt.Errorf("%w: %d", ErrUnsupportedChain, c.DefaultChainID)
	}
	for id, url := range c.RPCEndpoints {
		if !chains.IsSupported(id) {
			return fmt.Errorf("%w: %d", ErrUnsupportedChain, id)
		}
		if strings.TrimSpace(url) == "" {
			return fmt.Errorf("empty RPC endpoint for chain %d", id)
		}
	}

	if len(c.PreferredConnectors) == 0 {
		c.PreferredConnectors = slices.Clone(DefaultPreferredConnectors)
	}

	c.Timeouts = c.Timeouts.WithDefaults()

	if c.PrivateKey != "" {
		pk, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(c.PrivateKey), "0x"))
		if err != nil {
			return fmt.Errorf("invalid private key: %w", err)
		}
		c.privateKey = pk
	}
	if c.Account != "" && !(strings.HasPrefix(c.Account, "0x") && common.IsHexAddress(c.Account)) {
		return fmt.Errorf("invalid account address %q", c.Account)
	}
	return nil
}

// GetPrivateKey returns the parsed private key, or nil when none is
// configured or Validate has not run.
func (c *Config) GetPrivateKey() *ecdsa.PrivateKey {
	return c.privateKey
}

// Endpoint returns the RPC URL of chainID: the override if any, else the
// registry URL.
func (c *Config) Endpoint(chainID uint64) (string, error) {
	if url, ok := c.RPCEndpoints[chainID]; ok {
		return url, nil
	}
	ch, err := chains.ByID(chainID)
	if err != nil {
		return "", err
	}
	return ch.RPCURL, nil
}

// ChainIDs returns the chains to connect: the default chain first, then
// every chain with an endpoint override.
func (c *Config) ChainIDs() []uint64 {
	ids := []uint64{c.DefaultChainID}
	for id := range c.RPCEndpoints {
		if id != c.DefaultChainID {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids[1:])
	return ids
}

// WithDefaults returns a copy of t with zero values replaced by defaults:
//
//	Dial:        5s
//	ChainRead:   12s
//	ChainSubmit: 25s
//	ReceiptWait: 90s
//	SessionTTL:  24h
func (t Timeouts) WithDefaults() Timeouts {
	tt := t
	if tt.Dial == 0 {
		tt.Dial = 5 * time.Second
	}
	if tt.ChainRead == 0 {
		tt.ChainRead = 12 * time.Second
	}
	if tt.ChainSubmit == 0 {
		tt.ChainSubmit = 25 * time.Second
	}
	if tt.ReceiptWait == 0 {
		tt.ReceiptWait = 90 * time.Second
	}
	if tt.SessionTTL == 0 {
		tt.SessionTTL = 24 * time.Hour
	}
	return tt
}

// Load reads a YAML configuration file. ${VAR} references are expanded
// from the environment before parsing. The result is validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML configuration.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	zap.L().Debug("config loaded",
		zap.Uint64("defaultChainID", cfg.DefaultChainID),
		zap.Int("rpcOverrides", len(cfg.RPCEndpoints)),
		zap.Bool("signer", cfg.privateKey != nil))
	return &cfg, nil
}
