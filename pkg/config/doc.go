// # Basic Configuration
//
// The zero Config is valid: it targets Morph mainnet through the registry
// RPC URL, with no signing key.
//
//	cfg := &config.Config{}
//	if err := cfg.Validate(); err != nil {
//		log.Fatalf("Invalid config: %v", err)
//	}
//
// # Chains and Endpoints
//
// DefaultChainID must be a chain of the registry (2818 Morph mainnet, 2910
// Morph Hoodi testnet). RPCEndpoints overrides the registry URL per chain
// and adds that chain to the set the SDK connects:
//
//	cfg := &config.Config{
//		DefaultChainID: chains.TestnetID,
//		RPCEndpoints: map[uint64]string{
//			chains.TestnetID: "https://my-hoodi-node.example",
//		},
//	}
//
// # Private Key
//
// A private key enables transfers. Without one, set Account to read
// balances only:
//
//	cfg.PrivateKey = "YOUR_PRIVATE_KEY" // 64 hex characters, 0x optional
//
// # Timeouts
//
//	cfg.Timeouts = config.Timeouts{
//		Dial:        10 * time.Second, // RPC connection timeout
//		ChainRead:   15 * time.Second, // balance and eth_call timeout
//		ChainSubmit: 60 * time.Second, // time to get a transaction hash
//		ReceiptWait: 3 * time.Minute,  // transaction confirmation timeout
//		SessionTTL:  time.Hour,        // wallet session lifetime
//	}
//
// Zero values are replaced with sensible defaults via WithDefaults().
//
// # Files
//
// Load reads YAML and expands ${VAR} references from the environment first,
// so secrets can stay out of the file:
//
//	default_chain_id: 2910
//	private_key: ${C13_PRIVATE_KEY}
//	timeouts:
//	  receipt_wait: 2m
//
// # Thread Safety
//
// Config instances should be created once and not modified after passing to sdk.NewSDK().
package config
