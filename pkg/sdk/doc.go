// Package sdk provides the high-level entry point for reading balances and
// sending transfers on the Morph chains.
//
// The SDK wires one Config into the chain clients, a key-backed wallet
// connector, the balance resolver and the transfer orchestrator.
//
// # Quick Start
//
//	import (
//		"github.com/c13studio/c13-sdk/pkg/config"
//		"github.com/c13studio/c13-sdk/pkg/sdk"
//		"github.com/c13studio/c13-sdk/pkg/transfer"
//	)
//
//	func main() {
//		cfg := &config.Config{
//			DefaultChainID: chains.TestnetID,
//			PrivateKey:     "YOUR_PRIVATE_KEY",
//			Debug:          true,
//		}
//
//		c13 := sdk.NewSDK(cfg)
//		defer c13.Close()
//
//		st := c13.Balance(ctx, "USDT")
//		if st.Err != nil {
//			log.Fatal(st.Err)
//		}
//		fmt.Println(*st.Balance, st.Symbol)
//
//		out, err := c13.Send(ctx, transfer.Request{
//			To:     "0x...",
//			Amount: "1.5",
//			Token:  "USDT",
//		})
//		if err != nil {
//			log.Fatal(err)
//		}
//		fmt.Println(chains.MorphHoodiTestnet.TxURL(out.Hash().Hex()))
//	}
//
// # Architecture
//
//   - chains, tokens: static registries of the supported networks and tokens
//   - blockchain: go-ethereum clients and the key-backed wallet connector
//   - wallet: the connector boundary, connector selection and sessions
//   - balance: native and ERC-20 balance queries
//   - transfer: validation, fee estimation and the transfer state machine
//   - format, errclass: display formatting and error classification
//   - metrics: Prometheus instrumentation
//
// # Core Components
//
// SDK Interface:
//   - Wallet: The connected wallet and its snapshot
//   - Balance, BalanceQuery: One-off and refetchable balance reads
//   - Transfer: Validate and submit, returns once a hash exists
//   - Send: Transfer and wait for the receipt
//   - EstimateFee: Fixed gas estimate priced at the node's gas price
//   - Heartbeat: Latest block per configured chain
//   - Close: Release resources
//
// # Configuration
//
// The zero Config targets Morph mainnet read-only. Set PrivateKey to send,
// or Account to read the balances of another address. RPCEndpoints
// overrides registry URLs and adds chains. See package config.
//
// # Error Handling
//
// Constructors return errors; NewSDK exits the process on them instead.
// Transfer errors are validation errors (transfer.ValidationError) or
// connector errors; errclass.Parse maps either to a user-facing message:
//
//	_, err := c13.Transfer(ctx, req)
//	if err != nil {
//		fmt.Println(errclass.Parse(err).Message)
//	}
//
// # Thread Safety
//
// Core is safe for concurrent use. Concurrent transfers are independent;
// nonce ordering is left to the node.
//
// # Resource Management
//
// Always call Close() to disconnect the wallet and close RPC connections:
//
//	c13 := sdk.NewSDK(cfg)
//	defer c13.Close()
//
// # See Also
//
//   - examples/quick-start: Connect and print the native balance
//   - examples/balance: Token balances and refetching
//   - examples/transfer: Fee estimation and a confirmed transfer
package sdk
