// Package blockchain implements the wallet connector boundary on top of
// go-ethereum.
//
// # Clients
//
// EVMClient wraps one chain. InitEvm dials an RPC endpoint (the registry URL
// when none is given) and refuses endpoints that serve another chain:
//
//	evm, err := blockchain.InitEvm(ctx, chains.MainnetID, "")
//	if err != nil {
//		return err
//	}
//	defer evm.Close()
//	wei, err := evm.NativeBalance(ctx, account)
//
// Tests wrap the go-ethereum simulated backend with NewEVMClient instead.
//
// # Connector
//
// Connector implements wallet.Connector, wallet.Reader, wallet.Sender,
// wallet.ReceiptWaiter and wallet.AccountObserver over a set of clients:
//
//	_, pk, _ := blockchain.ParsePrivateKeyECDSA(hexKey)
//	conn := blockchain.NewConnector(chains.MainnetID, []*blockchain.EVMClient{evm},
//		blockchain.WithKey(pk),
//		blockchain.WithSubmitTimeout(25*time.Second),
//	)
//
// Sends return a wallet.Pending at once. Signing and broadcast run in the
// background, detached from the caller's cancellation and bounded by the
// submit timeout. Plain value transfers use a fixed gas limit of
// params.TxGas; contract calls let the node estimate.
//
// # Receipts
//
// WaitForTransaction polls with exponential backoff capped at maxBackoff
// until the receipt appears or the context ends. A reverted transaction
// comes back with its receipt and ErrTxReverted; Connector.WaitReceipt
// strips the error so callers decide from the receipt status.
package blockchain
