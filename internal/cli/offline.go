package cli

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/c13studio/c13-sdk/pkg/errclass"
	"github.com/c13studio/c13-sdk/pkg/format"
	"github.com/c13studio/c13-sdk/pkg/transfer"
)

// gweiDecimals converts gas prices entered in gwei.
const gweiDecimals = 9

func newFeeCmd(g *globalFlags) *cobra.Command {
	var (
		gasPrice string
		live     bool
	)
	cmd := &cobra.Command{
		Use:   "fee [token]",
		Short: "Estimate the fee of a transfer",
		Long: `Estimate the fee of a transfer of token (default: the native currency).
The gas limit is a fixed estimate. The gas price is --gas-price, the node's
suggestion with --live, or 1 gwei.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := ""
			if len(args) == 1 {
				token = args[0]
			}

			var fee transfer.Fee
			switch {
			case live:
				c13, err := g.newSDK(cmd.Context())
				if err != nil {
					return err
				}
				defer c13.Close()
				fee = c13.EstimateFee(cmd.Context(), token)
			default:
				chainID, err := g.chain()
				if err != nil {
					return err
				}
				var price *big.Int
				if gasPrice != "" {
					if price, err = format.ParseUnits(gasPrice, gweiDecimals); err != nil {
						return fmt.Errorf("invalid gas price: %w", err)
					}
				}
				fee = transfer.EstimateFee(token, chainID, price)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "gas limit: %d\ngas price: %s gwei\nfee:       %s\n",
				fee.GasLimit, format.FormatUnits(fee.GasPrice, gweiDecimals), fee.FormattedFee)
			return nil
		},
	}
	cmd.Flags().StringVar(&gasPrice, "gas-price", "", "gas price in gwei")
	cmd.Flags().BoolVar(&live, "live", false, "ask the node for the gas price")
	return cmd
}

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <message>",
		Short: "Classify a wallet or RPC error message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := errclass.Parse(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", p.Category, p.Message)
			return nil
		},
	}
}

// errInvalid is returned by validate so the exit status reflects the result.
var errInvalid = errors.New("transfer is invalid")

func newValidateCmd(g *globalFlags) *cobra.Command {
	var req transfer.Request
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a transfer without sending it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			chainID, err := g.chain()
			if err != nil {
				return err
			}
			token, value, err := transfer.ValidateRequest(req, chainID)
			res := transfer.Check(err)
			if !res.Valid {
				fmt.Fprintf(cmd.OutOrStdout(), "invalid: %s\n", res.Error)
				return errInvalid
			}
			fmt.Fprintf(cmd.OutOrStdout(), "valid: %s (%s smallest units)\n",
				format.FormatAmountFromInt(value, token.Decimals, token.Symbol), value)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.To, "to", "", "recipient address")
	cmd.Flags().StringVar(&req.Amount, "amount", "", "amount in whole token units")
	cmd.Flags().StringVar(&req.Token, "token", "ETH", "token symbol or contract address")
	cmd.Flags().StringVar(&req.Balance, "balance", "", "sender balance to check the amount against")
	return cmd
}
