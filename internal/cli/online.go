package cli

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/c13studio/c13-sdk/pkg/balance"
	"github.com/c13studio/c13-sdk/pkg/chains"
	"github.com/c13studio/c13-sdk/pkg/errclass"
	"github.com/c13studio/c13-sdk/pkg/format"
	"github.com/c13studio/c13-sdk/pkg/tokens"
	"github.com/c13studio/c13-sdk/pkg/transfer"
)

// checkPlan explains why a plan has no read path.
func checkPlan(p balance.Plan) error {
	switch {
	case p.Path() != "":
		return nil
	case p.Account == (common.Address{}):
		return fmt.Errorf("nothing to query: set %s or %s, or pass --account", EnvPrivateKey, EnvAccount)
	case p.ChainID == 0:
		return errors.New("nothing to query: no chain selected")
	default:
		return fmt.Errorf("token %s has no contract on chain %d", p.Token.Symbol, p.ChainID)
	}
}

func newBalanceCmd(g *globalFlags) *cobra.Command {
	var account string
	cmd := &cobra.Command{
		Use:   "balance [token]",
		Short: "Show the balance of the configured account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := balance.Params{}
			if len(args) == 1 {
				p.Token = args[0]
			}
			if account != "" {
				if !tokens.IsAddress(account) {
					return fmt.Errorf("invalid account address %q", account)
				}
				p.Account = common.HexToAddress(account)
			}

			c13, err := g.newSDK(cmd.Context())
			if err != nil {
				return err
			}
			defer c13.Close()

			q := c13.BalanceQuery(p)
			if err := checkPlan(q.Plan()); err != nil {
				return err
			}
			st := q.Refetch(cmd.Context())
			if st.Err != nil {
				return fmt.Errorf("%s: %w", errclass.Parse(st.Err).Message, st.Err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), format.FormatTransferAmount(*st.Balance, st.Decimals, st.Symbol).Formatted)
			return nil
		},
	}
	cmd.Flags().StringVar(&account, "account", "", "account to query (default: the configured one)")
	return cmd
}

func newSendCmd(g *globalFlags) *cobra.Command {
	var (
		req  transfer.Request
		wait bool
	)
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send native currency or an ERC-20 token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c13, err := g.newSDK(cmd.Context())
			if err != nil {
				return err
			}
			defer c13.Close()

			st := c13.Balance(cmd.Context(), req.Token)
			if st.Balance != nil {
				req.Balance = *st.Balance
			}

			send := c13.Transfer
			if wait {
				send = c13.Send
			}
			o, err := send(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("%s: %w", errclass.Parse(err).Message, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", o.State(), o.Hash().Hex())
			if ch, err := chains.ByID(o.ChainID); err == nil {
				fmt.Fprintln(out, ch.TxURL(o.Hash().Hex()))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&req.To, "to", "", "recipient address")
	cmd.Flags().StringVar(&req.Amount, "amount", "", "amount in whole token units")
	cmd.Flags().StringVar(&req.Token, "token", "ETH", "token symbol or contract address")
	cmd.Flags().BoolVar(&wait, "wait", true, "wait for the receipt")
	return cmd
}

func newHealthCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the configured RPC endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c13, err := g.newSDK(cmd.Context())
			if err != nil {
				return err
			}
			defer c13.Close()

			failed := 0
			for _, h := range c13.Heartbeat(cmd.Context()) {
				if !h.Healthy() {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "%d %s: %v\n", h.ChainID, h.Name, h.Err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d %s: block %d in %s\n", h.ChainID, h.Name, h.Block, h.Latency)
			}
			if failed > 0 {
				return fmt.Errorf("%d chain(s) unreachable", failed)
			}
			return nil
		},
	}
}
