package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/c13studio/c13-sdk/pkg/chains"
	"github.com/c13studio/c13-sdk/pkg/tokens"
)

func newChainsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chains",
		Short: "List supported chains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCURRENCY\tRPC\tEXPLORER")
			for _, c := range chains.All() {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.NativeCurrency.Symbol, c.RPCURL, c.ExplorerURL)
			}
			return w.Flush()
		},
	}
}

func newTokensCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tokens",
		Short: "List registered tokens of the selected chain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			chainID, err := g.chain()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SYMBOL\tNAME\tDECIMALS\tADDRESS")
			for _, s := range tokens.Symbols(chainID) {
				t, _ := tokens.Lookup(chainID, s)
				addr := t.Address.Hex()
				if t.Native {
					addr = "native"
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", t.Symbol, t.Name, t.Decimals, addr)
			}
			return w.Flush()
		},
	}
}
