package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ss-deshmukh/Nomenclature/networks"
)

func newNetworksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "networks",
		Short: "List the networks the contract backend can use",
		Long: fmt.Sprintf(`List the built-in networks and the custom ones found in %s.
A custom network is a JSON file with the fields of the built-in ones, e.g.

	{"name": "rococo-contracts", "ss58_prefix": 42, "contracts_pallet_index": 40,
	 "default_nodes": {"parity": "wss://rococo-contracts-rpc.polkadot.io"}}`,
			networks.DefaultCustomNetworksDir(),
		),
		Args:             cobra.NoArgs,
		PersistentPreRun: skipConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			var rows [][]string
			for _, n := range networks.GetSupportedNetworks() {
				node, err := networks.NodeURL(n)
				if err != nil {
					node = "-"
				}
				contract := n.GetWNSContract()
				if contract == "" {
					contract = "-"
				}
				rows = append(rows, []string{
					n.GetName(),
					strings.Join(n.GetAlternativeNames(), ", "),
					n.GetNativeTokenSymbol(),
					fmt.Sprintf("%d", n.GetSS58Prefix()),
					node,
					contract,
				})
			}
			a.ui.Table([]string{"Name", "Aliases", "Token", "SS58", "Node", "WNS contract"}, rows)
			return nil
		},
	}
}
