package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ss-deshmukh/Nomenclature/registry"
	"github.com/ss-deshmukh/Nomenclature/ui"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate VALUE...",
		Short: "Check values as names and addresses, offline",
		Long: `Report for every VALUE whether it is a valid name, and its canonical form, and
which address format it matches. Nothing is sent to a backend. The command fails
when a value is neither a name nor an address.`,
		Args:             cobra.MinimumNArgs(1),
		PersistentPreRun: skipConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0, len(args))
			invalid := 0
			for _, v := range args {
				name := a.ui.Style(ui.StyledText{Text: "-", Severity: ui.SeverityError})
				if registry.ValidateName(v) {
					name = a.ui.Style(ui.StyledText{Text: registry.NormalizeName(v), Severity: ui.SeveritySuccess})
				}
				addr := a.ui.Style(ui.StyledText{Text: "-", Severity: ui.SeverityError})
				if f, ok := registry.DetectAddressFormat(v); ok {
					addr = a.ui.Style(ui.StyledText{Text: f.String(), Severity: ui.SeveritySuccess})
				}
				if !registry.ValidateName(v) && !registry.ValidateAddress(v) {
					invalid++
				}
				rows = append(rows, []string{v, name, addr})
			}
			a.ui.Table([]string{"Value", "Name", "Address format"}, rows)
			if invalid > 0 {
				return fmt.Errorf("%d of %d values are neither a valid name nor a known address: %w", invalid, len(args), registry.ErrValidation)
			}
			return nil
		},
	}
}
