package cmd

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	cmdutil "github.com/ss-deshmukh/Nomenclature/cmd/util"
	"github.com/ss-deshmukh/Nomenclature/registry"
	"github.com/ss-deshmukh/Nomenclature/ui"
)

func newResolveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve NAME",
		Short: "Print the address a name is bound to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(ctx context.Context, s *cmdutil.Session) error {
				addr, err := s.Client.Resolve(ctx, args[0])
				if err != nil {
					return err
				}
				a.ui.Info("%s", addr)
				return nil
			})
		},
	}
}

func newResolveManyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve-many NAME...",
		Short: "Resolve several names at once",
		Long: `Resolve every NAME and list the ones that resolved, in the order given.
Names that are not registered, or could not be looked up, are left out.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			return a.withSession(cmd, func(ctx context.Context, s *cmdutil.Session) error {
				records := s.Client.ResolveMany(ctx, args)
				if asJSON {
					enc := json.NewEncoder(a.ui.Writer())
					enc.SetIndent("", "  ")
					return enc.Encode(records)
				}
				rows := make([][]string, 0, len(records))
				for _, r := range records {
					rows = append(rows, []string{r.Name, r.Address})
				}
				a.ui.Table([]string{"Name", "Address"}, rows)
				if missing := len(args) - len(records); missing > 0 {
					a.ui.Warn("%d of %d names did not resolve", missing, len(args))
				}
				return nil
			})
		},
	}
	cmd.Flags().Bool("json", false, "print the records as JSON")
	return cmd
}

func newAvailableCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "available NAME",
		Short: "Check whether a name can still be registered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !registry.ValidateName(args[0]) {
				return &registry.ValidationError{Field: "name", Value: args[0]}
			}
			name := registry.NormalizeName(args[0])
			return a.withSession(cmd, func(ctx context.Context, s *cmdutil.Session) error {
				free, err := s.Client.IsAvailable(ctx, name)
				if err != nil {
					return err
				}
				if free {
					a.ui.Success("%s is available", name)
				} else {
					a.ui.Warn("%s is taken", name)
				}
				return nil
			})
		},
	}
}

func newOwnerCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "owner NAME",
		Short: "Print the account that registered a name",
		Long:  `Print the account allowed to update NAME. Only the contract backend tracks owners.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(ctx context.Context, s *cmdutil.Session) error {
				owner, err := s.Client.Owner(ctx, args[0])
				if err != nil {
					return err
				}
				row := [2]string{"Owner", a.ui.Style(ui.StyledText{Text: owner, Severity: ui.SeverityCritical})}
				rows := [][2]string{{"Name", registry.NormalizeName(args[0])}, row}
				if s.IsLive() {
					if url := s.Network.AccountURL(owner); url != "" {
						rows = append(rows, [2]string{"Explorer", url})
					}
				}
				a.ui.KeyValue(rows)
				return nil
			})
		},
	}
}
