package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	cmdutil "github.com/ss-deshmukh/Nomenclature/cmd/util"
	"github.com/ss-deshmukh/Nomenclature/common"
	"github.com/ss-deshmukh/Nomenclature/registry"
	"github.com/ss-deshmukh/Nomenclature/ui"
)

// mutation is what register and update have in common.
type mutation struct {
	verb string
	// apply runs the mutation and returns its record and receipt.
	apply func(ctx context.Context, c *registry.Client, name, address string) (registry.NameRecord, registry.Receipt, error)
}

var registerMutation = mutation{
	verb: "register",
	apply: func(ctx context.Context, c *registry.Client, name, address string) (registry.NameRecord, registry.Receipt, error) {
		res, err := c.Register(ctx, name, address)
		return res.Record, res.Receipt, err
	},
}

var updateMutation = mutation{
	verb: "update",
	apply: func(ctx context.Context, c *registry.Client, name, address string) (registry.NameRecord, registry.Receipt, error) {
		res, err := c.Update(ctx, name, address)
		return res.Record, res.Receipt, err
	},
}

func addMutationFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("wait", "w", "", "milestone to wait for: included or finalized. Defaults to the configured confidence.")
	cmd.Flags().BoolP("yes", "y", false, "don't ask for confirmation before submitting")
}

func newRegisterCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register NAME ADDRESS",
		Short: "Bind a free name to an address",
		Long: `Register NAME, with or without the .web3 suffix, and bind it to ADDRESS.
Registration fails when the name is already taken. On the contract backend the
registering account becomes the owner of the name and is the only one allowed
to update it.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMutation(cmd, registerMutation, args[0], args[1])
		},
	}
	addMutationFlags(cmd)
	return cmd
}

func newUpdateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update NAME ADDRESS",
		Short: "Rebind a registered name to a new address",
		Long: `Update NAME to resolve to ADDRESS. The name must already be registered;
update never creates a binding.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMutation(cmd, updateMutation, args[0], args[1])
		},
	}
	addMutationFlags(cmd)
	return cmd
}

func (a *app) depositLimit(s *cmdutil.Session) string {
	limit, err := a.cfg.StorageDeposit()
	if err != nil || limit == nil {
		return "none"
	}
	return fmt.Sprintf("%s %s", common.FormatAmount(limit, s.Network.GetNativeTokenDecimal()), s.Network.GetNativeTokenSymbol())
}

func (a *app) runMutation(cmd *cobra.Command, m mutation, rawName, address string) error {
	if wait, _ := cmd.Flags().GetString("wait"); wait != "" {
		if _, err := registry.ParseConfidence(wait); err != nil {
			return err
		}
		a.cfg.Confidence = wait
	}
	yes, _ := cmd.Flags().GetBool("yes")

	// reject bad input before dialing anything
	if m.verb == registerMutation.verb && !registry.ValidateName(rawName) {
		return &registry.ValidationError{Field: "name", Value: rawName}
	}
	format, ok := registry.DetectAddressFormat(address)
	if !ok {
		return &registry.ValidationError{Field: "address", Value: address}
	}
	name := registry.NormalizeName(rawName)

	return a.withSession(cmd, func(ctx context.Context, s *cmdutil.Session) error {
		if s.IsLive() {
			a.ui.Section(fmt.Sprintf("Confirm %s", m.verb))
			a.ui.KeyValue([][2]string{
				{"Name", a.ui.Style(ui.StyledText{Text: name, Severity: ui.SeverityCritical})},
				{"Address", fmt.Sprintf("%s (%s)", a.ui.Style(ui.StyledText{Text: address, Severity: ui.SeverityCritical}), format)},
				{"Network", s.Network.GetName()},
				{"Contract", a.cfg.Contract},
				{"From", a.cfg.From},
				{"Gas limit", fmt.Sprintf("ref_time %d, proof_size %d (raised to the dry-run estimate)", a.cfg.Gas.RefTime, a.cfg.Gas.ProofSize)},
				{"Deposit limit", a.depositLimit(s)},
				{"Wait for", a.cfg.Confidence},
			})
			if s.ReadOnly {
				return fmt.Errorf("%s: no signing account configured: %w", m.verb, registry.ErrUnsupported)
			}
			if !yes && !a.ui.Confirm(fmt.Sprintf("Submit the %s?", m.verb), false) {
				a.ui.Warn("Aborted, nothing was submitted.")
				return nil
			}
		}

		stop := a.ui.Spinner(fmt.Sprintf("Waiting for the %s to be %s...", m.verb, s.Client.Confidence()))
		record, receipt, err := m.apply(ctx, s.Client, name, address)
		stop()
		if err != nil {
			return err
		}

		a.ui.Success("%s -> %s", record.Name, record.Address)
		if receipt.TxHash == "" {
			return nil
		}
		rows := [][2]string{
			{"Status", receipt.Confidence.String()},
			{"Extrinsic", receipt.TxHash},
			{"Block", receipt.BlockHash},
		}
		if s.IsLive() {
			if url := s.Network.ExtrinsicURL(receipt.TxHash); url != "" {
				rows = append(rows, [2]string{"Explorer", url})
			}
		}
		a.ui.KeyValue(rows)
		return nil
	})
}
