package cmd

import (
	"github.com/spf13/cobra"
)

const (
	VERSION string = "0.1.0"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:              "version",
		Short:            "Show wns version",
		Args:             cobra.NoArgs,
		PersistentPreRun: skipConfig,
		Run: func(cmd *cobra.Command, args []string) {
			a.ui.Info("Version: %s", VERSION)
		},
	}
}
