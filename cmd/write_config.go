package cmd

import (
	"github.com/spf13/cobra"

	cmdutil "github.com/ss-deshmukh/Nomenclature/cmd/util"
	"github.com/ss-deshmukh/Nomenclature/config"
)

func newWriteConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "write-config [PATH]",
		Short: "Write a commented default config file",
		Long: `Write the default configuration to PATH, or to the --config path when PATH is
omitted. An existing file is never overwritten.`,
		Args:             cobra.MaximumNArgs(1),
		PersistentPreRun: skipConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				path = config.DefaultConfigPath()
			}
			path = cmdutil.ExpandHome(path)
			if err := config.WriteDefaultConfig(path); err != nil {
				return err
			}
			a.ui.Success("Wrote %s", path)
			return nil
		},
	}
}
