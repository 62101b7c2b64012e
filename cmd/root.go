// Copyright © 2018 Victor Tran
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cmdutil "github.com/ss-deshmukh/Nomenclature/cmd/util"
	"github.com/ss-deshmukh/Nomenclature/config"
	"github.com/ss-deshmukh/Nomenclature/networks"
	"github.com/ss-deshmukh/Nomenclature/registry"
	"github.com/ss-deshmukh/Nomenclature/ui"
)

// app is the state shared by every command of one invocation.
type app struct {
	ui    ui.UI
	v     *viper.Viper
	build cmdutil.Builder
	cfg   config.Config
}

// NewRootCmd builds the wns command tree. Output goes through u and
// backends are opened with build.
func NewRootCmd(u ui.UI, build cmdutil.Builder) *cobra.Command {
	a := &app{
		ui:    u,
		v:     config.NewViper(),
		build: build,
	}
	rootCmd := &cobra.Command{
		Use:   "wns",
		Short: "Register and resolve .web3 names",
		Long: fmt.Sprintf(`wns is a command line client for the WNS name service, which binds
human readable .web3 names to blockchain addresses.

Names may be given with or without the .web3 suffix: alice and alice.web3
are the same name. A name is 1 to 50 letters, digits, hyphens or
underscores. Addresses may be Substrate (SS58), Ethereum, Bitcoin or
Solana addresses.

wns works against one of two backends:

	1. mock: an in-memory registry, optionally saved to a state file,
	for demos and scripting tests.
	2. contract: the WNS ink! contract on a Substrate chain. Reads are
	free dry-runs; register and update submit a signed extrinsic and wait
	for it to be included (or finalized, with --wait finalized).

Settings are read from the config file (%s by default), then from
WNS_ prefixed environment variables (WNS_BACKEND, WNS_CONTRACT...), then
from flags. Run "wns write-config" to get a commented config file.

Supported networks: %v. The node of a network can be overridden with its
node variable, e.g. WESTEND_NODE.`,
			config.DefaultConfigPath(),
			networks.GetSupportedNetworkNames(),
		),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.loadConfig,
	}

	pf := rootCmd.PersistentFlags()
	pf.String("config", config.DefaultConfigPath(), "config file, empty to read none")
	pf.String("backend", "", "registry backend. Valid values: \"mock\", \"contract\".")
	pf.StringP("network", "k", "", "substrate network of the contract backend")
	pf.String("node", "", "node url, overrides the network's default node")
	pf.String("contract", "", "SS58 address of the WNS contract")
	pf.StringP("from", "f", "", "SS58 address mutations are signed with")
	pf.Duration("timeout", 0, "how long a command may take, including the wait for inclusion")
	pf.String("log-level", "", "log level: debug, info, warn or error")
	for key, flag := range map[string]string{
		"backend":   "backend",
		"network":   "network",
		"node":      "node",
		"contract":  "contract",
		"from":      "from",
		"timeout":   "timeout",
		"log.level": "log-level",
	} {
		// only fails for a nil flag
		_ = a.v.BindPFlag(key, pf.Lookup(flag))
	}

	rootCmd.AddCommand(
		newRegisterCmd(a),
		newUpdateCmd(a),
		newResolveCmd(a),
		newResolveManyCmd(a),
		newAvailableCmd(a),
		newOwnerCmd(a),
		newValidateCmd(a),
		newNetworksCmd(a),
		newVersionCmd(a),
		newWriteConfigCmd(a),
	)
	return rootCmd
}

// loadConfig reads the config file, env and flags into a.cfg and applies
// the log settings.
func (a *app) loadConfig(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		a.v.SetConfigFile(cmdutil.ExpandHome(path))
		if err := a.v.ReadInConfig(); err != nil {
			// a missing default config file is fine, a missing explicit one is not
			if !errors.Is(err, fs.ErrNotExist) || cmd.Flags().Changed("config") {
				return fmt.Errorf("reading config: %w", err)
			}
		}
	}
	cfg, err := config.Unmarshal(a.v)
	if err != nil {
		return err
	}
	if err := cmdutil.ApplyNetworkDefaults(&cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := config.InitLog(cfg.Log); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// skipConfig stops the config loading of the root command for commands
// that need no backend.
func skipConfig(*cobra.Command, []string) {}

// withSession opens the configured backend for the duration of fn. The
// command timeout covers both.
func (a *app) withSession(cmd *cobra.Command, fn func(ctx context.Context, s *cmdutil.Session) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()
	s, err := a.build(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(ctx, s)
}

// hint is printed under errors the user can act on.
func hint(err error) string {
	switch {
	case errors.Is(err, registry.ErrOutcomeUnknown):
		return "The mutation may still land. Check with \"wns resolve\" before retrying."
	case errors.Is(err, registry.ErrUnsupported):
		return "Set \"from\" and \"signer.command\" in the config file to sign mutations."
	case errors.Is(err, registry.ErrDispatch):
		return "Check the contract address (--contract) and the gas limit in the config file."
	case errors.Is(err, registry.ErrTransport):
		return "Check the node url (--node) and that the node is reachable."
	}
	return ""
}

// Execute runs wns with the process arguments and exits 1 on error. It is
// called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	u := ui.NewTerminalUI()
	if err := NewRootCmd(u, cmdutil.BuildClient).ExecuteContext(ctx); err != nil {
		u.Error("%s", err)
		if h := hint(err); h != "" {
			u.Info("%s", h)
		}
		stop()
		os.Exit(1)
	}
}
