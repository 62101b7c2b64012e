// Package signer holds the substrate.Signer implementations the CLI can be
// configured with.
package signer

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/ss-deshmukh/Nomenclature/common"
	"github.com/ss-deshmukh/Nomenclature/ss58"
	"github.com/ss-deshmukh/Nomenclature/substrate"
)

// Command delegates signing to an external program, so that keys stay in
// whatever tool already guards them (a subkey wrapper, a hardware wallet
// bridge). The program receives the 0x-prefixed hex payload on stdin,
// followed by a newline, and must print the hex signature on stdout.
type Command struct {
	Name    string
	Args    []string
	Account ss58.AccountID
	Scheme  substrate.SignatureScheme
}

// NewCommand splits cmdline on whitespace. account is the SS58 address of
// the key the program signs with.
func NewCommand(cmdline, account string, scheme substrate.SignatureScheme) (*Command, error) {
	fields := strings.Fields(cmdline)
	if len(fields) == 0 {
		return nil, fmt.Errorf("signer command is empty")
	}
	id, _, err := ss58.Decode(account)
	if err != nil {
		return nil, fmt.Errorf("signer account: %w", err)
	}
	return &Command{
		Name:    fields[0],
		Args:    fields[1:],
		Account: id,
		Scheme:  scheme,
	}, nil
}

func (c *Command) AccountID() ss58.AccountID {
	return c.Account
}

func (c *Command) Sign(ctx context.Context, payload []byte) (substrate.Signature, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Stdin = strings.NewReader(hexutil.Encode(payload) + "\n")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	common.LoggerFor("signer").WithField("command", c.Name).Debugf("signing %d bytes", len(payload))
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return substrate.Signature{}, fmt.Errorf("%s: %w: %s", c.Name, err, msg)
		}
		return substrate.Signature{}, fmt.Errorf("%s: %w", c.Name, err)
	}
	out := strings.TrimSpace(stdout.String())
	if !strings.HasPrefix(out, "0x") {
		out = "0x" + out
	}
	sig, err := hexutil.Decode(out)
	if err != nil {
		return substrate.Signature{}, fmt.Errorf("%s printed an invalid signature: %w", c.Name, err)
	}
	return substrate.Signature{Scheme: c.Scheme, Bytes: sig}, nil
}
