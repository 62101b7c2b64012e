package util

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ss-deshmukh/Nomenclature/backend/contract"
	"github.com/ss-deshmukh/Nomenclature/backend/mock"
	"github.com/ss-deshmukh/Nomenclature/common"
	"github.com/ss-deshmukh/Nomenclature/config"
	"github.com/ss-deshmukh/Nomenclature/networks"
	"github.com/ss-deshmukh/Nomenclature/registry"
	"github.com/ss-deshmukh/Nomenclature/signer"
	"github.com/ss-deshmukh/Nomenclature/ss58"
	"github.com/ss-deshmukh/Nomenclature/substrate"
)

// Session is what a command works with: the registry client and, on the
// contract backend, the network it talks to.
type Session struct {
	Client *registry.Client
	// Network is nil on the mock backend.
	Network networks.Network
	// ReadOnly is set when mutations cannot be signed.
	ReadOnly bool
}

// IsLive reports whether mutations reach a real chain.
func (s *Session) IsLive() bool {
	return s.Network != nil
}

func (s *Session) Close() error {
	return s.Client.Close()
}

// Builder opens a Session for a configuration. Commands take one so tests
// can hand them a prepared client.
type Builder func(ctx context.Context, cfg config.Config) (*Session, error)

// ExpandHome replaces a leading ~/ with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// ApplyNetworkDefaults fills the settings the configured network knows
// about and the configuration leaves empty.
func ApplyNetworkDefaults(cfg *config.Config) error {
	if cfg.Backend != config.BackendContract || cfg.Contract != "" {
		return nil
	}
	network, err := networks.GetNetwork(cfg.Network)
	if err != nil {
		return err
	}
	cfg.Contract = network.GetWNSContract()
	return nil
}

// BuildClient opens the backend selected by cfg.Backend and wraps it in a
// registry client.
func BuildClient(ctx context.Context, cfg config.Config) (*Session, error) {
	confidence, err := registry.ParseConfidence(cfg.Confidence)
	if err != nil {
		return nil, err
	}
	opts := []registry.Option{registry.WithConfidence(confidence)}

	switch cfg.Backend {
	case config.BackendMock:
		b, err := buildMock(cfg.Mock)
		if err != nil {
			return nil, err
		}
		return &Session{Client: registry.NewClient(b, opts...)}, nil
	case config.BackendContract:
		network, err := networks.GetNetwork(cfg.Network)
		if err != nil {
			return nil, err
		}
		b, readOnly, err := buildContract(ctx, cfg, network)
		if err != nil {
			return nil, err
		}
		return &Session{
			Client:   registry.NewClient(b, opts...),
			Network:  network,
			ReadOnly: readOnly,
		}, nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

func buildMock(c config.MockConfig) (*mock.Backend, error) {
	var opts []mock.Option
	if c.Seed {
		opts = append(opts, mock.WithRecords(mock.DemoRecords))
	}
	// the state file wins over the demo seed
	if c.StateFile != "" {
		opts = append(opts, mock.WithStateFile(ExpandHome(c.StateFile)))
	}
	return mock.New(opts...)
}

func buildContract(ctx context.Context, cfg config.Config, network networks.Network) (*contract.Backend, bool, error) {
	url := cfg.Node
	if url == "" {
		var err error
		if url, err = networks.NodeURL(network); err != nil {
			return nil, false, err
		}
	}
	contractID, _, err := ss58.Decode(cfg.Contract)
	if err != nil {
		return nil, false, fmt.Errorf("contract: %w", err)
	}
	origin, _, err := ss58.Decode(cfg.QueryOrigin)
	if err != nil {
		return nil, false, fmt.Errorf("query origin: %w", err)
	}
	deposit, err := cfg.StorageDeposit()
	if err != nil {
		return nil, false, err
	}

	var opts []contract.Option
	if cfg.From != "" {
		scheme, err := substrate.ParseSignatureScheme(cfg.Signer.Scheme)
		if err != nil {
			return nil, false, err
		}
		s, err := signer.NewCommand(cfg.Signer.Command, cfg.From, scheme)
		if err != nil {
			return nil, false, err
		}
		opts = append(opts, contract.WithSigner(s))
	}

	common.LoggerFor("cmd").WithField("node", url).Debugf("connecting to %s", network.GetName())
	client, err := substrate.Dial(ctx, substrate.Config{
		URL:          url,
		PalletIndex:  network.GetContractsPalletIndex(),
		SS58Prefix:   network.GetSS58Prefix(),
		MetadataHash: network.HasMetadataHashExtension(),
	})
	if err != nil {
		return nil, false, registry.NewTransportError("dial", err)
	}
	b := contract.New(client, contract.Config{
		Contract:    contractID,
		QueryOrigin: origin,
		GasLimit: substrate.Weight{
			RefTime:   cfg.Gas.RefTime,
			ProofSize: cfg.Gas.ProofSize,
		},
		StorageDepositLimit: deposit,
		SS58Prefix:          network.GetSS58Prefix(),
	}, opts...)
	return b, cfg.From == "", nil
}
