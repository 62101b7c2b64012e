// Package config holds the wns configuration: the Config struct viper
// unmarshals into, its defaults and validation, and log setup.
package config

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/ss-deshmukh/Nomenclature/common"
	"github.com/ss-deshmukh/Nomenclature/registry"
	"github.com/ss-deshmukh/Nomenclature/ss58"
	"github.com/ss-deshmukh/Nomenclature/substrate"
)

const (
	BackendMock     = "mock"
	BackendContract = "contract"

	// AliceAddress is the well-known development account, used as the
	// caller of read-only dry-runs.
	AliceAddress = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"
)

type Config struct {
	Backend string `mapstructure:"backend"`
	Network string `mapstructure:"network"`
	// Node overrides the network's node URL.
	Node     string `mapstructure:"node"`
	Contract string `mapstructure:"contract"`
	// From is the SS58 address mutations are signed with.
	From       string        `mapstructure:"from"`
	Signer     SignerConfig  `mapstructure:"signer"`
	Confidence string        `mapstructure:"confidence"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Gas        GasConfig     `mapstructure:"gas"`
	// StorageDepositLimit is a decimal amount in the chain's smallest unit.
	// Empty means no limit.
	StorageDepositLimit string     `mapstructure:"storage_deposit_limit"`
	QueryOrigin         string     `mapstructure:"query_origin"`
	Mock                MockConfig `mapstructure:"mock"`
	Log                 LogConfig  `mapstructure:"log"`
}

type SignerConfig struct {
	Command string `mapstructure:"command"`
	Scheme  string `mapstructure:"scheme"`
}

type GasConfig struct {
	RefTime   uint64 `mapstructure:"ref_time"`
	ProofSize uint64 `mapstructure:"proof_size"`
}

type MockConfig struct {
	StateFile string `mapstructure:"state_file"`
	// Seed preloads the demo bindings.
	Seed bool `mapstructure:"seed"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

func Defaults() Config {
	return Config{
		Backend:    BackendMock,
		Network:    "westend",
		Confidence: "included",
		Timeout:    2 * time.Minute,
		Gas: GasConfig{
			RefTime:   3_000_000_000,
			ProofSize: 131_072,
		},
		QueryOrigin: AliceAddress,
		Signer: SignerConfig{
			Scheme: "sr25519",
		},
		Mock: MockConfig{
			Seed: true,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// SetDefaults registers every default on v so that env variables and config
// file keys are known to viper even when unset.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("backend", d.Backend)
	v.SetDefault("network", d.Network)
	v.SetDefault("node", d.Node)
	v.SetDefault("contract", d.Contract)
	v.SetDefault("from", d.From)
	v.SetDefault("signer.command", d.Signer.Command)
	v.SetDefault("signer.scheme", d.Signer.Scheme)
	v.SetDefault("confidence", d.Confidence)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("gas.ref_time", d.Gas.RefTime)
	v.SetDefault("gas.proof_size", d.Gas.ProofSize)
	v.SetDefault("storage_deposit_limit", d.StorageDepositLimit)
	v.SetDefault("query_origin", d.QueryOrigin)
	v.SetDefault("mock.state_file", d.Mock.StateFile)
	v.SetDefault("mock.seed", d.Mock.Seed)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
}

// NewViper returns a viper instance reading WNS_ prefixed environment
// variables, with dots in keys mapped to underscores (WNS_GAS_REF_TIME).
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("WNS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Unmarshal reads the configuration held by v on top of the defaults,
// without validating it.
func Unmarshal(v *viper.Viper) (Config, error) {
	SetDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing configuration: %w", err)
	}
	return cfg, nil
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	cfg, err := Unmarshal(v)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Backend {
	case BackendMock, BackendContract:
	default:
		return fmt.Errorf("unknown backend %q, valid values: %s, %s", c.Backend, BackendMock, BackendContract)
	}
	if _, err := registry.ParseConfidence(c.Confidence); err != nil {
		return err
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if c.Backend != BackendContract {
		return nil
	}
	if c.Contract == "" {
		return fmt.Errorf("the contract backend needs a contract address")
	}
	if _, _, err := ss58.Decode(c.Contract); err != nil {
		return fmt.Errorf("contract: %w", err)
	}
	if _, _, err := ss58.Decode(c.QueryOrigin); err != nil {
		return fmt.Errorf("query origin: %w", err)
	}
	if c.From != "" {
		if _, _, err := ss58.Decode(c.From); err != nil {
			return fmt.Errorf("from: %w", err)
		}
		if c.Signer.Command == "" {
			return fmt.Errorf("from is set but no signer command is configured")
		}
	}
	if _, err := substrate.ParseSignatureScheme(c.Signer.Scheme); err != nil {
		return err
	}
	if _, err := c.StorageDeposit(); err != nil {
		return err
	}
	return nil
}

// StorageDeposit parses StorageDepositLimit; nil means no limit.
func (c Config) StorageDeposit() (*big.Int, error) {
	if c.StorageDepositLimit == "" {
		return nil, nil
	}
	v, ok := new(big.Int).SetString(c.StorageDepositLimit, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("storage deposit limit %q is not a non-negative integer", c.StorageDepositLimit)
	}
	return v, nil
}

func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".nomenclature", "config.yaml")
}

// DefaultConfigTemplate is written by `wns write-config`.
func DefaultConfigTemplate() string {
	d := Defaults()
	return strings.TrimLeft(fmt.Sprintf(`
# wns configuration. Every key can also be set through a WNS_ prefixed
# environment variable, e.g. WNS_BACKEND=contract.

# mock keeps bindings in memory (and in mock.state_file when set);
# contract talks to the WNS ink! contract.
backend: %s
network: %s
# node: ws://127.0.0.1:9944
# contract: <SS58 address of the WNS contract>

# Mutations on the contract backend are signed by an external program that
# reads the hex payload on stdin and prints the hex signature.
# from: <SS58 address>
signer:
  # command: my-subkey-wrapper
  scheme: %s

# included or finalized
confidence: %s
timeout: %s

gas:
  ref_time: %d
  proof_size: %d

mock:
  seed: %t
  # state_file: ~/.nomenclature/mock.json

log:
  level: %s
  # file: ~/.nomenclature/wns.log
`, d.Backend, d.Network, d.Signer.Scheme, d.Confidence, d.Timeout, d.Gas.RefTime, d.Gas.ProofSize, d.Mock.Seed, d.Log.Level), "\n")
}

func WriteDefaultConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := os.WriteFile(path, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// InitLog applies the log settings to the process logger. Log lines go to
// stderr unless file is set.
func InitLog(c LogConfig) error {
	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	common.Log.SetLevel(level)
	if c.File == "" {
		common.Log.SetOutput(os.Stderr)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.File), 0o750); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(c.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	common.Log.SetOutput(f)
	return nil
}
