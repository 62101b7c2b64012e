package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ss-deshmukh/Nomenclature/common"
	"github.com/ss-deshmukh/Nomenclature/config"
)

const contractAddr = "5FHneW46xGXgs5mUiveU4sbTyGBzmstUspZC92UhjJM694ty"

func TestDefaultsAreValid(t *testing.T) {
	d := config.Defaults()
	require.NoError(t, d.Validate())
	assert.Equal(t, config.BackendMock, d.Backend)
	assert.Equal(t, uint64(3_000_000_000), d.Gas.RefTime)
	assert.Equal(t, uint64(131072), d.Gas.ProofSize)
}

func TestValidate(t *testing.T) {
	for _, tc := range []struct {
		name   string
		modify func(*config.Config)
	}{
		{"unknown backend", func(c *config.Config) { c.Backend = "postgres" }},
		{"unknown confidence", func(c *config.Config) { c.Confidence = "ready" }},
		{"zero timeout", func(c *config.Config) { c.Timeout = 0 }},
		{"bad log level", func(c *config.Config) { c.Log.Level = "loud" }},
		{"contract without address", func(c *config.Config) { c.Backend = config.BackendContract }},
		{"contract with bad address", func(c *config.Config) {
			c.Backend, c.Contract = config.BackendContract, "0xdead"
		}},
		{"from without signer", func(c *config.Config) {
			c.Backend, c.Contract, c.From = config.BackendContract, contractAddr, config.AliceAddress
		}},
		{"bad scheme", func(c *config.Config) {
			c.Backend, c.Contract, c.Signer.Scheme = config.BackendContract, contractAddr, "rsa"
		}},
		{"negative deposit", func(c *config.Config) {
			c.Backend, c.Contract, c.StorageDepositLimit = config.BackendContract, contractAddr, "-1"
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := config.Defaults()
			tc.modify(&c)
			assert.Error(t, c.Validate())
		})
	}

	c := config.Defaults()
	c.Backend, c.Contract, c.StorageDepositLimit = config.BackendContract, contractAddr, "1000000000000"
	require.NoError(t, c.Validate())
	limit, err := c.StorageDeposit()
	require.NoError(t, err)
	assert.Equal(t, "1000000000000", limit.String())
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
backend: contract
contract: `+contractAddr+`
confidence: finalized
timeout: 30s
gas:
  ref_time: 100
`), 0o600))
	t.Setenv("WNS_GAS_PROOF_SIZE", "2048")
	t.Setenv("WNS_NETWORK", "local")

	v := config.NewViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	cfg, err := config.Load(v)
	require.NoError(t, err)

	assert.Equal(t, config.BackendContract, cfg.Backend)
	assert.Equal(t, "finalized", cfg.Confidence)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, uint64(100), cfg.Gas.RefTime)
	assert.Equal(t, uint64(2048), cfg.Gas.ProofSize)
	assert.Equal(t, "local", cfg.Network)
	assert.Equal(t, config.AliceAddress, cfg.QueryOrigin, "defaults fill the gaps")
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, config.WriteDefaultConfig(path))
	assert.Error(t, config.WriteDefaultConfig(path), "never overwrites")

	v := config.NewViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	cfg, err := config.Load(v)
	require.NoError(t, err)
	assert.Equal(t, config.Defaults(), cfg)
}

func TestInitLog(t *testing.T) {
	defer common.Log.SetLevel(logrus.WarnLevel)
	defer common.Log.SetOutput(os.Stderr)

	file := filepath.Join(t.TempDir(), "logs", "wns.log")
	require.NoError(t, config.InitLog(config.LogConfig{Level: "debug", File: file}))
	assert.Equal(t, logrus.DebugLevel, common.Log.GetLevel())

	common.LoggerFor("test").WithField("name", "alice.web3").Debug("hello")
	content, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(content), "[debug] test: hello name=alice.web3")

	assert.Error(t, config.InitLog(config.LogConfig{Level: "loud"}))
}
