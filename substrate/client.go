// Package substrate talks to a Substrate node with pallet-contracts: it
// dry-runs contract messages through the ContractsApi runtime API, builds
// and signs Contracts.call extrinsics and follows them until finalization.
//
// Plain requests go through go-ethereum's JSON-RPC client, which speaks
// http and websocket alike. Extrinsic status subscriptions use their own
// websocket connection because Substrate names its notifications
// differently from Ethereum nodes.
package substrate

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/sirupsen/logrus"

	"github.com/ss-deshmukh/Nomenclature/common"
	"github.com/ss-deshmukh/Nomenclature/ss58"
)

const (
	DefaultRequestTimeout = 10 * time.Second
	DefaultDialAttempts   = 3
	// DefaultCallIndex is the index of `call` inside pallet-contracts.
	DefaultCallIndex uint8 = 6
)

type Config struct {
	URL string
	// PalletIndex is the position of pallet-contracts in the runtime. It
	// differs between chains and has no safe default.
	PalletIndex uint8
	CallIndex   uint8
	SS58Prefix  uint16
	// MetadataHash adds the CheckMetadataHash signed extension, present in
	// runtimes built from polkadot-sdk 1.8 onwards.
	MetadataHash   bool
	RequestTimeout time.Duration
	DialAttempts   uint
}

func (c Config) withDefaults() Config {
	if c.CallIndex == 0 {
		c.CallIndex = DefaultCallIndex
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.DialAttempts == 0 {
		c.DialAttempts = DefaultDialAttempts
	}
	return c
}

type Client struct {
	cfg Config
	rpc *rpc.Client
	log *logrus.Entry

	mu      sync.Mutex
	genesis *Hash
}

// Dial connects to the node at cfg.URL, retrying a few times since public
// endpoints regularly drop the first handshake.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()
	log := common.LoggerFor("substrate").WithField("node", cfg.URL)
	var client *rpc.Client
	err := retry.Do(
		func() error {
			c, err := rpc.DialContext(ctx, cfg.URL)
			if err != nil {
				return err
			}
			client = c
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(cfg.DialAttempts),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.WithError(err).Warnf("dial attempt %d failed", n+1)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("couldn't connect to %s: %w", cfg.URL, err)
	}
	return &Client{cfg: cfg, rpc: client, log: log}, nil
}

// NewClient wraps an existing rpc client. cfg.URL is still used for
// extrinsic subscriptions.
func NewClient(client *rpc.Client, cfg Config) *Client {
	cfg = cfg.withDefaults()
	return &Client{
		cfg: cfg,
		rpc: client,
		log: common.LoggerFor("substrate").WithField("node", cfg.URL),
	}
}

func (c *Client) Close() error {
	c.rpc.Close()
	return nil
}

func (c *Client) call(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	timeout, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()
	if err := c.rpc.CallContext(timeout, result, method, args...); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

// GenesisHash returns the hash of block 0, cached after the first call.
func (c *Client) GenesisHash(ctx context.Context) (Hash, error) {
	c.mu.Lock()
	cached := c.genesis
	c.mu.Unlock()
	if cached != nil {
		return *cached, nil
	}
	var h Hash
	if err := c.call(ctx, &h, "chain_getBlockHash", 0); err != nil {
		return h, err
	}
	c.mu.Lock()
	c.genesis = &h
	c.mu.Unlock()
	return h, nil
}

func (c *Client) RuntimeVersion(ctx context.Context) (RuntimeVersion, error) {
	var v RuntimeVersion
	err := c.call(ctx, &v, "state_getRuntimeVersion")
	return v, err
}

// AccountNextIndex returns the next nonce of id, counting transactions in
// the pool.
func (c *Client) AccountNextIndex(ctx context.Context, id ss58.AccountID) (uint64, error) {
	var nonce uint64
	err := c.call(ctx, &nonce, "system_accountNextIndex", ss58.Encode(id, c.cfg.SS58Prefix))
	return nonce, err
}

// StateCall executes a runtime API function, at the best block when at is
// zero.
func (c *Client) StateCall(ctx context.Context, method string, data []byte, at Hash) ([]byte, error) {
	var out hexutil.Bytes
	args := []interface{}{method, hexutil.Bytes(data)}
	if !at.IsZero() {
		args = append(args, at.Hex())
	}
	if err := c.call(ctx, &out, "state_call", args...); err != nil {
		return nil, err
	}
	return out, nil
}

func wsURL(u string) string {
	switch {
	case strings.HasPrefix(u, "http://"):
		return "ws://" + strings.TrimPrefix(u, "http://")
	case strings.HasPrefix(u, "https://"):
		return "wss://" + strings.TrimPrefix(u, "https://")
	}
	return u
}
