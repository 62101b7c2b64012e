// Package mock is the in-memory registry backend used for demos and tests.
// Mutations apply synchronously under a mutex, so every submission it
// returns is already committed. Ownership is not tracked.
//
// A state file can be attached so that a command line session survives
// between invocations; the whole map is rewritten on every mutation.
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ss-deshmukh/Nomenclature/common"
	"github.com/ss-deshmukh/Nomenclature/registry"
)

// DemoRecords are the bindings the demo UI starts with.
var DemoRecords = map[string]string{
	"alice.web3": "5FHneW46xGXgs5mUiveU4sbTyGBzmstUspZC92UhjJM694ty",
	"bob.web3":   "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY",
}

type Backend struct {
	mu        sync.Mutex
	records   map[string]string
	stateFile string
	log       *logrus.Entry
}

type Option func(*Backend) error

// WithRecords seeds the store. Existing entries with the same name are
// overwritten.
func WithRecords(records map[string]string) Option {
	return func(b *Backend) error {
		for name, addr := range records {
			b.records[name] = addr
		}
		return nil
	}
}

// WithStateFile loads bindings from path when it exists and persists every
// mutation back to it.
func WithStateFile(path string) Option {
	return func(b *Backend) error {
		b.stateFile = path
		content, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading mock state %s: %w", path, err)
		}
		state := stateFile{}
		if err := json.Unmarshal(content, &state); err != nil {
			return fmt.Errorf("parsing mock state %s: %w", path, err)
		}
		for name, addr := range state.Records {
			b.records[name] = addr
		}
		return nil
	}
}

func New(opts ...Option) (*Backend, error) {
	b := &Backend{
		records: map[string]string{},
		log:     common.LoggerFor("mock"),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

type stateFile struct {
	Records map[string]string `json:"records"`
}

// persist must be called with mu held.
func (b *Backend) persist() error {
	if b.stateFile == "" {
		return nil
	}
	content, err := json.MarshalIndent(stateFile{Records: b.records}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(b.stateFile), 0o755); err != nil {
		return err
	}
	return os.WriteFile(b.stateFile, content, 0o644)
}

func (b *Backend) Create(ctx context.Context, name, address string) (*registry.Submission, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, found := b.records[name]; found {
		return nil, registry.ErrBindingExists
	}
	b.records[name] = address
	if err := b.persist(); err != nil {
		delete(b.records, name)
		return nil, fmt.Errorf("persisting mock state: %w", err)
	}
	b.log.WithField("name", name).Debug("registered")
	return registry.Committed(registry.Receipt{}), nil
}

func (b *Backend) Lookup(ctx context.Context, name string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	addr, found := b.records[name]
	if !found {
		return "", registry.ErrNoBinding
	}
	return addr, nil
}

func (b *Backend) Replace(ctx context.Context, name, address string) (*registry.Submission, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	prev, found := b.records[name]
	if !found {
		return nil, registry.ErrNoBinding
	}
	b.records[name] = address
	if err := b.persist(); err != nil {
		b.records[name] = prev
		return nil, fmt.Errorf("persisting mock state: %w", err)
	}
	b.log.WithField("name", name).Debug("updated")
	return registry.Committed(registry.Receipt{}), nil
}

// Records returns a sorted snapshot of every binding.
func (b *Backend) Records() []registry.NameRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]registry.NameRecord, 0, len(b.records))
	for name, addr := range b.records {
		out = append(out, registry.NameRecord{Name: name, Address: addr})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
