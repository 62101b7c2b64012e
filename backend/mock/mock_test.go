package mock_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ss-deshmukh/Nomenclature/backend/mock"
	"github.com/ss-deshmukh/Nomenclature/registry"
)

const addr = "5FHneW46xGXgs5mUiveU4sbTyGBzmstUspZC92UhjJM694ty"

func TestCreateLookupReplace(t *testing.T) {
	ctx := context.Background()
	b, err := mock.New()
	require.NoError(t, err)

	_, err = b.Lookup(ctx, "alice.web3")
	assert.ErrorIs(t, err, registry.ErrNoBinding)

	_, err = b.Replace(ctx, "alice.web3", addr)
	assert.ErrorIs(t, err, registry.ErrNoBinding)
	_, err = b.Lookup(ctx, "alice.web3")
	assert.ErrorIs(t, err, registry.ErrNoBinding, "replace must not create")

	sub, err := b.Create(ctx, "alice.web3", addr)
	require.NoError(t, err)
	r, err := sub.Included(ctx)
	require.NoError(t, err)
	assert.Equal(t, registry.ConfidenceFinalized, r.Confidence)
	assert.Empty(t, r.TxHash)

	_, err = b.Create(ctx, "alice.web3", "0x000000000000000000000000000000000000dEaD")
	assert.ErrorIs(t, err, registry.ErrBindingExists)

	_, err = b.Replace(ctx, "alice.web3", "0x000000000000000000000000000000000000dEaD")
	require.NoError(t, err)
	got, err := b.Lookup(ctx, "alice.web3")
	require.NoError(t, err)
	assert.Equal(t, "0x000000000000000000000000000000000000dEaD", got)
}

func TestConcurrentCreateFirstWriteWins(t *testing.T) {
	ctx := context.Background()
	b, err := mock.New()
	require.NoError(t, err)

	const n = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := b.Create(ctx, "race.web3", addr); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestStateFilePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "mock.json")

	b, err := mock.New(mock.WithRecords(mock.DemoRecords), mock.WithStateFile(path))
	require.NoError(t, err)
	_, err = b.Create(ctx, "carol.web3", addr)
	require.NoError(t, err)

	reopened, err := mock.New(mock.WithStateFile(path))
	require.NoError(t, err)
	records := reopened.Records()
	require.Len(t, records, 3)
	assert.Equal(t, "alice.web3", records[0].Name)
	assert.Equal(t, "bob.web3", records[1].Name)
	assert.Equal(t, "carol.web3", records[2].Name)
}

func TestStateFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mock.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err := mock.New(mock.WithStateFile(path))
	assert.Error(t, err)
}
