package registry_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ss-deshmukh/Nomenclature/backend/mock"
	"github.com/ss-deshmukh/Nomenclature/registry"
)

const (
	aliceAddr = "5FHneW46xGXgs5mUiveU4sbTyGBzmstUspZC92UhjJM694ty"
	bobAddr   = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"
	deadAddr  = "0x000000000000000000000000000000000000dEaD"
)

func newMockClient(t *testing.T, records map[string]string) *registry.Client {
	t.Helper()
	b, err := mock.New(mock.WithRecords(records))
	require.NoError(t, err)
	return registry.NewClient(b)
}

func TestRegisterAndResolve(t *testing.T) {
	ctx := context.Background()
	c := newMockClient(t, nil)

	res, err := c.Register(ctx, "alice", aliceAddr)
	require.NoError(t, err)
	assert.Equal(t, "alice.web3", res.Record.Name)
	assert.Equal(t, aliceAddr, res.Record.Address)
	require.NotNil(t, res.Submission)

	_, err = c.Register(ctx, "alice", deadAddr)
	assert.ErrorIs(t, err, registry.ErrAlreadyRegistered)
	_, err = c.Register(ctx, "alice.web3", bobAddr)
	assert.ErrorIs(t, err, registry.ErrAlreadyRegistered)

	for _, n := range []string{"alice", "alice.web3"} {
		got, err := c.Resolve(ctx, n)
		require.NoError(t, err)
		assert.Equal(t, aliceAddr, got)
	}
}

func TestRegisterValidatesBeforeBackend(t *testing.T) {
	ctx := context.Background()
	b := &recordingBackend{}
	c := registry.NewClient(b)

	_, err := c.Register(ctx, "al ice", aliceAddr)
	var verr *registry.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)
	assert.ErrorIs(t, err, registry.ErrValidation)

	_, err = c.Register(ctx, "alice", "not-an-address")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "address", verr.Field)

	_, err = c.Register(ctx, strings.Repeat("a", 51), aliceAddr)
	assert.ErrorIs(t, err, registry.ErrValidation)

	_, err = c.Update(ctx, "alice", "0x123")
	assert.ErrorIs(t, err, registry.ErrValidation)

	assert.Zero(t, b.calls, "backend must not be reached")
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	c := newMockClient(t, nil)

	_, err := c.Update(ctx, "bob", deadAddr)
	assert.ErrorIs(t, err, registry.ErrNotRegistered)
	ok, err := c.IsAvailable(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, ok, "update must not create a binding")

	_, err = c.Register(ctx, "bob", bobAddr)
	require.NoError(t, err)
	res, err := c.Update(ctx, "bob", deadAddr)
	require.NoError(t, err)
	assert.Equal(t, "bob.web3", res.Record.Name)

	got, err := c.Resolve(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, deadAddr, got)
}

func TestIsAvailable(t *testing.T) {
	ctx := context.Background()
	c := newMockClient(t, nil)

	ok, err := c.IsAvailable(ctx, "carol")
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = c.Resolve(ctx, "carol")
	assert.ErrorIs(t, err, registry.ErrNotFound)

	_, err = c.Register(ctx, "carol", aliceAddr)
	require.NoError(t, err)

	ok, err = c.IsAvailable(ctx, "carol.web3")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolveMany(t *testing.T) {
	ctx := context.Background()
	c := newMockClient(t, mock.DemoRecords)

	got := c.ResolveMany(ctx, []string{"alice", "ghost", "bob"})
	assert.Equal(t, []registry.NameRecord{
		{Name: "alice.web3", Address: aliceAddr},
		{Name: "bob.web3", Address: bobAddr},
	}, got)

	assert.Empty(t, c.ResolveMany(ctx, nil))
}

func TestTransportErrorsPassThrough(t *testing.T) {
	ctx := context.Background()
	cause := errors.New("connection reset")
	b := &recordingBackend{err: registry.NewTransportError("lookup", cause)}
	c := registry.NewClient(b)

	_, err := c.Resolve(ctx, "alice")
	assert.ErrorIs(t, err, registry.ErrTransport)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, registry.ErrNotFound)

	ok, err := c.IsAvailable(ctx, "alice")
	assert.False(t, ok)
	assert.ErrorIs(t, err, registry.ErrTransport)

	assert.Empty(t, c.ResolveMany(ctx, []string{"alice", "bob"}))
}

func TestWaitsForConfiguredConfidence(t *testing.T) {
	ctx := context.Background()
	sub := registry.NewSubmission()
	b := &recordingBackend{sub: sub}

	sub.Include(registry.Receipt{TxHash: "0xabc", BlockHash: "0x01"})
	res, err := registry.NewClient(b).Register(ctx, "dave", aliceAddr)
	require.NoError(t, err)
	assert.Equal(t, registry.ConfidenceIncluded, res.Receipt.Confidence)
	assert.Equal(t, "0xabc", res.Receipt.TxHash)

	final := registry.NewClient(b, registry.WithConfidence(registry.ConfidenceFinalized))
	timeout, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	res, err = final.Register(timeout, "dave", aliceAddr)
	assert.ErrorIs(t, err, registry.ErrOutcomeUnknown)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Same(t, sub, res.Submission, "caller keeps the handle to keep waiting")

	sub.Finalize(registry.Receipt{TxHash: "0xabc", BlockHash: "0x02"})
	res, err = final.Register(ctx, "dave", aliceAddr)
	require.NoError(t, err)
	assert.Equal(t, registry.ConfidenceFinalized, res.Receipt.Confidence)
	assert.Equal(t, "0x02", res.Receipt.BlockHash)
}

func TestLostRaceAfterSubmission(t *testing.T) {
	sub := registry.NewSubmission()
	sub.Fail(registry.ErrBindingExists)
	_, err := registry.NewClient(&recordingBackend{sub: sub}).Register(context.Background(), "erin", aliceAddr)
	assert.ErrorIs(t, err, registry.ErrAlreadyRegistered)
}

func TestOwnerUnsupported(t *testing.T) {
	c := newMockClient(t, mock.DemoRecords)
	_, err := c.Owner(context.Background(), "alice")
	assert.ErrorIs(t, err, registry.ErrUnsupported)
	assert.NoError(t, c.Close())
}

// recordingBackend counts calls and answers every request the same way.
type recordingBackend struct {
	calls int
	err   error
	sub   *registry.Submission
}

func (b *recordingBackend) Create(ctx context.Context, name, address string) (*registry.Submission, error) {
	b.calls++
	return b.sub, b.err
}

func (b *recordingBackend) Lookup(ctx context.Context, name string) (string, error) {
	b.calls++
	return "", b.err
}

func (b *recordingBackend) Replace(ctx context.Context, name, address string) (*registry.Submission, error) {
	b.calls++
	return b.sub, b.err
}
