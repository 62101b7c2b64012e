package contract_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ss-deshmukh/Nomenclature/backend/contract"
	"github.com/ss-deshmukh/Nomenclature/inkabi"
	"github.com/ss-deshmukh/Nomenclature/registry"
	"github.com/ss-deshmukh/Nomenclature/ss58"
	"github.com/ss-deshmukh/Nomenclature/substrate"
)

const (
	aliceAddr = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"
	bobAddr   = "5FHneW46xGXgs5mUiveU4sbTyGBzmstUspZC92UhjJM694ty"
	deadAddr  = "0x000000000000000000000000000000000000dEaD"
)

var (
	alice = ss58.MustDecode(aliceAddr)
	bob   = ss58.MustDecode(bobAddr)
)

type entry struct {
	address string
	owner   ss58.AccountID
}

// fakeChain executes the WNS contract messages against an in-memory state
// and keeps a snapshot of that state per block.
type fakeChain struct {
	mu        sync.Mutex
	state     map[string]entry
	blocks    map[substrate.Hash]map[string]entry
	pending   []substrate.ContractCall
	signers   []ss58.AccountID
	statuses  chan substrate.Status
	submitErr error
	callErr   error
	gasUsed   []substrate.Weight
	// flags and dispatchErr are copied into every dry-run result
	flags       uint32
	dispatchErr *substrate.DispatchError
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		state:    map[string]entry{},
		blocks:   map[substrate.Hash]map[string]entry{},
		statuses: make(chan substrate.Status, 8),
	}
}

func (f *fakeChain) execute(state map[string]entry, caller ss58.AccountID, input []byte) []byte {
	msg, args, err := inkabi.DecodeCall(input)
	if err != nil {
		return []byte{1, byte(inkabi.CouldNotReadInput)}
	}
	e, found := state[args[0]]
	switch msg.Label {
	case inkabi.RegisterName.Label:
		if found {
			return inkabi.EncodeUnitResult(inkabi.Err(inkabi.NameAlreadyTaken))
		}
		state[args[0]] = entry{address: args[1], owner: caller}
		return inkabi.EncodeUnitResult(nil)
	case inkabi.UpdateAddress.Label:
		if !found {
			return inkabi.EncodeUnitResult(inkabi.Err(inkabi.NameNotFound))
		}
		if e.owner != caller {
			return inkabi.EncodeUnitResult(inkabi.Err(inkabi.NotOwner))
		}
		state[args[0]] = entry{address: args[1], owner: caller}
		return inkabi.EncodeUnitResult(nil)
	case inkabi.ResolveName.Label:
		if !found {
			return inkabi.EncodeStringResult("", inkabi.Err(inkabi.NameNotFound))
		}
		return inkabi.EncodeStringResult(e.address, nil)
	case inkabi.GetOwner.Label:
		if !found {
			return inkabi.EncodeAccountResult(ss58.AccountID{}, inkabi.Err(inkabi.NameNotFound))
		}
		return inkabi.EncodeAccountResult(e.owner, nil)
	}
	return inkabi.EncodeBool(!found)
}

func copyState(s map[string]entry) map[string]entry {
	out := make(map[string]entry, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func (f *fakeChain) Call(ctx context.Context, call substrate.ContractCall, at substrate.Hash) (substrate.ContractResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.callErr != nil {
		return substrate.ContractResult{}, f.callErr
	}
	state := f.state
	if !at.IsZero() {
		state = f.blocks[at]
	}
	// dry-runs never commit
	out := f.execute(copyState(state), call.Origin, call.Data)
	return substrate.ContractResult{
		GasRequired: substrate.Weight{RefTime: 5_000_000_000, ProofSize: 1000},
		Flags:       f.flags,
		Data:        out,
		DispatchErr: f.dispatchErr,
	}, nil
}

func (f *fakeChain) Submit(ctx context.Context, signer substrate.Signer, call substrate.ContractCall) (*substrate.Watch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.pending = append(f.pending, call)
	f.signers = append(f.signers, signer.AccountID())
	f.gasUsed = append(f.gasUsed, *call.GasLimit)
	return substrate.NewWatch(substrate.Hash{0xee}, f.statuses), nil
}

// mine applies every pending extrinsic, seals the state as block and
// reports the inclusion.
func (f *fakeChain) mine(block substrate.Hash) {
	f.mu.Lock()
	for i, call := range f.pending {
		f.execute(f.state, f.signers[i], call.Data)
	}
	f.pending, f.signers = nil, nil
	f.blocks[block] = copyState(f.state)
	f.mu.Unlock()
	f.statuses <- substrate.Status{Kind: substrate.StatusInBlock, Block: block}
}

func (f *fakeChain) set(name, address string, owner ss58.AccountID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state[name] = entry{address: address, owner: owner}
}

type testSigner struct{ id ss58.AccountID }

func (s testSigner) AccountID() ss58.AccountID { return s.id }

func (s testSigner) Sign(ctx context.Context, payload []byte) (substrate.Signature, error) {
	return substrate.Signature{Scheme: substrate.Sr25519, Bytes: make([]byte, 64)}, nil
}

func newBackend(f *fakeChain, signer ss58.AccountID) *contract.Backend {
	return contract.New(f, contract.Config{
		QueryOrigin: alice,
		GasLimit:    substrate.Weight{RefTime: 3_000_000_000, ProofSize: 131072},
		SS58Prefix:  ss58.SubstratePrefix,
	}, contract.WithSigner(testSigner{id: signer}))
}

func wait(t *testing.T, sub *registry.Submission, c registry.Confidence) (registry.Receipt, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return sub.Wait(ctx, c)
}

func TestLookupAndOwner(t *testing.T) {
	ctx := context.Background()
	f := newFakeChain()
	f.set("alice.web3", bobAddr, bob)
	b := newBackend(f, alice)

	addr, err := b.Lookup(ctx, "alice.web3")
	require.NoError(t, err)
	assert.Equal(t, bobAddr, addr)

	owner, err := b.Owner(ctx, "alice.web3")
	require.NoError(t, err)
	assert.Equal(t, bobAddr, owner)

	_, err = b.Lookup(ctx, "ghost.web3")
	assert.ErrorIs(t, err, registry.ErrNoBinding)
	_, err = b.Owner(ctx, "ghost.web3")
	assert.ErrorIs(t, err, registry.ErrNoBinding)
}

func TestLookupTransportFailure(t *testing.T) {
	f := newFakeChain()
	f.callErr = errors.New("connection refused")
	_, err := newBackend(f, alice).Lookup(context.Background(), "alice.web3")
	assert.ErrorIs(t, err, registry.ErrTransport)
	assert.NotErrorIs(t, err, registry.ErrNoBinding)
}

func TestCreateMilestones(t *testing.T) {
	ctx := context.Background()
	f := newFakeChain()
	b := newBackend(f, alice)

	sub, err := b.Create(ctx, "carol.web3", deadAddr)
	require.NoError(t, err)
	require.Len(t, f.gasUsed, 1)
	assert.Equal(t, uint64(5_000_000_000), f.gasUsed[0].RefTime, "raised to the dry-run requirement")
	assert.Equal(t, uint64(131072), f.gasUsed[0].ProofSize)

	f.statuses <- substrate.Status{Kind: substrate.StatusReady}
	block := substrate.Hash{0x10}
	f.mine(block)

	r, err := wait(t, sub, registry.ConfidenceIncluded)
	require.NoError(t, err)
	assert.Equal(t, substrate.Hash{0xee}.Hex(), r.TxHash)
	assert.Equal(t, block.Hex(), r.BlockHash)
	assert.Equal(t, registry.ConfidenceIncluded, r.Confidence)

	f.statuses <- substrate.Status{Kind: substrate.StatusFinalized, Block: block}
	r, err = wait(t, sub, registry.ConfidenceFinalized)
	require.NoError(t, err)
	assert.Equal(t, registry.ConfidenceFinalized, r.Confidence)

	addr, err := b.Lookup(ctx, "carol.web3")
	require.NoError(t, err)
	assert.Equal(t, deadAddr, addr)
}

func TestCreateDryRunErrors(t *testing.T) {
	ctx := context.Background()
	f := newFakeChain()
	f.set("alice.web3", aliceAddr, alice)
	b := newBackend(f, bob)

	_, err := b.Create(ctx, "alice.web3", bobAddr)
	assert.ErrorIs(t, err, registry.ErrBindingExists)
	assert.Empty(t, f.gasUsed, "nothing is submitted after a failed dry-run")

	_, err = b.Replace(ctx, "ghost.web3", bobAddr)
	assert.ErrorIs(t, err, registry.ErrNoBinding)

	_, err = b.Replace(ctx, "alice.web3", bobAddr)
	assert.ErrorIs(t, err, registry.ErrNotOwner)
}

func TestCreateLostRace(t *testing.T) {
	ctx := context.Background()
	f := newFakeChain()
	c := registry.NewClient(newBackend(f, alice))

	done := make(chan error, 1)
	go func() {
		_, err := c.Register(ctx, "dave", aliceAddr)
		done <- err
	}()
	require.Eventually(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		return len(f.pending) == 1
	}, 5*time.Second, time.Millisecond)

	// bob's registration is ordered first in the same block
	f.set("dave.web3", bobAddr, bob)
	f.mine(substrate.Hash{0x20})

	assert.ErrorIs(t, <-done, registry.ErrAlreadyRegistered)
}

func TestReplace(t *testing.T) {
	ctx := context.Background()
	f := newFakeChain()
	f.set("erin.web3", aliceAddr, alice)
	b := newBackend(f, alice)

	sub, err := b.Replace(ctx, "erin.web3", deadAddr)
	require.NoError(t, err)
	f.mine(substrate.Hash{0x30})
	_, err = wait(t, sub, registry.ConfidenceIncluded)
	require.NoError(t, err)

	addr, err := b.Lookup(ctx, "erin.web3")
	require.NoError(t, err)
	assert.Equal(t, deadAddr, addr)
}

func TestTerminalFailures(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct {
		status substrate.StatusKind
		want   error
	}{
		{substrate.StatusDropped, registry.ErrRejected},
		{substrate.StatusInvalid, registry.ErrRejected},
		{substrate.StatusUsurped, registry.ErrRejected},
		{substrate.StatusFinalityTimeout, registry.ErrOutcomeUnknown},
	} {
		t.Run(tc.status.String(), func(t *testing.T) {
			f := newFakeChain()
			sub, err := newBackend(f, alice).Create(ctx, "frank.web3", aliceAddr)
			require.NoError(t, err)
			f.statuses <- substrate.Status{Kind: tc.status}
			_, err = wait(t, sub, registry.ConfidenceIncluded)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestSubscriptionLost(t *testing.T) {
	ctx := context.Background()
	f := newFakeChain()
	sub, err := newBackend(f, alice).Create(ctx, "gina.web3", aliceAddr)
	require.NoError(t, err)
	f.mine(substrate.Hash{0x40})
	close(f.statuses)

	_, err = wait(t, sub, registry.ConfidenceIncluded)
	require.NoError(t, err)
	_, err = wait(t, sub, registry.ConfidenceFinalized)
	assert.ErrorIs(t, err, registry.ErrOutcomeUnknown)
	assert.ErrorIs(t, err, registry.ErrTransport)
}

func TestSubmitRejected(t *testing.T) {
	f := newFakeChain()
	f.submitErr = &substrate.RPCError{Code: 1010, Message: "Invalid Transaction"}
	_, err := newBackend(f, alice).Create(context.Background(), "hank.web3", aliceAddr)
	assert.ErrorIs(t, err, registry.ErrRejected)

	f.submitErr = errors.New("broken pipe")
	_, err = newBackend(f, alice).Create(context.Background(), "hank.web3", aliceAddr)
	assert.ErrorIs(t, err, registry.ErrTransport)
}

func TestSubmitUnansweredIsUnknownOutcome(t *testing.T) {
	ctx := context.Background()
	f := newFakeChain()
	f.submitErr = fmt.Errorf("%w: %w", substrate.ErrSent, context.DeadlineExceeded)

	_, err := newBackend(f, alice).Create(ctx, "hank.web3", aliceAddr)
	assert.ErrorIs(t, err, registry.ErrOutcomeUnknown)
	assert.ErrorIs(t, err, registry.ErrTransport)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = registry.NewClient(newBackend(f, alice)).Register(ctx, "hank", aliceAddr)
	assert.ErrorIs(t, err, registry.ErrOutcomeUnknown)
	assert.NotErrorIs(t, err, registry.ErrAlreadyRegistered)
}

func TestDispatchError(t *testing.T) {
	ctx := context.Background()
	f := newFakeChain()
	f.set("alice.web3", aliceAddr, alice)
	f.dispatchErr = &substrate.DispatchError{Variant: 3, Detail: []byte{0x08, 0x06}}
	b := newBackend(f, alice)

	_, err := b.Lookup(ctx, "alice.web3")
	assert.ErrorIs(t, err, registry.ErrDispatch)
	assert.NotErrorIs(t, err, registry.ErrTransport)

	_, err = b.Create(ctx, "ivan.web3", aliceAddr)
	assert.ErrorIs(t, err, registry.ErrDispatch)
	assert.Empty(t, f.gasUsed)
}

func TestRevertedCalls(t *testing.T) {
	ctx := context.Background()
	f := newFakeChain()
	f.set("alice.web3", aliceAddr, alice)
	f.flags = 1
	b := newBackend(f, alice)

	// a reverted Err output is the contract's error
	_, err := b.Lookup(ctx, "ghost.web3")
	assert.ErrorIs(t, err, registry.ErrNoBinding)
	_, err = b.Create(ctx, "alice.web3", bobAddr)
	assert.ErrorIs(t, err, registry.ErrBindingExists)

	// a reverted Ok output is inconsistent
	_, err = b.Lookup(ctx, "alice.web3")
	assert.ErrorIs(t, err, registry.ErrTransport)
	_, err = b.Owner(ctx, "alice.web3")
	assert.ErrorIs(t, err, registry.ErrTransport)
	_, err = b.Create(ctx, "judy.web3", bobAddr)
	assert.ErrorIs(t, err, registry.ErrTransport)
	assert.Empty(t, f.gasUsed, "nothing is submitted after a reverted dry-run")
}

func TestReadOnlyWithoutSigner(t *testing.T) {
	b := contract.New(newFakeChain(), contract.Config{})
	_, err := b.Create(context.Background(), "ivy.web3", aliceAddr)
	assert.ErrorIs(t, err, registry.ErrUnsupported)
}
