// Package contract is the registry backend backed by the WNS ink! contract.
//
// Reads are dry-runs of the contract's query messages. Mutations are
// dry-run first, as the signer, so that contract errors surface before
// anything is paid for; only then is a Contracts.call extrinsic submitted.
// The returned submission resolves when the extrinsic is in a block and the
// binding, re-read at that block, shows the mutation took effect.
package contract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/sirupsen/logrus"

	"github.com/ss-deshmukh/Nomenclature/common"
	"github.com/ss-deshmukh/Nomenclature/inkabi"
	"github.com/ss-deshmukh/Nomenclature/registry"
	"github.com/ss-deshmukh/Nomenclature/ss58"
	"github.com/ss-deshmukh/Nomenclature/substrate"
)

// Transport reaches the chain. *substrate.Client implements it.
type Transport interface {
	Call(ctx context.Context, call substrate.ContractCall, at substrate.Hash) (substrate.ContractResult, error)
	Submit(ctx context.Context, signer substrate.Signer, call substrate.ContractCall) (*substrate.Watch, error)
}

type Config struct {
	Contract ss58.AccountID
	// QueryOrigin is the caller of read-only dry-runs. Any account works,
	// it is never charged.
	QueryOrigin ss58.AccountID
	// GasLimit is raised to what the dry-run requires when lower.
	GasLimit            substrate.Weight
	StorageDepositLimit *big.Int
	SS58Prefix          uint16
}

type Backend struct {
	transport Transport
	signer    substrate.Signer
	cfg       Config
	log       *logrus.Entry
}

type Option func(*Backend)

// WithSigner enables Create and Replace. Without a signer the backend is
// read only.
func WithSigner(s substrate.Signer) Option {
	return func(b *Backend) {
		b.signer = s
	}
}

func WithLogger(l *logrus.Entry) Option {
	return func(b *Backend) {
		b.log = l
	}
}

func New(t Transport, cfg Config, opts ...Option) *Backend {
	b := &Backend{
		transport: t,
		cfg:       cfg,
		log:       common.LoggerFor("contract"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// contractErr maps the contract's error enum onto registry errors. Other
// errors, including malformed output, are transport failures.
func contractErr(op, name string, err error) error {
	var cerr inkabi.ContractError
	if !errors.As(err, &cerr) {
		return registry.NewTransportError(op, err)
	}
	switch cerr {
	case inkabi.NameAlreadyTaken:
		return registry.ErrBindingExists
	case inkabi.NameNotFound:
		return registry.ErrNoBinding
	case inkabi.NotOwner:
		return fmt.Errorf("%s: %w", name, registry.ErrNotOwner)
	case inkabi.InvalidName:
		return &registry.ValidationError{Field: "name", Value: name}
	}
	return registry.NewTransportError(op, err)
}

func (b *Backend) dryRun(ctx context.Context, op string, origin ss58.AccountID, data []byte, at substrate.Hash) (substrate.ContractResult, error) {
	res, err := b.transport.Call(ctx, substrate.ContractCall{
		Origin: origin,
		Dest:   b.cfg.Contract,
		Data:   data,
	}, at)
	if err != nil {
		return res, registry.NewTransportError(op, err)
	}
	if res.DispatchErr != nil {
		return res, fmt.Errorf("%s: %w: %w", op, registry.ErrDispatch, res.DispatchErr)
	}
	if res.DebugMessage != "" {
		b.log.WithField("op", op).Debugf("contract debug: %s", res.DebugMessage)
	}
	return res, nil
}

// checkRevert rejects a reverted call whose output nevertheless decoded as
// Ok. ink! only reverts on Err.
func checkRevert(op string, res substrate.ContractResult) error {
	if res.Reverted() {
		return registry.NewTransportError(op, errors.New("contract reverted with an Ok result"))
	}
	return nil
}

func (b *Backend) resolveAt(ctx context.Context, name string, at substrate.Hash) (string, error) {
	data, err := inkabi.EncodeCall(inkabi.ResolveName, name)
	if err != nil {
		return "", err
	}
	res, err := b.dryRun(ctx, "lookup", b.cfg.QueryOrigin, data, at)
	if err != nil {
		return "", err
	}
	addr, err := inkabi.DecodeStringResult(res.Data)
	if err != nil {
		return "", contractErr("lookup", name, err)
	}
	return addr, checkRevert("lookup", res)
}

func (b *Backend) ownerAt(ctx context.Context, name string, at substrate.Hash) (ss58.AccountID, error) {
	data, err := inkabi.EncodeCall(inkabi.GetOwner, name)
	if err != nil {
		return ss58.AccountID{}, err
	}
	res, err := b.dryRun(ctx, "owner", b.cfg.QueryOrigin, data, at)
	if err != nil {
		return ss58.AccountID{}, err
	}
	id, err := inkabi.DecodeAccountResult(res.Data)
	if err != nil {
		return id, contractErr("owner", name, err)
	}
	return id, checkRevert("owner", res)
}

func (b *Backend) Lookup(ctx context.Context, name string) (string, error) {
	return b.resolveAt(ctx, name, substrate.Hash{})
}

// Owner returns the SS58 address of the account that registered name.
func (b *Backend) Owner(ctx context.Context, name string) (string, error) {
	id, err := b.ownerAt(ctx, name, substrate.Hash{})
	if err != nil {
		return "", err
	}
	return id.Encode(b.cfg.SS58Prefix), nil
}

func (b *Backend) Create(ctx context.Context, name, address string) (*registry.Submission, error) {
	return b.mutate(ctx, "register", inkabi.RegisterName, name, address, b.verifyCreate)
}

func (b *Backend) Replace(ctx context.Context, name, address string) (*registry.Submission, error) {
	return b.mutate(ctx, "update", inkabi.UpdateAddress, name, address, b.verifyReplace)
}

// verifier checks, at the block that included the extrinsic, that the
// mutation took effect.
type verifier func(ctx context.Context, name, address string, at substrate.Hash) error

func (b *Backend) verifyCreate(ctx context.Context, name, address string, at substrate.Hash) error {
	owner, err := b.ownerAt(ctx, name, at)
	if errors.Is(err, registry.ErrNoBinding) {
		return fmt.Errorf("%w: %s was not registered", registry.ErrRejected, name)
	}
	if err != nil {
		return err
	}
	if owner != b.signer.AccountID() {
		// someone else's registration landed first
		return registry.ErrBindingExists
	}
	got, err := b.resolveAt(ctx, name, at)
	if err != nil {
		return err
	}
	if got != address {
		return registry.ErrBindingExists
	}
	return nil
}

func (b *Backend) verifyReplace(ctx context.Context, name, address string, at substrate.Hash) error {
	got, err := b.resolveAt(ctx, name, at)
	if err != nil {
		return err
	}
	if got != address {
		return fmt.Errorf("%w: %s still resolves to %s", registry.ErrRejected, name, got)
	}
	return nil
}

func (b *Backend) mutate(ctx context.Context, op string, msg inkabi.Message, name, address string, verify verifier) (*registry.Submission, error) {
	if b.signer == nil {
		return nil, fmt.Errorf("%s: no signer configured: %w", op, registry.ErrUnsupported)
	}
	data, err := inkabi.EncodeCall(msg, name, address)
	if err != nil {
		return nil, err
	}
	res, err := b.dryRun(ctx, op, b.signer.AccountID(), data, substrate.Hash{})
	if err != nil {
		return nil, err
	}
	if err := inkabi.DecodeUnitResult(res.Data); err != nil {
		return nil, contractErr(op, name, err)
	}
	if err := checkRevert(op, res); err != nil {
		return nil, err
	}
	required := res.GasRequired

	gas := b.cfg.GasLimit
	if required.RefTime > gas.RefTime {
		gas.RefTime = required.RefTime
	}
	if required.ProofSize > gas.ProofSize {
		gas.ProofSize = required.ProofSize
	}
	log := b.log.WithFields(logrus.Fields{"op": op, "name": name})
	log.WithField("gas", gas).Debug("dry-run passed, submitting")

	watch, err := b.transport.Submit(ctx, b.signer, substrate.ContractCall{
		Dest:                b.cfg.Contract,
		GasLimit:            &gas,
		StorageDepositLimit: b.cfg.StorageDepositLimit,
		Data:                data,
	})
	if err != nil {
		if errors.Is(err, substrate.ErrSent) {
			return nil, fmt.Errorf("%w: %w", registry.ErrOutcomeUnknown, registry.NewTransportError(op, err))
		}
		var rpcErr *substrate.RPCError
		if errors.As(err, &rpcErr) && rpcErr.Rejected() {
			return nil, fmt.Errorf("%w: %v", registry.ErrRejected, err)
		}
		return nil, registry.NewTransportError(op, err)
	}

	sub := registry.NewSubmission()
	log = log.WithFields(logrus.Fields{"tx": watch.Hash.Hex(), "submission": sub.ID})
	go b.follow(watch, sub, log, func(at substrate.Hash) error {
		// the caller's context may be long gone by now
		return verify(context.Background(), name, address, at)
	})
	return sub, nil
}

// follow feeds watch statuses into sub until a terminal status arrives.
func (b *Backend) follow(watch *substrate.Watch, sub *registry.Submission, log *logrus.Entry, verify func(substrate.Hash) error) {
	defer watch.Close()
	tx := watch.Hash.Hex()
	var included *substrate.Hash
	unverified := func(err error) {
		if errors.Is(err, registry.ErrTransport) {
			err = fmt.Errorf("%w: %w", registry.ErrOutcomeUnknown, err)
		}
		log.WithError(err).Warn("extrinsic did not apply")
		sub.Fail(err)
	}
	for st := range watch.Statuses {
		log.WithField("block", st.Block.Hex()).Debugf("extrinsic %s", st.Kind)
		switch st.Kind {
		case substrate.StatusInBlock:
			if err := verify(st.Block); err != nil {
				unverified(err)
				return
			}
			block := st.Block
			included = &block
			sub.Include(registry.Receipt{TxHash: tx, BlockHash: block.Hex()})
		case substrate.StatusRetracted:
			log.Warn("inclusion block retracted, waiting for re-inclusion")
		case substrate.StatusFinalized:
			if included == nil || *included != st.Block {
				if err := verify(st.Block); err != nil {
					unverified(err)
					return
				}
			}
			sub.Finalize(registry.Receipt{TxHash: tx, BlockHash: st.Block.Hex()})
			return
		case substrate.StatusFinalityTimeout:
			sub.Fail(fmt.Errorf("%w: block %s was not finalized in time", registry.ErrOutcomeUnknown, st.Block.Hex()))
			return
		case substrate.StatusUsurped, substrate.StatusDropped, substrate.StatusInvalid:
			sub.Fail(fmt.Errorf("%w: extrinsic %s %s", registry.ErrRejected, tx, st.Kind))
			return
		}
	}
	cause := watch.Err()
	if cause == nil {
		cause = errors.New("subscription closed before finalization")
	}
	sub.Fail(fmt.Errorf("%w: %w", registry.ErrOutcomeUnknown, registry.NewTransportError("watch", cause)))
}

func (b *Backend) Close() error {
	if closer, ok := b.transport.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
