package substrate

import (
	"context"
	"fmt"
	"math/big"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2b"

	"github.com/ss-deshmukh/Nomenclature/scale"
)

const (
	extrinsicVersion = 4
	signedBit        = 0x80
	// payloads longer than this are hashed before signing
	maxRawPayload = 256
)

// ExtrinsicParams are the signed extension values of one extrinsic. Only
// immortal transactions are produced.
type ExtrinsicParams struct {
	Nonce              uint64
	Tip                *big.Int
	SpecVersion        uint32
	TransactionVersion uint32
	Genesis            Hash
	MetadataHash       bool
}

// EncodeContractsCallData encodes a Contracts.call dispatchable. Origin of
// the ContractCall is ignored.
func EncodeContractsCallData(pallet, index uint8, c ContractCall) ([]byte, error) {
	if !scale.FitsU128(c.Value) {
		return nil, fmt.Errorf("value %s does not fit in u128", c.Value)
	}
	if c.GasLimit == nil {
		return nil, fmt.Errorf("contract call extrinsic needs a gas limit")
	}
	e := scale.NewEncoder().PutU8(pallet).PutU8(index)
	// MultiAddress::Id
	e.PutU8(0).PutRaw(c.Dest[:])
	e.PutCompactBig(c.Value)
	putWeight(e, *c.GasLimit)
	e.PutOption(c.StorageDepositLimit != nil, func(e *scale.Encoder) {
		e.PutCompactBig(c.StorageDepositLimit)
	})
	e.PutBytes(c.Data)
	return e.Bytes(), nil
}

// extra is the part of the signed extensions carried in the extrinsic.
func (p ExtrinsicParams) extra() []byte {
	e := scale.NewEncoder()
	// immortal era
	e.PutU8(0)
	e.PutCompact(p.Nonce)
	e.PutCompactBig(p.Tip)
	if p.MetadataHash {
		// CheckMetadataHash mode: disabled
		e.PutU8(0)
	}
	return e.Bytes()
}

// additional is the part of the signed extensions that is only signed.
func (p ExtrinsicParams) additional() []byte {
	e := scale.NewEncoder()
	e.PutU32(p.SpecVersion)
	e.PutU32(p.TransactionVersion)
	e.PutRaw(p.Genesis[:])
	// immortal: the checkpoint block is genesis
	e.PutRaw(p.Genesis[:])
	if p.MetadataHash {
		e.PutOption(false, nil)
	}
	return e.Bytes()
}

// SigningPayload returns the bytes a signer must sign for call under p.
func SigningPayload(call []byte, p ExtrinsicParams) []byte {
	payload := make([]byte, 0, len(call)+64)
	payload = append(payload, call...)
	payload = append(payload, p.extra()...)
	payload = append(payload, p.additional()...)
	if len(payload) > maxRawPayload {
		h := blake2b.Sum256(payload)
		return h[:]
	}
	return payload
}

// SignExtrinsic signs call and assembles the version 4 signed extrinsic,
// length prefixed and ready for author_submitExtrinsic. The returned hash
// is the one the node reports for it.
func SignExtrinsic(ctx context.Context, signer Signer, call []byte, p ExtrinsicParams) ([]byte, Hash, error) {
	sig, err := signer.Sign(ctx, SigningPayload(call, p))
	if err != nil {
		return nil, Hash{}, fmt.Errorf("signing extrinsic: %w", err)
	}
	if len(sig.Bytes) != sig.Scheme.signatureLength() {
		return nil, Hash{}, fmt.Errorf("%s signature must be %d bytes, got %d",
			sig.Scheme, sig.Scheme.signatureLength(), len(sig.Bytes))
	}
	id := signer.AccountID()
	body := scale.NewEncoder().
		PutU8(signedBit | extrinsicVersion).
		PutU8(0). // MultiAddress::Id
		PutRaw(id[:]).
		PutU8(uint8(sig.Scheme)).
		PutRaw(sig.Bytes).
		PutRaw(p.extra()).
		PutRaw(call)
	xt := scale.NewEncoder().PutBytes(body.Bytes()).Bytes()
	return xt, ExtrinsicHash(xt), nil
}

// ExtrinsicHash is blake2b-256 over the encoded extrinsic, length prefix
// included.
func ExtrinsicHash(xt []byte) Hash {
	return Hash(blake2b.Sum256(xt))
}

// Prepare fetches everything needed to sign a Contracts.call for signer
// and returns the signed extrinsic.
func (c *Client) Prepare(ctx context.Context, signer Signer, call ContractCall) ([]byte, Hash, error) {
	data, err := EncodeContractsCallData(c.cfg.PalletIndex, c.cfg.CallIndex, call)
	if err != nil {
		return nil, Hash{}, err
	}
	genesis, err := c.GenesisHash(ctx)
	if err != nil {
		return nil, Hash{}, err
	}
	version, err := c.RuntimeVersion(ctx)
	if err != nil {
		return nil, Hash{}, err
	}
	nonce, err := c.AccountNextIndex(ctx, signer.AccountID())
	if err != nil {
		return nil, Hash{}, err
	}
	params := ExtrinsicParams{
		Nonce:              nonce,
		SpecVersion:        version.SpecVersion,
		TransactionVersion: version.TransactionVersion,
		Genesis:            genesis,
		MetadataHash:       c.cfg.MetadataHash,
	}
	c.log.WithFields(logrus.Fields{
		"nonce":        nonce,
		"spec_version": version.SpecVersion,
	}).Debug("signing contract call")
	return SignExtrinsic(ctx, signer, data, params)
}

// Submit signs call and submits it, returning a watch over its status.
func (c *Client) Submit(ctx context.Context, signer Signer, call ContractCall) (*Watch, error) {
	xt, hash, err := c.Prepare(ctx, signer, call)
	if err != nil {
		return nil, err
	}
	return c.SubmitAndWatch(ctx, xt, hash)
}
