package substrate

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/ss-deshmukh/Nomenclature/ss58"
)

// Hash is a 32 byte block or extrinsic hash.
type Hash [32]byte

func (h Hash) Hex() string {
	return hexutil.Encode(h[:])
}

func (h Hash) String() string {
	return h.Hex()
}

func (h Hash) IsZero() bool {
	return h == Hash{}
}

func ParseHash(s string) (Hash, error) {
	var h Hash
	raw, err := hexutil.Decode(s)
	if err != nil {
		return h, fmt.Errorf("hash %q: %w", s, err)
	}
	if len(raw) != len(h) {
		return h, fmt.Errorf("hash %q: want %d bytes, got %d", s, len(h), len(raw))
	}
	copy(h[:], raw)
	return h, nil
}

func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := ParseHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.Hex()), nil
}

// Weight is the two dimensional gas of pallet-contracts.
type Weight struct {
	RefTime   uint64
	ProofSize uint64
}

// ContractCall is a message sent to a contract, either as a dry-run or as a
// signed extrinsic. Origin is ignored for extrinsics, the signer is the
// origin.
type ContractCall struct {
	Origin              ss58.AccountID
	Dest                ss58.AccountID
	Value               *big.Int
	GasLimit            *Weight
	StorageDepositLimit *big.Int
	Data                []byte
}

// ContractResult is the decoded outcome of a ContractsApi_call dry-run.
type ContractResult struct {
	GasConsumed  Weight
	GasRequired  Weight
	DebugMessage string
	// Flags are the ink! return flags; bit 0 marks a reverted call.
	Flags uint32
	Data  []byte
	// DispatchErr is set when the runtime refused to execute the call, for
	// example because the destination is not a contract.
	DispatchErr *DispatchError
}

func (r ContractResult) Reverted() bool {
	return r.Flags&1 == 1
}

// DispatchError is kept undecoded beyond its variant index; decoding module
// errors would need the runtime metadata.
type DispatchError struct {
	Variant uint8
	Detail  []byte
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch error variant %d (0x%x)", e.Variant, e.Detail)
}

type RuntimeVersion struct {
	SpecName           string `json:"specName"`
	SpecVersion        uint32 `json:"specVersion"`
	TransactionVersion uint32 `json:"transactionVersion"`
}

// SignatureScheme is the MultiSignature variant index.
type SignatureScheme uint8

const (
	Ed25519 SignatureScheme = iota
	Sr25519
	Ecdsa
)

func (s SignatureScheme) String() string {
	switch s {
	case Ed25519:
		return "ed25519"
	case Sr25519:
		return "sr25519"
	case Ecdsa:
		return "ecdsa"
	}
	return "unknown"
}

func ParseSignatureScheme(s string) (SignatureScheme, error) {
	switch s {
	case "ed25519":
		return Ed25519, nil
	case "sr25519":
		return Sr25519, nil
	case "ecdsa":
		return Ecdsa, nil
	}
	return 0, fmt.Errorf("unknown signature scheme %q, valid values: sr25519, ed25519, ecdsa", s)
}

func (s SignatureScheme) signatureLength() int {
	if s == Ecdsa {
		return 65
	}
	return 64
}

type Signature struct {
	Scheme SignatureScheme
	Bytes  []byte
}

// Signer authorizes extrinsics for one account. Implementations keep the
// key material to themselves; the transport only ever sees the signature.
type Signer interface {
	AccountID() ss58.AccountID
	Sign(ctx context.Context, payload []byte) (Signature, error)
}
