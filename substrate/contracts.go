package substrate

import (
	"context"
	"fmt"

	"github.com/ss-deshmukh/Nomenclature/scale"
)

const contractsCallAPI = "ContractsApi_call"

func putWeight(e *scale.Encoder, w Weight) {
	e.PutCompact(w.RefTime).PutCompact(w.ProofSize)
}

func readWeight(d *scale.Decoder) (Weight, error) {
	var w Weight
	var err error
	if w.RefTime, err = d.Compact(); err != nil {
		return w, err
	}
	w.ProofSize, err = d.Compact()
	return w, err
}

// EncodeContractsCall builds the arguments of the ContractsApi_call runtime
// API: origin, dest, value, gas limit, storage deposit limit and input.
func EncodeContractsCall(c ContractCall) ([]byte, error) {
	if !scale.FitsU128(c.Value) {
		return nil, fmt.Errorf("value %s does not fit in u128", c.Value)
	}
	if !scale.FitsU128(c.StorageDepositLimit) {
		return nil, fmt.Errorf("storage deposit limit %s does not fit in u128", c.StorageDepositLimit)
	}
	e := scale.NewEncoder().
		PutRaw(c.Origin[:]).
		PutRaw(c.Dest[:]).
		PutU128(c.Value)
	e.PutOption(c.GasLimit != nil, func(e *scale.Encoder) { putWeight(e, *c.GasLimit) })
	e.PutOption(c.StorageDepositLimit != nil, func(e *scale.Encoder) { e.PutU128(c.StorageDepositLimit) })
	e.PutBytes(c.Data)
	return e.Bytes(), nil
}

// DecodeContractResult decodes the ContractExecResult returned by
// ContractsApi_call. Trailing fields such as collected events are ignored.
func DecodeContractResult(data []byte) (ContractResult, error) {
	var r ContractResult
	var err error
	d := scale.NewDecoder(data)
	if r.GasConsumed, err = readWeight(d); err != nil {
		return r, fmt.Errorf("gas consumed: %w", err)
	}
	if r.GasRequired, err = readWeight(d); err != nil {
		return r, fmt.Errorf("gas required: %w", err)
	}
	// StorageDeposit is Refund(u128) or Charge(u128).
	if _, err = d.U8(); err != nil {
		return r, fmt.Errorf("storage deposit: %w", err)
	}
	if _, err = d.U128(); err != nil {
		return r, fmt.Errorf("storage deposit: %w", err)
	}
	if r.DebugMessage, err = d.String(); err != nil {
		return r, fmt.Errorf("debug message: %w", err)
	}
	tag, err := d.U8()
	if err != nil {
		return r, fmt.Errorf("result: %w", err)
	}
	switch tag {
	case 0:
		if r.Flags, err = d.U32(); err != nil {
			return r, fmt.Errorf("return flags: %w", err)
		}
		if r.Data, err = d.Bytes(); err != nil {
			return r, fmt.Errorf("return data: %w", err)
		}
	case 1:
		variant, err := d.U8()
		if err != nil {
			return r, fmt.Errorf("dispatch error: %w", err)
		}
		detail, _ := d.Raw(d.Remaining())
		r.DispatchErr = &DispatchError{Variant: variant, Detail: detail}
	default:
		return r, fmt.Errorf("invalid result tag 0x%02x", tag)
	}
	return r, nil
}

// EncodeContractResult is the inverse of DecodeContractResult for a
// successful execution. Test nodes use it to answer dry-runs.
func EncodeContractResult(r ContractResult) []byte {
	e := scale.NewEncoder()
	putWeight(e, r.GasConsumed)
	putWeight(e, r.GasRequired)
	e.PutU8(1).PutU128(nil)
	e.PutString(r.DebugMessage)
	if r.DispatchErr != nil {
		e.PutU8(1).PutU8(r.DispatchErr.Variant).PutRaw(r.DispatchErr.Detail)
		return e.Bytes()
	}
	e.PutU8(0).PutU32(r.Flags).PutBytes(r.Data)
	// no events collected
	e.PutU8(0)
	return e.Bytes()
}

// Call dry-runs a contract message at block at, or at the best block when
// at is zero. Nothing is submitted to the chain.
func (c *Client) Call(ctx context.Context, call ContractCall, at Hash) (ContractResult, error) {
	args, err := EncodeContractsCall(call)
	if err != nil {
		return ContractResult{}, err
	}
	raw, err := c.StateCall(ctx, contractsCallAPI, args, at)
	if err != nil {
		return ContractResult{}, err
	}
	res, err := DecodeContractResult(raw)
	if err != nil {
		return res, fmt.Errorf("decoding %s result: %w", contractsCallAPI, err)
	}
	c.log.WithField("gas_required", res.GasRequired).Debug("contract dry-run")
	return res, nil
}
