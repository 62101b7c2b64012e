// Package ss58 encodes and decodes Substrate SS58 account addresses.
package ss58

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
	"golang.org/x/crypto/blake2b"
)

// SubstratePrefix is the generic network identifier used by dev chains and
// most contract testnets.
const SubstratePrefix uint16 = 42

const checksumLength = 2

var (
	ErrInvalidAddress  = errors.New("invalid ss58 address")
	ErrInvalidChecksum = errors.New("invalid ss58 checksum")

	checksumPrefix = []byte("SS58PRE")
)

// AccountID is a 32 byte public key as used by sr25519/ed25519 accounts.
type AccountID [32]byte

func (a AccountID) Encode(prefix uint16) string {
	return Encode(a, prefix)
}

func checksum(payload []byte) []byte {
	h, _ := blake2b.New512(nil)
	h.Write(checksumPrefix)
	h.Write(payload)
	return h.Sum(nil)[:checksumLength]
}

func encodePrefix(prefix uint16) []byte {
	if prefix < 64 {
		return []byte{byte(prefix)}
	}
	first := byte((prefix&0b0000_0000_1111_1100)>>2) | 0b0100_0000
	second := byte(prefix>>8) | byte((prefix&0b0000_0000_0000_0011)<<6)
	return []byte{first, second}
}

// Encode renders id as an SS58 address for the given network prefix.
// Prefixes above 16383 are not representable and are truncated.
func Encode(id AccountID, prefix uint16) string {
	payload := append(encodePrefix(prefix&0x3fff), id[:]...)
	return base58.Encode(append(payload, checksum(payload)...))
}

// Decode parses an SS58 address holding a 32 byte account id and returns the
// id with its network prefix.
func Decode(addr string) (AccountID, uint16, error) {
	var id AccountID
	raw := base58.Decode(addr)
	if len(raw) == 0 {
		return id, 0, fmt.Errorf("%q: %w", addr, ErrInvalidAddress)
	}

	var prefix uint16
	var prefixLen int
	switch {
	case raw[0] < 64:
		prefix, prefixLen = uint16(raw[0]), 1
	case raw[0] < 128:
		if len(raw) < 2 {
			return id, 0, fmt.Errorf("%q: %w", addr, ErrInvalidAddress)
		}
		lower := (raw[0]&0b0011_1111)<<2 | raw[1]>>6
		upper := raw[1] & 0b0011_1111
		prefix, prefixLen = uint16(lower)|uint16(upper)<<8, 2
	default:
		return id, 0, fmt.Errorf("%q: reserved prefix byte 0x%02x: %w", addr, raw[0], ErrInvalidAddress)
	}

	if len(raw) != prefixLen+len(id)+checksumLength {
		return id, 0, fmt.Errorf("%q: unexpected length %d: %w", addr, len(raw), ErrInvalidAddress)
	}
	payload := raw[:prefixLen+len(id)]
	if !bytes.Equal(checksum(payload), raw[len(payload):]) {
		return id, 0, fmt.Errorf("%q: %w", addr, ErrInvalidChecksum)
	}
	copy(id[:], payload[prefixLen:])
	return id, prefix, nil
}

// MustDecode is Decode for compile time constants.
func MustDecode(addr string) AccountID {
	id, _, err := Decode(addr)
	if err != nil {
		panic(err)
	}
	return id
}
