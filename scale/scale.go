// Package scale implements the subset of the SCALE codec needed to talk to
// ink! contracts and Substrate runtime APIs: fixed width little-endian
// integers, compact integers, length prefixed byte strings and options.
package scale

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
)

var (
	ErrUnexpectedEOF = errors.New("scale: unexpected end of input")
	ErrOverflow      = errors.New("scale: value overflows target type")
)

var maxU128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// Encoder appends SCALE encoded values to an in-memory buffer.
type Encoder struct {
	buf bytes.Buffer
}

func NewEncoder() *Encoder {
	return &Encoder{}
}

func (e *Encoder) Bytes() []byte {
	return e.buf.Bytes()
}

func (e *Encoder) PutRaw(b []byte) *Encoder {
	e.buf.Write(b)
	return e
}

func (e *Encoder) PutU8(v uint8) *Encoder {
	e.buf.WriteByte(v)
	return e
}

func (e *Encoder) PutBool(v bool) *Encoder {
	if v {
		return e.PutU8(1)
	}
	return e.PutU8(0)
}

func (e *Encoder) PutU32(v uint32) *Encoder {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	e.buf.Write(b[:])
	return e
}

func (e *Encoder) PutU64(v uint64) *Encoder {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.buf.Write(b[:])
	return e
}

// PutU128 writes v as a 16 byte little-endian integer. A nil v encodes zero.
func (e *Encoder) PutU128(v *big.Int) *Encoder {
	var b [16]byte
	if v != nil {
		be := v.Bytes()
		for i := 0; i < len(be) && i < 16; i++ {
			b[i] = be[len(be)-1-i]
		}
	}
	e.buf.Write(b[:])
	return e
}

func (e *Encoder) PutCompact(v uint64) *Encoder {
	return e.PutCompactBig(new(big.Int).SetUint64(v))
}

// PutCompactBig writes v using the compact encoding. Negative values encode
// as zero.
func (e *Encoder) PutCompactBig(v *big.Int) *Encoder {
	if v == nil || v.Sign() <= 0 {
		return e.PutU8(0)
	}
	switch {
	case v.Cmp(big.NewInt(1<<6)) < 0:
		e.PutU8(uint8(v.Uint64() << 2))
	case v.Cmp(big.NewInt(1<<14)) < 0:
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(v.Uint64()<<2)|0b01)
		e.buf.Write(b[:])
	case v.Cmp(big.NewInt(1<<30)) < 0:
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(v.Uint64()<<2)|0b10)
		e.buf.Write(b[:])
	default:
		be := v.Bytes()
		le := make([]byte, len(be))
		for i := range be {
			le[i] = be[len(be)-1-i]
		}
		e.PutU8(uint8((len(le)-4)<<2) | 0b11)
		e.buf.Write(le)
	}
	return e
}

// PutBytes writes a compact length prefix followed by b.
func (e *Encoder) PutBytes(b []byte) *Encoder {
	e.PutCompact(uint64(len(b)))
	e.buf.Write(b)
	return e
}

func (e *Encoder) PutString(s string) *Encoder {
	return e.PutBytes([]byte(s))
}

// PutOption writes the option tag and, when present, calls put to write the
// inner value.
func (e *Encoder) PutOption(present bool, put func(*Encoder)) *Encoder {
	if !present {
		return e.PutU8(0)
	}
	e.PutU8(1)
	put(e)
	return e
}

// Decoder reads SCALE values from a byte slice.
type Decoder struct {
	data []byte
	pos  int
}

func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.data) - d.pos
}

func (d *Decoder) Raw(n int) ([]byte, error) {
	if n < 0 || d.Remaining() < n {
		return nil, fmt.Errorf("reading %d bytes at offset %d: %w", n, d.pos, ErrUnexpectedEOF)
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

func (d *Decoder) U8() (uint8, error) {
	b, err := d.Raw(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Decoder) Bool() (bool, error) {
	b, err := d.U8()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, fmt.Errorf("scale: invalid bool byte 0x%02x", b)
}

func (d *Decoder) U32() (uint32, error) {
	b, err := d.Raw(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (d *Decoder) U64() (uint64, error) {
	b, err := d.Raw(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (d *Decoder) U128() (*big.Int, error) {
	b, err := d.Raw(16)
	if err != nil {
		return nil, err
	}
	be := make([]byte, 16)
	for i := range b {
		be[15-i] = b[i]
	}
	return new(big.Int).SetBytes(be), nil
}

func (d *Decoder) CompactBig() (*big.Int, error) {
	first, err := d.U8()
	if err != nil {
		return nil, err
	}
	switch first & 0b11 {
	case 0b00:
		return big.NewInt(int64(first >> 2)), nil
	case 0b01:
		next, err := d.U8()
		if err != nil {
			return nil, err
		}
		return big.NewInt(int64(uint16(first)|uint16(next)<<8) >> 2), nil
	case 0b10:
		rest, err := d.Raw(3)
		if err != nil {
			return nil, err
		}
		v := uint32(first) | uint32(rest[0])<<8 | uint32(rest[1])<<16 | uint32(rest[2])<<24
		return big.NewInt(int64(v >> 2)), nil
	default:
		n := int(first>>2) + 4
		le, err := d.Raw(n)
		if err != nil {
			return nil, err
		}
		be := make([]byte, n)
		for i := range le {
			be[n-1-i] = le[i]
		}
		return new(big.Int).SetBytes(be), nil
	}
}

func (d *Decoder) Compact() (uint64, error) {
	v, err := d.CompactBig()
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, fmt.Errorf("compact %s: %w", v, ErrOverflow)
	}
	return v.Uint64(), nil
}

func (d *Decoder) Bytes() ([]byte, error) {
	n, err := d.Compact()
	if err != nil {
		return nil, err
	}
	if n > uint64(d.Remaining()) {
		return nil, fmt.Errorf("byte string of length %d at offset %d: %w", n, d.pos, ErrUnexpectedEOF)
	}
	return d.Raw(int(n))
}

func (d *Decoder) String() (string, error) {
	b, err := d.Bytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Option reads an option tag, returning true when a value follows.
func (d *Decoder) Option() (bool, error) {
	tag, err := d.U8()
	if err != nil {
		return false, err
	}
	switch tag {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, fmt.Errorf("scale: invalid option tag 0x%02x", tag)
}

// FitsU128 reports whether v can be encoded with PutU128.
func FitsU128(v *big.Int) bool {
	return v == nil || (v.Sign() >= 0 && v.Cmp(maxU128) <= 0)
}
