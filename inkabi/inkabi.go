// Package inkabi encodes calls to and decodes results from the WNS ink!
// contract. Every message takes string arguments and returns an ink!
// MessageResult, so the codec is small enough to live without the contract
// metadata file.
package inkabi

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/ss-deshmukh/Nomenclature/scale"
	"github.com/ss-deshmukh/Nomenclature/ss58"
)

// Message describes one contract message.
type Message struct {
	Label    string
	Selector [4]byte
	Args     int
	Mutates  bool
}

func (m Message) String() string {
	return fmt.Sprintf("%s(0x%x)", m.Label, m.Selector)
}

// Selector derives the ink! selector of an inherent message: the first four
// bytes of BLAKE2b-256 over the label.
func Selector(label string) [4]byte {
	sum := blake2b.Sum256([]byte(label))
	var sel [4]byte
	copy(sel[:], sum[:4])
	return sel
}

func newMessage(label string, args int, mutates bool) Message {
	return Message{Label: label, Selector: Selector(label), Args: args, Mutates: mutates}
}

var (
	RegisterName    = newMessage("register_name", 2, true)
	UpdateAddress   = newMessage("update_address", 2, true)
	ResolveName     = newMessage("resolve_name", 1, false)
	GetOwner        = newMessage("get_owner", 1, false)
	IsNameAvailable = newMessage("is_name_available", 1, false)

	messages = []Message{RegisterName, UpdateAddress, ResolveName, GetOwner, IsNameAvailable}
)

var (
	ErrUnknownSelector = errors.New("unknown message selector")
	ErrArgumentCount   = errors.New("wrong number of arguments")
)

// ContractError mirrors the contract's Error enum.
type ContractError uint8

const (
	NameAlreadyTaken ContractError = iota
	NameNotFound
	NotOwner
	InvalidName
)

func (e ContractError) Error() string {
	switch e {
	case NameAlreadyTaken:
		return "contract: name already taken"
	case NameNotFound:
		return "contract: name not found"
	case NotOwner:
		return "contract: caller is not the owner"
	case InvalidName:
		return "contract: invalid name"
	}
	return fmt.Sprintf("contract: unknown error %d", uint8(e))
}

// LangError is returned when the contract could not dispatch the message at
// all, e.g. because the input could not be decoded.
type LangError uint8

const CouldNotReadInput LangError = 1

func (e LangError) Error() string {
	if e == CouldNotReadInput {
		return "ink: could not read input"
	}
	return fmt.Sprintf("ink: language error %d", uint8(e))
}

// EncodeCall builds the contract input for msg: selector followed by the
// SCALE encoded string arguments.
func EncodeCall(msg Message, args ...string) ([]byte, error) {
	if len(args) != msg.Args {
		return nil, fmt.Errorf("%s takes %d, got %d: %w", msg.Label, msg.Args, len(args), ErrArgumentCount)
	}
	enc := scale.NewEncoder().PutRaw(msg.Selector[:])
	for _, a := range args {
		enc.PutString(a)
	}
	return enc.Bytes(), nil
}

// DecodeCall is the inverse of EncodeCall.
func DecodeCall(data []byte) (Message, []string, error) {
	d := scale.NewDecoder(data)
	raw, err := d.Raw(4)
	if err != nil {
		return Message{}, nil, err
	}
	var sel [4]byte
	copy(sel[:], raw)
	for _, msg := range messages {
		if msg.Selector != sel {
			continue
		}
		args := make([]string, 0, msg.Args)
		for i := 0; i < msg.Args; i++ {
			a, err := d.String()
			if err != nil {
				return msg, nil, fmt.Errorf("%s argument %d: %w", msg.Label, i, err)
			}
			args = append(args, a)
		}
		return msg, args, nil
	}
	return Message{}, nil, fmt.Errorf("0x%x: %w", sel, ErrUnknownSelector)
}

// messageResult strips the outer MessageResult, returning the decoder
// positioned at the message's own return value.
func messageResult(data []byte) (*scale.Decoder, error) {
	d := scale.NewDecoder(data)
	tag, err := d.U8()
	if err != nil {
		return nil, err
	}
	switch tag {
	case 0:
		return d, nil
	case 1:
		code, err := d.U8()
		if err != nil {
			return nil, err
		}
		return nil, LangError(code)
	}
	return nil, fmt.Errorf("ink: invalid message result tag 0x%02x", tag)
}

// contractResult reads the Result<T, Error> tag. A nil error means the Ok
// payload follows.
func contractResult(d *scale.Decoder) error {
	tag, err := d.U8()
	if err != nil {
		return err
	}
	switch tag {
	case 0:
		return nil
	case 1:
		code, err := d.U8()
		if err != nil {
			return err
		}
		return ContractError(code)
	}
	return fmt.Errorf("ink: invalid result tag 0x%02x", tag)
}

// DecodeUnitResult decodes the output of register_name and update_address.
func DecodeUnitResult(data []byte) error {
	d, err := messageResult(data)
	if err != nil {
		return err
	}
	return contractResult(d)
}

// DecodeStringResult decodes the output of resolve_name.
func DecodeStringResult(data []byte) (string, error) {
	d, err := messageResult(data)
	if err != nil {
		return "", err
	}
	if err := contractResult(d); err != nil {
		return "", err
	}
	return d.String()
}

// DecodeAccountResult decodes the output of get_owner.
func DecodeAccountResult(data []byte) (ss58.AccountID, error) {
	var id ss58.AccountID
	d, err := messageResult(data)
	if err != nil {
		return id, err
	}
	if err := contractResult(d); err != nil {
		return id, err
	}
	raw, err := d.Raw(len(id))
	if err != nil {
		return id, err
	}
	copy(id[:], raw)
	return id, nil
}

// DecodeBool decodes the output of is_name_available.
func DecodeBool(data []byte) (bool, error) {
	d, err := messageResult(data)
	if err != nil {
		return false, err
	}
	return d.Bool()
}

func okPrefix(e *scale.Encoder, cerr *ContractError) bool {
	e.PutU8(0)
	if cerr != nil {
		e.PutU8(1).PutU8(uint8(*cerr))
		return false
	}
	e.PutU8(0)
	return true
}

// EncodeUnitResult produces the output a contract returns for a mutating
// message. A nil cerr encodes Ok(()).
func EncodeUnitResult(cerr *ContractError) []byte {
	e := scale.NewEncoder()
	okPrefix(e, cerr)
	return e.Bytes()
}

func EncodeStringResult(s string, cerr *ContractError) []byte {
	e := scale.NewEncoder()
	if okPrefix(e, cerr) {
		e.PutString(s)
	}
	return e.Bytes()
}

func EncodeAccountResult(id ss58.AccountID, cerr *ContractError) []byte {
	e := scale.NewEncoder()
	if okPrefix(e, cerr) {
		e.PutRaw(id[:])
	}
	return e.Bytes()
}

func EncodeBool(v bool) []byte {
	return scale.NewEncoder().PutU8(0).PutBool(v).Bytes()
}

// Err is a convenience for building encoder arguments.
func Err(e ContractError) *ContractError {
	return &e
}
