package inkabi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ss-deshmukh/Nomenclature/inkabi"
	"github.com/ss-deshmukh/Nomenclature/ss58"
)

func TestSelectorsAreDistinct(t *testing.T) {
	seen := map[[4]byte]string{}
	for _, m := range []inkabi.Message{
		inkabi.RegisterName,
		inkabi.UpdateAddress,
		inkabi.ResolveName,
		inkabi.GetOwner,
		inkabi.IsNameAvailable,
	} {
		assert.Equal(t, inkabi.Selector(m.Label), m.Selector)
		prev, dup := seen[m.Selector]
		assert.False(t, dup, "%s collides with %s", m.Label, prev)
		seen[m.Selector] = m.Label
	}
}

func TestCallRoundTrip(t *testing.T) {
	data, err := inkabi.EncodeCall(inkabi.RegisterName, "alice.web3", "5FHneW46xGXgs5mUiveU4sbTyGBzmstUspZC92UhjJM694ty")
	require.NoError(t, err)
	assert.Equal(t, inkabi.RegisterName.Selector[:], data[:4])

	msg, args, err := inkabi.DecodeCall(data)
	require.NoError(t, err)
	assert.Equal(t, inkabi.RegisterName.Label, msg.Label)
	assert.Equal(t, []string{"alice.web3", "5FHneW46xGXgs5mUiveU4sbTyGBzmstUspZC92UhjJM694ty"}, args)

	_, err = inkabi.EncodeCall(inkabi.ResolveName, "a", "b")
	assert.ErrorIs(t, err, inkabi.ErrArgumentCount)

	_, _, err = inkabi.DecodeCall([]byte{1, 2, 3, 4})
	assert.ErrorIs(t, err, inkabi.ErrUnknownSelector)
}

func TestResults(t *testing.T) {
	assert.NoError(t, inkabi.DecodeUnitResult(inkabi.EncodeUnitResult(nil)))

	err := inkabi.DecodeUnitResult(inkabi.EncodeUnitResult(inkabi.Err(inkabi.NameAlreadyTaken)))
	assert.ErrorIs(t, err, inkabi.NameAlreadyTaken)

	addr, err := inkabi.DecodeStringResult(inkabi.EncodeStringResult("0x0000000000000000000000000000000000dEaD", nil))
	require.NoError(t, err)
	assert.Equal(t, "0x0000000000000000000000000000000000dEaD", addr)

	_, err = inkabi.DecodeStringResult(inkabi.EncodeStringResult("", inkabi.Err(inkabi.NameNotFound)))
	assert.ErrorIs(t, err, inkabi.NameNotFound)

	owner := ss58.MustDecode("5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY")
	got, err := inkabi.DecodeAccountResult(inkabi.EncodeAccountResult(owner, nil))
	require.NoError(t, err)
	assert.Equal(t, owner, got)

	available, err := inkabi.DecodeBool(inkabi.EncodeBool(true))
	require.NoError(t, err)
	assert.True(t, available)
}

func TestLangError(t *testing.T) {
	_, err := inkabi.DecodeStringResult([]byte{1, 1})
	assert.ErrorIs(t, err, inkabi.CouldNotReadInput)

	_, err = inkabi.DecodeBool([]byte{7})
	assert.Error(t, err)
}
