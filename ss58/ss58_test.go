package ss58_test

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/ss-deshmukh/Nomenclature/ss58"
)

func accountFromHex(t *testing.T, s string) ss58.AccountID {
	t.Helper()
	raw, err := hex.DecodeString(s)
	require.NoError(t, err)
	require.Len(t, raw, 32)
	var id ss58.AccountID
	copy(id[:], raw)
	return id
}

func TestDevAccounts(t *testing.T) {
	cases := []struct {
		name    string
		pubkey  string
		prefix  uint16
		address string
	}{
		{"alice", "d43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d", 42, "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"},
		{"bob", "8eaf04151687736326c9fea17e25fc5287613693c912909cb226aa4794f26a48", 42, "5FHneW46xGXgs5mUiveU4sbTyGBzmstUspZC92UhjJM694ty"},
		{"alice on polkadot", "d43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d", 0, "15oF4uVJwmo4TdGW7VfQxNLavjCXviqxT9S1MgbjMNHr6Sp5"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			id := accountFromHex(t, c.pubkey)
			assert.Equal(t, c.address, ss58.Encode(id, c.prefix))

			decoded, prefix, err := ss58.Decode(c.address)
			require.NoError(t, err)
			assert.Equal(t, id, decoded)
			assert.Equal(t, c.prefix, prefix)
		})
	}
}

func TestDecodeRejects(t *testing.T) {
	_, _, err := ss58.Decode("not-an-address")
	assert.ErrorIs(t, err, ss58.ErrInvalidAddress)

	// last character flipped
	_, _, err = ss58.Decode("5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQZ")
	assert.Error(t, err)

	// a bitcoin address is valid base58 but has the wrong length
	_, _, err = ss58.Decode("1BoatSLRHtKNngkdXEeobR76b53LETtpyT")
	assert.ErrorIs(t, err, ss58.ErrInvalidAddress)
}

func TestRoundTripAnyPrefix(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var id ss58.AccountID
		copy(id[:], rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(t, "id"))
		prefix := rapid.Uint16Range(0, 16383).Draw(t, "prefix")
		got, gotPrefix, err := ss58.Decode(ss58.Encode(id, prefix))
		if err != nil {
			t.Fatalf("decode: %s", err)
		}
		if got != id || gotPrefix != prefix {
			t.Fatalf("round trip mismatch: prefix %d -> %d", prefix, gotPrefix)
		}
	})
}
