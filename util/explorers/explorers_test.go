package explorers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubscanExplorer(t *testing.T) {
	e := NewSubscanExplorer("https://westend.subscan.io/")
	assert.Equal(t, "https://westend.subscan.io/extrinsic/0xabc", e.ExtrinsicURL("0xabc"))
	assert.Equal(t, "https://westend.subscan.io/account/5Grwva", e.AccountURL("5Grwva"))

	var none BlockExplorer = NoExplorer{}
	assert.Empty(t, none.ExtrinsicURL("0xabc"))
	assert.Empty(t, none.AccountURL("5Grwva"))
}
