package common

import (
	"math/big"
	"strings"
)

// FormatAmount renders value, given in the chain's smallest unit, as a
// decimal token amount.
// Example:
// - FormatAmount(1100, 3) = "1.1"
// - FormatAmount(1000000000000, 12) = "1"
func FormatAmount(value *big.Int, decimal uint64) string {
	f := new(big.Float).SetPrec(256).SetInt(value)
	power := new(big.Float).SetPrec(256).SetInt(new(big.Int).Exp(
		big.NewInt(10), big.NewInt(int64(decimal)), nil,
	))
	res := new(big.Float).SetPrec(256).Quo(f, power)
	s := res.Text('f', int(decimal))
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return s
}
