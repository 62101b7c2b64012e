package registry

import "regexp"

// AddressFormat identifies one of the account address encodings the
// registry accepts as a binding target.
type AddressFormat int

const (
	AddressSubstrate AddressFormat = iota
	AddressEthereum
	AddressBitcoin
	AddressSolana
)

// AddressFormats lists every format in the order DetectAddressFormat tries
// them.
var AddressFormats = []AddressFormat{
	AddressSubstrate,
	AddressEthereum,
	AddressBitcoin,
	AddressSolana,
}

var addressPatterns = map[AddressFormat]*regexp.Regexp{
	AddressSubstrate: regexp.MustCompile(`^5[a-km-zA-HJ-NP-Z1-9]{47}$`),
	AddressEthereum:  regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`),
	AddressBitcoin:   regexp.MustCompile(`^[13][a-km-zA-HJ-NP-Z1-9]{25,34}$`),
	AddressSolana:    regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`),
}

func (f AddressFormat) String() string {
	switch f {
	case AddressSubstrate:
		return "substrate"
	case AddressEthereum:
		return "ethereum"
	case AddressBitcoin:
		return "bitcoin"
	case AddressSolana:
		return "solana"
	}
	return "unknown"
}

// Pattern returns the expression an address must fully match to be of
// format f, or nil for an unknown format.
func (f AddressFormat) Pattern() *regexp.Regexp {
	return addressPatterns[f]
}

func (f AddressFormat) Match(raw string) bool {
	p := f.Pattern()
	return p != nil && p.MatchString(raw)
}

// DetectAddressFormat returns the first format in AddressFormats that raw
// matches. Formats overlap (a Substrate address is also Solana shaped), so
// the order matters.
func DetectAddressFormat(raw string) (AddressFormat, bool) {
	for _, f := range AddressFormats {
		if f.Match(raw) {
			return f, true
		}
	}
	return 0, false
}

// ValidateAddress reports whether raw matches at least one known format.
func ValidateAddress(raw string) bool {
	_, ok := DetectAddressFormat(raw)
	return ok
}
