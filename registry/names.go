package registry

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// Suffix is appended to every name to form its canonical registry key.
	Suffix = ".web3"

	MaxNameLength = 50
)

var namePattern = regexp.MustCompile(fmt.Sprintf(`^[A-Za-z0-9_-]{1,%d}$`, MaxNameLength))

// NormalizeName returns the canonical form of raw, appending Suffix when it
// is missing.
func NormalizeName(raw string) string {
	if strings.HasSuffix(raw, Suffix) {
		return raw
	}
	return raw + Suffix
}

// ValidateName reports whether the label of raw (raw without one trailing
// Suffix) is 1 to MaxNameLength characters of letters, digits, '-' or '_'.
func ValidateName(raw string) bool {
	return namePattern.MatchString(strings.TrimSuffix(raw, Suffix))
}
