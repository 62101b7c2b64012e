package explorers

import (
	"fmt"
	"strings"
)

type BlockExplorer interface {
	ExtrinsicURL(hash string) string
	AccountURL(address string) string
}

// SubscanExplorer builds links into a Subscan instance. Every Substrate
// network Subscan indexes lives on its own subdomain.
type SubscanExplorer struct {
	Domain string
}

func NewSubscanExplorer(domain string) *SubscanExplorer {
	return &SubscanExplorer{Domain: strings.TrimSuffix(domain, "/")}
}

func (se *SubscanExplorer) ExtrinsicURL(hash string) string {
	return fmt.Sprintf("%s/extrinsic/%s", se.Domain, hash)
}

func (se *SubscanExplorer) AccountURL(address string) string {
	return fmt.Sprintf("%s/account/%s", se.Domain, address)
}

// NoExplorer is used for local development chains.
type NoExplorer struct{}

func (NoExplorer) ExtrinsicURL(hash string) string  { return "" }
func (NoExplorer) AccountURL(address string) string { return "" }
