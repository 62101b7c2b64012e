package networks

import (
	"time"

	"github.com/ss-deshmukh/Nomenclature/util/explorers"
)

type Network interface {
	GetName() string
	GetAlternativeNames() []string
	GetNativeTokenSymbol() string
	GetNativeTokenDecimal() uint64
	GetBlockTime() time.Duration
	GetSS58Prefix() uint16

	GetNodeVariableName() string
	GetDefaultNodes() map[string]string

	// GetContractsPalletIndex is the position of pallet-contracts in the
	// runtime's call enum.
	GetContractsPalletIndex() uint8
	// HasMetadataHashExtension reports whether the runtime expects the
	// CheckMetadataHash signed extension.
	HasMetadataHashExtension() bool
	// GetWNSContract is the address of the deployed name service contract,
	// empty when none is known.
	GetWNSContract() string

	explorers.BlockExplorer
	MarshalJSON() ([]byte, error)
}
