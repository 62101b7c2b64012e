package networks

import (
	"encoding/json"
	"time"

	"github.com/ss-deshmukh/Nomenclature/util/explorers"
)

type GenericSubstrateNetworkConfig struct {
	Name                 string            `json:"name"`
	AlternativeNames     []string          `json:"alternative_names"`
	NativeTokenSymbol    string            `json:"native_token_symbol"`
	NativeTokenDecimal   uint64            `json:"native_token_decimal"`
	BlockTime            uint64            `json:"block_time"`
	SS58Prefix           uint16            `json:"ss58_prefix"`
	NodeVariableName     string            `json:"node_variable_name"`
	DefaultNodes         map[string]string `json:"default_nodes"`
	ContractsPalletIndex uint8             `json:"contracts_pallet_index"`
	MetadataHash         bool              `json:"metadata_hash"`
	WNSContract          string            `json:"wns_contract"`
	SubscanURL           string            `json:"subscan_url"`
}

// GenericSubstrateNetwork is a network described entirely by its config,
// used for the built-in networks as well as the custom ones.
type GenericSubstrateNetwork struct {
	explorers.BlockExplorer
	config GenericSubstrateNetworkConfig
}

func NewGenericSubstrateNetwork(config GenericSubstrateNetworkConfig) *GenericSubstrateNetwork {
	var explorer explorers.BlockExplorer = explorers.NoExplorer{}
	if config.SubscanURL != "" {
		explorer = explorers.NewSubscanExplorer(config.SubscanURL)
	}
	return &GenericSubstrateNetwork{
		BlockExplorer: explorer,
		config:        config,
	}
}

func (gn *GenericSubstrateNetwork) GetName() string {
	return gn.config.Name
}

func (gn *GenericSubstrateNetwork) GetAlternativeNames() []string {
	return gn.config.AlternativeNames
}

func (gn *GenericSubstrateNetwork) GetNativeTokenSymbol() string {
	return gn.config.NativeTokenSymbol
}

func (gn *GenericSubstrateNetwork) GetNativeTokenDecimal() uint64 {
	return gn.config.NativeTokenDecimal
}

func (gn *GenericSubstrateNetwork) GetBlockTime() time.Duration {
	return time.Duration(gn.config.BlockTime) * time.Second
}

func (gn *GenericSubstrateNetwork) GetSS58Prefix() uint16 {
	return gn.config.SS58Prefix
}

func (gn *GenericSubstrateNetwork) GetNodeVariableName() string {
	return gn.config.NodeVariableName
}

func (gn *GenericSubstrateNetwork) GetDefaultNodes() map[string]string {
	return gn.config.DefaultNodes
}

func (gn *GenericSubstrateNetwork) GetContractsPalletIndex() uint8 {
	return gn.config.ContractsPalletIndex
}

func (gn *GenericSubstrateNetwork) HasMetadataHashExtension() bool {
	return gn.config.MetadataHash
}

func (gn *GenericSubstrateNetwork) GetWNSContract() string {
	return gn.config.WNSContract
}

func (gn *GenericSubstrateNetwork) MarshalJSON() ([]byte, error) {
	return json.MarshalIndent(gn.config, "", "  ")
}
