package networks

// LocalContracts is a substrate-contracts-node started with --dev.
var LocalContracts Network = NewGenericSubstrateNetwork(GenericSubstrateNetworkConfig{
	Name:               "local",
	AlternativeNames:   []string{"dev", "contracts-node"},
	NativeTokenSymbol:  "UNIT",
	NativeTokenDecimal: 12,
	BlockTime:          1,
	SS58Prefix:         42,
	NodeVariableName:   "LOCAL_CONTRACTS_NODE",
	DefaultNodes: map[string]string{
		"localhost": "ws://127.0.0.1:9944",
	},
	ContractsPalletIndex: 8,
})
