package networks

var Westend Network = NewGenericSubstrateNetwork(GenericSubstrateNetworkConfig{
	Name:               "westend",
	AlternativeNames:   []string{"wnd"},
	NativeTokenSymbol:  "WND",
	NativeTokenDecimal: 12,
	BlockTime:          6,
	SS58Prefix:         42,
	NodeVariableName:   "WESTEND_NODE",
	DefaultNodes: map[string]string{
		"parity": "wss://westend-rpc.polkadot.io",
	},
	ContractsPalletIndex: 8,
	MetadataHash:         true,
	SubscanURL:           "https://westend.subscan.io",
})
