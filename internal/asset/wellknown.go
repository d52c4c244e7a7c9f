package asset

// Flow EVM chain IDs.
const (
	ChainFlowTestnet uint64 = 545
	ChainFlowMainnet uint64 = 747
)

// Well-known assets on Flow EVM Testnet.
// All basket tokens carry 18 decimals, matching the native coin.
var (
	FLOW = NewAsset(NewNativeAssetID(ChainFlowTestnet), "FLOW", "", 18)

	FUSD = NewAsset(NewNamedAssetID(ChainFlowTestnet, "fUSD"), "USD", "fUSD", 18)
	FEUR = NewAsset(NewNamedAssetID(ChainFlowTestnet, "fEUR"), "EUR", "fEUR", 18)
	FGBP = NewAsset(NewNamedAssetID(ChainFlowTestnet, "fGBP"), "GBP", "fGBP", 18)
	FYEN = NewAsset(NewNamedAssetID(ChainFlowTestnet, "fYEN"), "JPY", "fYEN", 18)
	FCHF = NewAsset(NewNamedAssetID(ChainFlowTestnet, "fCHF"), "CHF", "fCHF", 18)
	FINR = NewAsset(NewNamedAssetID(ChainFlowTestnet, "fINR"), "INR", "fINR", 18)
)

// DefaultRegistry creates a registry pre-populated with the basket assets.
// "USDC" is an alias for the fUSD token: the UI treats both as the dollar leg.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(FLOW)
	r.Register(FUSD)
	r.Register(FEUR)
	r.Register(FGBP)
	r.Register(FYEN)
	r.Register(FCHF)
	r.Register(FINR)

	r.Alias("USDC", FUSD)

	return r
}
