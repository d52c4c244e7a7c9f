package asset

// Asset represents the metadata of a basket currency or the native coin.
// It is a reference entity with stable identity (AssetID).
// The UI symbol is NOT identity - just metadata for display and input mapping.
type Asset struct {
	id           AssetID
	symbol       string // UI-facing symbol, e.g. "EUR"
	contractName string // name registered on the basket contract, e.g. "fEUR"
	decimals     uint8
}

// NewAsset creates a new Asset with the given parameters.
func NewAsset(id AssetID, symbol, contractName string, decimals uint8) *Asset {
	if symbol == "" {
		panic("asset: empty symbol")
	}
	if decimals > 30 {
		panic("asset: suspicious decimals (>30)")
	}

	return &Asset{
		id:           id,
		symbol:       symbol,
		contractName: contractName,
		decimals:     decimals,
	}
}

// ID returns the unique identifier for this asset.
func (a *Asset) ID() AssetID {
	return a.id
}

// Symbol returns the UI-facing symbol (e.g., "EUR", "FLOW").
func (a *Asset) Symbol() string {
	return a.symbol
}

// ContractName returns the name the basket contract knows this token by
// (e.g., "fEUR"). Empty for the native coin.
func (a *Asset) ContractName() string {
	return a.contractName
}

// Decimals returns the number of decimal places.
func (a *Asset) Decimals() uint8 {
	return a.decimals
}

// ChainID returns the chain ID.
func (a *Asset) ChainID() uint64 {
	return a.id.ChainID()
}

// IsNative returns true if this is the chain's native coin.
func (a *Asset) IsNative() bool {
	return a.id.IsNative()
}

// String returns a human-readable representation.
func (a *Asset) String() string {
	return a.symbol
}

// Equals compares two Assets by their ID.
func (a *Asset) Equals(other *Asset) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.id.Equals(other.id)
}
