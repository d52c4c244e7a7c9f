// Package asset provides a type-safe model for the basket's currencies.
// The core uses big.Int for exact on-chain representation.
// decimal.Decimal is only used at boundaries (parsing, display).
package asset

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// AssetID uniquely identifies an asset by chain and slot.
// The native coin uses the zero slot. Basket tokens are keyed by the
// contract-level token name ("fEUR", "fUSD", ...) because the basket
// contract tracks balances by name, not by a separate ERC20 address.
type AssetID struct {
	chainID uint64
	slot    common.Address // zero = native coin, otherwise derived from the token name
}

// NewNativeAssetID creates an AssetID for a chain's native coin.
func NewNativeAssetID(chainID uint64) AssetID {
	return AssetID{chainID: chainID}
}

// NewNamedAssetID creates an AssetID for a name-keyed basket token.
func NewNamedAssetID(chainID uint64, name string) AssetID {
	if name == "" {
		panic("asset: empty token name")
	}
	return AssetID{
		chainID: chainID,
		slot:    common.BytesToAddress(common.RightPadBytes([]byte(name), 20)),
	}
}

// ChainID returns the chain ID.
func (id AssetID) ChainID() uint64 {
	return id.chainID
}

// IsNative returns true if this is the chain's native coin.
func (id AssetID) IsNative() bool {
	return id.slot == (common.Address{})
}

// String returns a human-readable representation.
func (id AssetID) String() string {
	if id.IsNative() {
		return fmt.Sprintf("chain:%d/native", id.chainID)
	}
	return fmt.Sprintf("chain:%d/%s", id.chainID, id.slot.Hex())
}

// Equals compares two AssetIDs for equality.
func (id AssetID) Equals(other AssetID) bool {
	return id.chainID == other.chainID && id.slot == other.slot
}
