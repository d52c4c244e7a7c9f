// Package app contains the chain context's application services and ports.
package app

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	oracledomain "github.com/basketfx/txprep/business/oracle/domain"
)

// ContractReader exposes the basket contract's view functions.
type ContractReader interface {
	// NameToID resolves a contract token name to its price feed ID.
	NameToID(ctx context.Context, name string) (oracledomain.FeedID, error)
	// ReferenceFeedID reads the fixed native-currency reference feed.
	ReferenceFeedID(ctx context.Context) (oracledomain.FeedID, error)
	// NormalizedPrice reads the contract's normalized price for a feed.
	NormalizedPrice(ctx context.Context, id oracledomain.FeedID) (*big.Int, error)
	// PythAddress reads the verifier contract address the basket trusts.
	PythAddress(ctx context.Context) (common.Address, error)
}

// FeeSource exposes the verifier's update fee view.
type FeeSource interface {
	// UpdateFee returns the native-unit fee for publishing the updates.
	UpdateFee(ctx context.Context, updates [][]byte) (*big.Int, error)
}
