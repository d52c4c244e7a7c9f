// Package app orchestrates the four preparation flows: buy, add
// liquidity, remove liquidity and counter-amount quoting.
package app

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	chaindomain "github.com/basketfx/txprep/business/chain/domain"
	oracledomain "github.com/basketfx/txprep/business/oracle/domain"
)

// AttestationProvider fetches fresh signed price updates from the oracle
// network. Satisfied by the oracle context's service.
type AttestationProvider interface {
	LatestAttestations(ctx context.Context, ids []oracledomain.FeedID) (*oracledomain.AttestationSet, error)
}

// ChainGateway exposes the on-chain reads the flows need. Satisfied by
// the chain context's service.
type ChainGateway interface {
	ResolveFeedID(ctx context.Context, name string) (oracledomain.FeedID, error)
	ReferenceFeedID(ctx context.Context) (oracledomain.FeedID, error)
	NormalizedPrice(ctx context.Context, name string) (*big.Int, error)
	EstimateFee(ctx context.Context, updates [][]byte) (chaindomain.FeeQuote, error)
}

// TxEncoder turns validated flow parameters into calldata for the basket
// contract. Encoding is deterministic and purely local.
type TxEncoder interface {
	Target() common.Address
	EncodeBuy(tokenName string, updates [][]byte) ([]byte, error)
	EncodeAddLiquidity(tokenNameA, tokenNameB string, amountA *big.Int, updates [][]byte) ([]byte, error)
	EncodeRemoveLiquidity(tokenNameA, tokenNameB string, lpAmount *big.Int) ([]byte, error)
}
