// Package evm encodes basket contract calldata for the swap flows.
package evm

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/basketfx/txprep/business/swap/app"
	"github.com/basketfx/txprep/internal/apperror"
)

// Write-side slice of the basket contract's interface. The view
// functions live with the chain context's reader; this package only
// builds calldata and never touches the network.
const appWriteABI = `[
  {
    "type": "function",
    "name": "buyTokensFromFlow",
    "stateMutability": "payable",
    "inputs": [
      {"name": "tokenName", "type": "string"},
      {"name": "priceUpdate", "type": "bytes[]"}
    ],
    "outputs": []
  },
  {
    "type": "function",
    "name": "addLiquidity",
    "stateMutability": "payable",
    "inputs": [
      {"name": "tokenNameA", "type": "string"},
      {"name": "tokenNameB", "type": "string"},
      {"name": "amountA", "type": "uint256"},
      {"name": "priceUpdate", "type": "bytes[]"}
    ],
    "outputs": []
  },
  {
    "type": "function",
    "name": "removeLiquidity",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "tokenNameA", "type": "string"},
      {"name": "tokenNameB", "type": "string"},
      {"name": "lpTokenAmount", "type": "uint256"}
    ],
    "outputs": []
  }
]`

var _ app.TxEncoder = (*Encoder)(nil)

// Encoder packs calldata for the basket contract's write functions.
type Encoder struct {
	target common.Address
	abi    abi.ABI
}

// NewEncoder creates an encoder targeting the given basket contract.
func NewEncoder(target common.Address) (*Encoder, error) {
	parsed, err := abi.JSON(strings.NewReader(appWriteABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse app write ABI: %w", err)
	}
	return &Encoder{target: target, abi: parsed}, nil
}

// Target returns the contract address the calldata is meant for.
func (e *Encoder) Target() common.Address {
	return e.target
}

// EncodeBuy packs buyTokensFromFlow(tokenName, priceUpdate).
func (e *Encoder) EncodeBuy(tokenName string, updates [][]byte) ([]byte, error) {
	return e.pack("buyTokensFromFlow", tokenName, updates)
}

// EncodeAddLiquidity packs addLiquidity(tokenNameA, tokenNameB, amountA, priceUpdate).
func (e *Encoder) EncodeAddLiquidity(tokenNameA, tokenNameB string, amountA *big.Int, updates [][]byte) ([]byte, error) {
	return e.pack("addLiquidity", tokenNameA, tokenNameB, amountA, updates)
}

// EncodeRemoveLiquidity packs removeLiquidity(tokenNameA, tokenNameB, lpTokenAmount).
func (e *Encoder) EncodeRemoveLiquidity(tokenNameA, tokenNameB string, lpAmount *big.Int) ([]byte, error) {
	return e.pack("removeLiquidity", tokenNameA, tokenNameB, lpAmount)
}

func (e *Encoder) pack(method string, args ...interface{}) ([]byte, error) {
	data, err := e.abi.Pack(method, args...)
	if err != nil {
		return nil, apperror.New(apperror.CodeEncodingFailure,
			apperror.WithCause(err),
			apperror.WithContext("failed to encode "+method))
	}
	return data, nil
}
