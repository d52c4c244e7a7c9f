package domain

import (
	"encoding/hex"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TransactionDescriptor is an unsigned transaction ready for a wallet to
// sign and submit: target contract, native value and calldata. The
// service never holds keys, so this is the pipeline's terminal product.
type TransactionDescriptor struct {
	To    common.Address
	Value *big.Int
	Data  []byte
}

// NewTransactionDescriptor builds a descriptor, defensively copying the
// mutable fields. A nil value means zero.
func NewTransactionDescriptor(to common.Address, value *big.Int, data []byte) TransactionDescriptor {
	v := big.NewInt(0)
	if value != nil {
		v.Set(value)
	}
	d := make([]byte, len(data))
	copy(d, data)

	return TransactionDescriptor{To: to, Value: v, Data: d}
}

// ValueString returns the native value in decimal smallest units, the
// form wallets expect.
func (t TransactionDescriptor) ValueString() string {
	if t.Value == nil {
		return "0"
	}
	return t.Value.String()
}

// DataHex returns the calldata as 0x-prefixed hex.
func (t TransactionDescriptor) DataHex() string {
	return "0x" + hex.EncodeToString(t.Data)
}
