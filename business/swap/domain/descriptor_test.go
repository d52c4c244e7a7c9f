package domain

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestNewTransactionDescriptor(t *testing.T) {
	to := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	value := big.NewInt(1234)
	data := []byte{0xde, 0xad, 0xbe, 0xef}

	tx := NewTransactionDescriptor(to, value, data)

	if tx.ValueString() != "1234" {
		t.Errorf("ValueString() = %s", tx.ValueString())
	}
	if tx.DataHex() != "0xdeadbeef" {
		t.Errorf("DataHex() = %s", tx.DataHex())
	}
	if tx.To != to {
		t.Errorf("To = %s", tx.To.Hex())
	}

	// The descriptor must not alias the caller's buffers.
	value.SetInt64(0)
	data[0] = 0x00
	if tx.ValueString() != "1234" || tx.DataHex() != "0xdeadbeef" {
		t.Error("descriptor aliases caller-owned memory")
	}
}

func TestTransactionDescriptor_NilValue(t *testing.T) {
	tx := NewTransactionDescriptor(common.Address{}, nil, nil)

	if tx.ValueString() != "0" {
		t.Errorf("ValueString() = %s, want 0", tx.ValueString())
	}
	if tx.DataHex() != "0x" {
		t.Errorf("DataHex() = %s, want 0x", tx.DataHex())
	}
}
