package evm

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func newTestEncoder(t *testing.T) *Encoder {
	t.Helper()
	e, err := NewEncoder(common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"))
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}
	return e
}

func TestEncoder_Deterministic(t *testing.T) {
	e := newTestEncoder(t)
	updates := [][]byte{{0x01, 0x02}, {0x03}}

	a, err := e.EncodeBuy("fEUR", updates)
	if err != nil {
		t.Fatalf("EncodeBuy failed: %v", err)
	}
	b, err := e.EncodeBuy("fEUR", updates)
	if err != nil {
		t.Fatalf("EncodeBuy failed: %v", err)
	}

	if !bytes.Equal(a, b) {
		t.Error("identical inputs produced different calldata")
	}
}

func TestEncoder_BuyRoundTrip(t *testing.T) {
	e := newTestEncoder(t)
	updates := [][]byte{{0xaa, 0xbb}, {0xcc}}

	data, err := e.EncodeBuy("fYEN", updates)
	if err != nil {
		t.Fatalf("EncodeBuy failed: %v", err)
	}

	method, err := e.abi.MethodById(data[:4])
	if err != nil {
		t.Fatalf("selector not recognized: %v", err)
	}
	if method.Name != "buyTokensFromFlow" {
		t.Fatalf("selector resolves to %s", method.Name)
	}

	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		t.Fatalf("Unpack failed: %v", err)
	}

	if got := args[0].(string); got != "fYEN" {
		t.Errorf("tokenName = %s", got)
	}
	blobs := args[1].([][]byte)
	if len(blobs) != 2 || !bytes.Equal(blobs[0], updates[0]) || !bytes.Equal(blobs[1], updates[1]) {
		t.Errorf("update blobs changed in transit: %x", blobs)
	}
}

func TestEncoder_AddLiquidityRoundTrip(t *testing.T) {
	e := newTestEncoder(t)
	amount, _ := new(big.Int).SetString("102000000000000000000", 10)

	data, err := e.EncodeAddLiquidity("fUSD", "fEUR", amount, [][]byte{{0x01}})
	if err != nil {
		t.Fatalf("EncodeAddLiquidity failed: %v", err)
	}

	method, err := e.abi.MethodById(data[:4])
	if err != nil {
		t.Fatalf("selector not recognized: %v", err)
	}
	if method.Name != "addLiquidity" {
		t.Fatalf("selector resolves to %s", method.Name)
	}

	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		t.Fatalf("Unpack failed: %v", err)
	}

	if args[0].(string) != "fUSD" || args[1].(string) != "fEUR" {
		t.Errorf("token names = %v, %v", args[0], args[1])
	}
	if args[2].(*big.Int).Cmp(amount) != 0 {
		t.Errorf("amountA = %s, want %s", args[2], amount)
	}
}

func TestEncoder_RemoveLiquidityRoundTrip(t *testing.T) {
	e := newTestEncoder(t)
	amount := big.NewInt(5_000_000)

	data, err := e.EncodeRemoveLiquidity("fGBP", "fCHF", amount)
	if err != nil {
		t.Fatalf("EncodeRemoveLiquidity failed: %v", err)
	}

	method, err := e.abi.MethodById(data[:4])
	if err != nil {
		t.Fatalf("selector not recognized: %v", err)
	}
	if method.Name != "removeLiquidity" {
		t.Fatalf("selector resolves to %s", method.Name)
	}

	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		t.Fatalf("Unpack failed: %v", err)
	}

	if args[0].(string) != "fGBP" || args[1].(string) != "fCHF" {
		t.Errorf("token names = %v, %v", args[0], args[1])
	}
	if args[2].(*big.Int).Cmp(amount) != 0 {
		t.Errorf("lpTokenAmount = %s, want %s", args[2], amount)
	}
}

func TestEncoder_EmptyUpdates(t *testing.T) {
	e := newTestEncoder(t)

	// An empty bytes[] is encodable; guarding against it is the
	// orchestrator's job, not the encoder's.
	if _, err := e.EncodeBuy("fUSD", [][]byte{}); err != nil {
		t.Errorf("empty updates should encode: %v", err)
	}
}
