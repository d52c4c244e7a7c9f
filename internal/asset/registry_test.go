package asset

import "testing"

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	// Native coin plus six basket tokens.
	if r.Count() != 7 {
		t.Errorf("Count() = %d, want 7", r.Count())
	}
	if len(r.Tokens()) != 6 {
		t.Errorf("Tokens() = %d, want 6", len(r.Tokens()))
	}

	native, ok := r.GetNative(ChainFlowTestnet)
	if !ok || !native.IsNative() {
		t.Fatal("native coin missing")
	}
	if native.Symbol() != "FLOW" {
		t.Errorf("native symbol = %s", native.Symbol())
	}
}

func TestRegistry_SymbolAndNameLookup(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		symbol       string
		contractName string
	}{
		{symbol: "USD", contractName: "fUSD"},
		{symbol: "EUR", contractName: "fEUR"},
		{symbol: "GBP", contractName: "fGBP"},
		{symbol: "JPY", contractName: "fYEN"},
		{symbol: "CHF", contractName: "fCHF"},
		{symbol: "INR", contractName: "fINR"},
	}

	for _, tt := range tests {
		bySymbol, ok := r.GetBySymbol(tt.symbol)
		if !ok {
			t.Errorf("GetBySymbol(%s) missed", tt.symbol)
			continue
		}
		byName, ok := r.GetByContractName(tt.contractName)
		if !ok {
			t.Errorf("GetByContractName(%s) missed", tt.contractName)
			continue
		}
		if !bySymbol.Equals(byName) {
			t.Errorf("%s and %s resolve to different assets", tt.symbol, tt.contractName)
		}
	}
}

func TestRegistry_USDCAlias(t *testing.T) {
	r := DefaultRegistry()

	usdc, ok := r.GetBySymbol("USDC")
	if !ok {
		t.Fatal("USDC alias missing")
	}
	if usdc.ContractName() != "fUSD" {
		t.Errorf("USDC maps to %s, want fUSD", usdc.ContractName())
	}
}

func TestRegistry_UnknownLookups(t *testing.T) {
	r := DefaultRegistry()

	if _, ok := r.GetBySymbol("BTC"); ok {
		t.Error("unknown symbol resolved")
	}
	if _, ok := r.GetByContractName("fBTC"); ok {
		t.Error("unknown contract name resolved")
	}
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := DefaultRegistry()

	defer func() {
		if recover() == nil {
			t.Error("duplicate registration did not panic")
		}
	}()
	r.Register(FLOW)
}
