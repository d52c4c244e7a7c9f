package app

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	chaindomain "github.com/basketfx/txprep/business/chain/domain"
	oracledomain "github.com/basketfx/txprep/business/oracle/domain"
	"github.com/basketfx/txprep/internal/apperror"
	"github.com/basketfx/txprep/internal/asset"
	"github.com/basketfx/txprep/internal/logger"
)

var (
	testFeedEUR = oracledomain.MustFeedID("0x" + strings.Repeat("11", 32))
	testFeedUSD = oracledomain.MustFeedID("0x" + strings.Repeat("22", 32))
	testFeedRef = oracledomain.MustFeedID("0x" + strings.Repeat("33", 32))
)

// stubOracle counts fetches and returns a canned attestation set.
type stubOracle struct {
	mu    sync.Mutex
	calls int
	ids   []oracledomain.FeedID
	set   *oracledomain.AttestationSet
	err   error
}

func (s *stubOracle) LatestAttestations(_ context.Context, ids []oracledomain.FeedID) (*oracledomain.AttestationSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.ids = ids
	if s.err != nil {
		return nil, s.err
	}
	return s.set, nil
}

// stubChain counts reads; resolutions run concurrently so every counter
// is mutex-guarded.
type stubChain struct {
	mu           sync.Mutex
	resolveCalls int
	refCalls     int
	priceCalls   int
	feeCalls     int

	feedIDs map[string]oracledomain.FeedID
	refID   oracledomain.FeedID
	prices  map[string]*big.Int
	baseFee *big.Int
	err     error
}

func (s *stubChain) ResolveFeedID(_ context.Context, name string) (oracledomain.FeedID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolveCalls++
	if s.err != nil {
		return oracledomain.FeedID{}, s.err
	}
	return s.feedIDs[name], nil
}

func (s *stubChain) ReferenceFeedID(_ context.Context) (oracledomain.FeedID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refCalls++
	if s.err != nil {
		return oracledomain.FeedID{}, s.err
	}
	return s.refID, nil
}

func (s *stubChain) NormalizedPrice(_ context.Context, name string) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.priceCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.prices[name], nil
}

func (s *stubChain) EstimateFee(_ context.Context, updates [][]byte) (chaindomain.FeeQuote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feeCalls++
	if s.err != nil {
		return chaindomain.FeeQuote{}, s.err
	}
	return chaindomain.NewFeeQuote(s.baseFee, 10)
}

func (s *stubChain) networkCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolveCalls + s.refCalls + s.priceCalls + s.feeCalls
}

// stubEncoder records the last encode and returns a fixed payload.
type stubEncoder struct {
	target     common.Address
	lastMethod string
	lastName   string
	lastNameB  string
	lastAmount *big.Int
}

func (s *stubEncoder) Target() common.Address { return s.target }

func (s *stubEncoder) EncodeBuy(tokenName string, _ [][]byte) ([]byte, error) {
	s.lastMethod = "buy"
	s.lastName = tokenName
	return []byte{0x01}, nil
}

func (s *stubEncoder) EncodeAddLiquidity(a, b string, amountA *big.Int, _ [][]byte) ([]byte, error) {
	s.lastMethod = "addLiquidity"
	s.lastName = a
	s.lastNameB = b
	s.lastAmount = new(big.Int).Set(amountA)
	return []byte{0x02}, nil
}

func (s *stubEncoder) EncodeRemoveLiquidity(a, b string, lpAmount *big.Int) ([]byte, error) {
	s.lastMethod = "removeLiquidity"
	s.lastName = a
	s.lastNameB = b
	s.lastAmount = new(big.Int).Set(lpAmount)
	return []byte{0x03}, nil
}

func testSet() *oracledomain.AttestationSet {
	return &oracledomain.AttestationSet{
		Updates: []oracledomain.UpdateData{[]byte{0xaa}, []byte{0xbb}},
	}
}

func newTestService(t *testing.T, oracle *stubOracle, chain *stubChain, enc *stubEncoder) *Service {
	t.Helper()

	log := logger.New(testWriter{t}, logger.LevelError, "test", nil)
	svc, err := NewService(oracle, chain, enc, asset.DefaultRegistry(), ServiceConfig{
		ChainID:      asset.ChainFlowTestnet,
		SlippagePct:  2,
		BuyWeiBuffer: 100,
	}, log)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func defaultStubs() (*stubOracle, *stubChain, *stubEncoder) {
	oracle := &stubOracle{set: testSet()}
	chain := &stubChain{
		feedIDs: map[string]oracledomain.FeedID{
			"fEUR": testFeedEUR,
			"fUSD": testFeedUSD,
		},
		refID:   testFeedRef,
		baseFee: big.NewInt(1000),
		prices: map[string]*big.Int{
			"fEUR": new(big.Int).Mul(big.NewInt(2), big.NewInt(1e18)),
			"fUSD": big.NewInt(1e18),
		},
	}
	enc := &stubEncoder{target: common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")}
	return oracle, chain, enc
}

func TestPrepareBuy_ValueCoversAmountFeeAndBuffer(t *testing.T) {
	oracle, chain, enc := defaultStubs()
	svc := newTestService(t, oracle, chain, enc)

	tx, err := svc.PrepareBuy(context.Background(), BuyRequest{TokenSymbol: "EUR", FlowAmount: "2.5"})
	if err != nil {
		t.Fatalf("PrepareBuy failed: %v", err)
	}

	// 2.5e18 + (1000 * 110 / 100) + 100
	want, _ := new(big.Int).SetString("2500000000000001200", 10)
	if tx.Value.Cmp(want) != 0 {
		t.Errorf("Value = %s, want %s", tx.Value, want)
	}

	if enc.lastMethod != "buy" || enc.lastName != "fEUR" {
		t.Errorf("encoded %s(%s), want buy(fEUR)", enc.lastMethod, enc.lastName)
	}
	if tx.To != enc.target {
		t.Errorf("To = %s", tx.To.Hex())
	}

	// Token feed plus native reference feed, nothing else.
	if len(oracle.ids) != 2 || oracle.ids[0] != testFeedEUR || oracle.ids[1] != testFeedRef {
		t.Errorf("fetched feeds %v", oracle.ids)
	}
	if chain.feeCalls != 1 {
		t.Errorf("feeCalls = %d", chain.feeCalls)
	}
}

func TestPrepareBuy_USDCAlias(t *testing.T) {
	oracle, chain, enc := defaultStubs()
	svc := newTestService(t, oracle, chain, enc)

	if _, err := svc.PrepareBuy(context.Background(), BuyRequest{TokenSymbol: "USDC", FlowAmount: "1"}); err != nil {
		t.Fatalf("PrepareBuy failed: %v", err)
	}
	if enc.lastName != "fUSD" {
		t.Errorf("USDC should map to fUSD, encoded %s", enc.lastName)
	}
	_ = oracle
	_ = chain
}

func TestPrepareBuy_ValidationBeforeNetwork(t *testing.T) {
	tests := []struct {
		name     string
		req      BuyRequest
		wantCode apperror.Code
	}{
		{name: "unknown_symbol", req: BuyRequest{TokenSymbol: "XXX", FlowAmount: "1"}, wantCode: apperror.CodeUnsupportedToken},
		{name: "native_symbol", req: BuyRequest{TokenSymbol: "FLOW", FlowAmount: "1"}, wantCode: apperror.CodeUnsupportedToken},
		{name: "empty_symbol", req: BuyRequest{TokenSymbol: "", FlowAmount: "1"}, wantCode: apperror.CodeInvalidInput},
		{name: "empty_amount", req: BuyRequest{TokenSymbol: "EUR", FlowAmount: ""}, wantCode: apperror.CodeInvalidInput},
		{name: "garbage_amount", req: BuyRequest{TokenSymbol: "EUR", FlowAmount: "a lot"}, wantCode: apperror.CodeInvalidInput},
		{name: "zero_amount", req: BuyRequest{TokenSymbol: "EUR", FlowAmount: "0"}, wantCode: apperror.CodeAmountOutOfRange},
		{name: "negative_amount", req: BuyRequest{TokenSymbol: "EUR", FlowAmount: "-1"}, wantCode: apperror.CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oracle, chain, enc := defaultStubs()
			svc := newTestService(t, oracle, chain, enc)

			_, err := svc.PrepareBuy(context.Background(), tt.req)
			if apperror.GetCode(err) != tt.wantCode {
				t.Errorf("code = %s, want %s", apperror.GetCode(err), tt.wantCode)
			}
			if oracle.calls != 0 || chain.networkCalls() != 0 {
				t.Error("validation failure still reached the network")
			}
		})
	}
}

func TestPrepareAddLiquidity(t *testing.T) {
	oracle, chain, enc := defaultStubs()
	svc := newTestService(t, oracle, chain, enc)

	tx, err := svc.PrepareAddLiquidity(context.Background(), LiquidityRequest{
		TokenNameA: "fUSD",
		TokenNameB: "fEUR",
		AmountA:    "100",
	})
	if err != nil {
		t.Fatalf("PrepareAddLiquidity failed: %v", err)
	}

	// Value carries only the adjusted fee; the purchase itself is in tokens.
	if tx.Value.String() != "1100" {
		t.Errorf("Value = %s, want 1100", tx.Value)
	}

	// Deposit is slippage-adjusted: 100e18 * 102 / 100.
	wantDeposit, _ := new(big.Int).SetString("102000000000000000000", 10)
	if enc.lastAmount.Cmp(wantDeposit) != 0 {
		t.Errorf("deposit = %s, want %s", enc.lastAmount, wantDeposit)
	}
	if enc.lastName != "fUSD" || enc.lastNameB != "fEUR" {
		t.Errorf("encoded pair %s/%s", enc.lastName, enc.lastNameB)
	}

	// Both token feeds plus the native reference feed are attested: the
	// contract prices each leg in the native coin.
	wantIDs := []oracledomain.FeedID{testFeedUSD, testFeedEUR, testFeedRef}
	if len(oracle.ids) != len(wantIDs) {
		t.Fatalf("fetched %d feeds, want %d", len(oracle.ids), len(wantIDs))
	}
	for i, id := range wantIDs {
		if oracle.ids[i] != id {
			t.Errorf("fetched feed[%d] = %s, want %s", i, oracle.ids[i], id)
		}
	}
	if chain.refCalls != 1 {
		t.Errorf("refCalls = %d, want 1", chain.refCalls)
	}
}

func TestPrepareAddLiquidity_IdenticalPair(t *testing.T) {
	oracle, chain, enc := defaultStubs()
	svc := newTestService(t, oracle, chain, enc)

	_, err := svc.PrepareAddLiquidity(context.Background(), LiquidityRequest{
		TokenNameA: "fEUR",
		TokenNameB: "fEUR",
		AmountA:    "1",
	})
	if apperror.GetCode(err) != apperror.CodeIdenticalTokenPair {
		t.Errorf("code = %s", apperror.GetCode(err))
	}
	if oracle.calls != 0 || chain.networkCalls() != 0 {
		t.Error("identical pair still reached the network")
	}
}

func TestPrepareRemoveLiquidity_PurelyLocal(t *testing.T) {
	oracle, chain, enc := defaultStubs()
	svc := newTestService(t, oracle, chain, enc)

	tx, err := svc.PrepareRemoveLiquidity(context.Background(), RemoveLiquidityRequest{
		TokenNameA:    "fUSD",
		TokenNameB:    "fEUR",
		LPTokenAmount: "7",
	})
	if err != nil {
		t.Fatalf("PrepareRemoveLiquidity failed: %v", err)
	}

	if tx.ValueString() != "0" {
		t.Errorf("Value = %s, want 0", tx.ValueString())
	}
	if enc.lastMethod != "removeLiquidity" {
		t.Errorf("encoded %s", enc.lastMethod)
	}
	wantLP, _ := new(big.Int).SetString("7000000000000000000", 10)
	if enc.lastAmount.Cmp(wantLP) != 0 {
		t.Errorf("lpAmount = %s, want %s", enc.lastAmount, wantLP)
	}

	// Withdrawal needs no prices: zero oracle fetches, zero chain reads.
	if oracle.calls != 0 {
		t.Errorf("oracle calls = %d", oracle.calls)
	}
	if chain.networkCalls() != 0 {
		t.Errorf("chain calls = %d", chain.networkCalls())
	}
}

func TestCalculateLiquidity(t *testing.T) {
	oracle, chain, enc := defaultStubs()
	svc := newTestService(t, oracle, chain, enc)

	quote, err := svc.CalculateLiquidity(context.Background(), LiquidityRequest{
		TokenNameA: "fEUR",
		TokenNameB: "fUSD",
		AmountA:    "100",
	})
	if err != nil {
		t.Fatalf("CalculateLiquidity failed: %v", err)
	}

	// fEUR at 2.0 vs fUSD at 1.0: 100 EUR -> 200 USD.
	if got := quote.AmountB.ToDecimal().String(); got != "200" {
		t.Errorf("AmountB = %s, want 200", got)
	}
	if chain.priceCalls != 2 {
		t.Errorf("priceCalls = %d, want 2", chain.priceCalls)
	}
	if oracle.calls != 0 {
		t.Errorf("oracle calls = %d, quoting must not fetch attestations", oracle.calls)
	}
	_ = enc
}

func TestCalculateLiquidity_UpstreamFailure(t *testing.T) {
	oracle, chain, enc := defaultStubs()
	chain.err = apperror.New(apperror.CodePriceUnavailable)
	svc := newTestService(t, oracle, chain, enc)

	_, err := svc.CalculateLiquidity(context.Background(), LiquidityRequest{
		TokenNameA: "fEUR",
		TokenNameB: "fUSD",
		AmountA:    "1",
	})
	if apperror.GetCode(err) != apperror.CodePriceUnavailable {
		t.Errorf("code = %s", apperror.GetCode(err))
	}
}

func TestPrepareBuy_OracleFailurePropagates(t *testing.T) {
	oracle, chain, enc := defaultStubs()
	oracle.err = apperror.New(apperror.CodeOracleUnavailable)
	svc := newTestService(t, oracle, chain, enc)

	_, err := svc.PrepareBuy(context.Background(), BuyRequest{TokenSymbol: "EUR", FlowAmount: "1"})
	if apperror.GetCode(err) != apperror.CodeOracleUnavailable {
		t.Errorf("code = %s", apperror.GetCode(err))
	}
	// Fee quoting happens after the fetch; it must not have run.
	if chain.feeCalls != 0 {
		t.Errorf("feeCalls = %d", chain.feeCalls)
	}
}
