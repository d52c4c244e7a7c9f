package app

import (
	"context"
	"testing"
	"time"

	"github.com/basketfx/txprep/business/oracle/domain"
	"github.com/basketfx/txprep/internal/apperror"
	"github.com/basketfx/txprep/internal/logger"
)

type stubSource struct {
	calls int
	set   *domain.AttestationSet
	err   error
}

func (s *stubSource) Latest(_ context.Context, ids []domain.FeedID) (*domain.AttestationSet, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.set, nil
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func newTestService(t *testing.T, source *stubSource, opts ...ServiceOption) *Service {
	t.Helper()
	log := logger.New(testWriter{t}, logger.LevelError, "test", nil)
	svc, err := NewService(source, DefaultDisplayFeeds(), log, opts...)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc
}

// fullSet returns attestations for every display feed with realistic legs.
func fullSet() *domain.AttestationSet {
	feeds := DefaultDisplayFeeds()
	return &domain.AttestationSet{
		Updates: []domain.UpdateData{[]byte{0x01}},
		Prices: []domain.Attestation{
			{ID: feeds.FlowUSD, Mantissa: 3478, Exponent: -4}, // 0.3478
			{ID: feeds.EURUSD, Mantissa: 11, Exponent: -1},    // 1.1
			{ID: feeds.GBPUSD, Mantissa: 125, Exponent: -2},   // 1.25
			{ID: feeds.USDCUSD, Mantissa: 1, Exponent: 0},     // 1
			{ID: feeds.USDINR, Mantissa: 83, Exponent: 0},     // 83
			{ID: feeds.USDCHF, Mantissa: 9, Exponent: -1},     // 0.9
			{ID: feeds.USDYEN, Mantissa: 150, Exponent: 0},    // 150
		},
		FetchedAt: time.Now(),
	}
}

func TestLatestAttestations(t *testing.T) {
	source := &stubSource{set: fullSet()}
	svc := newTestService(t, source)

	set, err := svc.LatestAttestations(context.Background(), DefaultDisplayFeeds().All())
	if err != nil {
		t.Fatalf("LatestAttestations failed: %v", err)
	}
	if len(set.Updates) == 0 {
		t.Error("no update data returned")
	}
}

func TestLatestAttestations_EmptyIDs(t *testing.T) {
	source := &stubSource{set: fullSet()}
	svc := newTestService(t, source)

	_, err := svc.LatestAttestations(context.Background(), nil)
	if apperror.GetCode(err) != apperror.CodeInvalidInput {
		t.Errorf("code = %s", apperror.GetCode(err))
	}
	if source.calls != 0 {
		t.Errorf("source called %d times for an invalid request", source.calls)
	}
}

func TestLatestAttestations_EmptyPayload(t *testing.T) {
	source := &stubSource{set: &domain.AttestationSet{}}
	svc := newTestService(t, source)

	_, err := svc.LatestAttestations(context.Background(), DefaultDisplayFeeds().All())
	if apperror.GetCode(err) != apperror.CodeOracleBadPayload {
		t.Errorf("code = %s", apperror.GetCode(err))
	}
}

func TestSnapshot_Live(t *testing.T) {
	source := &stubSource{set: fullSet()}
	svc := newTestService(t, source)

	snap := svc.Snapshot(context.Background())

	if snap.Stale {
		t.Fatal("healthy fetch marked stale")
	}
	if snap.FlowUSD.String() != "0.3478" {
		t.Errorf("FlowUSD = %s", snap.FlowUSD)
	}

	// USD-quote legs multiply, USD-base legs divide.
	checks := map[string]string{
		"USD":  "0.3478",
		"INR":  "28.8674",                    // 0.3478 * 83
		"CHF":  "0.31302",                    // 0.3478 * 0.9
		"JPY":  "52.17",                      // 0.3478 * 150
		"USDC": "0.3478",                     // 0.3478 / 1
		"EUR":  "0.316181818181818181818182", // 0.3478 / 1.1
		"GBP":  "0.27824",                    // 0.3478 / 1.25
	}
	for symbol, want := range checks {
		if got := snap.ConversionRates[symbol].String(); got != want {
			t.Errorf("rate[%s] = %s, want %s", symbol, got, want)
		}
	}
}

func TestSnapshot_MissingLegUsesDefault(t *testing.T) {
	feeds := DefaultDisplayFeeds()
	source := &stubSource{set: &domain.AttestationSet{
		Updates: []domain.UpdateData{[]byte{0x01}},
		Prices: []domain.Attestation{
			{ID: feeds.FlowUSD, Mantissa: 3478, Exponent: -4},
			// every other leg missing
		},
	}}
	svc := newTestService(t, source)

	snap := svc.Snapshot(context.Background())

	if snap.Stale {
		t.Fatal("partial fetch marked stale")
	}
	// USD_INR leg default is 83.
	if got := snap.ConversionRates["INR"].String(); got != "28.8674" {
		t.Errorf("rate[INR] = %s, want 28.8674", got)
	}
}

func TestSnapshot_FallbackOnSourceError(t *testing.T) {
	source := &stubSource{err: apperror.New(apperror.CodeOracleUnavailable)}
	svc := newTestService(t, source)

	snap := svc.Snapshot(context.Background())

	if !snap.Stale {
		t.Fatal("fallback snapshot not marked stale")
	}
	if snap.FlowUSD.String() != "0.3478" {
		t.Errorf("FlowUSD = %s", snap.FlowUSD)
	}
	if got := snap.ConversionRates["JPY"].String(); got != "52" {
		t.Errorf("rate[JPY] = %s, want 52", got)
	}
	if len(snap.RawPrices) != 0 {
		t.Errorf("fallback carries raw prices: %v", snap.RawPrices)
	}
}

func TestSnapshot_FallbackOnMissingFlowPrice(t *testing.T) {
	feeds := DefaultDisplayFeeds()
	source := &stubSource{set: &domain.AttestationSet{
		Updates: []domain.UpdateData{[]byte{0x01}},
		Prices: []domain.Attestation{
			// Leg prices without the FLOW/USD anchor.
			{ID: feeds.EURUSD, Mantissa: 11, Exponent: -1},
		},
	}}
	svc := newTestService(t, source)

	snap := svc.Snapshot(context.Background())
	if !snap.Stale {
		t.Error("snapshot without FLOW/USD must degrade to fallback")
	}
}
