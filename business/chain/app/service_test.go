package app

import (
	"context"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	oracledomain "github.com/basketfx/txprep/business/oracle/domain"
	"github.com/basketfx/txprep/internal/apperror"
	"github.com/basketfx/txprep/internal/logger"
)

var (
	testFeedA = oracledomain.MustFeedID("0x" + strings.Repeat("aa", 32))
	testRefID = oracledomain.MustFeedID("0x" + strings.Repeat("ee", 32))
)

type stubReader struct {
	nameToIDCalls int
	refCalls      int
	priceCalls    int

	id    oracledomain.FeedID
	price *big.Int
	err   error
}

func (s *stubReader) NameToID(_ context.Context, _ string) (oracledomain.FeedID, error) {
	s.nameToIDCalls++
	return s.id, s.err
}

func (s *stubReader) ReferenceFeedID(_ context.Context) (oracledomain.FeedID, error) {
	s.refCalls++
	return testRefID, s.err
}

func (s *stubReader) NormalizedPrice(_ context.Context, _ oracledomain.FeedID) (*big.Int, error) {
	s.priceCalls++
	return s.price, s.err
}

func (s *stubReader) PythAddress(_ context.Context) (common.Address, error) {
	return common.Address{}, nil
}

type stubFees struct {
	calls int
	fee   *big.Int
	err   error
}

func (s *stubFees) UpdateFee(_ context.Context, _ [][]byte) (*big.Int, error) {
	s.calls++
	return s.fee, s.err
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func newTestService(t *testing.T, reader *stubReader, fees *stubFees) *Service {
	t.Helper()
	log := logger.New(testWriter{t}, logger.LevelError, "test", nil)
	svc := NewService(reader, fees, ServiceConfig{
		FeeMarginPct: 10,
		FeedCacheTTL: time.Minute,
	}, log)
	t.Cleanup(svc.Close)
	return svc
}

func TestResolveFeedID_CachesResolution(t *testing.T) {
	reader := &stubReader{id: testFeedA}
	svc := newTestService(t, reader, &stubFees{})

	for i := 0; i < 3; i++ {
		id, err := svc.ResolveFeedID(context.Background(), "fEUR")
		if err != nil {
			t.Fatalf("ResolveFeedID failed: %v", err)
		}
		if id != testFeedA {
			t.Errorf("id = %s", id)
		}
	}

	if reader.nameToIDCalls != 1 {
		t.Errorf("nameToIDCalls = %d, want 1 (cached)", reader.nameToIDCalls)
	}
}

func TestResolveFeedID_ZeroIDIsError(t *testing.T) {
	reader := &stubReader{} // zero FeedID
	svc := newTestService(t, reader, &stubFees{})

	_, err := svc.ResolveFeedID(context.Background(), "fXYZ")
	if apperror.GetCode(err) != apperror.CodeFeedResolutionFailed {
		t.Errorf("code = %s", apperror.GetCode(err))
	}

	// A failed resolution must not be cached.
	_, _ = svc.ResolveFeedID(context.Background(), "fXYZ")
	if reader.nameToIDCalls != 2 {
		t.Errorf("nameToIDCalls = %d, want 2", reader.nameToIDCalls)
	}
}

func TestReferenceFeedID_Cached(t *testing.T) {
	reader := &stubReader{id: testFeedA}
	svc := newTestService(t, reader, &stubFees{})

	for i := 0; i < 2; i++ {
		id, err := svc.ReferenceFeedID(context.Background())
		if err != nil {
			t.Fatalf("ReferenceFeedID failed: %v", err)
		}
		if id != testRefID {
			t.Errorf("id = %s", id)
		}
	}

	if reader.refCalls != 1 {
		t.Errorf("refCalls = %d, want 1 (cached)", reader.refCalls)
	}
}

func TestNormalizedPrice(t *testing.T) {
	tests := []struct {
		name     string
		price    *big.Int
		wantErr  bool
		wantCode apperror.Code
	}{
		{name: "positive", price: big.NewInt(1e18)},
		{name: "zero_price", price: big.NewInt(0), wantErr: true, wantCode: apperror.CodePriceUnavailable},
		{name: "nil_price", price: nil, wantErr: true, wantCode: apperror.CodePriceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := &stubReader{id: testFeedA, price: tt.price}
			svc := newTestService(t, reader, &stubFees{})

			got, err := svc.NormalizedPrice(context.Background(), "fEUR")
			if tt.wantErr {
				if apperror.GetCode(err) != tt.wantCode {
					t.Errorf("code = %s, want %s", apperror.GetCode(err), tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Cmp(tt.price) != 0 {
				t.Errorf("price = %s", got)
			}
		})
	}
}

func TestEstimateFee(t *testing.T) {
	fees := &stubFees{fee: big.NewInt(1000)}
	svc := newTestService(t, &stubReader{id: testFeedA}, fees)

	quote, err := svc.EstimateFee(context.Background(), [][]byte{{0x01}})
	if err != nil {
		t.Fatalf("EstimateFee failed: %v", err)
	}
	if quote.Adjusted.String() != "1100" {
		t.Errorf("Adjusted = %s, want 1100", quote.Adjusted)
	}
}

func TestEstimateFee_NeverCached(t *testing.T) {
	fees := &stubFees{fee: big.NewInt(1000)}
	svc := newTestService(t, &stubReader{id: testFeedA}, fees)

	for i := 0; i < 3; i++ {
		if _, err := svc.EstimateFee(context.Background(), [][]byte{{0x01}}); err != nil {
			t.Fatal(err)
		}
	}
	if fees.calls != 3 {
		t.Errorf("calls = %d, want 3 (a fee quote must be fresh)", fees.calls)
	}
}

func TestEstimateFee_EmptyUpdates(t *testing.T) {
	fees := &stubFees{fee: big.NewInt(1000)}
	svc := newTestService(t, &stubReader{id: testFeedA}, fees)

	_, err := svc.EstimateFee(context.Background(), nil)
	if apperror.GetCode(err) != apperror.CodeInvalidInput {
		t.Errorf("code = %s", apperror.GetCode(err))
	}
	if fees.calls != 0 {
		t.Errorf("calls = %d, want 0", fees.calls)
	}
}
