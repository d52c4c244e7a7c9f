package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/basketfx/txprep/business/oracle/domain"
	"github.com/basketfx/txprep/internal/apperror"
	"github.com/basketfx/txprep/internal/logger"
)

const (
	tracerName = "oracle"
	meterName  = "oracle"
)

// DisplayFeeds holds the well-known Hermes feed IDs used by the read-only
// price view. Transaction paths never use these: they resolve feed IDs
// from the contract at request time.
type DisplayFeeds struct {
	FlowUSD domain.FeedID
	USDCHF  domain.FeedID
	USDINR  domain.FeedID
	USDYEN  domain.FeedID
	GBPUSD  domain.FeedID
	EURUSD  domain.FeedID
	USDCUSD domain.FeedID
}

// DefaultDisplayFeeds returns the Pyth feed IDs for the basket's pairs.
func DefaultDisplayFeeds() DisplayFeeds {
	return DisplayFeeds{
		FlowUSD: domain.MustFeedID("0x2fb245b9a84554a0f15aa123cbb5f64cd263b59e9a87d80148cbffab50c69f30"),
		USDCHF:  domain.MustFeedID("0x0b1e3297e69f162877b577b0d6a47a0d63b2392bc8499e6540da4187a63e28f8"),
		USDINR:  domain.MustFeedID("0x0ac0f9a2886fc2dd708bc66cc2cea359052ce89d324f45d95fadbc6c4fcf1809"),
		USDYEN:  domain.MustFeedID("0xef2c98c804ba503c6a707e38be4dfbb16683775f195b091252bf24693042fd52"),
		GBPUSD:  domain.MustFeedID("0x84c2dde9633d93d1bcad84e7dc41c9d56578b7ec52fabedc1f335d673df0a7c1"),
		EURUSD:  domain.MustFeedID("0xa995d00bb36a63cef7fd2c287dc105fc8f3d93779f062f09551b0af3e81ec30b"),
		USDCUSD: domain.MustFeedID("0xeaa020c61cc479712813461ce153894a96a6c00b21ed0cfc2798d1f9a9e9c94a"),
	}
}

// All returns every display feed ID, FLOW/USD first.
func (f DisplayFeeds) All() []domain.FeedID {
	return []domain.FeedID{f.FlowUSD, f.USDCHF, f.USDINR, f.USDYEN, f.GBPUSD, f.EURUSD, f.USDCUSD}
}

// Static rates served when the oracle network is unreachable. Snapshot
// values; the Stale flag and timestamp tell callers what they got.
var fallbackFlowUSD = decimal.NewFromFloat(0.3478)

var fallbackRates = map[string]decimal.Decimal{
	"USDC": decimal.NewFromFloat(0.3478),
	"USD":  decimal.NewFromFloat(0.3478),
	"INR":  decimal.NewFromFloat(29.0),
	"CHF":  decimal.NewFromFloat(0.31),
	"JPY":  decimal.NewFromFloat(52.0),
	"EUR":  decimal.NewFromFloat(0.32),
	"GBP":  decimal.NewFromFloat(0.27),
}

// Per-leg defaults used when a single pair is missing from an otherwise
// healthy fetch.
var legDefaults = map[string]decimal.Decimal{
	"USDC_USD": decimal.NewFromInt(1),
	"EUR_USD":  decimal.NewFromFloat(1.1),
	"GBP_USD":  decimal.NewFromFloat(1.25),
	"USD_INR":  decimal.NewFromInt(83),
	"USD_CHF":  decimal.NewFromFloat(0.9),
	"USD_YEN":  decimal.NewFromInt(150),
}

type serviceMetrics struct {
	snapshotsTotal metric.Int64Counter
	fallbacksTotal metric.Int64Counter
}

// Service is the oracle context's application service: attestation
// fetching for transaction paths and the degradable price snapshot for
// the display path.
type Service struct {
	source AttestationSource
	cache  PriceCache
	maxAge time.Duration
	feeds  DisplayFeeds

	logger  logger.LoggerInterface
	tracer  trace.Tracer
	metrics *serviceMetrics
}

// ServiceOption configures optional service collaborators.
type ServiceOption func(*Service)

// WithPriceCache attaches a streamed-price cache for the display path.
// Snapshots older than maxAge are ignored.
func WithPriceCache(cache PriceCache, maxAge time.Duration) ServiceOption {
	return func(s *Service) {
		s.cache = cache
		s.maxAge = maxAge
	}
}

// NewService creates the oracle application service.
func NewService(source AttestationSource, feeds DisplayFeeds, log logger.LoggerInterface, opts ...ServiceOption) (*Service, error) {
	s := &Service{
		source: source,
		feeds:  feeds,
		logger: log,
		tracer: otel.Tracer(tracerName),
	}

	for _, opt := range opts {
		opt(s)
	}

	meter := otel.Meter(meterName)
	s.metrics = &serviceMetrics{}

	var err error
	s.metrics.snapshotsTotal, err = meter.Int64Counter(
		"oracle_snapshots_total",
		metric.WithDescription("Total price snapshot requests"),
	)
	if err != nil {
		return nil, err
	}

	s.metrics.fallbacksTotal, err = meter.Int64Counter(
		"oracle_snapshot_fallbacks_total",
		metric.WithDescription("Snapshots served from static fallback rates"),
	)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// LatestAttestations fetches fresh attestations for the given feeds.
// Used by the transaction paths; never served from the stream cache.
func (s *Service) LatestAttestations(ctx context.Context, ids []domain.FeedID) (*domain.AttestationSet, error) {
	ctx, span := s.tracer.Start(ctx, "oracle.latest_attestations",
		trace.WithAttributes(attribute.Int("feed_count", len(ids))),
	)
	defer span.End()

	if len(ids) == 0 {
		err := apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext("no feed ids requested"))
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	set, err := s.source.Latest(ctx, ids)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, err
	}

	if len(set.Updates) == 0 {
		err := apperror.New(apperror.CodeOracleBadPayload,
			apperror.WithContext("oracle returned no update data"))
		span.RecordError(err)
		span.SetStatus(codes.Error, "empty payload")
		return nil, err
	}

	span.SetAttributes(attribute.Int("update_count", len(set.Updates)))
	span.SetStatus(codes.Ok, "fetched")

	return set, nil
}

// Snapshot builds the display-path price view. It never fails: on any
// oracle problem it degrades to the static fallback table, marked Stale.
func (s *Service) Snapshot(ctx context.Context) *domain.Snapshot {
	ctx, span := s.tracer.Start(ctx, "oracle.snapshot")
	defer span.End()

	s.metrics.snapshotsTotal.Add(ctx, 1)

	prices, ok := s.livePrices()
	if !ok {
		set, err := s.source.Latest(ctx, s.feeds.All())
		if err != nil {
			s.logger.Warn(ctx, "oracle fetch failed, serving fallback rates", "error", err)
			span.AddEvent("fallback", trace.WithAttributes(attribute.String("reason", err.Error())))
			s.metrics.fallbacksTotal.Add(ctx, 1)
			return s.fallbackSnapshot()
		}
		prices = make(map[domain.FeedID]domain.Attestation, len(set.Prices))
		for _, p := range set.Prices {
			prices[p.ID] = p
		}
	}

	snap, err := s.compose(prices)
	if err != nil {
		s.logger.Warn(ctx, "price composition failed, serving fallback rates", "error", err)
		span.AddEvent("fallback", trace.WithAttributes(attribute.String("reason", err.Error())))
		s.metrics.fallbacksTotal.Add(ctx, 1)
		return s.fallbackSnapshot()
	}

	span.SetStatus(codes.Ok, "composed")
	return snap
}

// livePrices returns streamed prices when a cache is attached and fresh.
func (s *Service) livePrices() (map[domain.FeedID]domain.Attestation, bool) {
	if s.cache == nil {
		return nil, false
	}
	prices, at, ok := s.cache.Latest()
	if !ok || len(prices) == 0 {
		return nil, false
	}
	if s.maxAge > 0 && time.Since(at) > s.maxAge {
		return nil, false
	}
	return prices, true
}

// compose derives FLOW->currency rates from the per-pair prices.
// USD-base pairs (EUR/USD, GBP/USD, USDC/USD) divide; USD-quote pairs
// (USD/INR, USD/CHF, USD/YEN) multiply.
func (s *Service) compose(prices map[domain.FeedID]domain.Attestation) (*domain.Snapshot, error) {
	raw := make(map[string]decimal.Decimal)
	record := func(name string, id domain.FeedID) {
		if att, ok := prices[id]; ok {
			raw[name] = att.Normalize()
		}
	}
	record("FLOW_USD", s.feeds.FlowUSD)
	record("USD_CHF", s.feeds.USDCHF)
	record("USD_INR", s.feeds.USDINR)
	record("USD_YEN", s.feeds.USDYEN)
	record("GBP_USD", s.feeds.GBPUSD)
	record("EUR_USD", s.feeds.EURUSD)
	record("USDC_USD", s.feeds.USDCUSD)

	flowUSD, ok := raw["FLOW_USD"]
	if !ok || flowUSD.Sign() <= 0 {
		return nil, apperror.New(apperror.CodePriceUnavailable,
			apperror.WithContext("FLOW/USD price not available or invalid"))
	}

	leg := func(name string) decimal.Decimal {
		if v, ok := raw[name]; ok && v.Sign() > 0 {
			return v
		}
		return legDefaults[name]
	}

	usdc, err := domain.CrossRate(flowUSD, leg("USDC_USD"))
	if err != nil {
		return nil, err
	}
	eur, err := domain.CrossRate(flowUSD, leg("EUR_USD"))
	if err != nil {
		return nil, err
	}
	gbp, err := domain.CrossRate(flowUSD, leg("GBP_USD"))
	if err != nil {
		return nil, err
	}

	return &domain.Snapshot{
		FlowUSD: flowUSD,
		ConversionRates: map[string]decimal.Decimal{
			"USDC": usdc,
			"USD":  flowUSD,
			"INR":  flowUSD.Mul(leg("USD_INR")),
			"CHF":  flowUSD.Mul(leg("USD_CHF")),
			"JPY":  flowUSD.Mul(leg("USD_YEN")),
			"EUR":  eur,
			"GBP":  gbp,
		},
		RawPrices: raw,
		Timestamp: time.Now().UTC(),
	}, nil
}

func (s *Service) fallbackSnapshot() *domain.Snapshot {
	rates := make(map[string]decimal.Decimal, len(fallbackRates))
	for k, v := range fallbackRates {
		rates[k] = v
	}

	return &domain.Snapshot{
		FlowUSD:         fallbackFlowUSD,
		ConversionRates: rates,
		RawPrices:       map[string]decimal.Decimal{},
		Timestamp:       time.Now().UTC(),
		Stale:           true,
	}
}
