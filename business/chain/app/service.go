package app

import (
	"context"
	"math/big"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/basketfx/txprep/business/chain/domain"
	oracledomain "github.com/basketfx/txprep/business/oracle/domain"
	"github.com/basketfx/txprep/internal/apperror"
	"github.com/basketfx/txprep/internal/cache"
	"github.com/basketfx/txprep/internal/logger"
)

const tracerName = "chain"

// ServiceConfig holds the chain service's tunables.
type ServiceConfig struct {
	// FeeMarginPct is the integer safety margin applied to update fees.
	FeeMarginPct int64
	// FeedCacheTTL bounds how long a resolved feed ID may be reused.
	// Fee quotes are never cached; only the name->id mapping is, and
	// only briefly, since feed IDs are deployment configuration.
	FeedCacheTTL time.Duration
}

// Service is the chain context's application service: feed-ID resolution,
// normalized price reads and update-fee estimation.
type Service struct {
	reader ContractReader
	fees   FeeSource
	cfg    ServiceConfig

	feedIDs *cache.Cache[string, oracledomain.FeedID]

	logger logger.LoggerInterface
	tracer trace.Tracer
}

// NewService creates the chain application service.
func NewService(reader ContractReader, fees FeeSource, cfg ServiceConfig, log logger.LoggerInterface) *Service {
	return &Service{
		reader:  reader,
		fees:    fees,
		cfg:     cfg,
		feedIDs: cache.New[string, oracledomain.FeedID](time.Minute),
		logger:  log,
		tracer:  otel.Tracer(tracerName),
	}
}

// ResolveFeedID resolves a contract token name to its feed ID, serving
// from the short-lived cache when possible. The contract is authoritative:
// feed IDs are deployment-specific and must never be hard-coded.
func (s *Service) ResolveFeedID(ctx context.Context, name string) (oracledomain.FeedID, error) {
	ctx, span := s.tracer.Start(ctx, "chain.resolve_feed_id",
		trace.WithAttributes(attribute.String("token", name)),
	)
	defer span.End()

	if id, found := s.feedIDs.Get(ctx, name); found {
		span.AddEvent("cache_hit")
		return id, nil
	}

	id, err := s.reader.NameToID(ctx, name)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolution failed")
		return oracledomain.FeedID{}, err
	}

	if id.IsZero() {
		err := apperror.New(apperror.CodeFeedResolutionFailed,
			apperror.WithContext("contract returned zero feed id for "+name))
		span.RecordError(err)
		span.SetStatus(codes.Error, "zero feed id")
		return oracledomain.FeedID{}, err
	}

	s.feedIDs.Set(ctx, name, id, s.cfg.FeedCacheTTL)
	span.SetStatus(codes.Ok, "resolved")

	return id, nil
}

// referenceCacheKey cannot collide with a token name: contract names are
// printable.
const referenceCacheKey = "\x00reference"

// ReferenceFeedID resolves the contract's fixed native-currency feed,
// cached like any other feed ID.
func (s *Service) ReferenceFeedID(ctx context.Context) (oracledomain.FeedID, error) {
	ctx, span := s.tracer.Start(ctx, "chain.reference_feed_id")
	defer span.End()

	if id, found := s.feedIDs.Get(ctx, referenceCacheKey); found {
		span.AddEvent("cache_hit")
		return id, nil
	}

	id, err := s.reader.ReferenceFeedID(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolution failed")
		return oracledomain.FeedID{}, err
	}

	if id.IsZero() {
		err := apperror.New(apperror.CodeFeedResolutionFailed,
			apperror.WithContext("contract returned zero reference feed id"))
		span.RecordError(err)
		span.SetStatus(codes.Error, "zero feed id")
		return oracledomain.FeedID{}, err
	}

	s.feedIDs.Set(ctx, referenceCacheKey, id, s.cfg.FeedCacheTTL)
	span.SetStatus(codes.Ok, "resolved")

	return id, nil
}

// NormalizedPrice reads the contract's normalized price for a token name.
// A zero price is a data error, not a value.
func (s *Service) NormalizedPrice(ctx context.Context, name string) (*big.Int, error) {
	ctx, span := s.tracer.Start(ctx, "chain.normalized_price",
		trace.WithAttributes(attribute.String("token", name)),
	)
	defer span.End()

	id, err := s.ResolveFeedID(ctx, name)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolution failed")
		return nil, err
	}

	price, err := s.reader.NormalizedPrice(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return nil, err
	}

	if price == nil || price.Sign() <= 0 {
		err := apperror.New(apperror.CodePriceUnavailable,
			apperror.WithContext("no valid price for "+name))
		span.RecordError(err)
		span.SetStatus(codes.Error, "zero price")
		return nil, err
	}

	span.SetAttributes(attribute.String("price", price.String()))
	span.SetStatus(codes.Ok, "read")

	return price, nil
}

// EstimateFee quotes the update fee for the encoded attestations and
// applies the configured margin. Fatal on failure: without a fee quote no
// safe transaction can be built.
func (s *Service) EstimateFee(ctx context.Context, updates [][]byte) (domain.FeeQuote, error) {
	ctx, span := s.tracer.Start(ctx, "chain.estimate_fee",
		trace.WithAttributes(attribute.Int("update_count", len(updates))),
	)
	defer span.End()

	if len(updates) == 0 {
		err := apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext("no update data to quote a fee for"))
		span.SetStatus(codes.Error, err.Error())
		return domain.FeeQuote{}, err
	}

	base, err := s.fees.UpdateFee(ctx, updates)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fee query failed")
		return domain.FeeQuote{}, err
	}

	quote, err := domain.NewFeeQuote(base, s.cfg.FeeMarginPct)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "bad base fee")
		return domain.FeeQuote{}, err
	}

	span.SetAttributes(
		attribute.String("base_fee", quote.Base.String()),
		attribute.String("adjusted_fee", quote.Adjusted.String()),
	)
	span.SetStatus(codes.Ok, "quoted")

	s.logger.Debug(ctx, "fee quoted",
		"base", quote.Base.String(),
		"adjusted", quote.Adjusted.String(),
		"updates", len(updates),
	)

	return quote, nil
}

// Close releases the service's resources.
func (s *Service) Close() {
	s.feedIDs.Close()
}
