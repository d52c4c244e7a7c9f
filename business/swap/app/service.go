package app

import (
	"context"
	"math/big"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	oracledomain "github.com/basketfx/txprep/business/oracle/domain"
	"github.com/basketfx/txprep/business/swap/domain"
	"github.com/basketfx/txprep/internal/apperror"
	"github.com/basketfx/txprep/internal/asset"
	"github.com/basketfx/txprep/internal/logger"
)

const (
	tracerName = "swap"
	meterName  = "swap"
)

// BuyRequest asks for an unsigned purchase of a basket token with the
// native coin. TokenSymbol is the UI symbol ("EUR", "USDC", ...);
// FlowAmount is a decimal string in whole native units.
type BuyRequest struct {
	TokenSymbol string
	FlowAmount  string
}

// LiquidityRequest asks for an unsigned add-liquidity transaction or a
// counter-amount quote. Token names are contract names ("fEUR", ...);
// AmountA is a decimal string in whole token units.
type LiquidityRequest struct {
	TokenNameA string
	TokenNameB string
	AmountA    string
}

// RemoveLiquidityRequest asks for an unsigned liquidity withdrawal.
// LPTokenAmount is a decimal string in whole LP-token units.
type RemoveLiquidityRequest struct {
	TokenNameA    string
	TokenNameB    string
	LPTokenAmount string
}

// Quote is the result of a counter-amount calculation.
type Quote struct {
	AmountA asset.Amount
	AmountB asset.Amount
}

// ServiceConfig holds the swap service's tunables.
type ServiceConfig struct {
	// ChainID selects the native coin in the asset registry.
	ChainID uint64
	// SlippagePct is the integer tolerance applied to deposit amounts.
	SlippagePct int64
	// BuyWeiBuffer is the flat smallest-unit buffer added to buy values
	// to absorb fee drift between preparation and submission.
	BuyWeiBuffer int64
}

type serviceMetrics struct {
	preparationsTotal metric.Int64Counter
	errorsTotal       metric.Int64Counter
}

// Service prepares unsigned transactions. It validates before touching
// the network, orchestrates the oracle and chain reads each flow needs
// and hands the validated parameters to the encoder.
type Service struct {
	oracle   AttestationProvider
	chain    ChainGateway
	encoder  TxEncoder
	registry *asset.Registry
	cfg      ServiceConfig

	logger  logger.LoggerInterface
	tracer  trace.Tracer
	metrics *serviceMetrics
}

// NewService creates the swap application service.
func NewService(
	oracle AttestationProvider,
	chain ChainGateway,
	encoder TxEncoder,
	registry *asset.Registry,
	cfg ServiceConfig,
	log logger.LoggerInterface,
) (*Service, error) {
	s := &Service{
		oracle:   oracle,
		chain:    chain,
		encoder:  encoder,
		registry: registry,
		cfg:      cfg,
		logger:   log,
		tracer:   otel.Tracer(tracerName),
	}

	meter := otel.Meter(meterName)
	s.metrics = &serviceMetrics{}

	var err error
	s.metrics.preparationsTotal, err = meter.Int64Counter(
		"swap_preparations_total",
		metric.WithDescription("Total transaction preparation requests"),
	)
	if err != nil {
		return nil, err
	}

	s.metrics.errorsTotal, err = meter.Int64Counter(
		"swap_preparation_errors_total",
		metric.WithDescription("Total failed transaction preparations"),
	)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// PrepareBuy builds an unsigned buyTokensFromFlow transaction. The value
// covers the purchase amount, the margin-adjusted oracle fee and a flat
// buffer, so the wallet never underfunds the call.
func (s *Service) PrepareBuy(ctx context.Context, req BuyRequest) (domain.TransactionDescriptor, error) {
	ctx, span := s.tracer.Start(ctx, "swap.prepare_buy",
		trace.WithAttributes(attribute.String("token", req.TokenSymbol)),
	)
	defer span.End()

	s.metrics.preparationsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("flow", "buy")))

	token, err := s.resolveSymbol(req.TokenSymbol)
	if err != nil {
		return s.fail(ctx, span, "buy", err)
	}

	amount, err := s.parsePositive(s.nativeAsset(), req.FlowAmount)
	if err != nil {
		return s.fail(ctx, span, "buy", err)
	}

	// The token feed and the native reference feed resolve independently.
	var targetID, referenceID oracledomain.FeedID
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		targetID, err = s.chain.ResolveFeedID(gctx, token.ContractName())
		return err
	})
	g.Go(func() error {
		var err error
		referenceID, err = s.chain.ReferenceFeedID(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return s.fail(ctx, span, "buy", err)
	}

	set, err := s.oracle.LatestAttestations(ctx, []oracledomain.FeedID{targetID, referenceID})
	if err != nil {
		return s.fail(ctx, span, "buy", err)
	}

	quote, err := s.chain.EstimateFee(ctx, set.UpdateBytes())
	if err != nil {
		return s.fail(ctx, span, "buy", err)
	}

	value := new(big.Int).Add(amount.Raw(), quote.Adjusted)
	value.Add(value, big.NewInt(s.cfg.BuyWeiBuffer))

	data, err := s.encoder.EncodeBuy(token.ContractName(), set.UpdateBytes())
	if err != nil {
		return s.fail(ctx, span, "buy", err)
	}

	span.SetAttributes(
		attribute.String("value", value.String()),
		attribute.Int("update_count", len(set.Updates)),
	)
	span.SetStatus(codes.Ok, "prepared")

	s.logger.Info(ctx, "buy transaction prepared",
		"token", token.ContractName(),
		"amount", amount.String(),
		"fee", quote.Adjusted.String(),
		"value", value.String(),
	)

	return domain.NewTransactionDescriptor(s.encoder.Target(), value, data), nil
}

// PrepareAddLiquidity builds an unsigned addLiquidity transaction. The
// deposited amount carries the slippage tolerance; the value covers only
// the margin-adjusted oracle fee.
func (s *Service) PrepareAddLiquidity(ctx context.Context, req LiquidityRequest) (domain.TransactionDescriptor, error) {
	ctx, span := s.tracer.Start(ctx, "swap.prepare_add_liquidity",
		trace.WithAttributes(
			attribute.String("token_a", req.TokenNameA),
			attribute.String("token_b", req.TokenNameB),
		),
	)
	defer span.End()

	s.metrics.preparationsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("flow", "add_liquidity")))

	tokenA, tokenB, err := s.resolvePair(req.TokenNameA, req.TokenNameB)
	if err != nil {
		return s.fail(ctx, span, "add_liquidity", err)
	}

	amountA, err := s.parsePositive(tokenA, req.AmountA)
	if err != nil {
		return s.fail(ctx, span, "add_liquidity", err)
	}

	// The contract prices both legs in the native coin, so the update
	// batch must refresh the native reference feed as well.
	var idA, idB, referenceID oracledomain.FeedID
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		idA, err = s.chain.ResolveFeedID(gctx, tokenA.ContractName())
		return err
	})
	g.Go(func() error {
		var err error
		idB, err = s.chain.ResolveFeedID(gctx, tokenB.ContractName())
		return err
	})
	g.Go(func() error {
		var err error
		referenceID, err = s.chain.ReferenceFeedID(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return s.fail(ctx, span, "add_liquidity", err)
	}

	set, err := s.oracle.LatestAttestations(ctx, []oracledomain.FeedID{idA, idB, referenceID})
	if err != nil {
		return s.fail(ctx, span, "add_liquidity", err)
	}

	quote, err := s.chain.EstimateFee(ctx, set.UpdateBytes())
	if err != nil {
		return s.fail(ctx, span, "add_liquidity", err)
	}

	deposit, err := domain.ApplySlippage(amountA.Raw(), s.cfg.SlippagePct)
	if err != nil {
		return s.fail(ctx, span, "add_liquidity", err)
	}

	data, err := s.encoder.EncodeAddLiquidity(tokenA.ContractName(), tokenB.ContractName(), deposit, set.UpdateBytes())
	if err != nil {
		return s.fail(ctx, span, "add_liquidity", err)
	}

	span.SetAttributes(
		attribute.String("deposit", deposit.String()),
		attribute.String("value", quote.Adjusted.String()),
	)
	span.SetStatus(codes.Ok, "prepared")

	s.logger.Info(ctx, "add-liquidity transaction prepared",
		"token_a", tokenA.ContractName(),
		"token_b", tokenB.ContractName(),
		"deposit", deposit.String(),
		"fee", quote.Adjusted.String(),
	)

	return domain.NewTransactionDescriptor(s.encoder.Target(), quote.Adjusted, data), nil
}

// PrepareRemoveLiquidity builds an unsigned removeLiquidity transaction.
// Withdrawal needs no price updates, so the flow is purely local: no
// oracle fetch, no chain read, zero value.
func (s *Service) PrepareRemoveLiquidity(ctx context.Context, req RemoveLiquidityRequest) (domain.TransactionDescriptor, error) {
	ctx, span := s.tracer.Start(ctx, "swap.prepare_remove_liquidity",
		trace.WithAttributes(
			attribute.String("token_a", req.TokenNameA),
			attribute.String("token_b", req.TokenNameB),
		),
	)
	defer span.End()

	s.metrics.preparationsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("flow", "remove_liquidity")))

	tokenA, tokenB, err := s.resolvePair(req.TokenNameA, req.TokenNameB)
	if err != nil {
		return s.fail(ctx, span, "remove_liquidity", err)
	}

	lpAmount, err := s.parsePositive(tokenA, req.LPTokenAmount)
	if err != nil {
		return s.fail(ctx, span, "remove_liquidity", err)
	}

	data, err := s.encoder.EncodeRemoveLiquidity(tokenA.ContractName(), tokenB.ContractName(), lpAmount.Raw())
	if err != nil {
		return s.fail(ctx, span, "remove_liquidity", err)
	}

	span.SetStatus(codes.Ok, "prepared")

	s.logger.Info(ctx, "remove-liquidity transaction prepared",
		"token_a", tokenA.ContractName(),
		"token_b", tokenB.ContractName(),
		"lp_amount", lpAmount.String(),
	)

	return domain.NewTransactionDescriptor(s.encoder.Target(), nil, data), nil
}

// CalculateLiquidity quotes the token-B amount matching a token-A
// deposit at current on-chain prices. Read-only; nothing is encoded.
func (s *Service) CalculateLiquidity(ctx context.Context, req LiquidityRequest) (Quote, error) {
	ctx, span := s.tracer.Start(ctx, "swap.calculate_liquidity",
		trace.WithAttributes(
			attribute.String("token_a", req.TokenNameA),
			attribute.String("token_b", req.TokenNameB),
		),
	)
	defer span.End()

	s.metrics.preparationsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("flow", "calculate_liquidity")))

	tokenA, tokenB, err := s.resolvePair(req.TokenNameA, req.TokenNameB)
	if err != nil {
		return Quote{}, s.failQuote(ctx, span, err)
	}

	amountA, err := s.parsePositive(tokenA, req.AmountA)
	if err != nil {
		return Quote{}, s.failQuote(ctx, span, err)
	}

	var priceA, priceB *big.Int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		priceA, err = s.chain.NormalizedPrice(gctx, tokenA.ContractName())
		return err
	})
	g.Go(func() error {
		var err error
		priceB, err = s.chain.NormalizedPrice(gctx, tokenB.ContractName())
		return err
	})
	if err := g.Wait(); err != nil {
		return Quote{}, s.failQuote(ctx, span, err)
	}

	rate, err := domain.CrossRate(priceA, priceB)
	if err != nil {
		return Quote{}, s.failQuote(ctx, span, err)
	}

	price, err := asset.NewPrice(tokenA, tokenB, rate)
	if err != nil {
		return Quote{}, s.failQuote(ctx, span, apperror.New(apperror.CodePriceUnavailable,
			apperror.WithCause(err),
			apperror.WithContext("invalid cross rate")))
	}

	amountB, err := price.Convert(amountA)
	if err != nil {
		return Quote{}, s.failQuote(ctx, span, apperror.New(apperror.CodeInternalError,
			apperror.WithCause(err),
			apperror.WithContext("conversion failed")))
	}

	span.SetAttributes(attribute.String("amount_b", amountB.String()))
	span.SetStatus(codes.Ok, "quoted")

	return Quote{AmountA: amountA, AmountB: amountB}, nil
}

// resolveSymbol maps a UI symbol to a purchasable basket token.
func (s *Service) resolveSymbol(symbol string) (*asset.Asset, error) {
	if symbol == "" {
		return nil, apperror.Validation(apperror.CodeInvalidInput, "token symbol is required")
	}
	token, ok := s.registry.GetBySymbol(symbol)
	if !ok || token.IsNative() {
		return nil, apperror.New(apperror.CodeUnsupportedToken,
			apperror.WithContext("unknown token symbol: "+symbol))
	}
	return token, nil
}

// resolvePair maps two contract token names to distinct basket tokens.
func (s *Service) resolvePair(nameA, nameB string) (*asset.Asset, *asset.Asset, error) {
	if nameA == "" || nameB == "" {
		return nil, nil, apperror.Validation(apperror.CodeInvalidInput, "both token names are required")
	}

	tokenA, ok := s.registry.GetByContractName(nameA)
	if !ok {
		return nil, nil, apperror.New(apperror.CodeUnsupportedToken,
			apperror.WithContext("unknown token: "+nameA))
	}
	tokenB, ok := s.registry.GetByContractName(nameB)
	if !ok {
		return nil, nil, apperror.New(apperror.CodeUnsupportedToken,
			apperror.WithContext("unknown token: "+nameB))
	}

	if tokenA.Equals(tokenB) {
		return nil, nil, apperror.New(apperror.CodeIdenticalTokenPair,
			apperror.WithContext("token pair must differ: "+nameA))
	}

	return tokenA, tokenB, nil
}

// parsePositive parses a whole-unit decimal string into a strictly
// positive Amount of the given asset.
func (s *Service) parsePositive(a *asset.Asset, value string) (asset.Amount, error) {
	if value == "" {
		return asset.Amount{}, apperror.Validation(apperror.CodeInvalidInput, "amount is required")
	}

	amount, err := asset.ParseString(a, value)
	if err != nil {
		return asset.Amount{}, apperror.New(apperror.CodeInvalidInput,
			apperror.WithCause(err),
			apperror.WithContext("invalid amount: "+value))
	}
	if !amount.IsPositive() {
		return asset.Amount{}, apperror.New(apperror.CodeAmountOutOfRange,
			apperror.WithContext("amount must be positive"))
	}
	return amount, nil
}

func (s *Service) nativeAsset() *asset.Asset {
	native, ok := s.registry.GetNative(s.cfg.ChainID)
	if !ok {
		panic("swap: no native asset registered for configured chain")
	}
	return native
}

func (s *Service) fail(ctx context.Context, span trace.Span, flow string, err error) (domain.TransactionDescriptor, error) {
	s.metrics.errorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("flow", flow)))
	span.RecordError(err)
	span.SetStatus(codes.Error, "preparation failed")
	return domain.TransactionDescriptor{}, err
}

func (s *Service) failQuote(ctx context.Context, span trace.Span, err error) error {
	s.metrics.errorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("flow", "calculate_liquidity")))
	span.RecordError(err)
	span.SetStatus(codes.Error, "quote failed")
	return err
}
