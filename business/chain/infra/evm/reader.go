package evm

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/basketfx/txprep/business/chain/app"
	oracledomain "github.com/basketfx/txprep/business/oracle/domain"
	"github.com/basketfx/txprep/internal/apperror"
	"github.com/basketfx/txprep/internal/circuitbreaker"
	"github.com/basketfx/txprep/internal/logger"
)

const (
	tracerName = "evm"
	meterName  = "evm"
)

// Ensure Reader implements both chain ports.
var (
	_ app.ContractReader = (*Reader)(nil)
	_ app.FeeSource      = (*Reader)(nil)
)

// ReaderConfig holds contract addresses for the read side.
type ReaderConfig struct {
	// AppContract is the basket contract address.
	AppContract common.Address
	// PythContract overrides the verifier address. When zero, the
	// address is resolved through the basket contract's pyth() view on
	// first use.
	PythContract common.Address
}

type readerMetrics struct {
	callsTotal  metric.Int64Counter
	callLatency metric.Float64Histogram
	callErrors  metric.Int64Counter
}

// Reader performs the view calls the pipeline needs: feed-ID resolution,
// normalized prices and update fees.
type Reader struct {
	client *ethclient.Client
	cfg    ReaderConfig

	appABI  abi.ABI
	pythABI abi.ABI

	pythMu   sync.Mutex
	pythAddr common.Address

	logger logger.LoggerInterface
	cb     *circuitbreaker.CircuitBreaker[[]byte]

	tracer  trace.Tracer
	metrics *readerMetrics
}

// NewReader creates a new Flow EVM reader.
func NewReader(client *ethclient.Client, cfg ReaderConfig, log logger.LoggerInterface) (*Reader, error) {
	parsedApp, err := abi.JSON(strings.NewReader(appViewABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse app ABI: %w", err)
	}

	parsedPyth, err := abi.JSON(strings.NewReader(pythABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse pyth ABI: %w", err)
	}

	r := &Reader{
		client:  client,
		cfg:     cfg,
		appABI:  parsedApp,
		pythABI: parsedPyth,
		logger:  log,
		tracer:  otel.Tracer(tracerName),
	}

	cbCfg := circuitbreaker.DefaultConfig("flow-evm")
	r.cb = circuitbreaker.New[[]byte](cbCfg)

	if err := r.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	return r, nil
}

func (r *Reader) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	r.metrics = &readerMetrics{}

	r.metrics.callsTotal, err = meter.Int64Counter(
		"evm_view_calls_total",
		metric.WithDescription("Total contract view calls"),
	)
	if err != nil {
		return err
	}

	r.metrics.callLatency, err = meter.Float64Histogram(
		"evm_view_call_latency_ms",
		metric.WithDescription("View call latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	r.metrics.callErrors, err = meter.Int64Counter(
		"evm_view_call_errors_total",
		metric.WithDescription("Total view call errors"),
	)
	if err != nil {
		return err
	}

	return nil
}

// NameToID calls nameToId on the basket contract.
func (r *Reader) NameToID(ctx context.Context, name string) (oracledomain.FeedID, error) {
	outputs, err := r.call(ctx, r.appABI, r.cfg.AppContract, "nameToId", name)
	if err != nil {
		return oracledomain.FeedID{}, apperror.New(apperror.CodeFeedResolutionFailed,
			apperror.WithCause(err),
			apperror.WithContext("nameToId call failed for "+name))
	}

	raw, ok := outputs[0].([32]byte)
	if !ok {
		return oracledomain.FeedID{}, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithContext("nameToId returned unexpected type"))
	}

	return oracledomain.FeedIDFromHash(common.Hash(raw)), nil
}

// ReferenceFeedID calls flowPriceId on the basket contract.
func (r *Reader) ReferenceFeedID(ctx context.Context) (oracledomain.FeedID, error) {
	outputs, err := r.call(ctx, r.appABI, r.cfg.AppContract, "flowPriceId")
	if err != nil {
		return oracledomain.FeedID{}, apperror.New(apperror.CodeFeedResolutionFailed,
			apperror.WithCause(err),
			apperror.WithContext("flowPriceId call failed"))
	}

	raw, ok := outputs[0].([32]byte)
	if !ok {
		return oracledomain.FeedID{}, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithContext("flowPriceId returned unexpected type"))
	}

	return oracledomain.FeedIDFromHash(common.Hash(raw)), nil
}

// NormalizedPrice calls getNormalizedPrice on the basket contract.
func (r *Reader) NormalizedPrice(ctx context.Context, id oracledomain.FeedID) (*big.Int, error) {
	outputs, err := r.call(ctx, r.appABI, r.cfg.AppContract, "getNormalizedPrice", id.Bytes32())
	if err != nil {
		return nil, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithCause(err),
			apperror.WithContext("getNormalizedPrice call failed"))
	}

	price, ok := outputs[0].(*big.Int)
	if !ok {
		return nil, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithContext("getNormalizedPrice returned unexpected type"))
	}

	return price, nil
}

// PythAddress returns the verifier address, preferring the configured
// override and otherwise resolving it via the contract. Successful
// resolutions are memoized; failures are retried on the next call.
func (r *Reader) PythAddress(ctx context.Context) (common.Address, error) {
	if r.cfg.PythContract != (common.Address{}) {
		return r.cfg.PythContract, nil
	}

	r.pythMu.Lock()
	defer r.pythMu.Unlock()

	if r.pythAddr != (common.Address{}) {
		return r.pythAddr, nil
	}

	outputs, err := r.call(ctx, r.appABI, r.cfg.AppContract, "pyth")
	if err != nil {
		return common.Address{}, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithCause(err),
			apperror.WithContext("pyth() call failed"))
	}

	addr, ok := outputs[0].(common.Address)
	if !ok {
		return common.Address{}, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithContext("pyth() returned unexpected type"))
	}

	r.pythAddr = addr
	return addr, nil
}

// UpdateFee calls getUpdateFee on the verifier with the encoded updates.
func (r *Reader) UpdateFee(ctx context.Context, updates [][]byte) (*big.Int, error) {
	verifier, err := r.PythAddress(ctx)
	if err != nil {
		return nil, apperror.New(apperror.CodeFeeQueryFailed,
			apperror.WithCause(err),
			apperror.WithContext("verifier address unavailable"))
	}

	outputs, err := r.call(ctx, r.pythABI, verifier, "getUpdateFee", updates)
	if err != nil {
		return nil, apperror.New(apperror.CodeFeeQueryFailed,
			apperror.WithCause(err),
			apperror.WithContext("getUpdateFee call failed"))
	}

	fee, ok := outputs[0].(*big.Int)
	if !ok {
		return nil, apperror.New(apperror.CodeFeeQueryFailed,
			apperror.WithContext("getUpdateFee returned unexpected type"))
	}

	return fee, nil
}

// call packs, executes and unpacks a single view call through the
// circuit breaker.
func (r *Reader) call(ctx context.Context, contractABI abi.ABI, to common.Address, method string, args ...interface{}) ([]interface{}, error) {
	ctx, span := r.tracer.Start(ctx, "evm.call",
		trace.WithAttributes(
			attribute.String("contract", to.Hex()),
			attribute.String("method", method),
		),
	)
	defer span.End()

	start := time.Now()
	r.metrics.callsTotal.Add(ctx, 1)

	callData, err := contractABI.Pack(method, args...)
	if err != nil {
		r.metrics.callErrors.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "pack failed")
		return nil, fmt.Errorf("failed to encode %s call: %w", method, err)
	}

	result, err := r.cb.Execute(func() ([]byte, error) {
		return r.client.CallContract(ctx, ethereum.CallMsg{
			To:   &to,
			Data: callData,
		}, nil)
	})

	r.metrics.callLatency.Record(ctx, float64(time.Since(start).Milliseconds()))

	if err != nil {
		r.metrics.callErrors.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "call failed")
		return nil, err
	}

	outputs, err := contractABI.Unpack(method, result)
	if err != nil {
		r.metrics.callErrors.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "unpack failed")
		return nil, fmt.Errorf("failed to decode %s result: %w", method, err)
	}

	if len(outputs) == 0 {
		r.metrics.callErrors.Add(ctx, 1)
		span.SetStatus(codes.Error, "empty result")
		return nil, fmt.Errorf("%s returned no outputs", method)
	}

	span.SetStatus(codes.Ok, "called")
	return outputs, nil
}
