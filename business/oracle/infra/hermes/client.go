package hermes

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/basketfx/txprep/business/oracle/app"
	"github.com/basketfx/txprep/business/oracle/domain"
	"github.com/basketfx/txprep/internal/apperror"
	"github.com/basketfx/txprep/internal/circuitbreaker"
	"github.com/basketfx/txprep/internal/httpclient"
	"github.com/basketfx/txprep/internal/logger"
)

const (
	tracerName = "hermes"
	meterName  = "hermes"

	latestUpdatesPath = "/v2/updates/price/latest"
)

// Ensure Client implements AttestationSource.
var _ app.AttestationSource = (*Client)(nil)

// ClientConfig holds Hermes endpoint configuration.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

type clientMetrics struct {
	fetchesTotal metric.Int64Counter
	fetchLatency metric.Float64Histogram
	fetchErrors  metric.Int64Counter
}

// Client fetches the latest signed price updates over Hermes REST.
type Client struct {
	http   httpclient.Client
	logger logger.LoggerInterface
	cb     *circuitbreaker.CircuitBreaker[*LatestUpdatesResponse]

	tracer  trace.Tracer
	metrics *clientMetrics
}

// NewClient creates a new Hermes REST client.
func NewClient(cfg ClientConfig, log logger.LoggerInterface) (*Client, error) {
	httpc, err := httpclient.NewInstrumentedClient(
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithProviderName("hermes"),
		httpclient.WithRequestTimeout(cfg.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create hermes http client: %w", err)
	}

	c := &Client{
		http:   httpc,
		logger: log,
		tracer: otel.Tracer(tracerName),
	}

	cbCfg := circuitbreaker.DefaultConfig("hermes")
	c.cb = circuitbreaker.New[*LatestUpdatesResponse](cbCfg)

	if err := c.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	return c, nil
}

func (c *Client) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	c.metrics = &clientMetrics{}

	c.metrics.fetchesTotal, err = meter.Int64Counter(
		"hermes_fetches_total",
		metric.WithDescription("Total attestation fetch requests"),
	)
	if err != nil {
		return err
	}

	c.metrics.fetchLatency, err = meter.Float64Histogram(
		"hermes_fetch_latency_ms",
		metric.WithDescription("Attestation fetch latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	c.metrics.fetchErrors, err = meter.Int64Counter(
		"hermes_fetch_errors_total",
		metric.WithDescription("Total attestation fetch errors"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Latest fetches the latest price updates for the given feeds.
func (c *Client) Latest(ctx context.Context, ids []domain.FeedID) (*domain.AttestationSet, error) {
	ctx, span := c.tracer.Start(ctx, "hermes.latest",
		trace.WithAttributes(attribute.Int("feed_count", len(ids))),
	)
	defer span.End()

	start := time.Now()
	c.metrics.fetchesTotal.Add(ctx, 1)

	body, err := c.cb.Execute(func() (*LatestUpdatesResponse, error) {
		return c.fetch(ctx, ids)
	})

	c.metrics.fetchLatency.Record(ctx, float64(time.Since(start).Milliseconds()))

	if err != nil {
		c.metrics.fetchErrors.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.New(apperror.CodeOracleUnavailable,
			apperror.WithCause(err),
			apperror.WithContext("hermes request failed"))
	}

	set, err := c.toAttestationSet(body)
	if err != nil {
		c.metrics.fetchErrors.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "bad payload")
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("update_count", len(set.Updates)),
		attribute.Int("price_count", len(set.Prices)),
	)
	span.SetStatus(codes.Ok, "fetched")

	c.logger.Debug(ctx, "hermes fetch",
		"feeds", len(ids),
		"updates", len(set.Updates),
		"prices", len(set.Prices),
	)

	return set, nil
}

func (c *Client) fetch(ctx context.Context, ids []domain.FeedID) (*LatestUpdatesResponse, error) {
	var body LatestUpdatesResponse

	req := c.http.NewRequest().
		SetQueryParam("encoding", "base64").
		SetResult(&body)

	for _, id := range ids {
		req.AddQueryParam("ids[]", id.Hex())
	}

	resp, err := req.Get(ctx, latestUpdatesPath)
	if err != nil {
		return nil, err
	}

	if resp.IsError() {
		return nil, apperror.New(apperror.CodeOracleUnavailable,
			apperror.WithContext(fmt.Sprintf("hermes returned status %d", resp.StatusCode)))
	}

	return &body, nil
}

// toAttestationSet validates the payload and converts it into the domain
// shape. An empty binary section means the response is unusable for
// on-chain submission.
func (c *Client) toAttestationSet(body *LatestUpdatesResponse) (*domain.AttestationSet, error) {
	if len(body.Binary.Data) == 0 {
		return nil, apperror.New(apperror.CodeOracleBadPayload,
			apperror.WithContext("missing binary update data"))
	}

	updates := make([]domain.UpdateData, 0, len(body.Binary.Data))
	for _, b64 := range body.Binary.Data {
		u, err := domain.UpdateDataFromBase64(b64)
		if err != nil {
			return nil, err
		}
		updates = append(updates, u)
	}

	prices := make([]domain.Attestation, 0, len(body.Parsed))
	for _, p := range body.Parsed {
		att, err := p.ToAttestation()
		if err != nil {
			return nil, apperror.New(apperror.CodeOracleBadPayload,
				apperror.WithCause(err),
				apperror.WithContext("unparseable price update"))
		}
		prices = append(prices, att)
	}

	return &domain.AttestationSet{
		Updates:   updates,
		Prices:    prices,
		FetchedAt: time.Now().UTC(),
	}, nil
}
