package hermes

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/basketfx/txprep/business/oracle/app"
	"github.com/basketfx/txprep/business/oracle/domain"
	"github.com/basketfx/txprep/internal/apperror"
	"github.com/basketfx/txprep/internal/logger"
	"github.com/basketfx/txprep/internal/wsconn"
)

// Ensure Stream implements PriceCache.
var _ app.PriceCache = (*Stream)(nil)

// StreamConfig holds Hermes WebSocket configuration.
type StreamConfig struct {
	WSURL string
	Feeds []domain.FeedID
}

// Stream keeps a live snapshot of parsed prices from the Hermes
// WebSocket feed. Display path only: transaction paths always fetch
// attestations fresh over REST.
type Stream struct {
	cfg    StreamConfig
	conn   *wsconn.Client
	logger logger.LoggerInterface

	mu        sync.RWMutex
	prices    map[domain.FeedID]domain.Attestation
	updatedAt time.Time
}

// NewStream creates a Hermes price stream.
func NewStream(cfg StreamConfig, log logger.LoggerInterface) *Stream {
	return &Stream{
		cfg:    cfg,
		conn:   wsconn.New(wsconn.DefaultConfig(cfg.WSURL)),
		logger: log,
		prices: make(map[domain.FeedID]domain.Attestation),
	}
}

// Start connects, subscribes and begins consuming updates. The read loop
// runs until ctx is cancelled or Close is called. The subscription is
// replayed on every reconnect: Hermes drops it with the connection.
func (s *Stream) Start(ctx context.Context) error {
	s.conn.OnReconnect(func(ctx context.Context) error {
		s.logger.Info(ctx, "hermes stream reconnected, resubscribing", "feeds", len(s.cfg.Feeds))
		return s.subscribe(ctx)
	})

	if err := s.conn.Connect(ctx); err != nil {
		return apperror.New(apperror.CodeWebSocketConnectionError,
			apperror.WithCause(err),
			apperror.WithContext("hermes stream connect failed"))
	}

	if err := s.subscribe(ctx); err != nil {
		return err
	}

	go s.consume(ctx)

	s.logger.Info(ctx, "hermes stream started", "feeds", len(s.cfg.Feeds))
	return nil
}

// subscribe sends the feed subscription on the current connection.
func (s *Stream) subscribe(ctx context.Context) error {
	ids := make([]string, len(s.cfg.Feeds))
	for i, id := range s.cfg.Feeds {
		// Hermes WS wants un-prefixed hex IDs.
		ids[i] = strings.TrimPrefix(id.Hex(), "0x")
	}

	sub, err := json.Marshal(WSSubscribe{
		Type:    "subscribe",
		IDs:     ids,
		Verbose: false,
		Binary:  false,
	})
	if err != nil {
		return err
	}

	if err := s.conn.Send(ctx, sub); err != nil {
		return apperror.New(apperror.CodeWebSocketSendError,
			apperror.WithCause(err),
			apperror.WithContext("hermes subscribe failed"))
	}
	return nil
}

// Latest returns the current price snapshot and its last update time.
func (s *Stream) Latest() (map[domain.FeedID]domain.Attestation, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.prices) == 0 {
		return nil, time.Time{}, false
	}

	out := make(map[domain.FeedID]domain.Attestation, len(s.prices))
	for k, v := range s.prices {
		out[k] = v
	}
	return out, s.updatedAt, true
}

// Close shuts down the stream.
func (s *Stream) Close() error {
	return s.conn.Close()
}

func (s *Stream) consume(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-s.conn.Messages():
			if !ok {
				return
			}
			s.handleMessage(ctx, raw)
		}
	}
}

func (s *Stream) handleMessage(ctx context.Context, raw []byte) {
	var msg WSMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		s.logger.Debug(ctx, "hermes stream unparseable message", "error", err)
		return
	}

	if msg.Type != "price_update" || msg.PriceFeed == nil {
		return
	}

	att, err := msg.PriceFeed.ToAttestation()
	if err != nil {
		s.logger.Debug(ctx, "hermes stream bad price update", "error", err)
		return
	}

	s.mu.Lock()
	s.prices[att.ID] = att
	s.updatedAt = time.Now().UTC()
	s.mu.Unlock()
}
