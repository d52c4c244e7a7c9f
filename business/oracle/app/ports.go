// Package app contains the oracle context's application services and ports.
package app

import (
	"context"
	"time"

	"github.com/basketfx/txprep/business/oracle/domain"
)

// AttestationSource fetches the latest signed price attestations from the
// oracle network. No retries: a failed fetch is terminal for the request.
type AttestationSource interface {
	Latest(ctx context.Context, ids []domain.FeedID) (*domain.AttestationSet, error)
}

// PriceCache exposes the most recent streamed prices, if a stream is
// running. Display path only; transaction paths always fetch fresh.
type PriceCache interface {
	Latest() (map[domain.FeedID]domain.Attestation, time.Time, bool)
}
