// Package hermes implements the AttestationSource interface against the
// Pyth Hermes price service.
package hermes

import (
	"strconv"
	"time"

	"github.com/basketfx/txprep/business/oracle/domain"
)

// REST messages

// LatestUpdatesResponse is the body of GET /v2/updates/price/latest.
type LatestUpdatesResponse struct {
	Binary BinaryUpdate   `json:"binary"`
	Parsed []ParsedUpdate `json:"parsed"`
}

// BinaryUpdate carries the signed update blobs in transport encoding.
type BinaryUpdate struct {
	Encoding string   `json:"encoding"`
	Data     []string `json:"data"`
}

// ParsedUpdate is one feed's decoded price.
type ParsedUpdate struct {
	ID    string      `json:"id"`
	Price ParsedPrice `json:"price"`
}

// ParsedPrice is the mantissa/exponent price tuple. The mantissa is
// transported as a string to survive JSON number limits.
type ParsedPrice struct {
	Price       string `json:"price"`
	Conf        string `json:"conf"`
	Expo        int32  `json:"expo"`
	PublishTime int64  `json:"publish_time"`
}

// ToAttestation converts a parsed update into the domain type.
func (u ParsedUpdate) ToAttestation() (domain.Attestation, error) {
	id, err := domain.ParseFeedID(u.ID)
	if err != nil {
		return domain.Attestation{}, err
	}

	mantissa, err := strconv.ParseInt(u.Price.Price, 10, 64)
	if err != nil {
		return domain.Attestation{}, err
	}

	return domain.Attestation{
		ID:          id,
		Mantissa:    mantissa,
		Exponent:    u.Price.Expo,
		PublishTime: time.Unix(u.Price.PublishTime, 0).UTC(),
	}, nil
}

// WebSocket messages

// WSSubscribe is the stream subscription request.
type WSSubscribe struct {
	Type    string   `json:"type"`
	IDs     []string `json:"ids"`
	Verbose bool     `json:"verbose"`
	Binary  bool     `json:"binary"`
}

// WSMessage is the base wrapper for stream messages.
type WSMessage struct {
	Type      string       `json:"type"`
	PriceFeed *WSPriceFeed `json:"price_feed,omitempty"`
}

// WSPriceFeed is one streamed price update.
type WSPriceFeed struct {
	ID    string      `json:"id"`
	Price ParsedPrice `json:"price"`
}

// ToAttestation converts a streamed update into the domain type.
func (f WSPriceFeed) ToAttestation() (domain.Attestation, error) {
	return ParsedUpdate{ID: f.ID, Price: f.Price}.ToAttestation()
}
