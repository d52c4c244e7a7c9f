// Package domain holds the oracle context's core types: feed identifiers,
// signed price attestations and their calldata encoding.
package domain

import (
	"encoding/base64"
	"encoding/hex"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/basketfx/txprep/internal/apperror"
)

// FeedID identifies a single currency pair's price stream. Stable per
// deployment; transaction paths resolve it from the contract, never from
// a constant.
type FeedID [32]byte

// ParseFeedID parses a feed ID from hex, with or without the 0x prefix.
func ParseFeedID(s string) (FeedID, error) {
	h := strings.TrimPrefix(s, "0x")
	raw, err := hex.DecodeString(h)
	if err != nil {
		return FeedID{}, apperror.New(apperror.CodeInvalidInput,
			apperror.WithCause(err),
			apperror.WithContext("feed id is not valid hex"))
	}
	if len(raw) != 32 {
		return FeedID{}, apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext("feed id must be 32 bytes"))
	}

	var id FeedID
	copy(id[:], raw)
	return id, nil
}

// MustFeedID parses a feed ID and panics on failure. For well-known constants.
func MustFeedID(s string) FeedID {
	id, err := ParseFeedID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// FeedIDFromHash converts a contract-returned bytes32 into a FeedID.
func FeedIDFromHash(h common.Hash) FeedID {
	return FeedID(h)
}

// Hex returns the 0x-prefixed lowercase hex form.
func (id FeedID) Hex() string {
	return "0x" + hex.EncodeToString(id[:])
}

// Bytes32 returns the raw value for ABI encoding.
func (id FeedID) Bytes32() [32]byte {
	return id
}

// IsZero reports whether the ID is unset.
func (id FeedID) IsZero() bool {
	return id == FeedID{}
}

func (id FeedID) String() string {
	return id.Hex()
}

// UpdateData is the opaque signed binary blob carried by an attestation.
// It is only transcoded, never decoded: any byte-level mismatch breaks
// the signature and the on-chain verifier rejects the update.
type UpdateData []byte

// UpdateDataFromBase64 decodes the oracle network's transport encoding.
func UpdateDataFromBase64(s string) (UpdateData, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, apperror.New(apperror.CodeAttestationDecoding,
			apperror.WithCause(err),
			apperror.WithContext("update data is not valid base64"))
	}
	if len(raw) == 0 {
		return nil, apperror.New(apperror.CodeAttestationDecoding,
			apperror.WithContext("empty update data"))
	}
	return UpdateData(raw), nil
}

// UpdateDataFromHex decodes the on-chain hex form, for round trips.
func UpdateDataFromHex(s string) (UpdateData, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, apperror.New(apperror.CodeAttestationDecoding,
			apperror.WithCause(err),
			apperror.WithContext("update data is not valid hex"))
	}
	return UpdateData(raw), nil
}

// OnChainHex returns the 0x-prefixed hex the verifier contract expects.
func (u UpdateData) OnChainHex() string {
	return "0x" + hex.EncodeToString(u)
}

// Bytes returns the raw bytes for ABI encoding.
func (u UpdateData) Bytes() []byte {
	return []byte(u)
}

// Attestation is a parsed signed price update: value = Mantissa * 10^Exponent.
type Attestation struct {
	ID          FeedID
	Mantissa    int64
	Exponent    int32
	PublishTime time.Time
}

// Normalize converts the mantissa/exponent pair into an exact decimal.
// decimal.New keeps the integer mantissa intact, so the conversion is
// lossless for any exponent the oracle emits.
func (a Attestation) Normalize() decimal.Decimal {
	return decimal.New(a.Mantissa, a.Exponent)
}

// AttestationSet is one gateway fetch: the raw update blobs for on-chain
// submission plus the parsed per-feed prices. Order of Prices is not
// guaranteed to match the request order; look up by feed ID.
type AttestationSet struct {
	Updates   []UpdateData
	Prices    []Attestation
	FetchedAt time.Time
}

// Price returns the attestation for a feed ID, if present.
func (s *AttestationSet) Price(id FeedID) (Attestation, bool) {
	for _, p := range s.Prices {
		if p.ID == id {
			return p, true
		}
	}
	return Attestation{}, false
}

// UpdateHex returns the on-chain hex form of every update blob.
func (s *AttestationSet) UpdateHex() []string {
	out := make([]string, len(s.Updates))
	for i, u := range s.Updates {
		out[i] = u.OnChainHex()
	}
	return out
}

// UpdateBytes returns the raw update blobs for ABI encoding.
func (s *AttestationSet) UpdateBytes() [][]byte {
	out := make([][]byte, len(s.Updates))
	for i, u := range s.Updates {
		out[i] = u.Bytes()
	}
	return out
}
