// Package rest exposes the preparation flows over HTTP.
package rest

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	oracleapp "github.com/basketfx/txprep/business/oracle/app"
	"github.com/basketfx/txprep/business/swap/app"
	swapdomain "github.com/basketfx/txprep/business/swap/domain"
	"github.com/basketfx/txprep/internal/apperror"
	"github.com/basketfx/txprep/internal/logger"
	"github.com/basketfx/txprep/internal/server"
)

var _ server.RouteRegistrar = (*Handler)(nil)

// Handler serves the preparation endpoints and the price-feed view.
type Handler struct {
	swap   *app.Service
	oracle *oracleapp.Service
	logger logger.LoggerInterface
}

// NewHandler creates the REST handler.
func NewHandler(swap *app.Service, oracle *oracleapp.Service, log logger.LoggerInterface) *Handler {
	return &Handler{swap: swap, oracle: oracle, logger: log}
}

// MountRoutes attaches the endpoints to the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/buy-tokens", h.buyTokens)
	r.Post("/add-liquidity", h.addLiquidity)
	r.Post("/remove-liquidity", h.removeLiquidity)
	r.Post("/calculate-liquidity", h.calculateLiquidity)
	r.Get("/price-feeds", h.priceFeeds)
}

type buyTokensRequest struct {
	TokenSymbol string `json:"tokenSymbol"`
	FlowAmount  string `json:"flowAmount"`
}

type liquidityRequest struct {
	TokenNameA string `json:"tokenNameA"`
	TokenNameB string `json:"tokenNameB"`
	AmountA    string `json:"amountA"`
}

type removeLiquidityRequest struct {
	TokenNameA    string `json:"tokenNameA"`
	TokenNameB    string `json:"tokenNameB"`
	LPTokenAmount string `json:"lpTokenAmount"`
}

// transactionResponse is the unsigned transaction in wallet form.
type transactionResponse struct {
	To    string `json:"to"`
	Value string `json:"value"`
	Data  string `json:"data"`
}

func toTransactionResponse(tx swapdomain.TransactionDescriptor) transactionResponse {
	return transactionResponse{
		To:    tx.To.Hex(),
		Value: tx.ValueString(),
		Data:  tx.DataHex(),
	}
}

func (h *Handler) buyTokens(w http.ResponseWriter, r *http.Request) {
	var req buyTokensRequest
	if !h.decode(w, r, &req) {
		return
	}

	tx, err := h.swap.PrepareBuy(r.Context(), app.BuyRequest{
		TokenSymbol: req.TokenSymbol,
		FlowAmount:  req.FlowAmount,
	})
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	writeData(w, toTransactionResponse(tx))
}

func (h *Handler) addLiquidity(w http.ResponseWriter, r *http.Request) {
	var req liquidityRequest
	if !h.decode(w, r, &req) {
		return
	}

	tx, err := h.swap.PrepareAddLiquidity(r.Context(), app.LiquidityRequest{
		TokenNameA: req.TokenNameA,
		TokenNameB: req.TokenNameB,
		AmountA:    req.AmountA,
	})
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	writeData(w, toTransactionResponse(tx))
}

func (h *Handler) removeLiquidity(w http.ResponseWriter, r *http.Request) {
	var req removeLiquidityRequest
	if !h.decode(w, r, &req) {
		return
	}

	tx, err := h.swap.PrepareRemoveLiquidity(r.Context(), app.RemoveLiquidityRequest{
		TokenNameA:    req.TokenNameA,
		TokenNameB:    req.TokenNameB,
		LPTokenAmount: req.LPTokenAmount,
	})
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	writeData(w, toTransactionResponse(tx))
}

func (h *Handler) calculateLiquidity(w http.ResponseWriter, r *http.Request) {
	var req liquidityRequest
	if !h.decode(w, r, &req) {
		return
	}

	quote, err := h.swap.CalculateLiquidity(r.Context(), app.LiquidityRequest{
		TokenNameA: req.TokenNameA,
		TokenNameB: req.TokenNameB,
		AmountA:    req.AmountA,
	})
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	writeData(w, map[string]string{
		"amountB": quote.AmountB.ToDecimal().String(),
	})
}

// priceFeedsResponse is the display-path price view. Values are plain
// JSON numbers; this path feeds UIs, not transactions.
type priceFeedsResponse struct {
	FlowUSDPrice    float64            `json:"flowUsdPrice"`
	ConversionRates map[string]float64 `json:"conversionRates"`
	RawPrices       map[string]float64 `json:"rawPrices"`
	Timestamp       string             `json:"timestamp"`
	Stale           bool               `json:"stale"`
}

// priceFeeds always answers 200. When the oracle is unreachable the
// snapshot degrades to static fallback rates and success flips to false
// so clients can distinguish live data from the last resort.
func (h *Handler) priceFeeds(w http.ResponseWriter, r *http.Request) {
	snap := h.oracle.Snapshot(r.Context())

	resp := priceFeedsResponse{
		FlowUSDPrice:    snap.FlowUSD.InexactFloat64(),
		ConversionRates: toFloats(snap.ConversionRates),
		RawPrices:       toFloats(snap.RawPrices),
		Timestamp:       snap.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"),
		Stale:           snap.Stale,
	}

	writeJSON(w, http.StatusOK, envelope{Success: !snap.Stale, Data: resp})
}

func toFloats(in map[string]decimal.Decimal) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v.InexactFloat64()
	}
	return out
}

// decode parses the JSON body, rejecting malformed input with a 400.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(r.Context(), w, h.logger,
			apperror.Validation(apperror.CodeInvalidInput, "malformed JSON body"))
		return false
	}
	return true
}
