// Package swap implements the transaction-preparation bounded context:
// validation, orchestration of oracle and chain reads, calldata encoding
// and the HTTP surface.
package swap

import (
	"context"

	chainDI "github.com/basketfx/txprep/business/chain/di"
	oracleDI "github.com/basketfx/txprep/business/oracle/di"
	"github.com/basketfx/txprep/business/swap/app"
	swapDI "github.com/basketfx/txprep/business/swap/di"
	"github.com/basketfx/txprep/business/swap/infra/evm"
	"github.com/basketfx/txprep/business/swap/infra/rest"
	"github.com/basketfx/txprep/internal/asset"
	"github.com/basketfx/txprep/internal/config"
	"github.com/basketfx/txprep/internal/di"
	"github.com/basketfx/txprep/internal/logger"
	"github.com/basketfx/txprep/internal/monolith"
)

// Module implements the swap bounded context.
type Module struct{}

// RegisterServices registers all swap services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register TxEncoder - private dependency
	di.RegisterToken(c, swapDI.TxEncoder, func(sr di.ServiceRegistry) app.TxEncoder {
		cfg := sr.Get("config").(*config.Config)

		encoder, err := evm.NewEncoder(cfg.Chain.AppContractHex())
		if err != nil {
			panic("failed to create tx encoder: " + err.Error())
		}
		return encoder
	})

	// Register SwapService (public - exposed to other modules)
	di.RegisterToken(c, swapDI.SwapService, func(sr di.ServiceRegistry) *app.Service {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		registry := sr.Get("assetRegistry").(*asset.Registry)

		svc, err := app.NewService(
			oracleDI.GetOracleService(sr),
			chainDI.GetChainService(sr),
			swapDI.GetTxEncoder(sr),
			registry,
			app.ServiceConfig{
				ChainID:      cfg.Chain.ChainID,
				SlippagePct:  cfg.Prep.SlippagePct,
				BuyWeiBuffer: cfg.Prep.BuyWeiBuffer,
			},
			log,
		)
		if err != nil {
			panic("failed to create swap service: " + err.Error())
		}
		return svc
	})

	// Register the REST handler (public - mounted by the binary)
	di.RegisterToken(c, swapDI.RESTHandler, func(sr di.ServiceRegistry) *rest.Handler {
		log := sr.Get("logger").(logger.LoggerInterface)

		return rest.NewHandler(
			swapDI.GetSwapService(sr),
			oracleDI.GetOracleService(sr),
			log,
		)
	})

	return nil
}

// Startup initializes the swap module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	mono.Logger().Info(ctx, "swap module started")
	return nil
}
