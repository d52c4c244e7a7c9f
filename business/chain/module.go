// Package chain implements the on-chain read side: feed-ID resolution,
// normalized prices and update-fee quoting against Flow EVM.
package chain

import (
	"context"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/basketfx/txprep/business/chain/app"
	chainDI "github.com/basketfx/txprep/business/chain/di"
	"github.com/basketfx/txprep/business/chain/infra/evm"
	"github.com/basketfx/txprep/internal/config"
	"github.com/basketfx/txprep/internal/di"
	"github.com/basketfx/txprep/internal/logger"
	"github.com/basketfx/txprep/internal/monolith"
)

// Module implements the chain bounded context.
type Module struct{}

// RegisterServices registers all chain services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// A single Reader backs both ports.
	newReader := func(sr di.ServiceRegistry) *evm.Reader {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		ethClient := sr.Get("ethClient").(*ethclient.Client)

		readerCfg := evm.ReaderConfig{
			AppContract: cfg.Chain.AppContractHex(),
		}
		if cfg.Chain.PythContract != "" {
			readerCfg.PythContract = cfg.Chain.PythContractHex()
		}

		reader, err := evm.NewReader(ethClient, readerCfg, log)
		if err != nil {
			panic("failed to create evm reader: " + err.Error())
		}
		return reader
	}

	di.RegisterToken(c, chainDI.ContractReader, func(sr di.ServiceRegistry) app.ContractReader {
		return newReader(sr)
	})

	di.RegisterToken(c, chainDI.FeeSource, func(sr di.ServiceRegistry) app.FeeSource {
		// Reuse the reader instance registered for the ContractReader port.
		if r, ok := chainDI.GetContractReader(sr).(*evm.Reader); ok {
			return r
		}
		return newReader(sr)
	})

	// Register ChainService (public - exposed to other modules)
	di.RegisterToken(c, chainDI.ChainService, func(sr di.ServiceRegistry) *app.Service {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		return app.NewService(
			chainDI.GetContractReader(sr),
			chainDI.GetFeeSource(sr),
			app.ServiceConfig{
				FeeMarginPct: cfg.Prep.FeeMarginPct,
				FeedCacheTTL: cfg.Prep.FeedCacheTTL,
			},
			log,
		)
	})

	return nil
}

// Startup initializes the chain module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	// Warm the verifier address so the first buy/add-liquidity request
	// does not pay the extra round trip. Failure is non-fatal: the
	// resolution is retried lazily on demand.
	if reader, ok := chainDI.GetContractReader(mono.Services()).(*evm.Reader); ok {
		if _, err := reader.PythAddress(ctx); err != nil {
			log.Warn(ctx, "pyth address resolution failed at startup, will retry on demand", "error", err)
		}
	}

	log.Info(ctx, "chain module started")
	return nil
}
