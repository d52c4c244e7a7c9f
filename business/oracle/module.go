// Package oracle implements the price-oracle bounded context: attestation
// fetching, transport transcoding and the degradable price snapshot.
package oracle

import (
	"context"

	"github.com/basketfx/txprep/business/oracle/app"
	oracleDI "github.com/basketfx/txprep/business/oracle/di"
	"github.com/basketfx/txprep/business/oracle/infra/hermes"
	"github.com/basketfx/txprep/internal/config"
	"github.com/basketfx/txprep/internal/di"
	"github.com/basketfx/txprep/internal/logger"
	"github.com/basketfx/txprep/internal/monolith"
)

// Module implements the oracle bounded context.
type Module struct{}

// RegisterServices registers all oracle services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register AttestationSource (Hermes REST) - private dependency
	di.RegisterToken(c, oracleDI.AttestationSource, func(sr di.ServiceRegistry) app.AttestationSource {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		client, err := hermes.NewClient(hermes.ClientConfig{
			BaseURL: cfg.Hermes.BaseURL,
			Timeout: cfg.Hermes.Timeout,
		}, log)
		if err != nil {
			panic("failed to create hermes client: " + err.Error())
		}
		return client
	})

	// Register the optional streamed price cache - private dependency
	di.RegisterToken(c, oracleDI.PriceCache, func(sr di.ServiceRegistry) app.PriceCache {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		if !cfg.Hermes.EnableStream {
			return nil
		}
		return hermes.NewStream(hermes.StreamConfig{
			WSURL: cfg.Hermes.WSURL,
			Feeds: app.DefaultDisplayFeeds().All(),
		}, log)
	})

	// Register OracleService (public - exposed to other modules)
	di.RegisterToken(c, oracleDI.OracleService, func(sr di.ServiceRegistry) *app.Service {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		source := oracleDI.GetAttestationSource(sr)

		var opts []app.ServiceOption
		if cache := oracleDI.GetPriceCache(sr); cache != nil {
			opts = append(opts, app.WithPriceCache(cache, cfg.Prep.SnapshotMaxAge))
		}

		svc, err := app.NewService(source, app.DefaultDisplayFeeds(), log, opts...)
		if err != nil {
			panic("failed to create oracle service: " + err.Error())
		}
		return svc
	})

	return nil
}

// Startup initializes the oracle module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()

	if cfg.Hermes.EnableStream {
		cache := oracleDI.GetPriceCache(mono.Services())
		if stream, ok := cache.(*hermes.Stream); ok && stream != nil {
			// The snapshot path falls back to REST while the stream warms up,
			// so a failed connect must not block startup.
			if err := stream.Start(ctx); err != nil {
				log.Warn(ctx, "hermes stream connect failed, display path will use REST", "error", err)
			}
		}
	}

	log.Info(ctx, "oracle module started")
	return nil
}
