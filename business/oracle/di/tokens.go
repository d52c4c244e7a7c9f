// Package di contains dependency injection tokens for the oracle context.
package di

import (
	"github.com/basketfx/txprep/business/oracle/app"
	"github.com/basketfx/txprep/internal/di"
)

// Public service tokens - exposed to other modules
var (
	OracleService = di.NewToken[*app.Service]("oracle.OracleService")
)

// Private dependency tokens - internal to oracle module
var (
	AttestationSource = di.NewToken[app.AttestationSource]("oracle:attestationSource")
	PriceCache        = di.NewToken[app.PriceCache]("oracle:priceCache")
)

// Helper functions for type-safe access
func GetOracleService(c di.ServiceRegistry) *app.Service {
	return di.GetToken(c, OracleService)
}

func GetAttestationSource(c di.ServiceRegistry) app.AttestationSource {
	return di.GetToken(c, AttestationSource)
}

func GetPriceCache(c di.ServiceRegistry) app.PriceCache {
	return di.GetToken(c, PriceCache)
}
