// Package di contains dependency injection tokens for the chain context.
package di

import (
	"github.com/basketfx/txprep/business/chain/app"
	"github.com/basketfx/txprep/internal/di"
)

// Public service tokens - exposed to other modules
var (
	ChainService = di.NewToken[*app.Service]("chain.ChainService")
)

// Private dependency tokens - internal to chain module
var (
	ContractReader = di.NewToken[app.ContractReader]("chain:contractReader")
	FeeSource      = di.NewToken[app.FeeSource]("chain:feeSource")
)

// Helper functions for type-safe access
func GetChainService(c di.ServiceRegistry) *app.Service {
	return di.GetToken(c, ChainService)
}

func GetContractReader(c di.ServiceRegistry) app.ContractReader {
	return di.GetToken(c, ContractReader)
}

func GetFeeSource(c di.ServiceRegistry) app.FeeSource {
	return di.GetToken(c, FeeSource)
}
