// Package di contains dependency injection tokens for the swap context.
package di

import (
	"github.com/basketfx/txprep/business/swap/app"
	"github.com/basketfx/txprep/business/swap/infra/rest"
	"github.com/basketfx/txprep/internal/di"
)

// Public service tokens - exposed to other modules
var (
	SwapService = di.NewToken[*app.Service]("swap.SwapService")
	RESTHandler = di.NewToken[*rest.Handler]("swap.RESTHandler")
)

// Private dependency tokens - internal to swap module
var (
	TxEncoder = di.NewToken[app.TxEncoder]("swap:txEncoder")
)

// Helper functions for type-safe access
func GetSwapService(c di.ServiceRegistry) *app.Service {
	return di.GetToken(c, SwapService)
}

func GetRESTHandler(c di.ServiceRegistry) *rest.Handler {
	return di.GetToken(c, RESTHandler)
}

func GetTxEncoder(c di.ServiceRegistry) app.TxEncoder {
	return di.GetToken(c, TxEncoder)
}
