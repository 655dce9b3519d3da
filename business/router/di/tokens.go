// Package di contains dependency injection tokens for the router context.
package di

import (
	"github.com/fd1az/nftswap-engine/business/router/app"
	"github.com/fd1az/nftswap-engine/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Router = di.NewToken[*app.Router]("router.Router")
)

// Helper functions for type-safe access
func GetRouter(c di.ServiceRegistry) *app.Router {
	return di.GetToken(c, Router)
}
