// Package di contains dependency injection tokens for the factory context.
package di

import (
	"github.com/fd1az/nftswap-engine/business/factory/app"
	"github.com/fd1az/nftswap-engine/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Factory = di.NewToken[*app.Factory]("factory.Factory")
)

// Helper functions for type-safe access
func GetFactory(c di.ServiceRegistry) *app.Factory {
	return di.GetToken(c, Factory)
}
