// Package router implements the router bounded context: batch swap
// execution across pairs.
package router

import (
	"context"

	factoryDI "github.com/fd1az/nftswap-engine/business/factory/di"
	"github.com/fd1az/nftswap-engine/business/router/app"
	routerDI "github.com/fd1az/nftswap-engine/business/router/di"
	"github.com/fd1az/nftswap-engine/internal/asset"
	"github.com/fd1az/nftswap-engine/internal/config"
	"github.com/fd1az/nftswap-engine/internal/di"
	"github.com/fd1az/nftswap-engine/internal/logger"
	"github.com/fd1az/nftswap-engine/internal/monolith"
)

// Module implements the router bounded context.
type Module struct{}

// RegisterServices registers all router services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, routerDI.Router, func(sr di.ServiceRegistry) *app.Router {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		registry := sr.Get("assetRegistry").(*asset.Registry)

		// The router settles in the chain's native asset.
		settlement := registry.MustGet(asset.NewNativeAssetID(cfg.Engine.ChainID))

		return app.NewRouter(
			cfg.Engine.RouterAddressHex(),
			factoryDI.GetFactory(sr),
			settlement,
			log,
		)
	})

	return nil
}

// Startup initializes the router module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	r := routerDI.GetRouter(mono.Services())
	log.Info(ctx, "router module started", "address", r.Address().Hex())
	return nil
}
