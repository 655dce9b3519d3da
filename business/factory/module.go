// Package factory implements the factory bounded context: pair
// creation, protocol fee configuration and engine-wide state.
package factory

import (
	"context"

	"github.com/fd1az/nftswap-engine/business/factory/app"
	factoryDI "github.com/fd1az/nftswap-engine/business/factory/di"
	feedDI "github.com/fd1az/nftswap-engine/business/feed/di"
	"github.com/fd1az/nftswap-engine/internal/config"
	"github.com/fd1az/nftswap-engine/internal/di"
	"github.com/fd1az/nftswap-engine/internal/logger"
	"github.com/fd1az/nftswap-engine/internal/monolith"
)

// Module implements the factory bounded context.
type Module struct{}

// RegisterServices registers all factory services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, factoryDI.Factory, func(sr di.ServiceRegistry) *app.Factory {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		f, err := app.NewFactory(app.Config{
			Owner:                 cfg.Engine.OwnerHex(),
			ProtocolFeeMultiplier: cfg.Engine.ProtocolFeeDecimal(),
			ProtocolFeeRecipient:  cfg.Engine.ProtocolFeeRecipientHex(),
			Log:                   log,
			Sink:                  feedDI.GetPublisher(sr),
		})
		if err != nil {
			panic("failed to create factory: " + err.Error())
		}
		return f
	})

	return nil
}

// Startup puts the configured router on the allow-list so batch calls
// are accepted from the start.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()

	f := factoryDI.GetFactory(mono.Services())
	if err := f.SetRouterAllowed(cfg.Engine.OwnerHex(), cfg.Engine.RouterAddressHex(), true); err != nil {
		return err
	}

	log.Info(ctx, "factory module started",
		"protocol_fee", cfg.Engine.ProtocolFee,
		"router", cfg.Engine.RouterAddress,
	)
	return nil
}
