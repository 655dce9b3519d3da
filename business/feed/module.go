// Package feed implements the event feed bounded context: streaming
// swap and price events to WebSocket subscribers.
package feed

import (
	"context"

	"github.com/fd1az/nftswap-engine/business/feed/app"
	feedDI "github.com/fd1az/nftswap-engine/business/feed/di"
	"github.com/fd1az/nftswap-engine/internal/config"
	"github.com/fd1az/nftswap-engine/internal/di"
	"github.com/fd1az/nftswap-engine/internal/logger"
	"github.com/fd1az/nftswap-engine/internal/monolith"
	"github.com/fd1az/nftswap-engine/internal/wsfeed"
)

// Module implements the feed bounded context.
type Module struct{}

// RegisterServices registers all feed services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register the broadcast hub - private dependency
	di.RegisterToken(c, feedDI.Hub, func(sr di.ServiceRegistry) *wsfeed.Hub {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		hubCfg := wsfeed.DefaultConfig(cfg.Feed.Port)
		hubCfg.EventsPerMinute = cfg.Feed.EventsPerMinute
		hubCfg.ClientBufferSize = cfg.Feed.ClientBufferSize

		return wsfeed.NewHub(hubCfg, log)
	})

	// Register Publisher (public - the engine's event sink)
	di.RegisterToken(c, feedDI.Publisher, func(sr di.ServiceRegistry) *app.Publisher {
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewPublisher(feedDI.GetHub(sr), log)
	})

	return nil
}

// Startup begins serving the feed when it is enabled.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()

	if !cfg.Feed.Enabled {
		log.Info(ctx, "feed disabled, events will not be broadcast")
		return nil
	}

	hub := feedDI.GetHub(mono.Services())
	if err := hub.Start(); err != nil {
		return err
	}

	log.Info(ctx, "feed module started", "port", cfg.Feed.Port)
	return nil
}
