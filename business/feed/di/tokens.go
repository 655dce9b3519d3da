// Package di contains dependency injection tokens for the feed context.
package di

import (
	"github.com/fd1az/nftswap-engine/business/feed/app"
	"github.com/fd1az/nftswap-engine/internal/di"
	"github.com/fd1az/nftswap-engine/internal/wsfeed"
)

// Public service tokens - exposed to other modules
var (
	Publisher = di.NewToken[*app.Publisher]("feed.Publisher")
)

// Private dependency tokens - internal to feed module
var (
	Hub = di.NewToken[*wsfeed.Hub]("feed:hub")
)

// Helper functions for type-safe access
func GetPublisher(c di.ServiceRegistry) *app.Publisher {
	return di.GetToken(c, Publisher)
}

func GetHub(c di.ServiceRegistry) *wsfeed.Hub {
	return di.GetToken(c, Hub)
}
