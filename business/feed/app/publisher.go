// Package app implements the event feed publisher: the bridge between
// pair events and the WebSocket broadcast hub.
package app

import (
	"context"
	"encoding/json"
	"time"

	pairdomain "github.com/fd1az/nftswap-engine/business/pair/domain"
	"github.com/fd1az/nftswap-engine/internal/logger"
	"github.com/fd1az/nftswap-engine/internal/wsfeed"
)

// envelope is the wire format for feed messages.
type envelope struct {
	Type string `json:"type"`
	At   string `json:"at"`
	Data any    `json:"data"`
}

// Publisher serializes pair events and broadcasts them over the feed
// hub. It implements pairdomain.EventSink; pairs call it synchronously
// after a swap commits, so it must never block.
type Publisher struct {
	hub *wsfeed.Hub
	log logger.LoggerInterface
}

// NewPublisher creates a feed publisher.
func NewPublisher(hub *wsfeed.Hub, log logger.LoggerInterface) *Publisher {
	if log == nil {
		log = logger.Nop()
	}
	return &Publisher{hub: hub, log: log}
}

// SwapExecuted broadcasts a committed swap.
func (p *Publisher) SwapExecuted(e pairdomain.SwapEvent) {
	p.publish("swap_executed", e)
}

// SpotPriceUpdated broadcasts a price change.
func (p *Publisher) SpotPriceUpdated(e pairdomain.SpotPriceEvent) {
	p.publish("spot_price_updated", e)
}

func (p *Publisher) publish(kind string, data any) {
	msg, err := json.Marshal(envelope{
		Type: kind,
		At:   time.Now().UTC().Format(time.RFC3339Nano),
		Data: data,
	})
	if err != nil {
		p.log.Error(context.Background(), "feed event marshal failed", "type", kind, "error", err)
		return
	}
	if err := p.hub.Broadcast(msg); err != nil {
		p.log.Debug(context.Background(), "feed broadcast dropped", "type", kind, "error", err)
	}
}
