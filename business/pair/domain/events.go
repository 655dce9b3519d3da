package domain

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Direction identifies which way value flowed through a swap.
type Direction string

const (
	DirectionTokenForItems Direction = "TOKEN_FOR_ITEMS"
	DirectionItemsForToken Direction = "ITEMS_FOR_TOKEN"
)

// SwapEvent is emitted after a swap commits.
type SwapEvent struct {
	Pair         common.Address  `json:"pair"`
	Direction    Direction       `json:"direction"`
	Caller       common.Address  `json:"caller"`
	ItemIDs      []uint64        `json:"item_ids"`
	Value        decimal.Decimal `json:"value"`
	TradeFee     decimal.Decimal `json:"trade_fee"`
	ProtocolFee  decimal.Decimal `json:"protocol_fee"`
	NewSpotPrice decimal.Decimal `json:"new_spot_price"`
}

// SpotPriceEvent is emitted whenever the spot price changes, whether by
// a swap stepping the curve or the owner repricing the pair.
type SpotPriceEvent struct {
	Pair         common.Address  `json:"pair"`
	OldSpotPrice decimal.Decimal `json:"old_spot_price"`
	NewSpotPrice decimal.Decimal `json:"new_spot_price"`
}

// EventSink receives pair events after state has committed. Sinks must
// not call back into the pair.
type EventSink interface {
	SwapExecuted(e SwapEvent)
	SpotPriceUpdated(e SpotPriceEvent)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) SwapExecuted(SwapEvent)       {}
func (NopSink) SpotPriceUpdated(SpotPriceEvent) {}
