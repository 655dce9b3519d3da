// Package domain contains the batch instruction types for the router
// context.
package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// BuyAny buys numItems chosen by the pair's inventory strategy.
// MaxCost caps the leg's total input; in robust mode it is also checked
// against the remaining budget before dispatch.
type BuyAny struct {
	Pair     common.Address
	NumItems int
	MaxCost  decimal.Decimal
}

// BuySpecific buys exactly the named items.
type BuySpecific struct {
	Pair    common.Address
	ItemIDs []uint64
	MaxCost decimal.Decimal
}

// Sell sells the named items into a pair. MinOutput floors the leg's
// net proceeds.
type Sell struct {
	Pair      common.Address
	ItemIDs   []uint64
	MinOutput decimal.Decimal
}

// CallParams identifies the parties to a batch call. The deadline is
// checked once at entry; a zero deadline means no deadline.
type CallParams struct {
	Caller         common.Address
	ItemRecipient  common.Address
	TokenRecipient common.Address
	Deadline       time.Time
}

// Result summarizes a batch call. Spent counts buy-side input, Received
// counts sell-side proceeds; both are gross of the refund, which always
// goes to TokenRecipient. In strict mode Skipped is always zero.
type Result struct {
	Spent    decimal.Decimal
	Received decimal.Decimal
	Refunded decimal.Decimal
	Executed int
	Skipped  int
}
