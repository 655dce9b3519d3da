// Package curve implements the pluggable bonding curves that price
// swaps. Curves are pure: given the current spot price, the step delta
// and a quantity they return the new spot price and the value moved,
// never touching pair state.
package curve

import (
	"github.com/shopspring/decimal"

	"github.com/fd1az/nftswap-engine/internal/apperror"
)

// feeScale is the truncation scale for fee components: 18 decimal
// places, wei granularity. Raw curve values stay exact; only fees
// truncate, and always toward zero so the protocol never over-charges.
const feeScale = 18

// maxSpotPrice caps the representable spot price at uint128 max in
// 18-decimal fixed point. Exponential buys that would push the spot
// price beyond it fail with OUT_OF_BOUNDS.
var maxSpotPrice = decimal.RequireFromString("340282366920938463463.374607431768211455")

// Quote is the result of pricing a swap of numItems against a curve.
// For buys, Value is the total input (raw + TradeFee + ProtocolFee);
// for sells, Value is the net output (raw - TradeFee - ProtocolFee).
type Quote struct {
	NewSpotPrice decimal.Decimal
	Value        decimal.Decimal
	TradeFee     decimal.Decimal
	ProtocolFee  decimal.Decimal
}

// Raw returns the curve value before fees.
func (q Quote) Raw(buy bool) decimal.Decimal {
	if buy {
		return q.Value.Sub(q.TradeFee).Sub(q.ProtocolFee)
	}
	return q.Value.Add(q.TradeFee).Add(q.ProtocolFee)
}

// Curve is the bonding-curve capability a pair dispatches to.
type Curve interface {
	// Name identifies the curve variant ("linear", "exponential").
	Name() string

	// ValidateDelta reports whether delta is representable for this curve.
	ValidateDelta(delta decimal.Decimal) bool

	// ValidateSpotPrice reports whether a spot price is representable.
	ValidateSpotPrice(spot decimal.Decimal) bool

	// BuyInfo prices buying numItems from the pair.
	BuyInfo(spot, delta decimal.Decimal, numItems int, feeMultiplier, protocolFeeMultiplier decimal.Decimal) (Quote, error)

	// SellInfo prices selling numItems into the pair.
	SellInfo(spot, delta decimal.Decimal, numItems int, feeMultiplier, protocolFeeMultiplier decimal.Decimal) (Quote, error)
}

// splitFees computes the trade and protocol fee on the raw curve value.
// Both truncate toward zero at feeScale.
func splitFees(raw, feeMultiplier, protocolFeeMultiplier decimal.Decimal) (tradeFee, protocolFee decimal.Decimal) {
	tradeFee = raw.Mul(feeMultiplier).Truncate(feeScale)
	protocolFee = raw.Mul(protocolFeeMultiplier).Truncate(feeScale)
	return tradeFee, protocolFee
}

func validateNumItems(numItems int) error {
	if numItems <= 0 {
		return apperror.Validation(apperror.CodeInvalidInput, "numItems must be positive")
	}
	return nil
}

func errOutOfBounds(context string) error {
	return apperror.New(apperror.CodeOutOfBounds, apperror.WithContext(context))
}
