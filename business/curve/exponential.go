package curve

import "github.com/shopspring/decimal"

// divScale is the rounding scale for exponential divisions. The
// geometric series uses closed forms, never per-item iteration, so
// rounding is applied once per quote instead of drifting across items.
const divScale = 18

// Exponential adjusts the spot price multiplicatively: each item bought
// multiplies it by delta, each item sold divides it. delta is a
// fixed-point multiplier strictly greater than 1.
type Exponential struct{}

// NewExponential creates the exponential curve.
func NewExponential() Exponential {
	return Exponential{}
}

// Name implements Curve.
func (Exponential) Name() string { return "exponential" }

// ValidateDelta requires delta > 1; a multiplier at or below 1 cannot
// increase scarcity pricing and is rejected.
func (Exponential) ValidateDelta(delta decimal.Decimal) bool {
	return delta.GreaterThan(decimal.NewFromInt(1))
}

// ValidateSpotPrice requires a strictly positive price; a zero spot
// price can never recover under multiplication.
func (Exponential) ValidateSpotPrice(spot decimal.Decimal) bool {
	return spot.IsPositive()
}

// BuyInfo implements Curve. newSpot = spot*delta^n; the first item is
// priced at spot*delta and the raw value is the geometric series
// spot*delta*(delta^n - 1)/(delta - 1), computed in closed form.
func (e Exponential) BuyInfo(spot, delta decimal.Decimal, numItems int, feeMultiplier, protocolFeeMultiplier decimal.Decimal) (Quote, error) {
	if err := validateNumItems(numItems); err != nil {
		return Quote{}, err
	}
	if !e.ValidateDelta(delta) {
		return Quote{}, errOutOfBounds("exponential delta must be > 1")
	}
	if !e.ValidateSpotPrice(spot) {
		return Quote{}, errOutOfBounds("exponential spot price must be > 0")
	}

	n := decimal.NewFromInt(int64(numItems))
	deltaPowN := delta.Pow(n)

	newSpot := spot.Mul(deltaPowN)
	if newSpot.GreaterThan(maxSpotPrice) {
		return Quote{}, errOutOfBounds("new spot price exceeds representable range")
	}

	one := decimal.NewFromInt(1)
	raw := spot.Mul(delta).Mul(deltaPowN.Sub(one).DivRound(delta.Sub(one), divScale))

	tradeFee, protocolFee := splitFees(raw, feeMultiplier, protocolFeeMultiplier)

	return Quote{
		NewSpotPrice: newSpot,
		Value:        raw.Add(tradeFee).Add(protocolFee),
		TradeFee:     tradeFee,
		ProtocolFee:  protocolFee,
	}, nil
}

// SellInfo implements Curve. newSpot = spot/delta^n; the first item
// sells at spot and the raw value is the geometric series
// spot*(1 - (1/delta)^n)/(1 - 1/delta), computed in closed form.
func (e Exponential) SellInfo(spot, delta decimal.Decimal, numItems int, feeMultiplier, protocolFeeMultiplier decimal.Decimal) (Quote, error) {
	if err := validateNumItems(numItems); err != nil {
		return Quote{}, err
	}
	if !e.ValidateDelta(delta) {
		return Quote{}, errOutOfBounds("exponential delta must be > 1")
	}
	if !e.ValidateSpotPrice(spot) {
		return Quote{}, errOutOfBounds("exponential spot price must be > 0")
	}

	one := decimal.NewFromInt(1)
	n := decimal.NewFromInt(int64(numItems))

	invDelta := one.DivRound(delta, divScale)
	invDeltaPowN := invDelta.Pow(n)

	newSpot := spot.Mul(invDeltaPowN)

	raw := spot.Mul(one.Sub(invDeltaPowN).DivRound(one.Sub(invDelta), divScale))

	tradeFee, protocolFee := splitFees(raw, feeMultiplier, protocolFeeMultiplier)

	return Quote{
		NewSpotPrice: newSpot,
		Value:        raw.Sub(tradeFee).Sub(protocolFee),
		TradeFee:     tradeFee,
		ProtocolFee:  protocolFee,
	}, nil
}
