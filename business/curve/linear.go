package curve

import "github.com/shopspring/decimal"

// Linear adjusts the spot price additively: each item bought raises it
// by delta, each item sold lowers it by delta. The batch value is the
// sum of an arithmetic series.
type Linear struct{}

// NewLinear creates the linear curve.
func NewLinear() Linear {
	return Linear{}
}

// Name implements Curve.
func (Linear) Name() string { return "linear" }

// ValidateDelta accepts any non-negative delta. delta = 0 gives a
// constant-price pool.
func (Linear) ValidateDelta(delta decimal.Decimal) bool {
	return !delta.IsNegative()
}

// ValidateSpotPrice accepts any non-negative price.
func (Linear) ValidateSpotPrice(spot decimal.Decimal) bool {
	return !spot.IsNegative()
}

// BuyInfo implements Curve. The first item is priced at spot+delta, the
// n-th at spot+n*delta, so the raw value is
// n*spot + delta*n*(n+1)/2.
func (Linear) BuyInfo(spot, delta decimal.Decimal, numItems int, feeMultiplier, protocolFeeMultiplier decimal.Decimal) (Quote, error) {
	if err := validateNumItems(numItems); err != nil {
		return Quote{}, err
	}

	n := decimal.NewFromInt(int64(numItems))
	newSpot := spot.Add(delta.Mul(n))

	raw := n.Mul(spot).Add(delta.Mul(n).Mul(n.Add(decimal.NewFromInt(1))).Div(two))

	tradeFee, protocolFee := splitFees(raw, feeMultiplier, protocolFeeMultiplier)

	return Quote{
		NewSpotPrice: newSpot,
		Value:        raw.Add(tradeFee).Add(protocolFee),
		TradeFee:     tradeFee,
		ProtocolFee:  protocolFee,
	}, nil
}

// SellInfo implements Curve. The first item sells at spot, the n-th at
// spot-(n-1)*delta. If the full batch would drive the spot price below
// zero, the new spot price clamps to zero and only the items priced
// above zero contribute value; the call still succeeds. Callers depend
// on the zero floor, so this never fails the way the exponential
// curve's overflow does.
func (Linear) SellInfo(spot, delta decimal.Decimal, numItems int, feeMultiplier, protocolFeeMultiplier decimal.Decimal) (Quote, error) {
	if err := validateNumItems(numItems); err != nil {
		return Quote{}, err
	}

	n := decimal.NewFromInt(int64(numItems))
	newSpot := spot.Sub(delta.Mul(n))

	// Zero floor: price as many items as stay non-negative, clamp the
	// rest.
	if newSpot.IsNegative() {
		// floor(spot/delta)+1 items can be sold before the price would
		// go negative. delta is positive here, otherwise newSpot could
		// not be negative.
		itemsTillZero := spot.Div(delta).Floor().Add(decimal.NewFromInt(1))
		if itemsTillZero.LessThan(n) {
			n = itemsTillZero
		}
		newSpot = decimal.Zero
	}

	raw := n.Mul(spot).Sub(delta.Mul(n).Mul(n.Sub(decimal.NewFromInt(1))).Div(two))

	tradeFee, protocolFee := splitFees(raw, feeMultiplier, protocolFeeMultiplier)

	return Quote{
		NewSpotPrice: newSpot,
		Value:        raw.Sub(tradeFee).Sub(protocolFee),
		TradeFee:     tradeFee,
		ProtocolFee:  protocolFee,
	}, nil
}

var two = decimal.NewFromInt(2)
