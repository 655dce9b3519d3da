package curve

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fd1az/nftswap-engine/internal/apperror"
)

func TestExponential_BuyInfo(t *testing.T) {
	tests := []struct {
		name      string
		spot      string
		delta     string
		numItems  int
		wantSpot  string
		wantValue string
	}{
		{
			// items priced 2, 4, 8
			name: "doubling",
			spot: "1", delta: "2", numItems: 3,
			wantSpot: "8", wantValue: "14",
		},
		{
			name: "single_item",
			spot: "4", delta: "1.5", numItems: 1,
			wantSpot: "6", wantValue: "6",
		},
		{
			// items priced 1.1, 1.21
			name: "ten_percent_step",
			spot: "1", delta: "1.1", numItems: 2,
			wantSpot: "1.21", wantValue: "2.31",
		},
	}

	exp := NewExponential()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := exp.BuyInfo(d(tt.spot), d(tt.delta), tt.numItems, decimal.Zero, decimal.Zero)
			if err != nil {
				t.Fatalf("BuyInfo() error = %v", err)
			}
			if !q.NewSpotPrice.Equal(d(tt.wantSpot)) {
				t.Errorf("NewSpotPrice = %s, want %s", q.NewSpotPrice, tt.wantSpot)
			}
			if !q.Value.Equal(d(tt.wantValue)) {
				t.Errorf("Value = %s, want %s", q.Value, tt.wantValue)
			}
		})
	}
}

func TestExponential_SpotPriceExactAndIncreasing(t *testing.T) {
	// newSpot = p0 * d^n exactly, and strictly increasing in n.
	exp := NewExponential()
	spot, delta := d("0.5"), d("1.25")

	prev := spot
	for n := 1; n <= 12; n++ {
		q, err := exp.BuyInfo(spot, delta, n, decimal.Zero, decimal.Zero)
		if err != nil {
			t.Fatalf("BuyInfo(n=%d) error = %v", n, err)
		}
		want := spot.Mul(delta.Pow(decimal.NewFromInt(int64(n))))
		if !q.NewSpotPrice.Equal(want) {
			t.Fatalf("NewSpotPrice(n=%d) = %s, want %s", n, q.NewSpotPrice, want)
		}
		if !q.NewSpotPrice.GreaterThan(prev) {
			t.Fatalf("NewSpotPrice(n=%d) = %s, not increasing from %s", n, q.NewSpotPrice, prev)
		}
		prev = q.NewSpotPrice
	}
}

func TestExponential_SellInfo(t *testing.T) {
	tests := []struct {
		name      string
		spot      string
		delta     string
		numItems  int
		wantSpot  string
		wantValue string
	}{
		{
			// items priced 8, 4, 2
			name: "halving",
			spot: "8", delta: "2", numItems: 3,
			wantSpot: "1", wantValue: "14",
		},
		{
			name: "single_item",
			spot: "6", delta: "1.5", numItems: 1,
			wantSpot: "4", wantValue: "6",
		},
	}

	exp := NewExponential()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := exp.SellInfo(d(tt.spot), d(tt.delta), tt.numItems, decimal.Zero, decimal.Zero)
			if err != nil {
				t.Fatalf("SellInfo() error = %v", err)
			}
			if !q.NewSpotPrice.Equal(d(tt.wantSpot)) {
				t.Errorf("NewSpotPrice = %s, want %s", q.NewSpotPrice, tt.wantSpot)
			}
			if !q.Value.Equal(d(tt.wantValue)) {
				t.Errorf("Value = %s, want %s", q.Value, tt.wantValue)
			}
		})
	}
}

func TestExponential_DeltaValidation(t *testing.T) {
	exp := NewExponential()

	for _, delta := range []string{"1", "0.99", "0"} {
		if exp.ValidateDelta(d(delta)) {
			t.Errorf("ValidateDelta(%s) = true, want false", delta)
		}
		_, err := exp.BuyInfo(d("1"), d(delta), 1, decimal.Zero, decimal.Zero)
		if !apperror.IsCode(err, apperror.CodeOutOfBounds) {
			t.Errorf("BuyInfo(delta=%s) code = %v, want OUT_OF_BOUNDS", delta, apperror.GetCode(err))
		}
		_, err = exp.SellInfo(d("1"), d(delta), 1, decimal.Zero, decimal.Zero)
		if !apperror.IsCode(err, apperror.CodeOutOfBounds) {
			t.Errorf("SellInfo(delta=%s) code = %v, want OUT_OF_BOUNDS", delta, apperror.GetCode(err))
		}
	}

	if !exp.ValidateDelta(d("1.000000001")) {
		t.Error("ValidateDelta(1.000000001) = false, want true")
	}
}

func TestExponential_SpotPriceValidation(t *testing.T) {
	exp := NewExponential()
	if exp.ValidateSpotPrice(decimal.Zero) {
		t.Error("ValidateSpotPrice(0) = true, want false")
	}
	_, err := exp.BuyInfo(decimal.Zero, d("2"), 1, decimal.Zero, decimal.Zero)
	if !apperror.IsCode(err, apperror.CodeOutOfBounds) {
		t.Errorf("BuyInfo(spot=0) code = %v, want OUT_OF_BOUNDS", apperror.GetCode(err))
	}
}

func TestExponential_Overflow(t *testing.T) {
	// Doubling a large spot price 128 times blows past the uint128
	// fixed-point ceiling; the curve must fail, not wrap or clamp.
	exp := NewExponential()
	_, err := exp.BuyInfo(d("1000000000000000000"), d("2"), 128, decimal.Zero, decimal.Zero)
	if !apperror.IsCode(err, apperror.CodeOutOfBounds) {
		t.Errorf("overflow code = %v, want OUT_OF_BOUNDS", apperror.GetCode(err))
	}
}

func TestExponential_FeesOnRaw(t *testing.T) {
	// raw = 2, trade fee 5%, protocol fee 10%, both on raw
	exp := NewExponential()
	q, err := exp.BuyInfo(d("1"), d("2"), 1, d("0.05"), d("0.1"))
	if err != nil {
		t.Fatalf("BuyInfo() error = %v", err)
	}
	if !q.TradeFee.Equal(d("0.1")) {
		t.Errorf("TradeFee = %s, want 0.1", q.TradeFee)
	}
	if !q.ProtocolFee.Equal(d("0.2")) {
		t.Errorf("ProtocolFee = %s, want 0.2", q.ProtocolFee)
	}
	if !q.Value.Equal(d("2.3")) {
		t.Errorf("Value = %s, want 2.3", q.Value)
	}
	if !q.Raw(true).Equal(d("2")) {
		t.Errorf("Raw = %s, want 2", q.Raw(true))
	}
}

func BenchmarkExponential_BuyInfo(b *testing.B) {
	exp := NewExponential()
	spot, delta := d("1.5"), d("1.01")
	fee, proto := d("0.01"), d("0.005")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		exp.BuyInfo(spot, delta, 10, fee, proto)
	}
}
