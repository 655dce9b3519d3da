package curve

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fd1az/nftswap-engine/internal/apperror"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestLinear_BuyInfo(t *testing.T) {
	tests := []struct {
		name        string
		spot        string
		delta       string
		numItems    int
		fee         string
		protocolFee string
		wantSpot    string
		wantValue   string
		wantTrade   string
		wantProto   string
	}{
		{
			name:     "flat_pool_no_fees",
			spot:     "1", delta: "0", numItems: 3,
			fee: "0", protocolFee: "0",
			wantSpot: "1", wantValue: "3", wantTrade: "0", wantProto: "0",
		},
		{
			// n*p0 + d*n*(n+1)/2 = 5*2 + 0.1*15 = 11.5
			name:     "arithmetic_series",
			spot:     "2", delta: "0.1", numItems: 5,
			fee: "0", protocolFee: "0",
			wantSpot: "2.5", wantValue: "11.5", wantTrade: "0", wantProto: "0",
		},
		{
			// raw 0.2, 10% protocol fee on raw
			name:     "protocol_fee_on_raw",
			spot:     "0.1", delta: "0", numItems: 2,
			fee: "0", protocolFee: "0.1",
			wantSpot: "0.1", wantValue: "0.22", wantTrade: "0", wantProto: "0.02",
		},
		{
			// both fees computed on raw, not compounded
			name:     "trade_and_protocol_fee",
			spot:     "1", delta: "0", numItems: 1,
			fee: "0.05", protocolFee: "0.1",
			wantSpot: "1", wantValue: "1.15", wantTrade: "0.05", wantProto: "0.1",
		},
		{
			name:     "single_item_steps_once",
			spot:     "1", delta: "0.5", numItems: 1,
			fee: "0", protocolFee: "0",
			wantSpot: "1.5", wantValue: "1.5", wantTrade: "0", wantProto: "0",
		},
	}

	lin := NewLinear()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := lin.BuyInfo(d(tt.spot), d(tt.delta), tt.numItems, d(tt.fee), d(tt.protocolFee))
			if err != nil {
				t.Fatalf("BuyInfo() error = %v", err)
			}
			if !q.NewSpotPrice.Equal(d(tt.wantSpot)) {
				t.Errorf("NewSpotPrice = %s, want %s", q.NewSpotPrice, tt.wantSpot)
			}
			if !q.Value.Equal(d(tt.wantValue)) {
				t.Errorf("Value = %s, want %s", q.Value, tt.wantValue)
			}
			if !q.TradeFee.Equal(d(tt.wantTrade)) {
				t.Errorf("TradeFee = %s, want %s", q.TradeFee, tt.wantTrade)
			}
			if !q.ProtocolFee.Equal(d(tt.wantProto)) {
				t.Errorf("ProtocolFee = %s, want %s", q.ProtocolFee, tt.wantProto)
			}
		})
	}
}

func TestLinear_BuyInfo_SeriesProperty(t *testing.T) {
	// Total input before fees equals n*p0 + d*n*(n+1)/2 for a spread of
	// parameters.
	lin := NewLinear()
	spots := []string{"0.01", "1", "37.5"}
	deltas := []string{"0", "0.001", "2"}

	for _, spot := range spots {
		for _, delta := range deltas {
			for n := 1; n <= 20; n++ {
				q, err := lin.BuyInfo(d(spot), d(delta), n, decimal.Zero, decimal.Zero)
				if err != nil {
					t.Fatalf("BuyInfo(%s,%s,%d) error = %v", spot, delta, n, err)
				}
				nd := decimal.NewFromInt(int64(n))
				want := nd.Mul(d(spot)).Add(d(delta).Mul(nd).Mul(nd.Add(decimal.NewFromInt(1))).Div(decimal.NewFromInt(2)))
				if !q.Value.Equal(want) {
					t.Fatalf("BuyInfo(%s,%s,%d) = %s, want %s", spot, delta, n, q.Value, want)
				}
			}
		}
	}
}

func TestLinear_SellInfo(t *testing.T) {
	tests := []struct {
		name      string
		spot      string
		delta     string
		numItems  int
		wantSpot  string
		wantValue string
	}{
		{
			name: "flat_pool",
			spot: "1", delta: "0", numItems: 3,
			wantSpot: "1", wantValue: "3",
		},
		{
			// items at 2, 1.9, 1.8
			name: "arithmetic_series",
			spot: "2", delta: "0.1", numItems: 3,
			wantSpot: "1.7", wantValue: "5.7",
		},
		{
			// floor(1/0.4)+1 = 3 items priced (1, 0.6, 0.2); the last
			// two contribute nothing and the spot price clamps at zero
			name: "zero_floor_clamps",
			spot: "1", delta: "0.4", numItems: 5,
			wantSpot: "0", wantValue: "1.8",
		},
		{
			name: "zero_floor_exact_boundary",
			spot: "1", delta: "0.5", numItems: 2,
			wantSpot: "0", wantValue: "1.5",
		},
	}

	lin := NewLinear()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := lin.SellInfo(d(tt.spot), d(tt.delta), tt.numItems, decimal.Zero, decimal.Zero)
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

func TestLinear_RoundTrip(t *testing.T) {
	// Buying k items then selling them back with no fees and delta=0
	// returns the spot price to its original value.
	lin := NewLinear()
	spot := d("0.75")

	buy, err := lin.BuyInfo(spot, decimal.Zero, 4, decimal.Zero, decimal.Zero)
	if err != nil {
		t.Fatalf("BuyInfo() error = %v", err)
	}
	sell, err := lin.SellInfo(buy.NewSpotPrice, decimal.Zero, 4, decimal.Zero, decimal.Zero)
	if err != nil {
		t.Fatalf("SellInfo() error = %v", err)
	}

	if !sell.NewSpotPrice.Equal(spot) {
		t.Errorf("round-trip spot = %s, want %s", sell.NewSpotPrice, spot)
	}
	if !buy.Value.Equal(sell.Value) {
		t.Errorf("round-trip value mismatch: buy %s, sell %s", buy.Value, sell.Value)
	}
}

func TestLinear_InvalidNumItems(t *testing.T) {
	lin := NewLinear()
	for _, n := range []int{0, -1} {
		if _, err := lin.BuyInfo(d("1"), d("0.1"), n, decimal.Zero, decimal.Zero); err == nil {
			t.Errorf("BuyInfo(numItems=%d) expected error", n)
		}
		if _, err := lin.SellInfo(d("1"), d("0.1"), n, decimal.Zero, decimal.Zero); err == nil {
			t.Errorf("SellInfo(numItems=%d) expected error", n)
		}
	}
}

func TestLinear_Validate(t *testing.T) {
	lin := NewLinear()
	if !lin.ValidateDelta(decimal.Zero) {
		t.Error("ValidateDelta(0) = false, want true")
	}
	if lin.ValidateDelta(d("-0.1")) {
		t.Error("ValidateDelta(-0.1) = true, want false")
	}
	if !lin.ValidateSpotPrice(decimal.Zero) {
		t.Error("ValidateSpotPrice(0) = false, want true")
	}
}

func TestFeeTruncation(t *testing.T) {
	// Fees truncate toward zero at 18 places, never round up.
	raw := d("1.0000000000000000019") // 19 places
	tradeFee, protocolFee := splitFees(raw, d("1"), d("1"))
	want := d("1.000000000000000001")
	if !tradeFee.Equal(want) {
		t.Errorf("tradeFee = %s, want %s", tradeFee, want)
	}
	if !protocolFee.Equal(want) {
		t.Errorf("protocolFee = %s, want %s", protocolFee, want)
	}
}

func TestByName(t *testing.T) {
	for _, name := range Names() {
		c, err := ByName(name)
		if err != nil {
			t.Fatalf("ByName(%q) error = %v", name, err)
		}
		if c.Name() != name {
			t.Errorf("ByName(%q).Name() = %q", name, c.Name())
		}
	}

	if _, err := ByName("sigmoid"); !apperror.IsCode(err, apperror.CodeNotFound) {
		t.Errorf("ByName(sigmoid) code = %v, want NOT_FOUND", apperror.GetCode(err))
	}
}

func BenchmarkLinear_BuyInfo(b *testing.B) {
	lin := NewLinear()
	spot, delta := d("1.5"), d("0.01")
	fee, proto := d("0.01"), d("0.005")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		lin.BuyInfo(spot, delta, 10, fee, proto)
	}
}
