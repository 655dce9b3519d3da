package asset_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fd1az/nftswap-engine/internal/asset"
)

func TestAmount_Basic(t *testing.T) {
	oneETH := asset.RequireFromString(asset.ETH, "1")

	if oneETH.IsZero() {
		t.Error("expected non-zero amount")
	}
	if !oneETH.Decimal().Equal(decimal.NewFromInt(1)) {
		t.Errorf("expected 1, got %s", oneETH.Decimal())
	}
	if oneETH.String() != "1 ETH" {
		t.Errorf("expected '1 ETH', got '%s'", oneETH.String())
	}
}

func TestAmount_NegativeRejected(t *testing.T) {
	if _, err := asset.NewAmount(asset.ETH, decimal.NewFromInt(-1)); err == nil {
		t.Error("expected error for negative amount")
	}
	if _, err := asset.NewAmount(nil, decimal.NewFromInt(1)); err == nil {
		t.Error("expected error for nil asset")
	}
}

func TestAmount_Add(t *testing.T) {
	oneETH := asset.RequireFromString(asset.ETH, "1")
	twoETH := asset.RequireFromString(asset.ETH, "2")

	sum, err := oneETH.Add(twoETH)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sum.Equals(asset.RequireFromString(asset.ETH, "3")) {
		t.Errorf("expected 3 ETH, got %s", sum)
	}
}

func TestAmount_CannotMixAssets(t *testing.T) {
	oneETH := asset.RequireFromString(asset.ETH, "1")
	oneUSDC := asset.RequireFromString(asset.USDC, "1")

	if _, err := oneETH.Add(oneUSDC); err == nil {
		t.Error("expected error when adding different assets")
	}
	if oneETH.Equals(oneUSDC) {
		t.Error("amounts of different assets must not compare equal")
	}
}

func TestAmount_SubNegativeError(t *testing.T) {
	oneETH := asset.RequireFromString(asset.ETH, "1")
	twoETH := asset.RequireFromString(asset.ETH, "2")

	if _, err := oneETH.Sub(twoETH); err == nil {
		t.Error("expected error for negative result")
	}
}

func TestAmount_Comparisons(t *testing.T) {
	oneETH := asset.RequireFromString(asset.ETH, "1")
	twoETH := asset.RequireFromString(asset.ETH, "2")

	gt, err := twoETH.GreaterThan(oneETH)
	if err != nil || !gt {
		t.Errorf("GreaterThan = %v, %v", gt, err)
	}
	lt, err := oneETH.LessThan(twoETH)
	if err != nil || !lt {
		t.Errorf("LessThan = %v, %v", lt, err)
	}
	ge, err := oneETH.GreaterThanOrEqual(oneETH)
	if err != nil || !ge {
		t.Errorf("GreaterThanOrEqual = %v, %v", ge, err)
	}
}

func TestAssetID_Identity(t *testing.T) {
	a := asset.NewTokenAssetID(1, asset.AddrUSDCEthereum)
	b := asset.NewTokenAssetID(1, asset.AddrUSDCEthereum)
	if !a.Equals(b) {
		t.Error("same asset should have equal IDs")
	}

	other := asset.NewTokenAssetID(137, asset.AddrUSDCEthereum)
	if a.Equals(other) {
		t.Error("different chains should have different IDs")
	}
}

func TestRegistry(t *testing.T) {
	r := asset.DefaultRegistry()

	eth, ok := r.Get(asset.NewNativeAssetID(asset.ChainIDEthereum))
	if !ok {
		t.Fatal("ETH not found in registry")
	}
	if eth.Symbol() != "ETH" {
		t.Errorf("expected ETH, got %s", eth.Symbol())
	}

	bayc, ok := r.GetCollection(asset.AddrBAYC)
	if !ok {
		t.Fatal("BAYC not found in registry")
	}
	if bayc.Symbol() != "BAYC" {
		t.Errorf("expected BAYC, got %s", bayc.Symbol())
	}
}
