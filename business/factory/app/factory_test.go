package app

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/fd1az/nftswap-engine/business/pair/domain"
	"github.com/fd1az/nftswap-engine/internal/apperror"
	"github.com/fd1az/nftswap-engine/internal/asset"
)

var (
	adminAddr  = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	lpAddr     = common.HexToAddress("0x0000000000000000000000000000000000000012")
	feeAddr    = common.HexToAddress("0x00000000000000000000000000000000000000fe")
	routerAddr = common.HexToAddress("0x00000000000000000000000000000000000000e1")
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestFactory(t *testing.T, fee string) *Factory {
	t.Helper()
	f, err := NewFactory(Config{
		Owner:                 adminAddr,
		ProtocolFeeMultiplier: d(fee),
		ProtocolFeeRecipient:  feeAddr,
	})
	if err != nil {
		t.Fatalf("NewFactory() error = %v", err)
	}
	return f
}

func TestNewFactory_FeeCap(t *testing.T) {
	_, err := NewFactory(Config{
		Owner:                 adminAddr,
		ProtocolFeeMultiplier: d("0.11"),
		ProtocolFeeRecipient:  feeAddr,
	})
	if !apperror.IsCode(err, apperror.CodeInvalidInput) {
		t.Fatalf("code = %v, want INVALID_INPUT", apperror.GetCode(err))
	}
}

func TestFactory_CreatePair(t *testing.T) {
	f := newTestFactory(t, "0.005")
	ctx := context.Background()

	if err := f.VaultFor(asset.BAYC).Mint(lpAddr, []uint64{1, 2, 3}); err != nil {
		t.Fatalf("vault mint: %v", err)
	}

	p, err := f.CreatePair(ctx, CreatePairParams{
		Owner:          lpAddr,
		PoolType:       domain.PoolTypeNFT,
		Asset:          asset.ETH,
		Collection:     asset.BAYC,
		CurveName:      "linear",
		SpotPrice:      d("1.5"),
		Delta:          d("0.1"),
		InitialItemIDs: []uint64{1, 2, 3},
	})
	if err != nil {
		t.Fatalf("CreatePair() error = %v", err)
	}

	if !f.IsPair(p.Address()) {
		t.Error("created pair not registered")
	}
	got, err := f.PairByAddress(p.Address())
	if err != nil || got != p {
		t.Errorf("PairByAddress() = %v, %v", got, err)
	}
	if p.InventoryCount() != 3 {
		t.Errorf("inventory = %d, want 3", p.InventoryCount())
	}
	if owner, _ := f.VaultFor(asset.BAYC).OwnerOf(1); owner != p.Address() {
		t.Errorf("item 1 owner = %s, want pair", owner.Hex())
	}

	// A second pair with identical parameters gets a distinct address
	// via the factory nonce.
	p2, err := f.CreatePair(ctx, CreatePairParams{
		Owner:      lpAddr,
		PoolType:   domain.PoolTypeNFT,
		Asset:      asset.ETH,
		Collection: asset.BAYC,
		CurveName:  "linear",
		SpotPrice:  d("1.5"),
		Delta:      d("0.1"),
	})
	if err != nil {
		t.Fatalf("second CreatePair() error = %v", err)
	}
	if p2.Address() == p.Address() {
		t.Error("pair addresses collide")
	}
	if got := len(f.Pairs()); got != 2 {
		t.Errorf("Pairs() = %d, want 2", got)
	}
	if got := len(f.PairsByCollection(asset.BAYC)); got != 2 {
		t.Errorf("PairsByCollection(BAYC) = %d, want 2", got)
	}
	if got := len(f.PairsByCollection(asset.Azuki)); got != 0 {
		t.Errorf("PairsByCollection(Azuki) = %d, want 0", got)
	}
}

func TestFactory_CreatePair_UnderfundedDeposit(t *testing.T) {
	// The owner holds the items but not the token deposit. Creation must
	// fail without moving the items to the never-registered address.
	f := newTestFactory(t, "0")
	ctx := context.Background()

	if err := f.VaultFor(asset.BAYC).Mint(lpAddr, []uint64{7}); err != nil {
		t.Fatalf("vault mint: %v", err)
	}

	_, err := f.CreatePair(ctx, CreatePairParams{
		Owner:               lpAddr,
		PoolType:            domain.PoolTypeTrade,
		Asset:               asset.ETH,
		Collection:          asset.BAYC,
		CurveName:           "linear",
		SpotPrice:           d("1"),
		Delta:               d("0"),
		InitialItemIDs:      []uint64{7},
		InitialTokenDeposit: asset.RequireFromString(asset.ETH, "5"),
	})
	if !apperror.IsCode(err, apperror.CodeInsufficientBalance) {
		t.Fatalf("code = %v, want INSUFFICIENT_BALANCE", apperror.GetCode(err))
	}

	if got := len(f.Pairs()); got != 0 {
		t.Errorf("Pairs() = %d, want 0", got)
	}
	if owner, _ := f.VaultFor(asset.BAYC).OwnerOf(7); owner != lpAddr {
		t.Errorf("item 7 owner = %s, want the owner", owner.Hex())
	}
}

func TestFactory_CreatePair_ItemFailureRefundsDeposit(t *testing.T) {
	// The deposit is funded but one initial item belongs to someone
	// else. Creation must fail and hand the deposit back.
	f := newTestFactory(t, "0")
	ctx := context.Background()

	if err := f.LedgerFor(asset.ETH).Mint(lpAddr, asset.RequireFromString(asset.ETH, "5")); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := f.VaultFor(asset.BAYC).Mint(adminAddr, []uint64{9}); err != nil {
		t.Fatalf("vault mint: %v", err)
	}

	_, err := f.CreatePair(ctx, CreatePairParams{
		Owner:               lpAddr,
		PoolType:            domain.PoolTypeTrade,
		Asset:               asset.ETH,
		Collection:          asset.BAYC,
		CurveName:           "linear",
		SpotPrice:           d("1"),
		Delta:               d("0"),
		InitialItemIDs:      []uint64{9},
		InitialTokenDeposit: asset.RequireFromString(asset.ETH, "5"),
	})
	if !apperror.IsCode(err, apperror.CodeItemNotOwned) {
		t.Fatalf("code = %v, want ITEM_NOT_OWNED", apperror.GetCode(err))
	}

	if got := len(f.Pairs()); got != 0 {
		t.Errorf("Pairs() = %d, want 0", got)
	}
	if got := f.LedgerFor(asset.ETH).BalanceOf(lpAddr); !got.Equals(asset.RequireFromString(asset.ETH, "5")) {
		t.Errorf("owner balance = %s, want 5 ETH", got)
	}
}

func TestFactory_CreatePair_CurveNotAllowed(t *testing.T) {
	f := newTestFactory(t, "0")
	ctx := context.Background()

	if err := f.SetCurveAllowed(adminAddr, "exponential", false); err != nil {
		t.Fatalf("SetCurveAllowed() error = %v", err)
	}
	_, err := f.CreatePair(ctx, CreatePairParams{
		Owner:      lpAddr,
		PoolType:   domain.PoolTypeNFT,
		Asset:      asset.ETH,
		Collection: asset.BAYC,
		CurveName:  "exponential",
		SpotPrice:  d("1"),
		Delta:      d("1.1"),
	})
	if !apperror.IsCode(err, apperror.CodeCurveNotAllowed) {
		t.Fatalf("code = %v, want CURVE_NOT_ALLOWED", apperror.GetCode(err))
	}
}

func TestFactory_PairNotFound(t *testing.T) {
	f := newTestFactory(t, "0")
	_, err := f.PairByAddress(common.HexToAddress("0x00000000000000000000000000000000000000dd"))
	if !apperror.IsCode(err, apperror.CodePairNotFound) {
		t.Fatalf("code = %v, want PAIR_NOT_FOUND", apperror.GetCode(err))
	}
}

func TestFactory_AdminGuards(t *testing.T) {
	f := newTestFactory(t, "0.005")
	stranger := lpAddr

	if err := f.SetProtocolFeeMultiplier(stranger, d("0.01")); !apperror.IsCode(err, apperror.CodeUntrustedCaller) {
		t.Errorf("SetProtocolFeeMultiplier: code = %v, want UNTRUSTED_CALLER", apperror.GetCode(err))
	}
	if err := f.SetProtocolFeeRecipient(stranger, stranger); !apperror.IsCode(err, apperror.CodeUntrustedCaller) {
		t.Errorf("SetProtocolFeeRecipient: code = %v, want UNTRUSTED_CALLER", apperror.GetCode(err))
	}
	if err := f.SetRouterAllowed(stranger, routerAddr, true); !apperror.IsCode(err, apperror.CodeUntrustedCaller) {
		t.Errorf("SetRouterAllowed: code = %v, want UNTRUSTED_CALLER", apperror.GetCode(err))
	}
	if err := f.SetCurveAllowed(stranger, "linear", false); !apperror.IsCode(err, apperror.CodeUntrustedCaller) {
		t.Errorf("SetCurveAllowed: code = %v, want UNTRUSTED_CALLER", apperror.GetCode(err))
	}

	// The cap applies to updates too.
	if err := f.SetProtocolFeeMultiplier(adminAddr, d("0.2")); !apperror.IsCode(err, apperror.CodeInvalidInput) {
		t.Errorf("SetProtocolFeeMultiplier(0.2): code = %v, want INVALID_INPUT", apperror.GetCode(err))
	}
	if err := f.SetProtocolFeeMultiplier(adminAddr, d("0.1")); err != nil {
		t.Errorf("SetProtocolFeeMultiplier(0.1) error = %v", err)
	}
	if !f.ProtocolFeeMultiplier().Equal(d("0.1")) {
		t.Errorf("fee = %s, want 0.1", f.ProtocolFeeMultiplier())
	}

	if err := f.SetRouterAllowed(adminAddr, routerAddr, true); err != nil {
		t.Fatalf("SetRouterAllowed() error = %v", err)
	}
	if !f.CallAllowed(routerAddr) {
		t.Error("router should be allowed")
	}
	if err := f.SetRouterAllowed(adminAddr, routerAddr, false); err != nil {
		t.Fatalf("SetRouterAllowed() error = %v", err)
	}
	if f.CallAllowed(routerAddr) {
		t.Error("router should have been removed")
	}
}

func TestFactory_SnapshotRestore(t *testing.T) {
	f := newTestFactory(t, "0")
	ctx := context.Background()

	ledger := f.LedgerFor(asset.ETH)
	if err := ledger.Mint(lpAddr, asset.RequireFromString(asset.ETH, "10")); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := f.VaultFor(asset.BAYC).Mint(lpAddr, []uint64{1, 2}); err != nil {
		t.Fatalf("vault mint: %v", err)
	}

	p, err := f.CreatePair(ctx, CreatePairParams{
		Owner:          lpAddr,
		PoolType:       domain.PoolTypeNFT,
		Asset:          asset.ETH,
		Collection:     asset.BAYC,
		CurveName:      "linear",
		SpotPrice:      d("1"),
		Delta:          d("0"),
		InitialItemIDs: []uint64{1, 2},
	})
	if err != nil {
		t.Fatalf("CreatePair() error = %v", err)
	}

	snap := f.SnapshotState()

	// Mutate everything the snapshot covers.
	req := domain.SwapRequest{Caller: lpAddr, Recipient: lpAddr}
	if _, _, err := p.SwapTokenForAnyItems(ctx, req, 2, asset.RequireFromString(asset.ETH, "5")); err != nil {
		t.Fatalf("swap error = %v", err)
	}
	if p.InventoryCount() != 0 {
		t.Fatalf("inventory = %d, want 0", p.InventoryCount())
	}

	f.RestoreState(snap)

	if p.InventoryCount() != 2 {
		t.Errorf("restored inventory = %d, want 2", p.InventoryCount())
	}
	if got := ledger.BalanceOf(lpAddr); !got.Equals(asset.RequireFromString(asset.ETH, "10")) {
		t.Errorf("restored balance = %s, want 10 ETH", got)
	}
	if owner, _ := f.VaultFor(asset.BAYC).OwnerOf(1); owner != p.Address() {
		t.Errorf("restored item 1 owner = %s, want pair", owner.Hex())
	}
}
