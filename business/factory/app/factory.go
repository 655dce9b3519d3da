// Package app implements the pair factory: the engine-level registry
// that creates pairs, holds protocol fee settings and allow-lists, and
// owns the settlement backends pairs trade against.
package app

import (
	"context"
	"encoding/binary"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"

	"github.com/fd1az/nftswap-engine/business/curve"
	"github.com/fd1az/nftswap-engine/business/pair/domain"
	"github.com/fd1az/nftswap-engine/business/pair/infra"
	"github.com/fd1az/nftswap-engine/internal/apperror"
	"github.com/fd1az/nftswap-engine/internal/asset"
	"github.com/fd1az/nftswap-engine/internal/logger"
)

// maxProtocolFee caps the protocol fee multiplier at 10%.
var maxProtocolFee = decimal.RequireFromString("0.1")

// Config carries factory-level settings.
type Config struct {
	Owner                 common.Address
	ProtocolFeeMultiplier decimal.Decimal
	ProtocolFeeRecipient  common.Address
	Log                   logger.LoggerInterface
	Sink                  domain.EventSink
}

// Factory creates and registers pairs. It implements
// domain.ProtocolConfig, so every pair consults it live for protocol
// fees and router trust.
type Factory struct {
	mu sync.RWMutex

	owner                 common.Address
	protocolFeeMultiplier decimal.Decimal
	protocolFeeRecipient  common.Address

	allowedCurves  map[string]bool
	allowedRouters map[common.Address]bool

	pairs   map[common.Address]*domain.Pair
	ledgers map[string]*infra.MemLedger
	vaults  map[string]*infra.MemVault
	nonce   uint64

	log  logger.LoggerInterface
	sink domain.EventSink
}

// NewFactory constructs a factory. The built-in curve variants are
// allowed out of the box; routers start empty and must be allowed
// explicitly.
func NewFactory(cfg Config) (*Factory, error) {
	if cfg.ProtocolFeeMultiplier.IsNegative() || cfg.ProtocolFeeMultiplier.GreaterThan(maxProtocolFee) {
		return nil, apperror.Validation(apperror.CodeInvalidInput, "protocol fee must be in [0, 0.1]")
	}
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}
	sink := cfg.Sink
	if sink == nil {
		sink = domain.NopSink{}
	}

	allowed := make(map[string]bool)
	for _, name := range curve.Names() {
		allowed[name] = true
	}

	return &Factory{
		owner:                 cfg.Owner,
		protocolFeeMultiplier: cfg.ProtocolFeeMultiplier,
		protocolFeeRecipient:  cfg.ProtocolFeeRecipient,
		allowedCurves:         allowed,
		allowedRouters:        make(map[common.Address]bool),
		pairs:                 make(map[common.Address]*domain.Pair),
		ledgers:               make(map[string]*infra.MemLedger),
		vaults:                make(map[string]*infra.MemVault),
		log:                   log,
		sink:                  sink,
	}, nil
}

// CreatePairParams describes the pair to create. InitialItemIDs and
// InitialTokenDeposit are funded from Owner after construction.
type CreatePairParams struct {
	Owner          common.Address
	PoolType       domain.PoolType
	Asset          *asset.Asset
	Collection     *asset.Collection
	CurveName      string
	SpotPrice      decimal.Decimal
	Delta          decimal.Decimal
	Fee            decimal.Decimal
	AssetRecipient common.Address

	// Sparse selects the non-enumerable inventory strategy.
	Sparse bool

	InitialItemIDs      []uint64
	InitialTokenDeposit asset.Amount
}

// CreatePair validates parameters against the curve and allow-lists,
// derives a deterministic pair address, registers the pair and funds
// its initial deposits.
func (f *Factory) CreatePair(ctx context.Context, params CreatePairParams) (*domain.Pair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.allowedCurves[params.CurveName] {
		return nil, apperror.New(apperror.CodeCurveNotAllowed,
			apperror.WithContext(params.CurveName))
	}
	bonding, err := curve.ByName(params.CurveName)
	if err != nil {
		return nil, err
	}

	addr := f.derivePairAddress(params)
	if _, exists := f.pairs[addr]; exists {
		return nil, apperror.New(apperror.CodePairExists, apperror.WithContext(addr.Hex()))
	}

	ledger := f.ledgerForLocked(params.Asset)
	vault := f.vaultForLocked(params.Collection)

	var inv domain.Inventory
	if params.Sparse {
		inv = domain.NewSparseInventory()
	} else {
		inv = domain.NewOrderedInventory()
	}

	p, err := domain.NewPair(domain.Config{
		Address:        addr,
		Owner:          params.Owner,
		PoolType:       params.PoolType,
		Asset:          params.Asset,
		Collection:     params.Collection,
		Curve:          bonding,
		SpotPrice:      params.SpotPrice,
		Delta:          params.Delta,
		Fee:            params.Fee,
		AssetRecipient: params.AssetRecipient,
		Inventory:      inv,
		Ledger:         ledger,
		Vault:          vault,
		Protocol:       f,
		Sink:           f.sink,
	})
	if err != nil {
		return nil, err
	}

	// Initial funding is all-or-nothing: the token deposit moves first
	// and is returned if the item deposit cannot complete, so a failed
	// creation strands nothing at the unregistered address.
	if params.InitialTokenDeposit.IsPositive() {
		if err := p.DepositToken(params.Owner, params.InitialTokenDeposit); err != nil {
			return nil, err
		}
	}
	if len(params.InitialItemIDs) > 0 {
		if err := p.DepositItems(params.Owner, params.InitialItemIDs); err != nil {
			if params.InitialTokenDeposit.IsPositive() {
				// The pair holds exactly the deposit, the refund cannot fail.
				_ = ledger.Transfer(addr, params.Owner, params.InitialTokenDeposit)
			}
			return nil, err
		}
	}

	f.pairs[addr] = p
	f.nonce++

	f.log.Info(ctx, "pair created",
		"pair", addr.Hex(),
		"pool_type", params.PoolType.String(),
		"curve", params.CurveName,
		"collection", params.Collection.Symbol(),
		"asset", params.Asset.Symbol(),
		"spot_price", params.SpotPrice.String(),
	)
	return p, nil
}

// derivePairAddress hashes the creation parameters and a factory nonce
// into a unique address.
func (f *Factory) derivePairAddress(params CreatePairParams) common.Address {
	var nonce [8]byte
	binary.BigEndian.PutUint64(nonce[:], f.nonce)
	h := crypto.Keccak256(
		params.Owner.Bytes(),
		params.Collection.Address().Bytes(),
		params.Asset.ID().Address().Bytes(),
		[]byte{byte(params.PoolType)},
		nonce[:],
	)
	return common.BytesToAddress(h[12:])
}

func (f *Factory) ledgerForLocked(a *asset.Asset) *infra.MemLedger {
	key := a.ID().String()
	if l, ok := f.ledgers[key]; ok {
		return l
	}
	l := infra.NewMemLedger(a)
	f.ledgers[key] = l
	return l
}

func (f *Factory) vaultForLocked(c *asset.Collection) *infra.MemVault {
	key := c.String()
	if v, ok := f.vaults[key]; ok {
		return v
	}
	v := infra.NewMemVault(c)
	f.vaults[key] = v
	return v
}

// LedgerFor returns the settlement ledger for an asset, creating it on
// first use.
func (f *Factory) LedgerFor(a *asset.Asset) *infra.MemLedger {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ledgerForLocked(a)
}

// VaultFor returns the item vault for a collection, creating it on
// first use.
func (f *Factory) VaultFor(c *asset.Collection) *infra.MemVault {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.vaultForLocked(c)
}

// -----------------------------------------------------------------------------
// Registry views
// -----------------------------------------------------------------------------

// IsPair reports whether addr is a registered pair.
func (f *Factory) IsPair(addr common.Address) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.pairs[addr]
	return ok
}

// PairByAddress resolves a registered pair.
func (f *Factory) PairByAddress(addr common.Address) (*domain.Pair, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	p, ok := f.pairs[addr]
	if !ok {
		return nil, apperror.New(apperror.CodePairNotFound, apperror.WithContext(addr.Hex()))
	}
	return p, nil
}

// PairsByCollection lists the registered pairs trading a collection, in
// address order.
func (f *Factory) PairsByCollection(c *asset.Collection) []*domain.Pair {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]*domain.Pair, 0)
	for _, p := range f.pairs {
		if p.Collection().Equals(c) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Address().Hex() < out[j].Address().Hex()
	})
	return out
}

// Pairs lists all registered pairs in address order.
func (f *Factory) Pairs() []*domain.Pair {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]*domain.Pair, 0, len(f.pairs))
	for _, p := range f.pairs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Address().Hex() < out[j].Address().Hex()
	})
	return out
}

// -----------------------------------------------------------------------------
// domain.ProtocolConfig
// -----------------------------------------------------------------------------

// ProtocolFeeMultiplier returns the current protocol fee rate.
func (f *Factory) ProtocolFeeMultiplier() decimal.Decimal {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.protocolFeeMultiplier
}

// ProtocolFeeRecipient returns the account protocol fees accrue to.
func (f *Factory) ProtocolFeeRecipient() common.Address {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.protocolFeeRecipient
}

// CallAllowed reports whether addr is an approved router.
func (f *Factory) CallAllowed(addr common.Address) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.allowedRouters[addr]
}

// CurveAllowed reports whether a curve variant may price new pairs.
func (f *Factory) CurveAllowed(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.allowedCurves[name]
}

// -----------------------------------------------------------------------------
// Admin operations, factory owner only
// -----------------------------------------------------------------------------

func (f *Factory) requireOwner(caller common.Address) error {
	if caller != f.owner {
		return apperror.New(apperror.CodeUntrustedCaller, apperror.WithContext(caller.Hex()))
	}
	return nil
}

// SetProtocolFeeMultiplier changes the protocol fee rate, capped at 10%.
func (f *Factory) SetProtocolFeeMultiplier(caller common.Address, fee decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.requireOwner(caller); err != nil {
		return err
	}
	if fee.IsNegative() || fee.GreaterThan(maxProtocolFee) {
		return apperror.Validation(apperror.CodeInvalidInput, "protocol fee must be in [0, 0.1]")
	}
	f.protocolFeeMultiplier = fee
	return nil
}

// SetProtocolFeeRecipient redirects protocol fee accrual.
func (f *Factory) SetProtocolFeeRecipient(caller, recipient common.Address) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.requireOwner(caller); err != nil {
		return err
	}
	f.protocolFeeRecipient = recipient
	return nil
}

// SetRouterAllowed adds or removes a router from the allow-list.
func (f *Factory) SetRouterAllowed(caller, router common.Address, allowed bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.requireOwner(caller); err != nil {
		return err
	}
	if allowed {
		f.allowedRouters[router] = true
	} else {
		delete(f.allowedRouters, router)
	}
	return nil
}

// SetCurveAllowed adds or removes a curve variant from the allow-list.
// Existing pairs keep their curve either way.
func (f *Factory) SetCurveAllowed(caller common.Address, name string, allowed bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.requireOwner(caller); err != nil {
		return err
	}
	if allowed {
		f.allowedCurves[name] = true
	} else {
		delete(f.allowedCurves, name)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Engine transaction boundary
// -----------------------------------------------------------------------------

// EngineState is a deep copy of all mutable engine state: every
// ledger, vault and pair. Strict batches capture one before executing
// and restore it when any leg fails.
type EngineState struct {
	Ledgers map[string]map[common.Address]asset.Amount
	Vaults  map[string]map[uint64]common.Address
	Pairs   map[common.Address]domain.State
}

// SnapshotState captures the whole engine.
func (f *Factory) SnapshotState() EngineState {
	f.mu.RLock()
	defer f.mu.RUnlock()

	s := EngineState{
		Ledgers: make(map[string]map[common.Address]asset.Amount, len(f.ledgers)),
		Vaults:  make(map[string]map[uint64]common.Address, len(f.vaults)),
		Pairs:   make(map[common.Address]domain.State, len(f.pairs)),
	}
	for key, l := range f.ledgers {
		s.Ledgers[key] = l.Snapshot()
	}
	for key, v := range f.vaults {
		s.Vaults[key] = v.Snapshot()
	}
	for addr, p := range f.pairs {
		s.Pairs[addr] = p.Snapshot()
	}
	return s
}

// RestoreState rewinds the whole engine to a snapshot.
func (f *Factory) RestoreState(s EngineState) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for key, l := range f.ledgers {
		if snap, ok := s.Ledgers[key]; ok {
			l.Restore(snap)
		}
	}
	for key, v := range f.vaults {
		if snap, ok := s.Vaults[key]; ok {
			v.Restore(snap)
		}
	}
	for addr, p := range f.pairs {
		if snap, ok := s.Pairs[addr]; ok {
			p.Restore(snap)
		}
	}
}
