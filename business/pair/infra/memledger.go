// Package infra provides in-memory settlement backends for the pair
// context: a fungible token ledger and an item vault. Both support
// snapshot and restore for the strict-batch transaction boundary.
package infra

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/nftswap-engine/internal/apperror"
	"github.com/fd1az/nftswap-engine/internal/asset"
)

// MemLedger is a thread-safe in-memory token ledger scoped to one
// asset.
type MemLedger struct {
	mu       sync.RWMutex
	asset    *asset.Asset
	balances map[common.Address]asset.Amount
}

// NewMemLedger creates an empty ledger for the given asset.
func NewMemLedger(a *asset.Asset) *MemLedger {
	return &MemLedger{
		asset:    a,
		balances: make(map[common.Address]asset.Amount),
	}
}

// Asset returns the asset the ledger settles.
func (l *MemLedger) Asset() *asset.Asset {
	return l.asset
}

// BalanceOf returns the balance of addr, zero if unseen.
func (l *MemLedger) BalanceOf(addr common.Address) asset.Amount {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if bal, ok := l.balances[addr]; ok {
		return bal
	}
	return asset.Zero(l.asset)
}

// Mint credits newly issued balance to addr.
func (l *MemLedger) Mint(addr common.Address, amount asset.Amount) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	bal, ok := l.balances[addr]
	if !ok {
		bal = asset.Zero(l.asset)
	}
	next, err := bal.Add(amount)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInvalidInput, "mint")
	}
	l.balances[addr] = next
	return nil
}

// Transfer moves amount from one account to another. Fails with
// INSUFFICIENT_BALANCE without touching either account.
func (l *MemLedger) Transfer(from, to common.Address, amount asset.Amount) error {
	if amount.IsZero() {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	src, ok := l.balances[from]
	if !ok {
		src = asset.Zero(l.asset)
	}
	debited, err := src.Sub(amount)
	if err != nil {
		return apperror.New(apperror.CodeInsufficientBalance,
			apperror.WithContext(from.Hex()), apperror.WithCause(err))
	}
	dst, ok := l.balances[to]
	if !ok {
		dst = asset.Zero(l.asset)
	}
	credited, err := dst.Add(amount)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInvalidInput, "transfer")
	}
	l.balances[from] = debited
	l.balances[to] = credited
	return nil
}

// Snapshot captures all balances.
func (l *MemLedger) Snapshot() map[common.Address]asset.Amount {
	l.mu.RLock()
	defer l.mu.RUnlock()
	cp := make(map[common.Address]asset.Amount, len(l.balances))
	for addr, bal := range l.balances {
		cp[addr] = bal
	}
	return cp
}

// Restore rewinds all balances to a snapshot.
func (l *MemLedger) Restore(s map[common.Address]asset.Amount) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances = make(map[common.Address]asset.Amount, len(s))
	for addr, bal := range s {
		l.balances[addr] = bal
	}
}
