package domain

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/fd1az/nftswap-engine/internal/asset"
)

// TokenLedger settles fungible value between accounts. A ledger is
// scoped to a single asset; pairs hold balances under their own address
// like any other account.
type TokenLedger interface {
	BalanceOf(addr common.Address) asset.Amount
	Transfer(from, to common.Address, amount asset.Amount) error
}

// ItemVault tracks ownership of collection items by account. Transfers
// are all-or-nothing: if any id is not owned by from, nothing moves.
type ItemVault interface {
	OwnerOf(id uint64) (common.Address, bool)
	ItemsOf(addr common.Address) []uint64
	Transfer(from, to common.Address, ids []uint64) error
}

// ProtocolConfig is the pair's read-only view of factory-level
// settings. Pairs consult it on every swap so fee changes and
// allow-list updates take effect immediately.
type ProtocolConfig interface {
	ProtocolFeeMultiplier() decimal.Decimal
	ProtocolFeeRecipient() common.Address

	// CallAllowed reports whether addr is an approved router.
	CallAllowed(addr common.Address) bool
}
