// Package domain contains the core domain types for the pair context.
package domain

// PoolType determines which side of the pair callers can trade
// against. Sides are named from the caller's perspective: a TOKEN pool
// pays out its fungible balance to callers selling items, an NFT pool
// sells items to callers paying tokens, and a TRADE pool does both.
type PoolType uint8

const (
	PoolTypeToken PoolType = iota
	PoolTypeNFT
	PoolTypeTrade
)

// AllowsItemBuys reports whether callers can buy items from the pool.
func (t PoolType) AllowsItemBuys() bool {
	return t == PoolTypeNFT || t == PoolTypeTrade
}

// AllowsItemSells reports whether callers can sell items into the pool.
func (t PoolType) AllowsItemSells() bool {
	return t == PoolTypeToken || t == PoolTypeTrade
}

// Valid reports whether the value is one of the three pool types.
func (t PoolType) Valid() bool {
	return t <= PoolTypeTrade
}

// String returns a human-readable representation.
func (t PoolType) String() string {
	switch t {
	case PoolTypeToken:
		return "TOKEN"
	case PoolTypeNFT:
		return "NFT"
	case PoolTypeTrade:
		return "TRADE"
	default:
		return "UNKNOWN"
	}
}
