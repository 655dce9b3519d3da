package asset

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Collection represents the metadata of an NFT collection, the
// indivisible side of a pair. Items inside a collection are identified
// by uint64 ids; the engine never does arithmetic on ids.
type Collection struct {
	chainID uint64
	address common.Address
	symbol  string
	name    string
}

// NewCollection creates a Collection reference entity.
func NewCollection(chainID uint64, addr common.Address, symbol, name string) *Collection {
	if addr == (common.Address{}) {
		panic("asset: collection address cannot be zero")
	}
	if symbol == "" {
		panic("asset: empty collection symbol")
	}
	return &Collection{
		chainID: chainID,
		address: addr,
		symbol:  symbol,
		name:    name,
	}
}

// ChainID returns the chain ID.
func (c *Collection) ChainID() uint64 {
	return c.chainID
}

// Address returns the collection contract address.
func (c *Collection) Address() common.Address {
	return c.address
}

// Symbol returns the collection ticker (e.g., "BAYC").
func (c *Collection) Symbol() string {
	return c.symbol
}

// Name returns the human-readable name.
func (c *Collection) Name() string {
	if c.name == "" {
		return c.symbol
	}
	return c.name
}

// String returns a human-readable representation.
func (c *Collection) String() string {
	return fmt.Sprintf("%s(%d/%s)", c.symbol, c.chainID, c.address.Hex())
}

// Equals compares two Collections by chain and address.
func (c *Collection) Equals(other *Collection) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.chainID == other.chainID && c.address == other.address
}
