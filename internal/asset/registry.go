package asset

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Registry is a thread-safe registry of known assets and collections.
type Registry struct {
	byID          map[AssetID]*Asset
	bySymbol      map[string][]*Asset // symbol -> assets (can repeat across chains)
	collections   map[common.Address]*Collection
	collectionSym map[string]*Collection
	mu            sync.RWMutex
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:          make(map[AssetID]*Asset),
		bySymbol:      make(map[string][]*Asset),
		collections:   make(map[common.Address]*Collection),
		collectionSym: make(map[string]*Collection),
	}
}

// Register adds an asset to the registry.
// Panics if an asset with the same ID is already registered.
func (r *Registry) Register(a *Asset) {
	if a == nil {
		panic("asset: cannot register nil asset")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := a.ID()
	if _, exists := r.byID[id]; exists {
		panic(fmt.Sprintf("asset: %s already registered", id))
	}

	r.byID[id] = a
	r.bySymbol[a.Symbol()] = append(r.bySymbol[a.Symbol()], a)
}

// RegisterCollection adds an NFT collection to the registry.
func (r *Registry) RegisterCollection(c *Collection) {
	if c == nil {
		panic("asset: cannot register nil collection")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.collections[c.Address()]; exists {
		panic(fmt.Sprintf("asset: collection %s already registered", c))
	}
	r.collections[c.Address()] = c
	r.collectionSym[c.Symbol()] = c
}

// Get retrieves an asset by its ID.
func (r *Registry) Get(id AssetID) (*Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	return a, ok
}

// MustGet retrieves an asset by its ID, panics if not found.
func (r *Registry) MustGet(id AssetID) *Asset {
	a, ok := r.Get(id)
	if !ok {
		panic(fmt.Sprintf("asset: %s not found in registry", id))
	}
	return a
}

// GetBySymbol retrieves all assets with the given symbol.
func (r *Registry) GetBySymbol(symbol string) []*Asset {
	r.mu.RLock()
	defer r.mu.RUnlock()

	assets := r.bySymbol[symbol]
	if len(assets) == 0 {
		return nil
	}

	result := make([]*Asset, len(assets))
	copy(result, assets)
	return result
}

// GetCollection retrieves a collection by contract address.
func (r *Registry) GetCollection(addr common.Address) (*Collection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.collections[addr]
	return c, ok
}

// GetCollectionBySymbol retrieves a collection by symbol.
func (r *Registry) GetCollectionBySymbol(symbol string) (*Collection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.collectionSym[symbol]
	return c, ok
}

// Collections returns all registered collections.
func (r *Registry) Collections() []*Collection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Collection, 0, len(r.collections))
	for _, c := range r.collections {
		result = append(result, c)
	}
	return result
}

// Count returns the number of registered assets.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
