package infra

import (
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/nftswap-engine/internal/apperror"
	"github.com/fd1az/nftswap-engine/internal/asset"
)

// MemVault is a thread-safe in-memory ownership registry for one
// collection's items.
type MemVault struct {
	mu         sync.RWMutex
	collection *asset.Collection
	owners     map[uint64]common.Address
}

// NewMemVault creates an empty vault for the given collection.
func NewMemVault(c *asset.Collection) *MemVault {
	return &MemVault{
		collection: c,
		owners:     make(map[uint64]common.Address),
	}
}

// Collection returns the collection the vault tracks.
func (v *MemVault) Collection() *asset.Collection {
	return v.collection
}

// OwnerOf returns the owner of an item id.
func (v *MemVault) OwnerOf(id uint64) (common.Address, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	owner, ok := v.owners[id]
	return owner, ok
}

// ItemsOf lists the ids owned by addr in ascending order.
func (v *MemVault) ItemsOf(addr common.Address) []uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	var out []uint64
	for id, owner := range v.owners {
		if owner == addr {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Mint assigns brand-new ids to an owner. Fails if any id exists.
func (v *MemVault) Mint(to common.Address, ids []uint64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, id := range ids {
		if _, ok := v.owners[id]; ok {
			return apperror.Validation(apperror.CodeInvalidState, "item already minted")
		}
	}
	for _, id := range ids {
		v.owners[id] = to
	}
	return nil
}

// Transfer moves ids between owners. All-or-nothing: if any id is not
// owned by from, nothing moves.
func (v *MemVault) Transfer(from, to common.Address, ids []uint64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, id := range ids {
		owner, ok := v.owners[id]
		if !ok || owner != from {
			return apperror.New(apperror.CodeItemNotOwned,
				apperror.WithContext(from.Hex()))
		}
	}
	for _, id := range ids {
		v.owners[id] = to
	}
	return nil
}

// Snapshot captures all ownership records.
func (v *MemVault) Snapshot() map[uint64]common.Address {
	v.mu.RLock()
	defer v.mu.RUnlock()
	cp := make(map[uint64]common.Address, len(v.owners))
	for id, owner := range v.owners {
		cp[id] = owner
	}
	return cp
}

// Restore rewinds ownership to a snapshot.
func (v *MemVault) Restore(s map[uint64]common.Address) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.owners = make(map[uint64]common.Address, len(s))
	for id, owner := range s {
		v.owners[id] = owner
	}
}
