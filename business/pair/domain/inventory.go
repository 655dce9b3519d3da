package domain

import (
	"sort"

	"github.com/fd1az/nftswap-engine/internal/apperror"
)

// Inventory is the item-set strategy a pair holds. The two
// implementations differ only in how "the next n items" are chosen for
// any-item buys; everything else about a pair is storage-agnostic.
type Inventory interface {
	Holds(id uint64) bool
	Count() int

	// Items enumerates held ids in the strategy's selection order.
	Items() []uint64

	// First returns the n items an any-item buy would take, without
	// removing them. Fails with OUT_OF_STOCK when fewer are held.
	First(n int) ([]uint64, error)

	Add(ids []uint64)
	Remove(ids []uint64) error

	// Clone returns an independent deep copy, used by the strict-batch
	// transaction boundary.
	Clone() Inventory
}

// orderedInventory keeps insertion order; any-item buys take the
// oldest deposits first.
type orderedInventory struct {
	order []uint64
	index map[uint64]int
}

// NewOrderedInventory creates an enumerable, insertion-ordered item set.
func NewOrderedInventory(ids ...uint64) Inventory {
	inv := &orderedInventory{index: make(map[uint64]int, len(ids))}
	inv.Add(ids)
	return inv
}

func (inv *orderedInventory) Holds(id uint64) bool {
	_, ok := inv.index[id]
	return ok
}

func (inv *orderedInventory) Count() int {
	return len(inv.order)
}

func (inv *orderedInventory) Items() []uint64 {
	out := make([]uint64, len(inv.order))
	copy(out, inv.order)
	return out
}

func (inv *orderedInventory) First(n int) ([]uint64, error) {
	if n > len(inv.order) {
		return nil, apperror.New(apperror.CodeOutOfStock)
	}
	out := make([]uint64, n)
	copy(out, inv.order[:n])
	return out, nil
}

func (inv *orderedInventory) Add(ids []uint64) {
	for _, id := range ids {
		if _, ok := inv.index[id]; ok {
			continue
		}
		inv.index[id] = len(inv.order)
		inv.order = append(inv.order, id)
	}
}

func (inv *orderedInventory) Remove(ids []uint64) error {
	for _, id := range ids {
		if _, ok := inv.index[id]; !ok {
			return apperror.New(apperror.CodeItemUnavailable)
		}
	}
	for _, id := range ids {
		pos := inv.index[id]
		last := len(inv.order) - 1
		moved := inv.order[last]
		inv.order[pos] = moved
		inv.index[moved] = pos
		inv.order = inv.order[:last]
		delete(inv.index, id)
	}
	return nil
}

func (inv *orderedInventory) Clone() Inventory {
	cp := &orderedInventory{
		order: make([]uint64, len(inv.order)),
		index: make(map[uint64]int, len(inv.index)),
	}
	copy(cp.order, inv.order)
	for id, pos := range inv.index {
		cp.index[id] = pos
	}
	return cp
}

// sparseInventory tracks membership only; any-item buys take ascending
// ids so selection stays deterministic without keeping an order.
type sparseInventory struct {
	held map[uint64]struct{}
}

// NewSparseInventory creates a non-enumerable item set.
func NewSparseInventory(ids ...uint64) Inventory {
	inv := &sparseInventory{held: make(map[uint64]struct{}, len(ids))}
	inv.Add(ids)
	return inv
}

func (inv *sparseInventory) Holds(id uint64) bool {
	_, ok := inv.held[id]
	return ok
}

func (inv *sparseInventory) Count() int {
	return len(inv.held)
}

func (inv *sparseInventory) Items() []uint64 {
	out := make([]uint64, 0, len(inv.held))
	for id := range inv.held {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (inv *sparseInventory) First(n int) ([]uint64, error) {
	if n > len(inv.held) {
		return nil, apperror.New(apperror.CodeOutOfStock)
	}
	return inv.Items()[:n], nil
}

func (inv *sparseInventory) Add(ids []uint64) {
	for _, id := range ids {
		inv.held[id] = struct{}{}
	}
}

func (inv *sparseInventory) Remove(ids []uint64) error {
	for _, id := range ids {
		if _, ok := inv.held[id]; !ok {
			return apperror.New(apperror.CodeItemUnavailable)
		}
	}
	for _, id := range ids {
		delete(inv.held, id)
	}
	return nil
}

func (inv *sparseInventory) Clone() Inventory {
	cp := &sparseInventory{held: make(map[uint64]struct{}, len(inv.held))}
	for id := range inv.held {
		cp.held[id] = struct{}{}
	}
	return cp
}
