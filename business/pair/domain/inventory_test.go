package domain

import (
	"reflect"
	"testing"

	"github.com/fd1az/nftswap-engine/internal/apperror"
)

func TestOrderedInventory(t *testing.T) {
	inv := NewOrderedInventory(10, 20, 30)

	if inv.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", inv.Count())
	}
	if !inv.Holds(20) || inv.Holds(99) {
		t.Error("membership check failed")
	}

	// Oldest deposits go first.
	first, err := inv.First(2)
	if err != nil {
		t.Fatalf("First(2) error = %v", err)
	}
	if !reflect.DeepEqual(first, []uint64{10, 20}) {
		t.Errorf("First(2) = %v, want [10 20]", first)
	}
	// First is a peek, not a take.
	if inv.Count() != 3 {
		t.Errorf("Count() after First = %d, want 3", inv.Count())
	}

	if _, err := inv.First(4); !apperror.IsCode(err, apperror.CodeOutOfStock) {
		t.Errorf("First(4): code = %v, want OUT_OF_STOCK", apperror.GetCode(err))
	}

	// Duplicate adds are ignored.
	inv.Add([]uint64{20, 40})
	if inv.Count() != 4 {
		t.Errorf("Count() after Add = %d, want 4", inv.Count())
	}

	// Removal is all-or-nothing.
	if err := inv.Remove([]uint64{10, 99}); !apperror.IsCode(err, apperror.CodeItemUnavailable) {
		t.Errorf("Remove with missing id: code = %v, want ITEM_UNAVAILABLE", apperror.GetCode(err))
	}
	if inv.Count() != 4 {
		t.Errorf("Count() after failed Remove = %d, want 4", inv.Count())
	}

	if err := inv.Remove([]uint64{10, 30}); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if inv.Count() != 2 || inv.Holds(10) || inv.Holds(30) {
		t.Errorf("unexpected contents after Remove: %v", inv.Items())
	}
}

func TestSparseInventory(t *testing.T) {
	inv := NewSparseInventory(30, 10, 20)

	// Selection is ascending regardless of insertion order.
	items := inv.Items()
	if !reflect.DeepEqual(items, []uint64{10, 20, 30}) {
		t.Errorf("Items() = %v, want [10 20 30]", items)
	}
	first, err := inv.First(2)
	if err != nil {
		t.Fatalf("First(2) error = %v", err)
	}
	if !reflect.DeepEqual(first, []uint64{10, 20}) {
		t.Errorf("First(2) = %v, want [10 20]", first)
	}

	if _, err := inv.First(4); !apperror.IsCode(err, apperror.CodeOutOfStock) {
		t.Errorf("First(4): code = %v, want OUT_OF_STOCK", apperror.GetCode(err))
	}

	if err := inv.Remove([]uint64{10, 99}); !apperror.IsCode(err, apperror.CodeItemUnavailable) {
		t.Errorf("Remove with missing id: code = %v, want ITEM_UNAVAILABLE", apperror.GetCode(err))
	}
	if inv.Count() != 3 {
		t.Errorf("Count() after failed Remove = %d, want 3", inv.Count())
	}
}

func TestInventoryClone(t *testing.T) {
	for _, tc := range []struct {
		name string
		inv  Inventory
	}{
		{"ordered", NewOrderedInventory(1, 2, 3)},
		{"sparse", NewSparseInventory(1, 2, 3)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cp := tc.inv.Clone()
			if err := cp.Remove([]uint64{2}); err != nil {
				t.Fatalf("Remove() error = %v", err)
			}
			cp.Add([]uint64{4})

			if tc.inv.Count() != 3 || !tc.inv.Holds(2) || tc.inv.Holds(4) {
				t.Errorf("clone mutation leaked into original: %v", tc.inv.Items())
			}
		})
	}
}
