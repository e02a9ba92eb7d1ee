package book

import (
	"math/rand"
	"testing"
)

func TestRBTreeOrderedWalk(t *testing.T) {
	tree := NewRBTree()
	prices := []int64{50, 20, 80, 10, 30, 70, 90, 60, 40}
	for _, p := range prices {
		tree.GetOrCreate(p)
	}

	if tree.Size() != len(prices) {
		t.Fatalf("size = %d, want %d", tree.Size(), len(prices))
	}

	var asc []int64
	tree.WalkAsc(func(lvl *PriceLevel) bool {
		asc = append(asc, lvl.Price)
		return true
	})
	for i := 1; i < len(asc); i++ {
		if asc[i] <= asc[i-1] {
			t.Fatalf("ascending walk out of order: %v", asc)
		}
	}

	var desc []int64
	tree.WalkDesc(func(lvl *PriceLevel) bool {
		desc = append(desc, lvl.Price)
		return true
	})
	for i := 1; i < len(desc); i++ {
		if desc[i] >= desc[i-1] {
			t.Fatalf("descending walk out of order: %v", desc)
		}
	}
}

func TestRBTreeBestEnds(t *testing.T) {
	tree := NewRBTree()
	if tree.BestMin() != nil || tree.BestMax() != nil {
		t.Fatal("empty tree has no best levels")
	}

	for _, p := range []int64{5, 3, 9, 7, 1} {
		tree.GetOrCreate(p)
	}
	if lvl := tree.BestMin(); lvl == nil || lvl.Price != 1 {
		t.Errorf("BestMin = %v, want price 1", lvl)
	}
	if lvl := tree.BestMax(); lvl == nil || lvl.Price != 9 {
		t.Errorf("BestMax = %v, want price 9", lvl)
	}
}

func TestRBTreeGetOrCreateIdempotent(t *testing.T) {
	tree := NewRBTree()
	a := tree.GetOrCreate(42)
	b := tree.GetOrCreate(42)
	if a != b {
		t.Error("GetOrCreate must return the same level for the same price")
	}
	if tree.Size() != 1 {
		t.Errorf("size = %d, want 1", tree.Size())
	}
}

func TestRBTreeDelete(t *testing.T) {
	tree := NewRBTree()
	for _, p := range []int64{5, 3, 9} {
		tree.GetOrCreate(p)
	}

	if !tree.Delete(3) {
		t.Fatal("delete of present price should succeed")
	}
	if tree.Delete(3) {
		t.Fatal("second delete must fail")
	}
	if tree.Find(3) != nil {
		t.Fatal("deleted price still found")
	}
	if lvl := tree.BestMin(); lvl == nil || lvl.Price != 5 {
		t.Errorf("BestMin after delete = %v, want price 5", lvl)
	}
}

// Randomized churn: the tree must stay consistent with a reference map
// through interleaved inserts and deletes.
func TestRBTreeChurn(t *testing.T) {
	tree := NewRBTree()
	rng := rand.New(rand.NewSource(1))
	ref := make(map[int64]bool)

	for i := 0; i < 5000; i++ {
		price := int64(rng.Intn(500) + 1)
		if ref[price] {
			tree.Delete(price)
			delete(ref, price)
		} else {
			tree.GetOrCreate(price)
			ref[price] = true
		}
	}

	if tree.Size() != len(ref) {
		t.Fatalf("size = %d, want %d", tree.Size(), len(ref))
	}

	seen := 0
	prev := int64(0)
	tree.WalkAsc(func(lvl *PriceLevel) bool {
		if !ref[lvl.Price] {
			t.Fatalf("tree holds %d, reference does not", lvl.Price)
		}
		if lvl.Price <= prev {
			t.Fatalf("walk out of order at %d", lvl.Price)
		}
		prev = lvl.Price
		seen++
		return true
	})
	if seen != len(ref) {
		t.Fatalf("walk visited %d levels, want %d", seen, len(ref))
	}
}
