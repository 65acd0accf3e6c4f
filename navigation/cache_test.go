package navigation

import (
	"slices"
	"sync"
	"testing"
)

func TestRouteCacheHitsAndMisses(t *testing.T) {
	g := gridFromRows(t, columnRows...)
	c := NewRouteCache(8)

	first := c.Solve(g, Pos(0, 0), Pos(4, 0))
	second := c.Solve(g, Pos(0, 0), Pos(4, 0))

	if hits, misses := c.Stats(); hits != 1 || misses != 1 {
		t.Errorf("Expected 1 hit and 1 miss, got %d and %d", hits, misses)
	}
	if !first.Raw.Equal(second.Raw) || !first.Smooth.Equal(second.Smooth) {
		t.Error("Expected cached result to match computed result")
	}

	// Editing the grid changes the fingerprint
	g.Set(Pos(2, 4), true)
	res := c.Solve(g, Pos(0, 0), Pos(4, 0))
	if res.Status != StatusNoRoute {
		t.Errorf("Expected no route after sealing the gap, got %v", res.Status)
	}
	if _, misses := c.Stats(); misses != 2 {
		t.Errorf("Expected 2 misses, got %d", misses)
	}
}

func TestRouteCacheResultsAreIndependent(t *testing.T) {
	g := gridFromRows(t, columnRows...)
	c := NewRouteCache(8)

	first := c.Solve(g, Pos(0, 0), Pos(4, 0))
	want := slices.Clone(first.Smooth)
	first.Raw[0] = Pos(9, 9)
	first.Smooth[0] = Pos(9, 9)

	second := c.Solve(g, Pos(0, 0), Pos(4, 0))
	if !second.Smooth.Equal(want) || second.Raw[0] != Pos(0, 0) {
		t.Fatalf("Expected cached paths untouched, got raw %v smooth %v", second.Raw, second.Smooth)
	}
	second.Smooth[1] = Pos(8, 8)

	third := c.Solve(g, Pos(0, 0), Pos(4, 0))
	if !third.Smooth.Equal(want) {
		t.Errorf("Expected hit results to be copies, got %v", third.Smooth)
	}
}

func TestRouteCacheEviction(t *testing.T) {
	g := gridFromRows(t, columnRows...)
	c := NewRouteCache(1)

	c.Solve(g, Pos(0, 0), Pos(4, 0))
	c.Solve(g, Pos(0, 0), Pos(4, 4))
	c.Solve(g, Pos(0, 0), Pos(4, 0))

	if c.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", c.Len())
	}
	if hits, misses := c.Stats(); hits != 0 || misses != 3 {
		t.Errorf("Expected 0 hits and 3 misses, got %d and %d", hits, misses)
	}

	c.Reset()
	if c.Len() != 0 {
		t.Errorf("Expected empty cache after Reset, got %d", c.Len())
	}
}

func TestRouteCacheSkipsExhausted(t *testing.T) {
	g := gridFromRows(t, columnRows...)
	c := NewRouteCache(4)

	res := c.Solve(g, Pos(0, 0), Pos(4, 0), WithMaxExpansions(1))
	if res.Status != StatusBudgetExhausted {
		t.Fatalf("Expected budget exhausted, got %v", res.Status)
	}
	if c.Len() != 0 {
		t.Errorf("Expected exhausted result not cached, got %d entries", c.Len())
	}
}

func TestRouteCacheConcurrent(t *testing.T) {
	g := gridFromRows(t, roomsRows...)
	c := NewRouteCache(16)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				res := c.Solve(g, Pos(0, 0), Pos(4, 4))
				if res.Cost != 27 {
					t.Errorf("Expected cost 27, got %d", res.Cost)
					return
				}
			}
		}()
	}
	wg.Wait()

	if hits, misses := c.Stats(); hits+misses != 160 {
		t.Errorf("Expected 160 lookups, got %d", hits+misses)
	}
}
