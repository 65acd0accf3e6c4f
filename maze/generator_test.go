package maze

import (
	"bytes"
	"testing"

	"github.com/lixenwraith/gridpath/navigation"
)

func TestGenerateMazeShape(t *testing.T) {
	res := Generate(Config{Width: 20, Height: 14, Seed: 42})
	g := res.Grid

	// Rounded down to odd
	if g.Width() != 19 || g.Height() != 13 {
		t.Fatalf("Expected 19x13, got %dx%d", g.Width(), g.Height())
	}
	if res.Start != navigation.Pos(1, 1) || res.End != navigation.Pos(17, 11) {
		t.Errorf("Expected default endpoints (1,1)/(17,11), got %v/%v", res.Start, res.End)
	}
	for x := 0; x < g.Width(); x++ {
		if g.Walkable(navigation.Pos(x, 0)) || g.Walkable(navigation.Pos(x, g.Height()-1)) {
			t.Fatalf("Expected closed border at column %d", x)
		}
	}
	// Every odd cell is a room of the spanning tree
	for y := 1; y < g.Height()-1; y += 2 {
		for x := 1; x < g.Width()-1; x += 2 {
			if !g.Walkable(navigation.Pos(x, y)) {
				t.Errorf("Expected room at (%d,%d)", x, y)
			}
		}
	}
	if res.Seed != 42 {
		t.Errorf("Expected seed 42, got %d", res.Seed)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	cfg := Config{Width: 31, Height: 21, Braiding: 0.5, Seed: 7}
	a := Generate(cfg)
	b := Generate(cfg)

	if !bytes.Equal(a.Grid.Mask(), b.Grid.Mask()) {
		t.Error("Expected identical masks for identical seeds")
	}
	if a.Grid.Fingerprint() != b.Grid.Fingerprint() {
		t.Error("Expected identical fingerprints for identical seeds")
	}
}

func TestGenerateCorridorIsValid(t *testing.T) {
	for _, braiding := range []float64{0, 0.3, 1} {
		res := Generate(Config{Width: 25, Height: 25, Braiding: braiding, Seed: 99})
		if len(res.Corridor) == 0 {
			t.Fatalf("Braiding %.1f: expected a corridor", braiding)
		}
		if res.Corridor[0] != res.Start || res.Corridor[len(res.Corridor)-1] != res.End {
			t.Errorf("Braiding %.1f: corridor endpoints %v..%v", braiding, res.Corridor[0], res.Corridor[len(res.Corridor)-1])
		}
		for i, p := range res.Corridor {
			if !res.Grid.Walkable(p) {
				t.Fatalf("Corridor enters wall at %v", p)
			}
			if i > 0 {
				d := p.Sub(res.Corridor[i-1])
				if d.X*d.X+d.Y*d.Y != 1 {
					t.Fatalf("Corridor step %v is not orthogonal", d)
				}
			}
		}
	}
}

func TestGenerateRemoveBorders(t *testing.T) {
	res := Generate(Config{Width: 15, Height: 11, RemoveBorders: true, Seed: 3})
	g := res.Grid

	for x := 0; x < g.Width(); x++ {
		if !g.Walkable(navigation.Pos(x, 0)) {
			t.Fatalf("Expected open border at (%d,0)", x)
		}
	}
	if res.End.X != g.Width()-1 {
		t.Errorf("Expected end on the right edge, got %v", res.End)
	}
}

func TestGenerateScatter(t *testing.T) {
	open := Generate(Config{Kind: KindScatter, Width: 10, Height: 6, Density: 0, Seed: 1})
	for _, b := range open.Grid.Mask() {
		if b != 0 {
			t.Fatal("Expected fully open grid at density 0")
		}
	}

	solid := Generate(Config{Kind: KindScatter, Width: 10, Height: 6, Density: 1, Seed: 1})
	if !solid.Grid.Walkable(solid.Start) || !solid.Grid.Walkable(solid.End) {
		t.Error("Expected endpoints cleared at density 1")
	}
	if solid.Corridor != nil {
		t.Errorf("Expected no corridor through a solid grid, got %v", solid.Corridor)
	}

	start := navigation.Pos(3, 2)
	custom := Generate(Config{Kind: KindScatter, Width: 10, Height: 6, Density: 1, Start: &start, Seed: 1})
	if custom.Start != start {
		t.Errorf("Expected custom start %v, got %v", start, custom.Start)
	}
}

// TestGenerateFinderAgreesWithOracle runs the search on generated layouts
func TestGenerateFinderAgreesWithOracle(t *testing.T) {
	cfgs := []Config{
		{Width: 21, Height: 21, Seed: 11},
		{Width: 21, Height: 21, Braiding: 1, Seed: 12},
		{Kind: KindScatter, Width: 24, Height: 16, Density: 0.25, Seed: 13},
	}

	for _, cfg := range cfgs {
		res := Generate(cfg)
		field := navigation.NewDistanceField(res.Grid.Width(), res.Grid.Height())
		field.Compute(res.Grid, res.End)

		path := navigation.NewFinder(res.Grid).Find(res.Start, res.End)
		want := field.Distance(res.Start)
		if want < 0 {
			if len(path) != 0 {
				t.Errorf("Seed %d: expected no route, got %v", cfg.Seed, path)
			}
			continue
		}
		if path.Cost() != want {
			t.Errorf("Seed %d: expected cost %d, got %d", cfg.Seed, want, path.Cost())
		}
	}
}
