package navigation

import (
	"testing"
)

func TestSimplifyDegenerate(t *testing.T) {
	g, _ := NewEmptyGrid(3, 3)
	s := NewSimplifier(g)

	if out := s.Simplify(nil); out != nil {
		t.Errorf("Expected nil for empty path, got %v", out)
	}
	if out := s.Simplify(Path{Pos(1, 1)}); !out.Equal(Path{Pos(1, 1)}) {
		t.Errorf("Expected single point preserved, got %v", out)
	}
}

func TestSimplifyOpenGrid(t *testing.T) {
	g, _ := NewEmptyGrid(5, 5)
	s := NewSimplifier(g)

	tests := []struct {
		name     string
		in       Path
		expected Path
	}{
		{"Diagonal unchanged", Path{Pos(0, 0), Pos(4, 4)}, Path{Pos(0, 0), Pos(4, 4)}},
		{"L collapses to diagonal", Path{Pos(0, 0), Pos(4, 0), Pos(4, 4)}, Path{Pos(0, 0), Pos(4, 4)}},
		{"Collinear axis points merge", Path{Pos(0, 0), Pos(2, 0), Pos(4, 0)}, Path{Pos(0, 0), Pos(4, 0)}},
		{"Reversal keeps the turn", Path{Pos(0, 0), Pos(4, 0), Pos(1, 0)}, Path{Pos(0, 0), Pos(4, 0), Pos(1, 0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if out := s.Simplify(tt.in); !out.Equal(tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, out)
			}
		})
	}
}

func TestSimplifyColumnDetour(t *testing.T) {
	g := gridFromRows(t, columnRows...)
	raw := NewFinder(g).Find(Pos(0, 0), Pos(4, 0))
	smooth := NewSimplifier(g).Simplify(raw)

	expected := Path{Pos(0, 0), Pos(1, 3), Pos(2, 4), Pos(3, 3), Pos(4, 0)}
	if !smooth.Equal(expected) {
		t.Fatalf("Expected %v, got %v", expected, smooth)
	}
	for _, c := range smooth.Cells() {
		if c.X == 2 && c.Y < 4 {
			t.Errorf("Smoothed path crosses the column at %v", c)
		}
	}
}

func TestSimplifyKnownRoutes(t *testing.T) {
	tests := []struct {
		name        string
		rows        []string
		start, goal Position
		expected    Path
	}{
		{"rooms", roomsRows, Pos(0, 0), Pos(4, 4),
			Path{Pos(0, 0), Pos(0, 3), Pos(2, 5), Pos(2, 6), Pos(3, 7), Pos(4, 7), Pos(5, 6), Pos(4, 4)}},
		{"rooms inward", roomsRows, Pos(9, 9), Pos(5, 5),
			Path{Pos(9, 9), Pos(5, 9), Pos(4, 8), Pos(5, 6), Pos(5, 5)}},
		{"pillars", pillarsRows, Pos(0, 0), Pos(11, 9),
			Path{Pos(0, 0), Pos(3, 0), Pos(10, 7), Pos(11, 9)}},
		{"reentry", reentryRows, Pos(10, 10), Pos(0, 9),
			Path{Pos(10, 10), Pos(8, 10), Pos(7, 9), Pos(7, 8), Pos(5, 6), Pos(0, 9)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := gridFromRows(t, tt.rows...)
			raw := NewFinder(g).Find(tt.start, tt.goal)
			if out := NewSimplifier(g).Simplify(raw); !out.Equal(tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, out)
			}
		})
	}
}

// TestSimplifyProperties runs every endpoint pair of the fixture grids
func TestSimplifyProperties(t *testing.T) {
	for name, rows := range map[string][]string{
		"column":  columnRows,
		"rooms":   roomsRows,
		"pillars": pillarsRows,
	} {
		t.Run(name, func(t *testing.T) {
			g := gridFromRows(t, rows...)
			f := NewFinder(g)
			s := NewSimplifier(g)

			for start := 0; start < g.Width()*g.Height(); start++ {
				for goal := 0; goal < g.Width()*g.Height(); goal++ {
					raw := f.Find(g.At(start), g.At(goal))
					if len(raw) == 0 {
						continue
					}
					smooth := s.Simplify(raw)
					if smooth[0] != raw[0] || smooth[len(smooth)-1] != raw[len(raw)-1] {
						t.Fatalf("Endpoints changed: raw %v, smooth %v", raw, smooth)
					}
					for i := 1; i < len(smooth); i++ {
						if smooth[i] == smooth[i-1] {
							t.Fatalf("Consecutive duplicate in %v", smooth)
						}
						if !g.LineOfSight(smooth[i-1], smooth[i]) {
							t.Fatalf("Segment %v-%v of %v is obstructed", smooth[i-1], smooth[i], smooth)
						}
					}
					if again := s.Simplify(smooth); !again.Equal(smooth) {
						t.Fatalf("Not idempotent: %v then %v (raw %v)", smooth, again, raw)
					}
				}
			}
		})
	}
}
