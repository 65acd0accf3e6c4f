package navigation

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// gridFromRows builds a grid from '.' (walkable) and '#' (blocked) rows
func gridFromRows(t *testing.T, rows ...string) *Grid {
	t.Helper()
	w, h := len(rows[0]), len(rows)
	mask := make([]byte, 0, w*h)
	for _, row := range rows {
		if len(row) != w {
			t.Fatalf("Ragged test grid row %q", row)
		}
		for _, c := range row {
			if c == '#' {
				mask = append(mask, 1)
			} else {
				mask = append(mask, 0)
			}
		}
	}
	g, err := NewGrid(w, h, mask)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	return g
}

var columnRows = []string{
	"..#..",
	"..#..",
	"..#..",
	"..#..",
	".....",
}

var roomsRows = []string{
	"..........",
	".####.###.",
	".#......#.",
	".#.####.#.",
	"...#..#...",
	".#.#..#.#.",
	".#.##.#.#.",
	".#......#.",
	".###.####.",
	"..........",
}

var pillarsRows = []string{
	"............",
	"..##....##..",
	"..##....##..",
	"............",
	".....##.....",
	".....##.....",
	"............",
	"..##....##..",
	"..##....##..",
	"............",
}

// A ray crossing an earlier jump's cells at lower cost must not be cut short there
var reentryRows = []string{
	".#...#...#..",
	"......###..#",
	"...#..#...##",
	"#..#.##.....",
	"#..#..#.....",
	".##..#......",
	"#........#.#",
	".....#..#...",
	".....##.#...",
	".....#..##.#",
	"...#.#......",
	"#....###....",
}

func TestFindOpenDiagonal(t *testing.T) {
	g, _ := NewEmptyGrid(5, 5)
	path := NewFinder(g).Find(Pos(0, 0), Pos(4, 4))

	expected := Path{Pos(0, 0), Pos(4, 4)}
	if !path.Equal(expected) {
		t.Errorf("Expected %v, got %v", expected, path)
	}
}

func TestFindColumnDetour(t *testing.T) {
	g := gridFromRows(t, columnRows...)
	f := NewFinder(g)
	path := f.Find(Pos(0, 0), Pos(4, 0))

	expected := Path{Pos(0, 0), Pos(0, 2), Pos(2, 4), Pos(3, 3), Pos(3, 1), Pos(4, 0)}
	if !path.Equal(expected) {
		t.Fatalf("Expected %v, got %v", expected, path)
	}
	if path.Cost() != 20 {
		t.Errorf("Expected cost 20, got %d", path.Cost())
	}
	if f.Expanded() != 6 {
		t.Errorf("Expected 6 expansions, got %d", f.Expanded())
	}
}

func TestFindStartEqualsGoal(t *testing.T) {
	g := gridFromRows(t, columnRows...)
	path := NewFinder(g).Find(Pos(1, 1), Pos(1, 1))

	if !path.Equal(Path{Pos(1, 1)}) {
		t.Errorf("Expected single point path, got %v", path)
	}
}

func TestFindEnclosedGoal(t *testing.T) {
	g := gridFromRows(t,
		".....",
		".###.",
		".#.#.",
		".###.",
		".....",
	)
	if path := NewFinder(g).Find(Pos(0, 0), Pos(2, 2)); len(path) != 0 {
		t.Errorf("Expected no route into enclosure, got %v", path)
	}
	if path := NewFinder(g).Find(Pos(2, 2), Pos(4, 4)); len(path) != 0 {
		t.Errorf("Expected no route out of enclosure, got %v", path)
	}
}

func TestFindInvalidEndpoints(t *testing.T) {
	g := gridFromRows(t, columnRows...)
	tests := []struct {
		name        string
		start, goal Position
	}{
		{"Blocked start", Pos(2, 0), Pos(4, 0)},
		{"Blocked goal", Pos(0, 0), Pos(2, 3)},
		{"Start out of bounds", Pos(-1, 0), Pos(4, 0)},
		{"Goal out of bounds", Pos(0, 0), Pos(5, 5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if path := NewFinder(g).Find(tt.start, tt.goal); len(path) != 0 {
				t.Errorf("Expected empty path, got %v", path)
			}
		})
	}
}

func TestFindCheaperReentry(t *testing.T) {
	g := gridFromRows(t, reentryRows...)
	path := NewFinder(g).Find(Pos(10, 10), Pos(0, 9))

	expected := Path{Pos(10, 10), Pos(8, 10), Pos(7, 9), Pos(7, 8), Pos(5, 6), Pos(3, 8), Pos(1, 8), Pos(0, 9)}
	if !path.Equal(expected) {
		t.Errorf("Expected %v, got %v", expected, path)
	}
	if path.Cost() != 28 {
		t.Errorf("Expected cost 28, got %d", path.Cost())
	}
}

func TestFindRoomsRoutes(t *testing.T) {
	g := gridFromRows(t, roomsRows...)
	tests := []struct {
		start, goal Position
		expected    Path
		cost        int
	}{
		{Pos(0, 0), Pos(4, 4),
			Path{Pos(0, 0), Pos(0, 3), Pos(2, 5), Pos(2, 6), Pos(3, 7), Pos(4, 7), Pos(5, 6), Pos(5, 5), Pos(4, 4)}, 27},
		{Pos(9, 9), Pos(5, 5),
			Path{Pos(9, 9), Pos(5, 9), Pos(4, 8), Pos(4, 7), Pos(5, 6), Pos(5, 5)}, 18},
		{Pos(0, 9), Pos(9, 0),
			Path{Pos(0, 9), Pos(0, 5), Pos(3, 2), Pos(4, 2), Pos(6, 0), Pos(9, 0)}, 31},
	}

	for _, tt := range tests {
		t.Run(tt.start.String()+"->"+tt.goal.String(), func(t *testing.T) {
			path := NewFinder(g).Find(tt.start, tt.goal)
			if !path.Equal(tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, path)
			}
			if path.Cost() != tt.cost {
				t.Errorf("Expected cost %d, got %d", tt.cost, path.Cost())
			}
		})
	}
}

// TestFindMatchesDistanceField checks every endpoint pair against the Dijkstra oracle
func TestFindMatchesDistanceField(t *testing.T) {
	grids := map[string][]string{
		"column":  columnRows,
		"rooms":   roomsRows,
		"pillars": pillarsRows,
		"reentry": reentryRows,
	}

	for name, rows := range grids {
		t.Run(name, func(t *testing.T) {
			g := gridFromRows(t, rows...)
			field := NewDistanceField(g.Width(), g.Height())
			f := NewFinder(g)

			var free []Position
			for y := 0; y < g.Height(); y++ {
				for x := 0; x < g.Width(); x++ {
					if g.Walkable(Pos(x, y)) {
						free = append(free, Pos(x, y))
					}
				}
			}

			for _, goal := range free {
				field.Compute(g, goal)
				for _, start := range free {
					path := f.Find(start, goal)
					want := field.Distance(start)
					if want < 0 {
						if len(path) != 0 {
							t.Fatalf("%v->%v: expected no route, got %v", start, goal, path)
						}
						continue
					}
					if len(path) == 0 {
						t.Fatalf("%v->%v: expected route of cost %d, got none", start, goal, want)
					}
					if path[0] != start || path[len(path)-1] != goal {
						t.Fatalf("%v->%v: endpoints not preserved in %v", start, goal, path)
					}
					if path.Cost() != want {
						t.Fatalf("%v->%v: expected cost %d, got %d (%v)", start, goal, want, path.Cost(), path)
					}
					assertTurnPoints(t, g, path)
				}
			}
		})
	}
}

// assertTurnPoints checks raw path shape: no repeats, no collinear triples, walkable rays
func assertTurnPoints(t *testing.T, g *Grid, path Path) {
	t.Helper()
	for i := 1; i < len(path); i++ {
		if path[i] == path[i-1] {
			t.Fatalf("Consecutive duplicate %v in %v", path[i], path)
		}
		d := path[i].Sub(path[i-1])
		if d.X != 0 && d.Y != 0 && abs(d.X) != abs(d.Y) {
			t.Fatalf("Segment %v-%v is not a ray in %v", path[i-1], path[i], path)
		}
		for _, c := range LinePoints(path[i-1], path[i]) {
			if !g.Walkable(c) {
				t.Fatalf("Segment %v-%v crosses blocked %v", path[i-1], path[i], c)
			}
		}
	}
	for i := 2; i < len(path); i++ {
		if path[i-1].Sub(path[i-2]).Cross(path[i].Sub(path[i-1])) == 0 {
			t.Fatalf("Collinear triple at %v in %v", path[i-1], path)
		}
	}
}

func TestFindBudgetExhausted(t *testing.T) {
	g := gridFromRows(t, columnRows...)
	f := NewFinder(g, WithMaxExpansions(1))

	if path := f.Find(Pos(0, 0), Pos(4, 0)); len(path) != 0 {
		t.Errorf("Expected empty path on exhausted budget, got %v", path)
	}
	if !f.Exhausted() {
		t.Error("Expected Exhausted() after hitting the budget")
	}

	// Budget is per query
	f = NewFinder(g, WithMaxExpansions(100))
	if path := f.Find(Pos(0, 0), Pos(4, 0)); len(path) == 0 || f.Exhausted() {
		t.Errorf("Expected route within budget, got %v (exhausted=%v)", path, f.Exhausted())
	}
}

func TestFindReusesFinder(t *testing.T) {
	g := gridFromRows(t, roomsRows...)
	f := NewFinder(g)

	first := f.Find(Pos(0, 0), Pos(4, 4))
	f.Find(Pos(9, 9), Pos(0, 9))
	again := f.Find(Pos(0, 0), Pos(4, 4))

	if !first.Equal(again) {
		t.Errorf("Expected repeat query to match, got %v then %v", first, again)
	}
}

func TestFindDebugTrace(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	g := gridFromRows(t, columnRows...)

	NewFinder(g, WithLogger(zap.New(core))).Find(Pos(0, 0), Pos(4, 0))

	if n := logs.FilterMessage("expand").Len(); n != 6 {
		t.Errorf("Expected 6 expand traces, got %d", n)
	}
	if n := logs.FilterLevelExact(zap.ErrorLevel).Len(); n != 0 {
		t.Errorf("Expected no anomalies, got %d", n)
	}
}

func TestReconstructAnomalyTruncates(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	g, _ := NewEmptyGrid(4, 1)
	f := NewFinder(g, WithLogger(zap.New(core)))

	// Hand-built provenance with a gap at (2,0)
	f.reset(Pos(0, 0), Pos(3, 0))
	f.dirs[0] = DirW
	f.dirs[1] = DirW

	// The walk emits (2,0) on the code change, then stops there
	path := f.reconstruct()
	expected := Path{Pos(0, 0), Pos(2, 0)}
	if !path.Equal(expected) {
		t.Errorf("Expected truncated path %v, got %v", expected, path)
	}
	if logs.FilterMessage("cell without provenance").Len() != 1 {
		t.Errorf("Expected one anomaly log, got %v", logs.All())
	}
}

func TestDump(t *testing.T) {
	g := gridFromRows(t, columnRows...)
	f := NewFinder(g)

	if f.Dump() != "" {
		t.Error("Expected empty dump before any query")
	}
	f.Find(Pos(0, 0), Pos(4, 0))
	dump := f.Dump()

	expected := []string{
		"directions:",
		"↓.#.G",
		"↓.#↗.",
		"↘.#↑↙",
		".↘#↑.",
		"..↗..",
	}
	lines := strings.Split(dump, "\n")
	for i, want := range expected {
		if lines[i] != want {
			t.Errorf("Expected dump line %d %q, got %q", i, want, lines[i])
		}
	}
	if !strings.Contains(dump, "distances:") || !strings.Contains(dump, "18*") {
		t.Errorf("Expected distance map with consumed marker, got:\n%s", dump)
	}
}
