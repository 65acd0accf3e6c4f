package main

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/lixenwraith/gridpath/maze"
	"github.com/lixenwraith/gridpath/navigation"
)

func columnEditor(t *testing.T) *Editor {
	t.Helper()
	g, _ := navigation.NewEmptyGrid(5, 5)
	for y := 0; y < 4; y++ {
		g.Set(navigation.Pos(2, y), true)
	}
	return NewEditor(g, navigation.Pos(0, 0), navigation.Pos(4, 0), navigation.NewRouteCache(8), zap.NewNop())
}

func TestEditorSolvesOnEdit(t *testing.T) {
	e := columnEditor(t)
	now := time.Now()

	if e.result.Status != navigation.StatusFound || e.result.Cost != 20 {
		t.Fatalf("Expected initial route cost 20, got %v %d", e.result.Status, e.result.Cost)
	}

	// Seal the gap
	e.Move(2, 4)
	if e.cursor() != navigation.Pos(2, 4) {
		t.Fatalf("Expected cursor (2,4), got %v", e.cursor())
	}
	if st := e.Toggle(now); st != navigation.StatusNoRoute {
		t.Errorf("Expected no route, got %v", st)
	}
	if len(e.trails) != 0 {
		t.Errorf("Expected no trail without a route, got %d", len(e.trails))
	}

	// Reopen and move the goal
	e.Toggle(now)
	e.Move(2, 0)
	if st := e.SetGoal(now); st != navigation.StatusFound {
		t.Errorf("Expected route, got %v", st)
	}
	if e.goal != navigation.Pos(4, 4) {
		t.Errorf("Expected goal (4,4), got %v", e.goal)
	}
}

func TestEditorProtectsEndpoints(t *testing.T) {
	e := columnEditor(t)
	e.Toggle(time.Now()) // Cursor starts on the start cell
	if !e.grid.Walkable(e.start) {
		t.Error("Expected start to stay walkable")
	}

	e.Move(-10, -10)
	if e.cursor() != navigation.Pos(0, 0) {
		t.Errorf("Expected cursor clamped to (0,0), got %v", e.cursor())
	}
	e.Move(2, 0)
	e.SetStart(time.Now())
	if !e.grid.Walkable(navigation.Pos(2, 0)) || e.result.Status != navigation.StatusFound {
		t.Error("Expected start placement to open the cell")
	}
}

func TestEditorTrailAnimation(t *testing.T) {
	e := columnEditor(t)
	now := time.Now()
	e.solve(now)

	n := len(e.result.Smooth.Cells())
	if len(e.trails) != n {
		t.Fatalf("Expected %d trail cells, got %d", n, len(e.trails))
	}

	e.updateTrails(now.Add(trailStepMs * time.Millisecond / 2))
	if e.trails[0].intensity >= 1.0 {
		t.Error("Expected first trail cell to be fading")
	}
	if e.trails[len(e.trails)-1].intensity != 1.0 {
		t.Error("Expected last trail cell to be pending")
	}

	e.updateTrails(now.Add(time.Duration(n)*trailStepMs*time.Millisecond + trailDecayMs*time.Millisecond))
	if len(e.trails) != 0 {
		t.Errorf("Expected trail to expire, got %d cells", len(e.trails))
	}
}

func TestEditorRegenerate(t *testing.T) {
	e := columnEditor(t)
	e.Regenerate(maze.KindScatter, time.Now())
	if e.grid.Width() != 5 || e.grid.Height() != 5 {
		t.Errorf("Expected 5x5 scatter, got %dx%d", e.grid.Width(), e.grid.Height())
	}
	if !e.grid.Walkable(e.start) || !e.grid.Walkable(e.goal) {
		t.Error("Expected open endpoints")
	}
}

func TestViewerDraw(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	defer screen.Fini()
	screen.SetSize(20, 8)

	v := NewViewer(screen, columnEditor(t), 10*time.Millisecond, zap.NewNop())
	v.draw()

	at := func(x, y int) rune {
		r, _ := v.cellAt(navigation.Pos(x, y))
		return r
	}
	if at(4, 0) != 'G' {
		t.Errorf("Expected goal marker, got %q", at(4, 0))
	}
	if at(2, 1) != '█' {
		t.Errorf("Expected wall, got %q", at(2, 1))
	}
	if at(2, 4) != '*' {
		t.Errorf("Expected smooth way-point, got %q", at(2, 4))
	}

	now := time.Now()
	if !v.handleKey(tcell.KeyRune, 'o', now) {
		t.Fatal("Expected viewer to keep running")
	}
	if v.editor.showRaw {
		t.Error("Expected raw overlay toggled off")
	}
	if !v.handleKey(tcell.KeyDown, 0, now) || v.editor.cursor() != navigation.Pos(0, 1) {
		t.Errorf("Expected cursor (0,1), got %v", v.editor.cursor())
	}
	if v.handleKey(tcell.KeyRune, 'q', now) {
		t.Error("Expected q to quit")
	}
	if v.handleKey(tcell.KeyEscape, 0, now) {
		t.Error("Expected escape to quit")
	}
}
