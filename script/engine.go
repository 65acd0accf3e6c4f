package script

import (
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/lixenwraith/gridpath/maze"
	"github.com/lixenwraith/gridpath/navigation"
)

var ErrNoGrid = errors.New("script did not define a grid")

// Result is the scenario a script builds
type Result struct {
	Grid  *navigation.Grid
	Start *navigation.Position
	Goal  *navigation.Position
}

// Engine wraps a single gopher-lua VM that authors grids.
// Single-goroutine access only.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
	cur Result
}

// NewEngine creates a sandboxed VM with the grid authoring API registered
func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{SkipOpenLibs: true})
	// Base, table, string and math only: scripts have no file or os access
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		vm.Push(vm.NewFunction(lib.fn))
		vm.Push(lua.LString(lib.name))
		vm.Call(1, 0)
	}
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	e.register()
	return e
}

// Close releases the VM
func (e *Engine) Close() {
	e.vm.Close()
}

// Run executes source and returns the grid it built
func (e *Engine) Run(name, source string) (Result, error) {
	e.cur = Result{}
	if err := e.vm.DoString(source); err != nil {
		return Result{}, fmt.Errorf("run %s: %w", name, err)
	}
	return e.finish(name)
}

// RunFile executes a .lua file
func (e *Engine) RunFile(path string) (Result, error) {
	e.cur = Result{}
	if err := e.vm.DoFile(path); err != nil {
		return Result{}, fmt.Errorf("load %s: %w", path, err)
	}
	return e.finish(path)
}

func (e *Engine) finish(name string) (Result, error) {
	if e.cur.Grid == nil {
		return Result{}, fmt.Errorf("%s: %w", name, ErrNoGrid)
	}
	res := e.cur
	e.cur = Result{}
	e.log.Debug("lua grid built",
		zap.String("script", name),
		zap.Int("width", res.Grid.Width()),
		zap.Int("height", res.Grid.Height()))
	return res, nil
}

func (e *Engine) register() {
	fns := map[string]lua.LGFunction{
		"grid":     e.luaGrid,
		"maze":     e.luaMaze,
		"block":    e.luaCell(true),
		"clear":    e.luaCell(false),
		"rect":     e.luaRect,
		"line":     e.luaLine,
		"start":    e.luaEndpoint(&e.cur.Start),
		"goal":     e.luaEndpoint(&e.cur.Goal),
		"walkable": e.luaWalkable,
		"width":    func(L *lua.LState) int { L.Push(lua.LNumber(e.grid(L).Width())); return 1 },
		"height":   func(L *lua.LState) int { L.Push(lua.LNumber(e.grid(L).Height())); return 1 },
	}
	for name, fn := range fns {
		e.vm.SetGlobal(name, e.vm.NewFunction(fn))
	}
}

// grid raises a Lua error when no grid has been defined yet
func (e *Engine) grid(L *lua.LState) *navigation.Grid {
	if e.cur.Grid == nil {
		L.RaiseError("grid(width, height) must be called first")
	}
	return e.cur.Grid
}

// grid(w, h)
func (e *Engine) luaGrid(L *lua.LState) int {
	g, err := navigation.NewEmptyGrid(L.CheckInt(1), L.CheckInt(2))
	if err != nil {
		L.RaiseError("%s", err.Error())
	}
	e.cur = Result{Grid: g}
	return 0
}

// maze(w, h, seed [, braiding]) replaces the grid with a generated maze and sets both endpoints
func (e *Engine) luaMaze(L *lua.LState) int {
	res := maze.Generate(maze.Config{
		Width:    L.CheckInt(1),
		Height:   L.CheckInt(2),
		Seed:     int64(L.CheckInt(3)),
		Braiding: float64(L.OptNumber(4, 0)),
	})
	start, goal := res.Start, res.End
	e.cur = Result{Grid: res.Grid, Start: &start, Goal: &goal}
	return 0
}

// block(x, y) / clear(x, y)
func (e *Engine) luaCell(blocked bool) lua.LGFunction {
	return func(L *lua.LState) int {
		e.grid(L).Set(navigation.Pos(L.CheckInt(1), L.CheckInt(2)), blocked)
		return 0
	}
}

// rect(x0, y0, x1, y1 [, blocked=true]) fills an inclusive rectangle, clipped to the grid
func (e *Engine) luaRect(L *lua.LState) int {
	g := e.grid(L)
	x0, y0, x1, y1 := L.CheckInt(1), L.CheckInt(2), L.CheckInt(3), L.CheckInt(4)
	blocked := L.OptBool(5, true)
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	for y := max(y0, 0); y <= min(y1, g.Height()-1); y++ {
		for x := max(x0, 0); x <= min(x1, g.Width()-1); x++ {
			g.Set(navigation.Pos(x, y), blocked)
		}
	}
	return 0
}

// line(x0, y0, x1, y1 [, blocked=true]) rasterises a segment
func (e *Engine) luaLine(L *lua.LState) int {
	g := e.grid(L)
	a := navigation.Pos(L.CheckInt(1), L.CheckInt(2))
	b := navigation.Pos(L.CheckInt(3), L.CheckInt(4))
	blocked := L.OptBool(5, true)
	for _, p := range navigation.LinePoints(a, b) {
		g.Set(p, blocked)
	}
	return 0
}

// start(x, y) / goal(x, y)
func (e *Engine) luaEndpoint(dst **navigation.Position) lua.LGFunction {
	return func(L *lua.LState) int {
		e.grid(L)
		p := navigation.Pos(L.CheckInt(1), L.CheckInt(2))
		*dst = &p
		return 0
	}
}

// walkable(x, y) -> bool
func (e *Engine) luaWalkable(L *lua.LState) int {
	L.Push(lua.LBool(e.grid(L).Walkable(navigation.Pos(L.CheckInt(1), L.CheckInt(2)))))
	return 1
}
