package navigation

import (
	"strconv"
	"strings"
)

// Arrow glyphs indexed by direction code
var dirArrows = [8]rune{'↑', '↗', '→', '↘', '↓', '↙', '←', '↖'}

// Dump renders the last query's provenance and distance maps
// Provenance arrows point toward the goal; '#' blocked, '.' never reached
func (f *Finder) Dump() string {
	if f.state == nil {
		return ""
	}
	g := f.grid
	var b strings.Builder

	b.WriteString("directions:\n")
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			p := Position{x, y}
			idx := g.Index(p)
			switch {
			case !g.Walkable(p):
				b.WriteByte('#')
			case p == f.goal:
				b.WriteByte('G')
			case f.dirs[idx] < 0:
				b.WriteByte('.')
			default:
				b.WriteRune(dirArrows[DirOpposite[f.dirs[idx]]])
			}
		}
		b.WriteByte('\n')
	}

	width := 1
	for i, s := range f.state {
		if s != cellUnvisited {
			width = max(width, len(strconv.Itoa(f.dist[i])))
		}
	}

	b.WriteString("distances:\n")
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			if x > 0 {
				b.WriteByte(' ')
			}
			idx := y*g.width + x
			cell := "-"
			switch {
			case g.cells[idx] != 0:
				cell = "#"
			case f.state[idx] == cellConsumed:
				cell = strconv.Itoa(f.dist[idx]) + "*"
			case f.state[idx] == cellFinalized:
				cell = strconv.Itoa(f.dist[idx])
			}
			b.WriteString(strings.Repeat(" ", max(0, width+1-len(cell))))
			b.WriteString(cell)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// RenderPath overlays both paths on the grid
// 'S' start, 'G' goal, '*' smoothed way-point, 'o' raw turn point, '+' cell on a smoothed
// segment, '#' blocked, '.' free
func RenderPath(g *Grid, raw, smooth Path) string {
	canvas := make([][]byte, g.height)
	for y := range canvas {
		row := make([]byte, g.width)
		for x := range row {
			if g.cells[y*g.width+x] != 0 {
				row[x] = '#'
			} else {
				row[x] = '.'
			}
		}
		canvas[y] = row
	}

	mark := func(p Position, c byte) {
		if g.InBounds(p) {
			canvas[p.Y][p.X] = c
		}
	}
	for _, p := range smooth.Cells() {
		mark(p, '+')
	}
	for _, p := range raw {
		mark(p, 'o')
	}
	for _, p := range smooth {
		mark(p, '*')
	}
	if len(raw) > 0 {
		mark(raw[0], 'S')
		mark(raw[len(raw)-1], 'G')
	}

	var b strings.Builder
	for _, row := range canvas {
		b.Write(row)
		b.WriteByte('\n')
	}
	return b.String()
}
