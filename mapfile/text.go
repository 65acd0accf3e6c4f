package mapfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/lixenwraith/gridpath/navigation"
)

var (
	ErrEmptyGrid   = errors.New("grid has no rows")
	ErrRaggedRows  = errors.New("grid rows differ in length")
	ErrUnknownCell = errors.New("unknown cell character")
)

// ParseText reads a grid of rows, one character per cell.
// '0' and '.' are open, '1' and '#' are blocked. Blank lines and lines starting with ';' are skipped.
func ParseText(r io.Reader) (*navigation.Grid, error) {
	var rows []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		rows = append(rows, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read grid: %w", err)
	}
	return ParseRows(rows)
}

// ParseRows builds a grid from already split rows
func ParseRows(rows []string) (*navigation.Grid, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyGrid
	}
	w := len(rows[0])
	mask := make([]byte, 0, w*len(rows))
	for y, row := range rows {
		if len(row) != w {
			return nil, fmt.Errorf("row %d has %d cells, want %d: %w", y, len(row), w, ErrRaggedRows)
		}
		for x := 0; x < len(row); x++ {
			switch row[x] {
			case '0', '.':
				mask = append(mask, 0)
			case '1', '#':
				mask = append(mask, 1)
			default:
				return nil, fmt.Errorf("cell (%d,%d) %q: %w", x, y, row[x], ErrUnknownCell)
			}
		}
	}
	return navigation.NewGrid(w, len(rows), mask)
}

// FormatText renders a grid as '.'/'#' rows
func FormatText(g *navigation.Grid) string {
	var sb strings.Builder
	sb.Grow((g.Width() + 1) * g.Height())
	for _, row := range FormatRows(g) {
		sb.WriteString(row)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatRows is the inverse of ParseRows
func FormatRows(g *navigation.Grid) []string {
	rows := make([]string, g.Height())
	buf := make([]byte, g.Width())
	for y := range rows {
		for x := range buf {
			if g.Walkable(navigation.Pos(x, y)) {
				buf[x] = '.'
			} else {
				buf[x] = '#'
			}
		}
		rows[y] = string(buf)
	}
	return rows
}
