package server

import (
	"errors"
	"fmt"

	"github.com/lixenwraith/gridpath/mapfile"
	"github.com/lixenwraith/gridpath/navigation"
)

const (
	TypeSolve = "solve"
	TypeRoute = "route"
	TypeError = "error"
)

var ErrTooLarge = errors.New("grid exceeds max_cells")

// SolveRequest is a client query. Cells is the row-major grid, one '0'/'1' or '.'/'#' per cell.
type SolveRequest struct {
	Type   string `json:"type"`
	ID     string `json:"id,omitempty"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Cells  string `json:"cells"`
	Start  [2]int `json:"start"`
	Goal   [2]int `json:"goal"`
}

// RouteResponse answers a SolveRequest. Trace is the rasterised smooth path.
type RouteResponse struct {
	Type        string   `json:"type"`
	ID          string   `json:"id,omitempty"`
	Status      string   `json:"status,omitempty"`
	Cost        int      `json:"cost"`
	Expanded    int      `json:"expanded"`
	Raw         [][2]int `json:"raw"`
	Smooth      [][2]int `json:"smooth"`
	Trace       [][2]int `json:"trace"`
	Fingerprint string   `json:"fingerprint,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// grid decodes the request cells, bounded by maxCells
func (r *SolveRequest) grid(maxCells int) (*navigation.Grid, error) {
	if r.Width <= 0 || r.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", navigation.ErrDimensions, r.Width, r.Height)
	}
	if r.Width > maxCells || r.Height > maxCells/r.Width {
		return nil, fmt.Errorf("%w: %dx%d > %d", ErrTooLarge, r.Width, r.Height, maxCells)
	}
	if len(r.Cells) != r.Width*r.Height {
		return nil, fmt.Errorf("%w: have %d cells, want %d", navigation.ErrMaskSize, len(r.Cells), r.Width*r.Height)
	}
	rows := make([]string, r.Height)
	for y := range rows {
		rows[y] = r.Cells[y*r.Width : (y+1)*r.Width]
	}
	return mapfile.ParseRows(rows)
}

func points(p []navigation.Position) [][2]int {
	out := make([][2]int, len(p))
	for i, q := range p {
		out[i] = [2]int{q.X, q.Y}
	}
	return out
}

func errorResponse(id string, err error) RouteResponse {
	return RouteResponse{Type: TypeError, ID: id, Error: err.Error()}
}
