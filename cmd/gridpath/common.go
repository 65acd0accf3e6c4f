package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/lixenwraith/gridpath/mapfile"
	"github.com/lixenwraith/gridpath/navigation"
	"github.com/lixenwraith/gridpath/store"
)

var errUsage = errors.New("usage")

// pointFlag parses "x,y"
type pointFlag struct {
	p   navigation.Position
	set bool
}

func (f *pointFlag) String() string {
	if !f.set {
		return ""
	}
	return fmt.Sprintf("%d,%d", f.p.X, f.p.Y)
}

func (f *pointFlag) Set(s string) error {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return fmt.Errorf("want x,y, got %q", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return err
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return err
	}
	f.p, f.set = navigation.Pos(x, y), true
	return nil
}

// loadGridFile reads a .grid.zst file or a text grid
func loadGridFile(path string) (*navigation.Grid, error) {
	if strings.HasSuffix(path, ".zst") {
		return mapfile.ReadGrid(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	g, err := mapfile.ParseText(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// saveGridFile is the inverse of loadGridFile
func saveGridFile(path string, g *navigation.Grid) error {
	if strings.HasSuffix(path, ".zst") {
		return mapfile.WriteGrid(path, g)
	}
	return os.WriteFile(path, []byte(mapfile.FormatText(g)), 0o644)
}

func (e *env) openStore(ctx context.Context) (*store.Store, error) {
	return store.Open(ctx, store.Driver(e.cfg.Store.Driver), e.cfg.Store.DSN, e.log)
}

func (e *env) searchOptions() []navigation.Option {
	opts := []navigation.Option{navigation.WithLogger(e.log)}
	if e.cfg.Search.MaxExpansions > 0 {
		opts = append(opts, navigation.WithMaxExpansions(e.cfg.Search.MaxExpansions))
	}
	return opts
}
