package main

import (
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/lixenwraith/gridpath/mapfile"
	"github.com/lixenwraith/gridpath/maze"
	"github.com/lixenwraith/gridpath/navigation"
)

func runGen(e *env, args []string) error {
	fs := flag.NewFlagSet("gen", flag.ContinueOnError)
	kind := fs.String("kind", "maze", "Layout: maze|scatter")
	width := fs.Int("w", 41, "Width")
	height := fs.Int("h", 21, "Height")
	braid := fs.Float64("braid", 0.2, "Maze braiding [0.0 - 1.0]")
	density := fs.Float64("density", 0.3, "Scatter obstacle density [0.0 - 1.0]")
	open := fs.Bool("open-borders", false, "Remove the maze border")
	seed := fs.Int64("seed", 0, "Seed (0 = random)")
	out := fs.String("out", "", "Grid output: .grid.zst or text (default: print)")
	scenario := fs.String("scenario", "", "Also write a scenario YAML referencing -out")
	if err := fs.Parse(args); err != nil {
		return err
	}

	k := maze.Kind(*kind)
	if k != maze.KindMaze && k != maze.KindScatter {
		return fmt.Errorf("%w: unknown kind %q", errUsage, *kind)
	}
	res := maze.Generate(maze.Config{
		Kind:          k,
		Width:         *width,
		Height:        *height,
		Braiding:      clamp01(*braid),
		Density:       clamp01(*density),
		RemoveBorders: *open,
		Seed:          *seed,
	})
	e.log.Info("generated grid",
		zap.String("kind", *kind),
		zap.Int64("seed", res.Seed),
		zap.Int("width", res.Grid.Width()),
		zap.Int("height", res.Grid.Height()),
		zap.Int("corridor", len(res.Corridor)))

	if *out == "" {
		fmt.Print(navigation.RenderPath(res.Grid, navigation.Path{res.Start, res.End}, nil))
		fmt.Printf("seed %d  start %v  end %v\n", res.Seed, res.Start, res.End)
		return nil
	}
	if err := saveGridFile(*out, res.Grid); err != nil {
		return err
	}

	if *scenario != "" {
		rel, err := filepath.Rel(filepath.Dir(*scenario), *out)
		if err != nil {
			rel = *out
		}
		sc := mapfile.Scenario{
			Name:        strings.TrimSuffix(filepath.Base(*scenario), filepath.Ext(*scenario)),
			Description: fmt.Sprintf("%s %dx%d seed %d", *kind, res.Grid.Width(), res.Grid.Height(), res.Seed),
			Grid:        mapfile.GridSource{File: rel},
			Queries: []mapfile.Query{{
				Name:  "corners",
				Start: mapfile.PointOf(res.Start),
				Goal:  mapfile.PointOf(res.End),
			}},
		}
		if err := mapfile.SaveScenario(*scenario, sc); err != nil {
			return err
		}
	}
	return nil
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}
