package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/lixenwraith/gridpath/maze"
	"github.com/lixenwraith/gridpath/navigation"
	"github.com/lixenwraith/gridpath/store"
)

func runBench(e *env, args []string) error {
	fs := flag.NewFlagSet("bench", flag.ContinueOnError)
	kind := fs.String("kind", "scatter", "Layout: maze|scatter")
	width := fs.Int("w", 256, "Width")
	height := fs.Int("h", 256, "Height")
	density := fs.Float64("density", 0.3, "Scatter obstacle density")
	braid := fs.Float64("braid", 0.3, "Maze braiding")
	queries := fs.Int("queries", 200, "Number of random queries")
	seed := fs.Int64("seed", 1, "Seed for grid and queries")
	record := fs.Bool("record", false, "Record every run in the store")
	if err := fs.Parse(args); err != nil {
		return err
	}

	res := maze.Generate(maze.Config{
		Kind:     maze.Kind(*kind),
		Width:    *width,
		Height:   *height,
		Density:  clamp01(*density),
		Braiding: clamp01(*braid),
		Seed:     *seed,
	})
	g := res.Grid
	checks := randomChecks(g, rand.New(rand.NewSource(*seed)), *queries)
	if len(checks) == 0 {
		return fmt.Errorf("no walkable cells in %dx%d grid", g.Width(), g.Height())
	}

	var st *store.Store
	if *record {
		var err error
		if st, err = e.openStore(context.Background()); err != nil {
			return err
		}
		defer st.Close()
	}

	var (
		before, after runtime.MemStats
		durations     = make([]time.Duration, 0, len(checks))
		expanded      int64
		found         int
	)
	opts := e.searchOptions()
	runtime.ReadMemStats(&before)
	start := time.Now()
	for _, c := range checks {
		t0 := time.Now()
		r := navigation.Solve(g, c.start, c.goal, opts...)
		took := time.Since(t0)

		durations = append(durations, took)
		expanded += int64(r.Expanded)
		if r.Status == navigation.StatusFound {
			found++
		}
		st.Enqueue(store.NewRun("bench", c.name, g, c.start, c.goal, r, took))
	}
	elapsed := time.Since(start)
	runtime.ReadMemStats(&after)

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
	pct := func(p float64) time.Duration { return durations[int(p*float64(len(durations)-1))] }

	fmt.Printf("Benchmark Results:\n")
	fmt.Printf("  Grid:         %s %dx%d (%s cells, seed %d)\n", *kind, g.Width(), g.Height(), humanize.Comma(int64(g.Width()*g.Height())), res.Seed)
	fmt.Printf("  Queries:      %s (%s found)\n", humanize.Comma(int64(len(checks))), humanize.Comma(int64(found)))
	fmt.Printf("  Total Time:   %v\n", elapsed)
	fmt.Printf("  Per Query:    p50 %v  p90 %v  max %v\n", pct(0.5), pct(0.9), durations[len(durations)-1])
	fmt.Printf("  Expanded:     %s (%s per query)\n", humanize.Comma(expanded), humanize.Comma(expanded/int64(len(checks))))
	fmt.Printf("  Total Alloc:  %s\n", humanize.IBytes(after.TotalAlloc-before.TotalAlloc))
	fmt.Printf("  Mallocs:      %s\n", humanize.Comma(int64(after.Mallocs-before.Mallocs)))
	return nil
}
