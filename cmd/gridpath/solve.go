package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/lixenwraith/gridpath/mapfile"
	"github.com/lixenwraith/gridpath/navigation"
	"github.com/lixenwraith/gridpath/store"
)

func runSolve(e *env, args []string) error {
	fs := flag.NewFlagSet("solve", flag.ContinueOnError)
	scenarioPath := fs.String("scenario", "", "Scenario YAML (uses its first query unless -from/-to are given)")
	gridPath := fs.String("grid", "", "Grid file (.grid.zst or text)")
	dump := fs.Bool("dump", false, "Print the direction and distance maps of the search")
	flat := fs.Bool("flat", false, "Print the flat integer result")
	record := fs.Bool("record", false, "Record the run in the store")
	var from, to pointFlag
	fs.Var(&from, "from", "Start cell x,y")
	fs.Var(&to, "to", "Goal cell x,y")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		g     *navigation.Grid
		name  = *gridPath
		query string
		err   error
	)
	switch {
	case *scenarioPath != "":
		sc, err := mapfile.LoadScenario(*scenarioPath)
		if err != nil {
			return err
		}
		if g, err = sc.LoadGrid(e.log); err != nil {
			return err
		}
		name = sc.Name
		if !from.set && !to.set && len(sc.Queries) > 0 {
			q := sc.Queries[0]
			from = pointFlag{p: q.Start.Position(), set: true}
			to = pointFlag{p: q.Goal.Position(), set: true}
			query = q.Name
		}
	case *gridPath != "":
		if g, err = loadGridFile(*gridPath); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: solve needs -scenario or -grid", errUsage)
	}
	if !from.set || !to.set {
		return fmt.Errorf("%w: solve needs -from and -to", errUsage)
	}

	opts := e.searchOptions()
	t0 := time.Now()
	finder := navigation.NewFinder(g, opts...)
	res := navigation.Solve(g, from.p, to.p, opts...)
	took := time.Since(t0)

	fmt.Printf("grid:     %s (%dx%d, %s cells)\n", name, g.Width(), g.Height(), humanize.Comma(int64(g.Width()*g.Height())))
	fmt.Printf("status:   %s\n", res.Status)
	if res.Err != nil {
		fmt.Printf("reason:   %v\n", res.Err)
	}
	fmt.Printf("cost:     %d\n", res.Cost)
	fmt.Printf("expanded: %s\n", humanize.Comma(int64(res.Expanded)))
	fmt.Printf("took:     %v\n", took)
	fmt.Printf("raw:      %v\n", res.Raw)
	fmt.Printf("smooth:   %v\n", res.Smooth)
	if res.Status == navigation.StatusFound {
		fmt.Println()
		fmt.Print(navigation.RenderPath(g, res.Raw, res.Smooth))
	}
	if *flat {
		fmt.Printf("\nflat: %v\n", navigation.Pack(res.Raw, res.Smooth))
	}
	if *dump {
		finder.Find(from.p, to.p)
		fmt.Println()
		fmt.Print(finder.Dump())
	}

	if *record {
		ctx := context.Background()
		st, err := e.openStore(ctx)
		if err != nil {
			return err
		}
		id, recErr := st.Record(ctx, store.NewRun(name, query, g, from.p, to.p, res, took))
		if err := st.Close(); recErr == nil {
			recErr = err
		}
		if recErr != nil {
			return recErr
		}
		fmt.Printf("\nrecorded: %s\n", id)
	}
	return nil
}
