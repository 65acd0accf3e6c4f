package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
)

func runHistory(e *env, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	limit := fs.Int("n", 20, "Number of runs to list")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	st, err := e.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.Recent(ctx, *limit)
	if err != nil {
		return err
	}
	sum, err := st.Summarize(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tSCENARIO\tQUERY\tGRID\tROUTE\tSTATUS\tCOST\tEXPANDED\tTOOK")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%dx%d\t%v->%v\t%s\t%d\t%s\t%v\n",
			humanize.Time(r.CreatedAt), r.Scenario, r.Query, r.Width, r.Height,
			r.Start, r.Goal, r.Status, r.Cost, humanize.Comma(int64(r.Expanded)), r.Duration.Round(time.Microsecond))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	statuses := make([]string, 0, len(sum.ByStatus))
	for s := range sum.ByStatus {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)
	fmt.Printf("\n%s runs over %s grids, %s expansions, %v total\n",
		humanize.Comma(int64(sum.Runs)), humanize.Comma(int64(sum.Grids)), humanize.Comma(sum.Expanded), sum.Duration.Round(time.Millisecond))
	for _, s := range statuses {
		fmt.Printf("  %-16s %s\n", s, humanize.Comma(int64(sum.ByStatus[s])))
	}
	return nil
}
