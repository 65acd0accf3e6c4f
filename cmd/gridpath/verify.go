package main

import (
	"errors"
	"flag"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/lixenwraith/gridpath/mapfile"
	"github.com/lixenwraith/gridpath/navigation"
)

var errVerify = errors.New("verification failed")

// check is one query with an optional expected cost
type check struct {
	name        string
	start, goal navigation.Position
	want        *int
}

func runVerify(e *env, args []string) error {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	pairs := fs.Int("pairs", 0, "Also verify this many random walkable pairs per scenario")
	seed := fs.Int64("seed", 1, "Seed for -pairs")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("%w: verify <scenario.yaml>...", errUsage)
	}

	rng := rand.New(rand.NewSource(*seed))
	failures, total := 0, 0
	for _, path := range fs.Args() {
		sc, err := mapfile.LoadScenario(path)
		if err != nil {
			return err
		}
		g, err := sc.LoadGrid(e.log)
		if err != nil {
			return err
		}

		checks := make([]check, 0, len(sc.Queries)+*pairs)
		for i, q := range sc.Queries {
			name := q.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			checks = append(checks, check{name: name, start: q.Start.Position(), goal: q.Goal.Position(), want: q.Cost})
		}
		checks = append(checks, randomChecks(g, rng, *pairs)...)

		v := newVerifier(g)
		for _, c := range checks {
			total++
			if problems := v.check(c, e.searchOptions()...); len(problems) > 0 {
				failures++
				for _, p := range problems {
					fmt.Printf("FAIL %s %s %v->%v: %s\n", sc.Name, c.name, c.start, c.goal, p)
				}
			}
		}
		e.log.Info("scenario verified", zap.String("scenario", sc.Name), zap.Int("queries", len(checks)))
	}

	fmt.Printf("%d/%d queries passed\n", total-failures, total)
	if failures > 0 {
		return fmt.Errorf("%w: %d of %d", errVerify, failures, total)
	}
	return nil
}

func randomChecks(g *navigation.Grid, rng *rand.Rand, n int) []check {
	var open []navigation.Position
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			if p := navigation.Pos(x, y); g.Walkable(p) {
				open = append(open, p)
			}
		}
	}
	if len(open) == 0 {
		return nil
	}
	out := make([]check, n)
	for i := range out {
		out[i] = check{
			name:  fmt.Sprintf("random-%d", i),
			start: open[rng.Intn(len(open))],
			goal:  open[rng.Intn(len(open))],
		}
	}
	return out
}

// verifier holds an oracle field reused across queries on one grid
type verifier struct {
	g     *navigation.Grid
	field *navigation.DistanceField
}

func newVerifier(g *navigation.Grid) *verifier {
	return &verifier{g: g, field: navigation.NewDistanceField(g.Width(), g.Height())}
}

func (v *verifier) check(c check, opts ...navigation.Option) []string {
	var problems []string
	res := navigation.Solve(v.g, c.start, c.goal, opts...)
	if res.Status == navigation.StatusBudgetExhausted {
		return []string{"expansion budget exhausted"}
	}

	oracle := -1
	if res.Status != navigation.StatusInvalidEndpoint {
		v.field.Compute(v.g, c.goal)
		oracle = v.field.Distance(c.start)
	}
	got := res.Cost
	if res.Status != navigation.StatusFound {
		got = -1
	}

	if got != oracle {
		problems = append(problems, fmt.Sprintf("cost %d, oracle %d", got, oracle))
	}
	if c.want != nil && got != *c.want {
		problems = append(problems, fmt.Sprintf("cost %d, expected %d", got, *c.want))
	}
	if res.Status != navigation.StatusFound {
		return problems
	}

	if res.Raw[0] != c.start || res.Raw[len(res.Raw)-1] != c.goal {
		problems = append(problems, "raw path endpoints")
	}
	for i := 1; i < len(res.Smooth); i++ {
		if !v.g.LineOfSight(res.Smooth[i-1], res.Smooth[i]) {
			problems = append(problems, fmt.Sprintf("no line of sight %v->%v", res.Smooth[i-1], res.Smooth[i]))
		}
	}
	again := navigation.NewSimplifier(v.g, opts...).Simplify(res.Smooth)
	if !again.Equal(res.Smooth) {
		problems = append(problems, "simplify is not idempotent")
	}
	return problems
}
