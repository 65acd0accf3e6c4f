package navigation

// Status classifies the outcome of a query; none of them is a failure of the call itself
type Status uint8

const (
	StatusFound Status = iota
	StatusNoRoute
	StatusInvalidEndpoint
	StatusBudgetExhausted
)

var statusNames = [...]string{
	StatusFound:           "found",
	StatusNoRoute:         "no_route",
	StatusInvalidEndpoint: "invalid_endpoint",
	StatusBudgetExhausted: "budget_exhausted",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// Result carries both paths of one query and what the search cost
type Result struct {
	Status   Status
	Raw      Path
	Smooth   Path
	Cost     int // 2/3 cost of Raw, 0 when no route
	Expanded int
	Err      error // Validation error behind StatusInvalidEndpoint
}

// Solve runs a Finder and a Simplifier over g for one endpoint pair
func Solve(g *Grid, start, goal Position, opts ...Option) Result {
	if err := g.Validate(start, goal); err != nil {
		return Result{Status: StatusInvalidEndpoint, Err: err}
	}

	f := NewFinder(g, opts...)
	raw := f.Find(start, goal)
	res := Result{Expanded: f.Expanded()}
	switch {
	case f.Exhausted():
		res.Status = StatusBudgetExhausted
		return res
	case len(raw) == 0:
		res.Status = StatusNoRoute
		return res
	}

	res.Status = StatusFound
	res.Raw = raw
	res.Smooth = NewSimplifier(g, opts...).Simplify(raw)
	res.Cost = raw.Cost()
	return res
}
