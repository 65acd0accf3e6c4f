package status

import (
	"fmt"
	"io"
	"strconv"
	"sync/atomic"
)

// Registry holds the counters and gauges a process exposes on its status page
type Registry struct {
	Counters *MetricMap[atomic.Int64]
	Gauges   *MetricMap[AtomicFloat]
}

func NewRegistry() *Registry {
	return &Registry{
		Counters: NewMetricMap[atomic.Int64](),
		Gauges:   NewMetricMap[AtomicFloat](),
	}
}

// Inc adds one to the named counter
func (r *Registry) Inc(name string) {
	r.Counters.Get(name).Add(1)
}

// Counter reads a counter, 0 when never written
func (r *Registry) Counter(name string) int64 {
	return r.Counters.Get(name).Load()
}

// WriteText renders "name value" lines, counters first, each group sorted
func (r *Registry) WriteText(w io.Writer) error {
	var err error
	write := func(name, value string) {
		if err == nil {
			_, err = fmt.Fprintf(w, "%s %s\n", name, value)
		}
	}
	r.Counters.Range(func(name string, c *atomic.Int64) {
		write(name, strconv.FormatInt(c.Load(), 10))
	})
	r.Gauges.Range(func(name string, g *AtomicFloat) {
		write(name, strconv.FormatFloat(g.Get(), 'f', -1, 64))
	})
	return err
}
