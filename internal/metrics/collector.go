// Package metrics is a small Prometheus-exposition-format collector for
// the pipeline counters Lexol records. Plain text output, no
// client_golang dependency.
package metrics

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Collector is the process-wide metrics collector.
var Collector = NewCollector()

// MetricsCollector aggregates named counters.
type MetricsCollector struct {
	mu        sync.Mutex
	counters  map[string]*Counter
	names     []string // registration order for stable output
	startTime time.Time
}

func NewCollector() *MetricsCollector {
	return &MetricsCollector{
		counters:  make(map[string]*Counter),
		startTime: time.Now(),
	}
}

// Uptime returns how long the collector has been running.
func (c *MetricsCollector) Uptime() time.Duration {
	return time.Since(c.startTime)
}

// Counter is a monotonically increasing counter.
type Counter struct {
	name  string
	help  string
	value atomic.Int64
}

// Inc increments the counter by 1.
func (c *Counter) Inc() { c.value.Add(1) }

// Value returns the current counter value.
func (c *Counter) Value() int64 { return c.value.Load() }

// Counter returns or creates the counter with the given name.
func (c *MetricsCollector) Counter(name, help string) *Counter {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ctr, ok := c.counters[name]; ok {
		return ctr
	}
	ctr := &Counter{name: name, help: help}
	c.counters[name] = ctr
	c.names = append(c.names, name)
	return ctr
}

// Handler renders the counters in Prometheus text exposition format.
func (c *MetricsCollector) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

		var sb strings.Builder
		fmt.Fprintf(&sb, "# HELP lexol_uptime_seconds Time since start in seconds\n")
		fmt.Fprintf(&sb, "# TYPE lexol_uptime_seconds gauge\n")
		fmt.Fprintf(&sb, "lexol_uptime_seconds %d\n", int64(c.Uptime().Seconds()))

		c.mu.Lock()
		names := make([]string, len(c.names))
		copy(names, c.names)
		counters := make([]*Counter, 0, len(names))
		for _, name := range names {
			counters = append(counters, c.counters[name])
		}
		c.mu.Unlock()

		sort.Slice(counters, func(i, j int) bool { return counters[i].name < counters[j].name })
		for _, ctr := range counters {
			fmt.Fprintf(&sb, "# HELP %s %s\n", ctr.name, ctr.help)
			fmt.Fprintf(&sb, "# TYPE %s counter\n", ctr.name)
			fmt.Fprintf(&sb, "%s %d\n", ctr.name, ctr.Value())
		}

		w.Write([]byte(sb.String()))
	}
}
