package dashboard

import (
	"github.com/WessleyAI/mpg-dashboard/pkg/metrics"
)

// Stats exports recompute metrics.
type Stats struct {
	recomputes *metrics.Counter
	empty      *metrics.Counter
	rows       *metrics.Gauge
	latency    *metrics.Histogram
}

// NewStats registers the recompute metrics on reg and observes d.
func NewStats(reg *metrics.Registry, d *Dashboard) *Stats {
	s := &Stats{
		recomputes: reg.Counter("dashboard_recomputes_total", "Filter changes evaluated."),
		empty:      reg.Counter("dashboard_empty_results_total", "Recomputes whose filter retained no rows."),
		rows:       reg.Gauge("dashboard_filtered_rows", "Rows retained by the current selection."),
		latency:    reg.Histogram("dashboard_recompute_seconds", "Time to filter and evaluate every view.", metrics.FastBuckets),
	}
	reg.Gauge("dashboard_loaded_rows", "Rows in the loaded table.").Set(float64(d.Table().Len()))
	d.Observe(s.record)
	return s
}

func (s *Stats) record(rc Recompute) {
	s.recomputes.Inc()
	if rc.Rows == 0 {
		s.empty.Inc()
	}
	s.rows.Set(float64(rc.Rows))
	s.latency.Observe(rc.Duration.Seconds())
}
