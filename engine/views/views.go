// Package views computes the derived views of the dashboard. Every function
// is pure over the filtered table and detects the empty table itself,
// returning a placeholder instead of computing on zero rows.
package views

import (
	"math"

	"github.com/WessleyAI/mpg-dashboard/engine/dataset"
)

// NoDataMessage is shown in place of a view when the filter retains nothing.
const NoDataMessage = "No data for this filter."

// Placeholder marks a view that has nothing to show.
type Placeholder struct {
	NoData  bool   `json:"no_data"`
	Message string `json:"message,omitempty"`
}

func noData() Placeholder {
	return Placeholder{NoData: true, Message: NoDataMessage}
}

// Set bundles every view computed from one filtered table.
type Set struct {
	Revision     uint64    `json:"revision"`
	Summary      Summary   `json:"summary"`
	Distribution Histogram `json:"distribution"`
	Cylinders    BarSeries `json:"cylinders"`
	Relation     Scatter   `json:"relation"`
	Insight      Insight   `json:"insight"`
}

// Builder fills one view of a Set from the filtered table.
type Builder struct {
	Name  string
	Build func(t *dataset.Table, s *Set)
}

// Builders lists every view in display order. Views never read each other,
// so the order only matters for logging.
var Builders = []Builder{
	{Name: "summary", Build: func(t *dataset.Table, s *Set) { s.Summary = Summarize(t) }},
	{Name: "distribution", Build: func(t *dataset.Table, s *Set) { s.Distribution = Distribution(t) }},
	{Name: "cylinders", Build: func(t *dataset.Table, s *Set) { s.Cylinders = CylinderAverages(t) }},
	{Name: "relation", Build: func(t *dataset.Table, s *Set) { s.Relation = Relation(t) }},
	{Name: "insight", Build: func(t *dataset.Table, s *Set) { s.Insight = BuildInsight(t) }},
}

// RoundTo2 rounds v to two decimal places.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
