package views

import (
	"github.com/WessleyAI/mpg-dashboard/engine/dataset"
	"github.com/WessleyAI/mpg-dashboard/engine/domain"
	"github.com/WessleyAI/mpg-dashboard/pkg/fn"
)

// Bar is the mean fuel economy of one cylinder group.
type Bar struct {
	Cylinders int     `json:"cylinders"`
	MeanMPG   float64 `json:"mean_mpg"`
	Count     int     `json:"count"`
}

// BarSeries is a categorical series keyed by cylinder count.
type BarSeries struct {
	Placeholder
	Bars []Bar `json:"bars,omitempty"`
}

// CylinderAverages groups by cylinder count and averages MPG per group,
// ordered by ascending cylinder count.
func CylinderAverages(t *dataset.Table) BarSeries {
	if t.Empty() {
		return BarSeries{Placeholder: noData()}
	}
	groups := fn.GroupBy(t.Rows(), func(v domain.Vehicle) int { return v.Cylinders })
	bars := make([]Bar, 0, len(groups))
	for _, cyl := range fn.SortedKeys(groups) {
		g := groups[cyl]
		bars = append(bars, Bar{
			Cylinders: cyl,
			MeanMPG:   RoundTo2(mean(fn.Map(g, func(v domain.Vehicle) float64 { return v.MPG }))),
			Count:     len(g),
		})
	}
	return BarSeries{Bars: bars}
}
