package views

import (
	"github.com/WessleyAI/mpg-dashboard/engine/dataset"
	"github.com/WessleyAI/mpg-dashboard/engine/domain"
	"github.com/WessleyAI/mpg-dashboard/pkg/fn"
)

// Point is one vehicle in the weight/MPG plane.
type Point struct {
	Weight float64 `json:"weight"`
	MPG    float64 `json:"mpg"`
	Name   string  `json:"name"`
}

// OriginSeries holds the points of one origin label.
type OriginSeries struct {
	Origin string  `json:"origin"`
	Points []Point `json:"points"`
}

// Scatter relates weight to fuel economy, one series per origin.
type Scatter struct {
	Placeholder
	Series []OriginSeries `json:"series,omitempty"`
}

// Relation groups the table by origin label. Series are sorted by label and
// points keep table order.
func Relation(t *dataset.Table) Scatter {
	if t.Empty() {
		return Scatter{Placeholder: noData()}
	}
	groups := fn.GroupBy(t.Rows(), func(v domain.Vehicle) string { return v.Origin })
	series := make([]OriginSeries, 0, len(groups))
	for _, origin := range fn.SortedKeys(groups) {
		series = append(series, OriginSeries{
			Origin: origin,
			Points: fn.Map(groups[origin], func(v domain.Vehicle) Point {
				return Point{Weight: v.Weight, MPG: v.MPG, Name: v.Name}
			}),
		})
	}
	return Scatter{Series: series}
}
