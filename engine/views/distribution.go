package views

import (
	"slices"

	"github.com/WessleyAI/mpg-dashboard/engine/dataset"
)

// BinCount is the fixed number of histogram buckets.
const BinCount = 20

// Bin is one histogram bucket covering [Lo, Hi). The last bucket is closed.
type Bin struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Count int     `json:"count"`
}

// Histogram is the fuel-economy distribution.
type Histogram struct {
	Placeholder
	Bins []Bin `json:"bins,omitempty"`
}

// Distribution buckets MPG into BinCount equal-width bins spanning the
// column's min and max. A single distinct value is widened by 0.5 each way.
func Distribution(t *dataset.Table) Histogram {
	if t.Empty() {
		return Histogram{Placeholder: noData()}
	}
	xs := t.MPG()
	lo, hi := slices.Min(xs), slices.Max(xs)
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	width := (hi - lo) / BinCount

	bins := make([]Bin, BinCount)
	for i := range bins {
		bins[i].Lo = lo + float64(i)*width
		bins[i].Hi = lo + float64(i+1)*width
	}
	bins[BinCount-1].Hi = hi

	for _, x := range xs {
		i := int((x - lo) / width)
		if i >= BinCount {
			i = BinCount - 1
		}
		if i < 0 {
			i = 0
		}
		bins[i].Count++
	}
	return Histogram{Bins: bins}
}
