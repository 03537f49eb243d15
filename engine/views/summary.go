package views

import "github.com/WessleyAI/mpg-dashboard/engine/dataset"

// Summary is the headline row of the dashboard.
type Summary struct {
	Placeholder
	MeanMPG    float64 `json:"mean_mpg"`    // rounded to 2 decimals
	MeanWeight int     `json:"mean_weight"` // truncated
	Count      int     `json:"count"`
}

// Summarize computes mean fuel economy, mean weight and record count.
func Summarize(t *dataset.Table) Summary {
	if t.Empty() {
		return Summary{Placeholder: noData()}
	}
	return Summary{
		MeanMPG:    RoundTo2(mean(t.MPG())),
		MeanWeight: int(mean(t.Weights())),
		Count:      t.Len(),
	}
}
