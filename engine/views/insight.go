package views

import (
	"fmt"
	"strings"

	"github.com/WessleyAI/mpg-dashboard/engine/dataset"
)

const (
	insightHeadline = "Automatic insight"
	cylinderInsight = "Cars with fewer cylinders generally achieve higher fuel efficiency."
	weightInsight   = "Weight and MPG are negatively correlated: heavier cars use more fuel."
	meanInsightFmt  = "Average fuel efficiency: **%.2f MPG**"
)

// Insight is the short narrative under the charts.
type Insight struct {
	Placeholder
	Headline string   `json:"headline,omitempty"`
	Bullets  []string `json:"bullets,omitempty"`
}

// BuildInsight states the mean MPG of t followed by two fixed observations.
// An empty table yields a blank placeholder and no mean.
func BuildInsight(t *dataset.Table) Insight {
	if t.Empty() {
		return Insight{Placeholder: Placeholder{NoData: true}}
	}
	return Insight{
		Headline: insightHeadline,
		Bullets: []string{
			fmt.Sprintf(meanInsightFmt, mean(t.MPG())),
			cylinderInsight,
			weightInsight,
		},
	}
}

// Markdown renders the insight as a heading and bullet list. The
// placeholder renders as the empty string.
func (in Insight) Markdown() string {
	if in.NoData {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "### %s\n", in.Headline)
	for _, line := range in.Bullets {
		fmt.Fprintf(&b, "- %s\n", line)
	}
	return b.String()
}
