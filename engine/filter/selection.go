// Package filter holds the three user-controlled selectors, their domains
// derived from the loaded table, and the filter primitive every view reads.
package filter

import "slices"

// YearRange is a closed interval of model years.
type YearRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether y lies in [Min, Max].
func (r YearRange) Contains(y int) bool { return y >= r.Min && y <= r.Max }

// Selection is the current value of the three filter controls. An empty
// origin or cylinder set selects nothing.
type Selection struct {
	Origins   []string  `json:"origins"`
	Cylinders []int     `json:"cylinders"`
	Years     YearRange `json:"years"`
}

// Clone returns a deep copy so callers cannot alias stored state.
func (s Selection) Clone() Selection {
	out := Selection{Years: s.Years}
	out.Origins = slices.Clone(s.Origins)
	if out.Origins == nil {
		out.Origins = []string{}
	}
	out.Cylinders = slices.Clone(s.Cylinders)
	if out.Cylinders == nil {
		out.Cylinders = []int{}
	}
	return out
}
