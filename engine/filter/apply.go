package filter

import (
	"github.com/WessleyAI/mpg-dashboard/engine/dataset"
	"github.com/WessleyAI/mpg-dashboard/engine/domain"
	"github.com/WessleyAI/mpg-dashboard/pkg/fn"
)

// Apply returns the records of t whose origin is selected, whose cylinder
// count is selected and whose model year lies in the selected range. Order
// is preserved and t is not modified. Records with a null origin label or
// unknown cylinder count never match.
func Apply(t *dataset.Table, s Selection) *dataset.Table {
	origins := fn.Set(s.Origins)
	cylinders := fn.Set(s.Cylinders)
	return t.Where(func(v domain.Vehicle) bool {
		if !v.HasOrigin() || !v.HasCylinders() {
			return false
		}
		if _, ok := origins[v.Origin]; !ok {
			return false
		}
		if _, ok := cylinders[v.Cylinders]; !ok {
			return false
		}
		return s.Years.Contains(v.ModelYear)
	})
}
