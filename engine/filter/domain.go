package filter

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/WessleyAI/mpg-dashboard/engine/dataset"
	"github.com/WessleyAI/mpg-dashboard/engine/domain"
	"github.com/WessleyAI/mpg-dashboard/pkg/fn"
)

// Domain is the set of valid values for each control, observed once from
// the loaded table.
type Domain struct {
	Origins   []string  `json:"origins"`
	Cylinders []int     `json:"cylinders"`
	Years     YearRange `json:"years"`
}

// DomainOf derives the control domains from t. Null origin labels and
// unknown cylinder counts are not selectable.
func DomainOf(t *dataset.Table) Domain {
	var (
		origins   []string
		cylinders []int
		years     YearRange
	)
	for i := 0; i < t.Len(); i++ {
		v := t.At(i)
		if v.HasOrigin() {
			origins = append(origins, v.Origin)
		}
		if v.HasCylinders() {
			cylinders = append(cylinders, v.Cylinders)
		}
		if i == 0 || v.ModelYear < years.Min {
			years.Min = v.ModelYear
		}
		if i == 0 || v.ModelYear > years.Max {
			years.Max = v.ModelYear
		}
	}
	d := Domain{
		Origins:   fn.SortedUnique(origins),
		Cylinders: fn.SortedUnique(cylinders),
		Years:     years,
	}
	if d.Origins == nil {
		d.Origins = []string{}
	}
	if d.Cylinders == nil {
		d.Cylinders = []int{}
	}
	return d
}

// Default selects the whole domain.
func Default(d Domain) Selection {
	return Selection{
		Origins:   slices.Clone(d.Origins),
		Cylinders: slices.Clone(d.Cylinders),
		Years:     d.Years,
	}.Clone()
}

// Validate rejects a selection that is not drawn from d.
func Validate(s Selection, d Domain) error {
	origins := fn.Set(d.Origins)
	for _, o := range s.Origins {
		if _, ok := origins[o]; !ok {
			return domain.NewValidationError("origins", o, domain.ErrUnknownOrigin)
		}
	}
	cylinders := fn.Set(d.Cylinders)
	for _, c := range s.Cylinders {
		if _, ok := cylinders[c]; !ok {
			return domain.NewValidationError("cylinders", strconv.Itoa(c), domain.ErrUnknownCylinders)
		}
	}
	if s.Years.Min > s.Years.Max {
		return domain.NewValidationError("years", fmt.Sprintf("[%d, %d]", s.Years.Min, s.Years.Max), domain.ErrInvalidYearRange)
	}
	if s.Years.Min < d.Years.Min || s.Years.Max > d.Years.Max {
		return domain.NewValidationError("years", fmt.Sprintf("[%d, %d]", s.Years.Min, s.Years.Max), domain.ErrYearOutOfRange)
	}
	return nil
}
