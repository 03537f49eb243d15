package dataset

import (
	"slices"

	"github.com/WessleyAI/mpg-dashboard/engine/domain"
)

// Table is an immutable, ordered collection of vehicles. Derived tables share
// the base slice and carry the positions they retain, so filtering never
// copies records.
type Table struct {
	rows []domain.Vehicle
	idx  []int // nil means every row of rows
}

// NewTable copies rows into a new base table.
func NewTable(rows []domain.Vehicle) *Table {
	return &Table{rows: slices.Clone(rows)}
}

// Len returns the number of records. A nil table is empty.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	if t.idx == nil {
		return len(t.rows)
	}
	return len(t.idx)
}

// Empty reports whether the table holds no records.
func (t *Table) Empty() bool { return t.Len() == 0 }

// At returns the i-th record in table order.
func (t *Table) At(i int) domain.Vehicle {
	if t.idx == nil {
		return t.rows[i]
	}
	return t.rows[t.idx[i]]
}

// Each calls f for every record in order.
func (t *Table) Each(f func(domain.Vehicle)) {
	for i := 0; i < t.Len(); i++ {
		f(t.At(i))
	}
}

// Rows returns a copy of the records in order.
func (t *Table) Rows() []domain.Vehicle {
	out := make([]domain.Vehicle, 0, t.Len())
	t.Each(func(v domain.Vehicle) { out = append(out, v) })
	return out
}

// Where returns the records matching pred as a new table, preserving order.
// The receiver is not modified.
func (t *Table) Where(pred func(domain.Vehicle) bool) *Table {
	if t == nil {
		return &Table{idx: []int{}}
	}
	idx := make([]int, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		pos := i
		if t.idx != nil {
			pos = t.idx[i]
		}
		if pred(t.rows[pos]) {
			idx = append(idx, pos)
		}
	}
	return &Table{rows: t.rows, idx: idx}
}

// MPG returns the fuel-economy column in table order.
func (t *Table) MPG() []float64 {
	out := make([]float64, 0, t.Len())
	t.Each(func(v domain.Vehicle) { out = append(out, v.MPG) })
	return out
}

// Weights returns the weight column in table order.
func (t *Table) Weights() []float64 {
	out := make([]float64, 0, t.Len())
	t.Each(func(v domain.Vehicle) { out = append(out, v.Weight) })
	return out
}
