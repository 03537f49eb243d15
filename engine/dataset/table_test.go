package dataset

import (
	"testing"

	"github.com/WessleyAI/mpg-dashboard/engine/domain"
)

func sampleTable() *Table {
	return NewTable([]domain.Vehicle{
		{Name: "a", MPG: 18, Cylinders: 8, Weight: 3500, ModelYear: 70, Origin: domain.OriginUSA},
		{Name: "b", MPG: 30, Cylinders: 4, Weight: 2100, ModelYear: 75, Origin: domain.OriginJapan},
		{Name: "c", MPG: 22, Cylinders: 6, Weight: 3000, ModelYear: 72, Origin: domain.OriginUSA},
		{Name: "d", MPG: 35, Cylinders: 4, Weight: 2000, ModelYear: 80, Origin: domain.OriginEurope},
	})
}

func TestTable_WherePreservesOrder(t *testing.T) {
	tbl := sampleTable()
	light := tbl.Where(func(v domain.Vehicle) bool { return v.Weight < 3200 })
	if light.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", light.Len())
	}
	for i, want := range []string{"b", "c", "d"} {
		if got := light.At(i).Name; got != want {
			t.Fatalf("row %d: got %q want %q", i, got, want)
		}
	}
	if tbl.Len() != 4 {
		t.Fatal("Where must not modify the receiver")
	}
}

func TestTable_NestedWhere(t *testing.T) {
	tbl := sampleTable()
	usa := tbl.Where(func(v domain.Vehicle) bool { return v.Origin == domain.OriginUSA })
	late := usa.Where(func(v domain.Vehicle) bool { return v.ModelYear > 70 })
	if late.Len() != 1 || late.At(0).Name != "c" {
		t.Fatalf("unexpected nested result %+v", late.Rows())
	}
}

func TestTable_RowsIsACopy(t *testing.T) {
	tbl := sampleTable()
	rows := tbl.Rows()
	rows[0].MPG = 99
	if tbl.At(0).MPG != 18 {
		t.Fatal("mutating Rows() leaked into the table")
	}

	src := []domain.Vehicle{{Name: "x", MPG: 1}}
	own := NewTable(src)
	src[0].MPG = 2
	if own.At(0).MPG != 1 {
		t.Fatal("NewTable should copy its input")
	}
}

func TestTable_EmptyAndNil(t *testing.T) {
	var nilTable *Table
	if !nilTable.Empty() || nilTable.Len() != 0 {
		t.Fatal("nil table should be empty")
	}
	none := sampleTable().Where(func(domain.Vehicle) bool { return false })
	if !none.Empty() || len(none.Rows()) != 0 || len(none.MPG()) != 0 {
		t.Fatal("expected empty derived table")
	}
	if !nilTable.Where(func(domain.Vehicle) bool { return true }).Empty() {
		t.Fatal("Where on nil table should be empty")
	}
}

func TestTable_Columns(t *testing.T) {
	tbl := sampleTable()
	mpg := tbl.MPG()
	w := tbl.Weights()
	if len(mpg) != 4 || mpg[3] != 35 || w[1] != 2100 {
		t.Fatalf("unexpected columns %v %v", mpg, w)
	}
}
