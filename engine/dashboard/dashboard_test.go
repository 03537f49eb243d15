package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/WessleyAI/mpg-dashboard/engine/dataset"
	"github.com/WessleyAI/mpg-dashboard/engine/domain"
	"github.com/WessleyAI/mpg-dashboard/engine/filter"
	"github.com/WessleyAI/mpg-dashboard/pkg/metrics"
)

func scenarioTable() *dataset.Table {
	return dataset.NewTable([]domain.Vehicle{
		{Name: "r1", MPG: 18, Cylinders: 8, Weight: 3504, ModelYear: 70, Origin: domain.OriginUSA},
		{Name: "r2", MPG: 30, Cylinders: 4, Weight: 2130, ModelYear: 75, Origin: domain.OriginJapan},
		{Name: "r3", MPG: 22, Cylinders: 6, Weight: 3139, ModelYear: 72, Origin: domain.OriginUSA},
		{Name: "r4", MPG: 35, Cylinders: 4, Weight: 1985, ModelYear: 80, Origin: domain.OriginEurope},
	})
}

func newDashboard() *Dashboard {
	return New(scenarioTable(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSubscribersRunInOrderWithSameTable(t *testing.T) {
	d := newDashboard()
	var order []string
	var seen []*dataset.Table
	for _, name := range []string{"a", "b", "c"} {
		d.Subscribe(name, func(_ context.Context, tbl *dataset.Table) {
			order = append(order, name)
			seen = append(seen, tbl)
		})
	}
	if _, err := d.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if strings.Join(order, ",") != "a,b,c" {
		t.Fatalf("unexpected order %v", order)
	}
	if seen[0] != seen[1] || seen[1] != seen[2] {
		t.Fatal("every subscriber should receive the table from a single filter pass")
	}
	if seen[0].Len() != 4 {
		t.Fatalf("default selection should keep all rows, got %d", seen[0].Len())
	}
}

func TestApplyScenario(t *testing.T) {
	d := newDashboard()
	p := NewPanels(d)
	_, err := d.Apply(context.Background(), filter.Selection{
		Origins:   []string{"USA"},
		Cylinders: []int{8, 6},
		Years:     filter.YearRange{Min: 70, Max: 72},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	snap := p.Snapshot()
	if snap.Revision != 1 {
		t.Fatalf("expected revision 1, got %d", snap.Revision)
	}
	if snap.Summary.MeanMPG != 20.00 || snap.Summary.Count != 2 {
		t.Fatalf("unexpected summary %+v", snap.Summary)
	}
	if d.Filtered().Len() != 2 {
		t.Fatalf("expected 2 filtered rows, got %d", d.Filtered().Len())
	}
}

func TestApplyEmptyResultAllPlaceholders(t *testing.T) {
	d := newDashboard()
	p := NewPanels(d)
	_, err := d.Apply(context.Background(), filter.Selection{
		Origins:   []string{"Europe"},
		Cylinders: []int{8},
		Years:     filter.YearRange{Min: 70, Max: 80},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	s := p.Snapshot()
	if !s.Summary.NoData || !s.Distribution.NoData || !s.Cylinders.NoData || !s.Relation.NoData || !s.Insight.NoData {
		t.Fatalf("expected every view to be a placeholder: %+v", s)
	}
}

func TestApplyRejectsInvalidSelection(t *testing.T) {
	d := newDashboard()
	calls := 0
	d.Subscribe("count", func(context.Context, *dataset.Table) { calls++ })
	before := d.Selection()

	_, err := d.Apply(context.Background(), filter.Selection{Origins: []string{"Mars"}, Years: before.Years})
	if !errors.Is(err, domain.ErrUnknownOrigin) {
		t.Fatalf("expected ErrUnknownOrigin, got %v", err)
	}
	if _, err := d.SetYears(context.Background(), filter.YearRange{Min: 80, Max: 70}); !errors.Is(err, domain.ErrInvalidYearRange) {
		t.Fatalf("expected ErrInvalidYearRange, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("invalid selection should not recompute, got %d calls", calls)
	}
	after := d.Selection()
	if len(after.Origins) != len(before.Origins) || after.Years != before.Years {
		t.Fatal("invalid selection should leave state untouched")
	}
}

func TestSingleControlChanges(t *testing.T) {
	d := newDashboard()
	p := NewPanels(d)
	ctx := context.Background()
	if _, err := d.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := d.SetOrigins(ctx, []string{"USA"}); err != nil {
		t.Fatal(err)
	}
	if _, err := d.SetCylinders(ctx, []int{8, 6}); err != nil {
		t.Fatal(err)
	}
	if _, err := d.SetYears(ctx, filter.YearRange{Min: 70, Max: 72}); err != nil {
		t.Fatal(err)
	}
	snap := p.Snapshot()
	if snap.Revision != 4 {
		t.Fatalf("expected revision 4 after four recomputes, got %d", snap.Revision)
	}
	if snap.Summary.Count != 2 {
		t.Fatalf("expected 2 rows, got %+v", snap.Summary)
	}
	sel := d.Selection()
	if len(sel.Origins) != 1 || len(sel.Cylinders) != 2 || sel.Years.Max != 72 {
		t.Fatalf("unexpected selection %+v", sel)
	}
}

func TestSelectionIsACopy(t *testing.T) {
	d := newDashboard()
	sel := d.Selection()
	sel.Origins[0] = "Mars"
	if d.Selection().Origins[0] == "Mars" {
		t.Fatal("Selection should not alias internal state")
	}
}

func TestPanelsSnapshotBeforeRefresh(t *testing.T) {
	p := NewPanels(newDashboard())
	if p.Snapshot().Revision != 0 {
		t.Fatal("expected revision 0 before the first recompute")
	}
}

func TestStats(t *testing.T) {
	reg := metrics.New()
	d := newDashboard()
	NewStats(reg, d)
	ctx := context.Background()
	d.Refresh(ctx)
	d.SetOrigins(ctx, []string{})

	out := reg.Render()
	for _, want := range []string{
		"dashboard_recomputes_total 2",
		"dashboard_empty_results_total 1",
		"dashboard_filtered_rows 0",
		"dashboard_loaded_rows 4",
		"dashboard_recompute_seconds_count 2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestConcurrentChangesAreSerialized(t *testing.T) {
	d := newDashboard()
	p := NewPanels(d)
	ctx := context.Background()
	results := make([]Recompute, 20)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				results[i], _ = d.SetOrigins(ctx, []string{"USA"})
			} else {
				results[i], _ = d.Refresh(ctx)
			}
		}(i)
	}
	wg.Wait()
	if p.Snapshot().Revision != 20 {
		t.Fatalf("expected 20 revisions, got %d", p.Snapshot().Revision)
	}
	revisions := map[uint64]bool{}
	for i, rc := range results {
		if revisions[rc.Revision] {
			t.Fatalf("revision %d returned twice", rc.Revision)
		}
		revisions[rc.Revision] = true
		if i%2 == 0 && (rc.Rows != 2 || len(rc.Selection.Origins) != 1) {
			t.Fatalf("call %d: result describes another change: %+v", i, rc)
		}
		if i%2 == 1 && (rc.Rows != 4 || len(rc.Selection.Origins) != 3) {
			t.Fatalf("call %d: result describes another change: %+v", i, rc)
		}
	}
}

func TestApplyReturnsItsOwnRecompute(t *testing.T) {
	d := newDashboard()
	ctx := context.Background()
	first, err := d.Refresh(ctx)
	if err != nil {
		t.Fatal(err)
	}
	rc, err := d.SetCylinders(ctx, []int{4})
	if err != nil {
		t.Fatal(err)
	}
	if first.Revision != 1 || rc.Revision != 2 || rc.Rows != 2 || len(rc.Selection.Cylinders) != 1 {
		t.Fatalf("unexpected recomputes %+v %+v", first, rc)
	}
	if _, err := d.SetCylinders(ctx, []int{5}); !errors.Is(err, domain.ErrUnknownCylinders) {
		t.Fatalf("expected ErrUnknownCylinders, got %v", err)
	}
}

func TestSetCopiesInput(t *testing.T) {
	d := newDashboard()
	origins := []string{"USA"}
	if _, err := d.SetOrigins(context.Background(), origins); err != nil {
		t.Fatal(err)
	}
	origins[0] = "Mars"
	if d.Selection().Origins[0] != "USA" {
		t.Fatal("SetOrigins should not alias the caller's slice")
	}
}
