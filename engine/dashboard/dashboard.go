// Package dashboard wires the filter state to the derived views. A change to
// any control filters the table once and then notifies every subscriber, in
// registration order, with the new filtered table.
package dashboard

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/WessleyAI/mpg-dashboard/engine/dataset"
	"github.com/WessleyAI/mpg-dashboard/engine/filter"
)

const tracerName = "github.com/WessleyAI/mpg-dashboard/engine/dashboard"

// Subscriber receives the filtered table after every change. It runs while
// the dashboard is locked and must not call back into the Dashboard.
type Subscriber func(ctx context.Context, filtered *dataset.Table)

// Recompute describes one evaluation of the pipeline. Revision counts
// recomputes since New, starting at 1.
type Recompute struct {
	Revision  uint64
	Selection filter.Selection
	Rows      int
	Duration  time.Duration
}

type subscription struct {
	name string
	fn   Subscriber
}

// Dashboard owns the loaded table, the control domains and the current
// selection.
type Dashboard struct {
	table  *dataset.Table
	domain filter.Domain
	logger *slog.Logger

	mu        sync.Mutex
	selection filter.Selection
	filtered  *dataset.Table
	revision  uint64
	subs      []subscription
	observers []func(Recompute)
}

// New builds a dashboard over table, selecting the full domain. Nothing is
// evaluated until Refresh or Apply is called.
func New(table *dataset.Table, logger *slog.Logger) *Dashboard {
	if logger == nil {
		logger = slog.Default()
	}
	dom := filter.DomainOf(table)
	return &Dashboard{
		table:     table,
		domain:    dom,
		logger:    logger,
		selection: filter.Default(dom),
		filtered:  table,
	}
}

// Subscribe registers fn under name. Subscribers run in registration order.
func (d *Dashboard) Subscribe(name string, fn Subscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subs = append(d.subs, subscription{name: name, fn: fn})
}

// Observe registers fn to be told about every completed recompute.
func (d *Dashboard) Observe(fn func(Recompute)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers = append(d.observers, fn)
}

// Table returns the loaded table.
func (d *Dashboard) Table() *dataset.Table { return d.table }

// Domain returns the valid values of each control.
func (d *Dashboard) Domain() filter.Domain {
	return filter.Domain{
		Origins:   slices.Clone(d.domain.Origins),
		Cylinders: slices.Clone(d.domain.Cylinders),
		Years:     d.domain.Years,
	}
}

// Selection returns a copy of the current selection.
func (d *Dashboard) Selection() filter.Selection {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.selection.Clone()
}

// Filtered returns the table produced by the last recompute.
func (d *Dashboard) Filtered() *dataset.Table {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.filtered
}

// Refresh evaluates the default selection.
func (d *Dashboard) Refresh(ctx context.Context) (Recompute, error) {
	return d.Apply(ctx, filter.Default(d.domain))
}

// Apply validates sel, stores it and recomputes. An invalid selection leaves
// the current state untouched. The returned Recompute describes this call,
// even if another change lands right after it.
func (d *Dashboard) Apply(ctx context.Context, sel filter.Selection) (Recompute, error) {
	return d.update(ctx, func(s *filter.Selection) { *s = sel.Clone() })
}

// SetOrigins changes the origin control.
func (d *Dashboard) SetOrigins(ctx context.Context, origins []string) (Recompute, error) {
	return d.update(ctx, func(s *filter.Selection) { s.Origins = slices.Clone(origins) })
}

// SetCylinders changes the cylinder control.
func (d *Dashboard) SetCylinders(ctx context.Context, cylinders []int) (Recompute, error) {
	return d.update(ctx, func(s *filter.Selection) { s.Cylinders = slices.Clone(cylinders) })
}

// SetYears changes the model-year control.
func (d *Dashboard) SetYears(ctx context.Context, years filter.YearRange) (Recompute, error) {
	return d.update(ctx, func(s *filter.Selection) { s.Years = years })
}

func (d *Dashboard) update(ctx context.Context, change func(*filter.Selection)) (Recompute, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	next := d.selection.Clone()
	change(&next)
	if err := filter.Validate(next, d.domain); err != nil {
		return Recompute{}, err
	}
	d.selection = next.Clone()
	return d.recompute(ctx), nil
}

// recompute must be called with d.mu held.
func (d *Dashboard) recompute(ctx context.Context) Recompute {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "dashboard.recompute")
	defer span.End()

	start := time.Now()
	d.revision++
	d.filtered = filter.Apply(d.table, d.selection)
	for _, s := range d.subs {
		s.fn(ctx, d.filtered)
	}
	rc := Recompute{
		Revision:  d.revision,
		Selection: d.selection.Clone(),
		Rows:      d.filtered.Len(),
		Duration:  time.Since(start),
	}
	span.SetAttributes(
		attribute.Int("dashboard.rows", rc.Rows),
		attribute.Int("dashboard.subscribers", len(d.subs)),
	)
	for _, o := range d.observers {
		o(rc)
	}
	d.logger.Debug("recomputed", "revision", rc.Revision, "rows", rc.Rows, "subscribers", len(d.subs), "duration", rc.Duration)
	return rc
}
