package dashboard

import (
	"context"
	"sync"

	"github.com/WessleyAI/mpg-dashboard/engine/dataset"
	"github.com/WessleyAI/mpg-dashboard/engine/views"
)

// Panels keeps the latest output of every derived view. Each view is its own
// subscriber; the final one publishes the assembled set so readers never see
// a mix of two recomputes. The published Revision is the dashboard's.
type Panels struct {
	pending views.Set

	mu      sync.RWMutex
	current views.Set
}

// NewPanels creates Panels and subscribes every view in views.Builders to d.
func NewPanels(d *Dashboard) *Panels {
	p := &Panels{}
	for _, b := range views.Builders {
		build := b.Build
		d.Subscribe(b.Name, func(_ context.Context, t *dataset.Table) {
			build(t, &p.pending)
		})
	}
	d.Subscribe("panels.publish", func(context.Context, *dataset.Table) {
		// Subscribers run under d.mu, so the revision is the one being computed.
		next := p.pending
		next.Revision = d.revision
		p.pending = views.Set{}

		p.mu.Lock()
		defer p.mu.Unlock()
		p.current = next
	})
	return p
}

// Snapshot returns the most recently published views. Revision is 0 until the
// first recompute.
func (p *Panels) Snapshot() views.Set {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}
