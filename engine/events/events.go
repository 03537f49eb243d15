// Package events bridges the dashboard to NATS: selections arrive on one
// subject and every recompute is announced on another.
package events

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/WessleyAI/mpg-dashboard/engine/dashboard"
	"github.com/WessleyAI/mpg-dashboard/engine/filter"
	"github.com/WessleyAI/mpg-dashboard/engine/views"
	"github.com/WessleyAI/mpg-dashboard/pkg/natsutil"
)

// Subjects. The per-control subjects carry only that control's value.
const (
	SubjectApply     = "dashboard.selection.apply"
	SubjectOrigins   = "dashboard.selection.origins"
	SubjectCylinders = "dashboard.selection.cylinders"
	SubjectYears     = "dashboard.selection.years"
	SubjectUpdated   = "dashboard.views.updated"
)

// Updated is published after every recompute.
type Updated struct {
	Selection filter.Selection `json:"selection"`
	Rows      int              `json:"rows"`
	Views     views.Set        `json:"views"`
}

// Bridge owns the NATS subscriptions feeding selections to the dashboard.
type Bridge struct {
	subs   []*nats.Subscription
	logger *slog.Logger
}

// Start subscribes to SubjectApply and the per-control subjects and
// announces recomputes of d on SubjectUpdated. Selections that fail
// validation are logged and dropped.
func Start(nc *nats.Conn, d *dashboard.Dashboard, panels *dashboard.Panels, logger *slog.Logger) (*Bridge, error) {
	d.Observe(func(rc dashboard.Recompute) {
		msg := Updated{Selection: rc.Selection, Rows: rc.Rows, Views: panels.Snapshot()}
		if err := natsutil.Publish(context.Background(), nc, SubjectUpdated, msg); err != nil {
			logger.Warn("publish views failed", "subject", SubjectUpdated, "err", err)
		}
	})

	b := &Bridge{logger: logger}
	malformed := func(msg *nats.Msg, err error) {
		logger.Warn("malformed selection", "subject", msg.Subject, "bytes", len(msg.Data), "err", err)
	}
	rejected := func(subject string, err error) {
		if err != nil {
			logger.Warn("rejected selection", "subject", subject, "err", err)
		}
	}

	subscribe := []func() (*nats.Subscription, error){
		func() (*nats.Subscription, error) {
			return natsutil.Subscribe(nc, SubjectApply, func(ctx context.Context, sel filter.Selection) {
				_, err := d.Apply(ctx, sel)
				rejected(SubjectApply, err)
			}, malformed)
		},
		func() (*nats.Subscription, error) {
			return natsutil.Subscribe(nc, SubjectOrigins, func(ctx context.Context, origins []string) {
				_, err := d.SetOrigins(ctx, origins)
				rejected(SubjectOrigins, err)
			}, malformed)
		},
		func() (*nats.Subscription, error) {
			return natsutil.Subscribe(nc, SubjectCylinders, func(ctx context.Context, cylinders []int) {
				_, err := d.SetCylinders(ctx, cylinders)
				rejected(SubjectCylinders, err)
			}, malformed)
		},
		func() (*nats.Subscription, error) {
			return natsutil.Subscribe(nc, SubjectYears, func(ctx context.Context, years filter.YearRange) {
				_, err := d.SetYears(ctx, years)
				rejected(SubjectYears, err)
			}, malformed)
		},
	}
	for _, sub := range subscribe {
		s, err := sub()
		if err != nil {
			b.Close()
			return nil, err
		}
		b.subs = append(b.subs, s)
	}
	logger.Info("nats bridge started", "apply", SubjectApply, "updated", SubjectUpdated)
	return b, nil
}

// Close stops receiving selections.
func (b *Bridge) Close() error {
	var first error
	for _, s := range b.subs {
		if err := s.Unsubscribe(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
