package notify

import (
	"context"
	"log/slog"
	"sync"
)

// Dispatcher runs a Poller pass for every owner that has reminders due
// today or earlier and has notifications switched on. Owners are processed
// one after another, and a pass never overlaps another one: a manual
// RunOnce waits for the background tick to finish.
type Dispatcher struct {
	owners  OwnerSource
	prefs   Preferences
	source  ReminderSource
	alerter Alerter
	opts    Options
	log     *slog.Logger

	mu   sync.Mutex
	loop loop
}

// NewDispatcher builds a dispatcher. prefs may be nil, in which case every
// owner is alerted.
func NewDispatcher(owners OwnerSource, prefs Preferences, source ReminderSource, alerter Alerter, opts Options) *Dispatcher {
	opts = opts.withDefaults()
	return &Dispatcher{
		owners:  owners,
		prefs:   prefs,
		source:  source,
		alerter: alerter,
		opts:    opts,
		log:     opts.Logger.With("component", "notify"),
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	d.log.Info("reminder dispatcher started", "interval", d.opts.Interval.String())
	d.loop.start(ctx, d.opts.Interval, func(ctx context.Context) { _, _ = d.RunOnce(ctx) })
}

func (d *Dispatcher) Stop() {
	d.loop.stop()
}

// RunOnce performs a single pass over all owners with due reminders.
func (d *Dispatcher) RunOnce(ctx context.Context) (Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var total Result

	owners, err := d.owners.DueOwners(ctx)
	if err != nil {
		d.log.Error("list owners with due reminders failed", "error", err)
		return total, err
	}

	for _, ownerID := range owners {
		if ctx.Err() != nil {
			break
		}
		if d.prefs != nil {
			enabled, err := d.prefs.NotificationsEnabled(ctx, ownerID)
			if err != nil {
				d.log.Error("read notification settings failed", "owner_id", ownerID, "error", err)
				total.Failed++
				continue
			}
			if !enabled {
				continue
			}
		}
		total.add(NewPoller(ownerID, d.source, d.alerter, d.opts).Tick(ctx))
	}

	if total.Notified > 0 || total.Failed > 0 {
		d.log.Info("reminder dispatch completed",
			"owners", total.Owners, "notified", total.Notified, "failed", total.Failed)
	}
	return total, nil
}
