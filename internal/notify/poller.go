package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const DefaultInterval = time.Minute

// Options tune a Poller or Dispatcher. Zero values use the defaults.
type Options struct {
	Interval     time.Duration
	Location     *time.Location
	Acknowledger Acknowledger
	Logger       *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Poller alerts one owner's due reminders on a fixed interval. The owner is
// fixed at construction.
type Poller struct {
	ownerID string
	source  ReminderSource
	alerter Alerter
	opts    Options
	log     *slog.Logger

	loop loop
}

func NewPoller(ownerID string, source ReminderSource, alerter Alerter, opts Options) *Poller {
	opts = opts.withDefaults()
	return &Poller{
		ownerID: ownerID,
		source:  source,
		alerter: alerter,
		opts:    opts,
		log:     opts.Logger.With("component", "notify", "owner_id", ownerID),
	}
}

func (p *Poller) OwnerID() string { return p.ownerID }

// Start runs one tick right away, then one per interval, until Stop is
// called or ctx ends. Starting a running poller does nothing.
func (p *Poller) Start(ctx context.Context) {
	p.loop.start(ctx, p.opts.Interval, func(ctx context.Context) { p.Tick(ctx) })
}

// Stop cancels the loop and waits for an in-flight tick to finish.
func (p *Poller) Stop() {
	p.loop.stop()
}

// Tick alerts every due reminder in ListDue order. A reminder that fails to
// alert or to commit stays due and is retried on the next tick.
func (p *Poller) Tick(ctx context.Context) Result {
	res := Result{Owners: 1}

	due, err := p.source.ListDue(ctx, p.ownerID)
	if err != nil {
		p.log.Error("list due reminders failed", "error", err)
		res.Failed++
		return res
	}

	for _, r := range due {
		if ctx.Err() != nil {
			return res
		}

		clientName, err := p.source.ClientName(ctx, p.ownerID, r.ClientID)
		if err != nil {
			p.log.Warn("client lookup failed, alerting without name", "reminder_id", r.ID, "error", err)
			clientName = ""
		}

		msg := Message{
			ReminderID: r.ID,
			ClientName: clientName,
			Text:       FormatMessage(r, clientName, p.opts.Location),
		}
		if err := p.alerter.Alert(ctx, p.ownerID, msg); err != nil {
			p.log.Error("reminder alert failed", "reminder_id", r.ID, "error", err)
			res.Failed++
			continue
		}

		updated, err := p.source.MarkNotified(ctx, p.ownerID, r.ID)
		if err != nil {
			p.log.Error("mark notified failed", "reminder_id", r.ID, "error", err)
			res.Failed++
			continue
		}
		res.Notified++

		if p.opts.Acknowledger != nil {
			if err := p.opts.Acknowledger.Acknowledge(ctx, p.ownerID, *updated); err != nil {
				p.log.Warn("acknowledge failed", "reminder_id", r.ID, "error", err)
			}
		}
	}
	return res
}

// loop is a ticker goroutine with a cancel handle.
type loop struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func (l *loop) start(parent context.Context, every time.Duration, fn func(context.Context)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})
	l.cancel, l.done = cancel, done

	go func() {
		defer close(done)
		ticker := time.NewTicker(every)
		defer ticker.Stop()

		fn(ctx)
		for {
			select {
			case <-ticker.C:
				fn(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (l *loop) stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.cancel, l.done = nil, nil
	l.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
