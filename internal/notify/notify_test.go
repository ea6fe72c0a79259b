package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/apps/crm"
	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu        sync.Mutex
	due       map[string][]crm.Reminder
	failMark  map[uuid.UUID]bool
	clients   map[uuid.UUID]string
	marked    []uuid.UUID
	listCalls int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		due:      map[string][]crm.Reminder{},
		failMark: map[uuid.UUID]bool{},
		clients:  map[uuid.UUID]string{},
	}
}

func (f *fakeSource) add(ownerID, text string) crm.Reminder {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := crm.Reminder{ID: uuid.New(), OwnerID: ownerID, Text: text, Date: "2026-03-10", Time: "09:00:00"}
	f.due[ownerID] = append(f.due[ownerID], r)
	return r
}

func (f *fakeSource) ListDue(_ context.Context, ownerID string) ([]crm.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return append([]crm.Reminder(nil), f.due[ownerID]...), nil
}

func (f *fakeSource) MarkNotified(_ context.Context, ownerID string, id uuid.UUID) (*crm.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failMark[id] {
		return nil, errors.New("store unavailable")
	}
	list := f.due[ownerID]
	for i, r := range list {
		if r.ID == id {
			f.due[ownerID] = append(list[:i:i], list[i+1:]...)
			f.marked = append(f.marked, id)
			r.Notified, r.Archived = true, true
			return &r, nil
		}
	}
	return nil, crm.ErrReminderNotFound
}

func (f *fakeSource) ClientName(_ context.Context, _ string, clientID *uuid.UUID) (string, error) {
	if clientID == nil {
		return "", nil
	}
	return f.clients[*clientID], nil
}

func (f *fakeSource) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

type fakeAlerter struct {
	mu   sync.Mutex
	fail map[uuid.UUID]bool
	sent []Message
}

func (a *fakeAlerter) Alert(_ context.Context, _ string, msg Message) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail[msg.ReminderID] {
		return errors.New("alert surface down")
	}
	a.sent = append(a.sent, msg)
	return nil
}

type countingAck struct{ n int }

func (c *countingAck) Acknowledge(context.Context, string, crm.Reminder) error {
	c.n++
	return nil
}

func TestTickAlertsInOrderAndCommits(t *testing.T) {
	src := newFakeSource()
	first := src.add("1", "first")
	second := src.add("1", "second")
	alerter := &fakeAlerter{}
	ack := &countingAck{}

	res := NewPoller("1", src, alerter, Options{Location: time.UTC, Acknowledger: ack}).Tick(context.Background())

	assert.Equal(t, Result{Owners: 1, Notified: 2}, res)
	require.Len(t, alerter.sent, 2)
	assert.Equal(t, first.ID, alerter.sent[0].ReminderID)
	assert.Equal(t, second.ID, alerter.sent[1].ReminderID)
	assert.Equal(t, []uuid.UUID{first.ID, second.ID}, src.marked)
	assert.Equal(t, 2, ack.n)
}

func TestTickIsolatesFailures(t *testing.T) {
	src := newFakeSource()
	alertFails := src.add("1", "a")
	commitFails := src.add("1", "b")
	ok := src.add("1", "c")
	src.failMark[commitFails.ID] = true
	alerter := &fakeAlerter{fail: map[uuid.UUID]bool{alertFails.ID: true}}

	p := NewPoller("1", src, alerter, Options{Location: time.UTC})
	res := p.Tick(context.Background())

	assert.Equal(t, 1, res.Notified)
	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, []uuid.UUID{ok.ID}, src.marked)

	// failed items stay due and are retried; the commit failure is alerted again
	alerter.fail = nil
	delete(src.failMark, commitFails.ID)
	res = p.Tick(context.Background())
	assert.Equal(t, 2, res.Notified)
	assert.Equal(t, []uuid.UUID{ok.ID, alertFails.ID, commitFails.ID}, src.marked)

	var alertsForB int
	for _, m := range alerter.sent {
		if m.ReminderID == commitFails.ID {
			alertsForB++
		}
	}
	assert.Equal(t, 2, alertsForB)
}

func TestPollerOnlyTouchesItsOwner(t *testing.T) {
	src := newFakeSource()
	src.add("1", "mine")
	theirs := src.add("2", "theirs")
	alerter := &fakeAlerter{}

	NewPoller("1", src, alerter, Options{}).Tick(context.Background())

	require.Len(t, alerter.sent, 1)
	assert.NotContains(t, src.marked, theirs.ID)
}

func TestPollerStartTicksImmediatelyAndStops(t *testing.T) {
	src := newFakeSource()
	src.add("1", "x")
	alerter := &fakeAlerter{}

	p := NewPoller("1", src, alerter, Options{Interval: time.Hour})
	p.Start(context.Background())
	p.Start(context.Background())

	require.Eventually(t, func() bool { return src.calls() >= 1 }, time.Second, 5*time.Millisecond)
	p.Stop()
	p.Stop()

	calls := src.calls()
	assert.Equal(t, 1, calls)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, calls, src.calls())
}

func TestPollerTicksOnInterval(t *testing.T) {
	src := newFakeSource()
	p := NewPoller("1", src, &fakeAlerter{}, Options{Interval: 10 * time.Millisecond})
	p.Start(context.Background())
	defer p.Stop()

	assert.Eventually(t, func() bool { return src.calls() >= 3 }, time.Second, 5*time.Millisecond)
}

type staticOwners []string

func (s staticOwners) DueOwners(context.Context) ([]string, error) { return s, nil }

type prefs map[string]bool

func (p prefs) NotificationsEnabled(_ context.Context, ownerID string) (bool, error) {
	on, ok := p[ownerID]
	return !ok || on, nil
}

func TestDispatcherSkipsMutedOwners(t *testing.T) {
	src := newFakeSource()
	src.add("1", "a")
	src.add("2", "b")
	src.add("3", "c")
	alerter := &fakeAlerter{}

	d := NewDispatcher(staticOwners{"1", "2", "3"}, prefs{"2": false}, src, alerter, Options{})
	res, err := d.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Owners)
	assert.Equal(t, 2, res.Notified)
	assert.Len(t, src.due["2"], 1)
}

type slowAlerter struct {
	fakeAlerter
	delay time.Duration
}

func (a *slowAlerter) Alert(ctx context.Context, ownerID string, msg Message) error {
	time.Sleep(a.delay)
	return a.fakeAlerter.Alert(ctx, ownerID, msg)
}

func TestDispatcherPassesDoNotOverlap(t *testing.T) {
	src := newFakeSource()
	r := src.add("1", "call back")
	alerter := &slowAlerter{delay: 50 * time.Millisecond}
	d := NewDispatcher(staticOwners{"1"}, nil, src, alerter, Options{})

	var wg sync.WaitGroup
	results := make([]Result, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := d.RunOnce(context.Background())
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	wg.Wait()

	require.Len(t, alerter.sent, 1)
	assert.Equal(t, r.ID, alerter.sent[0].ReminderID)
	assert.Equal(t, 1, results[0].Notified+results[1].Notified)
	assert.Zero(t, results[0].Failed+results[1].Failed)
}

func TestDispatcherWithStore(t *testing.T) {
	db := testutil.NewDB(t, &crm.Client{}, &crm.Note{}, &crm.Reminder{}, &crm.Settings{})
	app := crm.New(db, time.UTC)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	app.Reminders.SetClock(func() time.Time { return now })
	ctx := context.Background()

	acme, err := app.Clients.Create(ctx, "42", crm.CreateClientRequest{Name: "Acme"})
	require.NoError(t, err)
	clientID := acme.ID.String()
	due, err := app.Reminders.Create(ctx, "42", crm.CreateReminderRequest{ClientID: &clientID, Text: "call", Date: "2026-03-09", Time: "09:00"})
	require.NoError(t, err)
	_, err = app.Reminders.Create(ctx, "42", crm.CreateReminderRequest{Text: "later", Date: "2026-03-10", Time: "18:00"})
	require.NoError(t, err)
	_, err = app.Reminders.Create(ctx, "7", crm.CreateReminderRequest{Text: "muted", Date: "2026-03-09"})
	require.NoError(t, err)
	_, err = app.Settings.Save(ctx, "7", crm.SettingsRequest{Notifications: new(bool)})
	require.NoError(t, err)

	alerter := &fakeAlerter{}
	d := NewDispatcher(app.Reminders, app.Settings, app.Reminders, alerter, Options{Location: time.UTC})
	res, err := d.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Notified)

	require.Len(t, alerter.sent, 1)
	assert.Equal(t, due.ID, alerter.sent[0].ReminderID)
	assert.Equal(t, "Acme", alerter.sent[0].ClientName)
	assert.Contains(t, alerter.sent[0].Text, "👤 Клиент: Acme")

	stored, err := app.Reminders.Get(ctx, "42", due.ID)
	require.NoError(t, err)
	assert.True(t, stored.Notified)
	assert.True(t, stored.Archived)

	res, err = d.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Notified)
	assert.Len(t, alerter.sent, 1)
}

func TestFormatMessage(t *testing.T) {
	r := crm.Reminder{Text: "Send <offer> & invoice", Date: "2026-03-10", Time: "09:05:00"}

	msg := FormatMessage(r, "Acme & Co", time.UTC)
	assert.Equal(t, "🔔 <b>Напоминание</b>\n\nSend &lt;offer&gt; &amp; invoice\n\n👤 Клиент: Acme &amp; Co\n📅 10 марта 2026, 09:05", msg)

	msg = FormatMessage(r, "", time.UTC)
	assert.NotContains(t, msg, "Клиент")
}
