package crm

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/testutil"
	"github.com/stretchr/testify/require"
)

// fakeClock is a settable wall clock shared by a test and the services.
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }
func (c *fakeClock) Today() string           { return c.t.Format(dateLayout) }
func (c *fakeClock) Day(offset int) string   { return c.t.AddDate(0, 0, offset).Format(dateLayout) }
func ptr[T any](v T) *T                      { return &v }
func setID(s string) OptionalID              { return OptionalID{Set: true, Value: &s} }
func nullID() OptionalID                     { return OptionalID{Set: true} }
func setStr(s string) OptionalString         { return OptionalString{Set: true, Value: &s} }
func nullStr() OptionalString                { return OptionalString{Set: true} }

func newTestPlugin(t *testing.T) (*CRMPlugin, *fakeClock) {
	t.Helper()
	db := testutil.NewDB(t, &Client{}, &Note{}, &Reminder{}, &Settings{})
	p := New(db, time.UTC)
	clock := &fakeClock{t: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
	p.Reminders.SetClock(clock.Now)
	return p, clock
}

func mustClient(t *testing.T, p *CRMPlugin, ownerID, name string) *Client {
	t.Helper()
	c, err := p.Clients.Create(context.Background(), ownerID, CreateClientRequest{Name: name})
	require.NoError(t, err)
	return c
}

func mustReminder(t *testing.T, p *CRMPlugin, ownerID string, req CreateReminderRequest) *Reminder {
	t.Helper()
	r, err := p.Reminders.Create(context.Background(), ownerID, req)
	require.NoError(t, err)
	return r
}
