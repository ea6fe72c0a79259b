package crm

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateClientTrimsAndNullsOptionals(t *testing.T) {
	p, _ := newTestPlugin(t)
	ctx := context.Background()

	c, err := p.Clients.Create(ctx, "1", CreateClientRequest{
		Name:    "  Acme  ",
		Phone:   ptr("069 123 456"),
		Email:   ptr("   "),
		Company: ptr(" Acme SRL "),
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme", c.Name)
	require.NotNil(t, c.Phone)
	assert.Equal(t, "+373 (691) 23-456", *c.Phone)
	assert.Nil(t, c.Email)
	require.NotNil(t, c.Company)
	assert.Equal(t, "Acme SRL", *c.Company)
	assert.Nil(t, c.Notes)

	_, err = p.Clients.Create(ctx, "1", CreateClientRequest{Name: " "})
	assert.ErrorIs(t, err, ErrNameRequired)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateClientKeepsUnknownPhoneFormat(t *testing.T) {
	p, _ := newTestPlugin(t)
	c, err := p.Clients.Create(context.Background(), "1", CreateClientRequest{Name: "Bob", Phone: ptr(" +1 555 0100 ")})
	require.NoError(t, err)
	require.NotNil(t, c.Phone)
	assert.Equal(t, "+1 555 0100", *c.Phone)
}

func TestListClientsSearch(t *testing.T) {
	p, _ := newTestPlugin(t)
	ctx := context.Background()

	acme, err := p.Clients.Create(ctx, "1", CreateClientRequest{Name: "Acme", Email: ptr("sales@acme.md")})
	require.NoError(t, err)
	globex, err := p.Clients.Create(ctx, "1", CreateClientRequest{Name: "Globex", Company: ptr("Globex Corporation")})
	require.NoError(t, err)
	_, err = p.Clients.Create(ctx, "2", CreateClientRequest{Name: "Acme Two"})
	require.NoError(t, err)

	got, err := p.Clients.List(ctx, "1", "ACME")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, acme.ID, got[0].ID)

	got, err = p.Clients.List(ctx, "1", "corp")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, globex.ID, got[0].ID)

	got, err = p.Clients.List(ctx, "1", "")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestListClientsMostRecentlyUpdatedFirst(t *testing.T) {
	p, _ := newTestPlugin(t)
	ctx := context.Background()
	a := mustClient(t, p, "1", "A")
	b := mustClient(t, p, "1", "B")

	_, err := p.Clients.Update(ctx, "1", a.ID, UpdateClientRequest{Notes: setStr("touched")})
	require.NoError(t, err)

	got, err := p.Clients.List(ctx, "1", "")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a.ID, got[0].ID)
	assert.Equal(t, b.ID, got[1].ID)
}

func TestUpdateClientPartial(t *testing.T) {
	p, _ := newTestPlugin(t)
	ctx := context.Background()
	c, err := p.Clients.Create(ctx, "1", CreateClientRequest{Name: "Acme", Email: ptr("a@acme.md")})
	require.NoError(t, err)

	got, err := p.Clients.Update(ctx, "1", c.ID, UpdateClientRequest{Company: setStr("Acme SRL")})
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)
	require.NotNil(t, got.Email)
	assert.Equal(t, "a@acme.md", *got.Email)

	got, err = p.Clients.Update(ctx, "1", c.ID, UpdateClientRequest{Email: setStr("")})
	require.NoError(t, err)
	assert.Nil(t, got.Email)
	require.NotNil(t, got.Company)

	got, err = p.Clients.Update(ctx, "1", c.ID, UpdateClientRequest{Company: nullStr()})
	require.NoError(t, err)
	assert.Nil(t, got.Company)
	assert.Equal(t, "Acme", got.Name)

	_, err = p.Clients.Update(ctx, "1", c.ID, UpdateClientRequest{Name: ptr("")})
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestClientCrossOwnerIsNotFound(t *testing.T) {
	p, _ := newTestPlugin(t)
	ctx := context.Background()
	c := mustClient(t, p, "owner-b", "Secret")

	for _, id := range []uuid.UUID{c.ID, uuid.New()} {
		_, err := p.Clients.Get(ctx, "owner-a", id)
		assert.ErrorIs(t, err, ErrClientNotFound)

		_, err = p.Clients.Update(ctx, "owner-a", id, UpdateClientRequest{Name: ptr("Mine")})
		assert.ErrorIs(t, err, ErrClientNotFound)

		err = p.Clients.DeleteCascade(ctx, "owner-a", id)
		assert.ErrorIs(t, err, ErrClientNotFound)
	}

	got, err := p.Clients.Get(ctx, "owner-b", c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Secret", got.Name)
}

func TestDeleteClientCascade(t *testing.T) {
	p, _ := newTestPlugin(t)
	ctx := context.Background()
	acme := mustClient(t, p, "1", "Acme")
	clientID := acme.ID.String()

	for _, text := range []string{"first call", "sent offer"} {
		_, err := p.Notes.Create(ctx, "1", CreateNoteRequest{ClientID: &clientID, Text: text})
		require.NoError(t, err)
	}
	mustReminder(t, p, "1", CreateReminderRequest{ClientID: &clientID, Text: "follow up"})
	loose, err := p.Notes.Create(ctx, "1", CreateNoteRequest{Text: "unrelated"})
	require.NoError(t, err)

	require.NoError(t, p.Clients.DeleteCascade(ctx, "1", acme.ID))

	notes, err := p.Notes.List(ctx, "1", &acme.ID)
	require.NoError(t, err)
	assert.Empty(t, notes)

	reminders, err := p.Reminders.List(ctx, "1", &acme.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, reminders)

	_, err = p.Clients.Get(ctx, "1", acme.ID)
	assert.ErrorIs(t, err, ErrClientNotFound)

	_, err = p.Notes.Get(ctx, "1", loose.ID)
	assert.NoError(t, err)
}

func TestDeleteClientCascadeLeavesOtherOwnersAlone(t *testing.T) {
	p, _ := newTestPlugin(t)
	ctx := context.Background()
	acme := mustClient(t, p, "1", "Acme")

	// A foreign row pointing at the same client id, written directly.
	stray := Note{OwnerID: "2", ClientID: &acme.ID, Text: "foreign"}
	require.NoError(t, p.Notes.notes.Create(ctx, &stray))

	require.NoError(t, p.Clients.DeleteCascade(ctx, "1", acme.ID))

	left, err := p.Notes.List(ctx, "2", &acme.ID)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, stray.ID, left[0].ID)
}
