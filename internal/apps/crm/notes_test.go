package crm

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateNote(t *testing.T) {
	p, _ := newTestPlugin(t)
	ctx := context.Background()

	n, err := p.Notes.Create(ctx, "1", CreateNoteRequest{Text: "  hello  "})
	require.NoError(t, err)
	assert.Equal(t, "hello", n.Text)
	assert.Nil(t, n.ClientID)

	_, err = p.Notes.Create(ctx, "1", CreateNoteRequest{Text: ""})
	assert.ErrorIs(t, err, ErrTextRequired)

	n, err = p.Notes.Create(ctx, "1", CreateNoteRequest{Text: "x", ClientID: ptr("")})
	require.NoError(t, err)
	assert.Nil(t, n.ClientID)

	_, err = p.Notes.Create(ctx, "1", CreateNoteRequest{Text: "x", ClientID: ptr("not-a-uuid")})
	assert.ErrorIs(t, err, ErrInvalidClientID)

	foreign := mustClient(t, p, "2", "Other")
	_, err = p.Notes.Create(ctx, "1", CreateNoteRequest{Text: "x", ClientID: ptr(foreign.ID.String())})
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestListNotesNewestFirst(t *testing.T) {
	p, _ := newTestPlugin(t)
	ctx := context.Background()
	acme := mustClient(t, p, "1", "Acme")

	older, err := p.Notes.Create(ctx, "1", CreateNoteRequest{Text: "older", ClientID: ptr(acme.ID.String())})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	newer, err := p.Notes.Create(ctx, "1", CreateNoteRequest{Text: "newer", ClientID: ptr(acme.ID.String())})
	require.NoError(t, err)
	_, err = p.Notes.Create(ctx, "1", CreateNoteRequest{Text: "loose"})
	require.NoError(t, err)

	got, err := p.Notes.List(ctx, "1", &acme.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newer.ID, got[0].ID)
	assert.Equal(t, older.ID, got[1].ID)

	all, err := p.Notes.List(ctx, "1", nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUpdateNote(t *testing.T) {
	p, _ := newTestPlugin(t)
	ctx := context.Background()
	acme := mustClient(t, p, "1", "Acme")
	n, err := p.Notes.Create(ctx, "1", CreateNoteRequest{Text: "x", ClientID: ptr(acme.ID.String())})
	require.NoError(t, err)

	got, err := p.Notes.Update(ctx, "1", n.ID, UpdateNoteRequest{Text: ptr(" edited ")})
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Text)
	require.NotNil(t, got.ClientID)

	got, err = p.Notes.Update(ctx, "1", n.ID, UpdateNoteRequest{ClientID: nullID()})
	require.NoError(t, err)
	assert.Nil(t, got.ClientID)

	_, err = p.Notes.Update(ctx, "1", n.ID, UpdateNoteRequest{Text: ptr("  ")})
	assert.ErrorIs(t, err, ErrTextRequired)
}

func TestNoteCrossOwnerIsNotFound(t *testing.T) {
	p, _ := newTestPlugin(t)
	ctx := context.Background()
	n, err := p.Notes.Create(ctx, "owner-b", CreateNoteRequest{Text: "secret"})
	require.NoError(t, err)

	for _, id := range []uuid.UUID{n.ID, uuid.New()} {
		_, err := p.Notes.Get(ctx, "owner-a", id)
		assert.ErrorIs(t, err, ErrNoteNotFound)

		_, err = p.Notes.Update(ctx, "owner-a", id, UpdateNoteRequest{Text: ptr("mine")})
		assert.ErrorIs(t, err, ErrNoteNotFound)

		err = p.Notes.Delete(ctx, "owner-a", id)
		assert.ErrorIs(t, err, ErrNoteNotFound)
	}

	require.NoError(t, p.Notes.Delete(ctx, "owner-b", n.ID))
}
