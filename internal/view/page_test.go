package view

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filledPropertyForm(address string) PropertyForm {
	f := DefaultPropertyForm()
	f.Address = address
	f.Price = "1500"
	f.Sqft = "850"
	return f
}

func TestSubmitShowsCreatedRowExactlyOnce(t *testing.T) {
	db := newMemDB()
	obs := &recorder{}
	page := NewPropertiesPage(memProperties{db}, obs)
	ctx := context.Background()
	require.NoError(t, page.Mount(ctx))
	assert.Equal(t, Empty, page.List.Snapshot().State)

	created, err := page.Submit(ctx, filledPropertyForm("12 Hubert Murray Hwy"))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	snap := page.List.Snapshot()
	assert.Equal(t, Populated, snap.State)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, created.ID, snap.Items[0].ID)
	assert.Equal(t, "12 Hubert Murray Hwy", snap.Items[0].Address)
	assert.Equal(t, 1500.0, snap.Items[0].Price)
	require.NotNil(t, snap.Items[0].Sqft)
	assert.Equal(t, 850, *snap.Items[0].Sqft)

	assert.False(t, page.Modal.IsOpen())
	assert.Equal(t, DefaultPropertyForm(), page.Form())
	assert.False(t, page.Busy())
	assert.Equal(t, []string{"properties:ok"}, obs.creates)
}

func TestSubmitFailureKeepsFormAndAlert(t *testing.T) {
	db := newMemDB()
	db.createErr = errors.New("duplicate key value violates unique constraint")
	page := NewPropertiesPage(memProperties{db}, nil)
	ctx := context.Background()
	require.NoError(t, page.Mount(ctx))

	form := filledPropertyForm("5 Koki St")
	_, err := page.Submit(ctx, form)
	require.Error(t, err)

	assert.True(t, page.Modal.IsOpen())
	assert.Equal(t, form, page.Form())
	require.NotNil(t, page.Modal.Scope())
	assert.Equal(t, "duplicate key value violates unique constraint", page.Modal.Scope().Alert)
	assert.Equal(t, Empty, page.List.Snapshot().State)

	db.createErr = nil
	_, err = page.Submit(ctx, form)
	require.NoError(t, err)
	assert.False(t, page.Modal.IsOpen())
	assert.Nil(t, page.Modal.Scope())
}

func TestSubmitRequiredFieldIsReportedLikeRemoteError(t *testing.T) {
	db := newMemDB()
	page := NewClientsPage(memClients{db}, nil)
	ctx := context.Background()
	require.NoError(t, page.Mount(ctx))

	_, err := page.Submit(ctx, ClientForm{FullName: "Kila Wari"})
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "email", fe.Field)
	assert.Equal(t, "email is required", page.Modal.Scope().Alert)
	assert.Empty(t, db.clients)
}

func TestSubmitRejectsConcurrentSubmit(t *testing.T) {
	db := newMemDB()
	db.gate = make(chan struct{})
	db.entered = make(chan struct{}, 1)
	page := NewClientsPage(memClients{db}, nil)
	ctx := context.Background()
	require.NoError(t, page.Mount(ctx))

	form := ClientForm{FullName: "Kila Wari", Email: "kila@example.com"}
	done := make(chan error, 1)
	go func() {
		_, err := page.Submit(ctx, form)
		done <- err
	}()
	<-db.entered
	assert.True(t, page.Busy())

	_, err := page.Submit(ctx, ClientForm{FullName: "Other"})
	assert.ErrorIs(t, err, ErrBusy)
	assert.True(t, page.Modal.IsOpen())
	assert.Equal(t, ErrBusy.Error(), page.Modal.Scope().Alert)
	assert.Equal(t, "Kila Wari", page.Form().FullName)

	close(db.gate)
	require.NoError(t, <-done)
	assert.Len(t, page.List.Snapshot().Items, 1)
}

func TestUnmountDropsUnsavedInput(t *testing.T) {
	db := newMemDB()
	db.createErr = errors.New("boom")
	page := NewClientsPage(memClients{db}, nil)
	ctx := context.Background()
	require.NoError(t, page.Mount(ctx))

	_, err := page.Submit(ctx, ClientForm{FullName: "a", Email: "b"})
	require.Error(t, err)

	page.Unmount()
	assert.False(t, page.Modal.IsOpen())
	assert.Equal(t, DefaultClientForm(), page.Form())
	assert.False(t, page.List.Mounted())
}
