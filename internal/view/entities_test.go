package view

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/propconsole/internal/model"
)

type noteTaker struct{ ids []string }

func (n *noteTaker) LeaseCreated(_ context.Context, l model.Lease) { n.ids = append(n.ids, l.ID) }

func seedLeaseData(t *testing.T, db *memDB) (propertyID, clientID string) {
	t.Helper()
	ctx := context.Background()
	p := model.Property{Address: "1 Waigani Dr", PropertyType: "House", Status: model.PropertyAvailable}
	require.NoError(t, memProperties{db}.Create(ctx, &p))
	c := model.Client{FullName: "Kila Wari", Email: "kila@example.com"}
	require.NoError(t, memClients{db}.Create(ctx, &c))
	return p.ID, c.ID
}

func TestLeasesPageLoadsOptionsOnMount(t *testing.T) {
	db := newMemDB()
	pid, cid := seedLeaseData(t, db)
	page := NewLeasesPage(memLeases{db}, memProperties{db}, memClients{db}, nil, nil)

	require.NoError(t, page.Mount(context.Background()))
	assert.Equal(t, Empty, page.List.Snapshot().State)
	assert.Equal(t, []model.PropertyOption{{ID: pid, Address: "1 Waigani Dr", Status: "available"}}, page.AvailableProperties.Snapshot().Items)
	assert.Equal(t, []model.ClientOption{{ID: cid, FullName: "Kila Wari"}}, page.ClientOptions.Snapshot().Items)
	assert.Equal(t, DefaultLeaseForm(), page.Form())
}

func TestActiveLeaseLeasesPropertyAndRefreshesOptions(t *testing.T) {
	db := newMemDB()
	pid, cid := seedLeaseData(t, db)
	notes := &noteTaker{}
	page := NewLeasesPage(memLeases{db}, memProperties{db}, memClients{db}, notes, nil)
	ctx := context.Background()
	require.NoError(t, page.Mount(ctx))

	l, err := page.Submit(ctx, LeaseForm{
		PropertyID:  pid,
		ClientID:    cid,
		StartDate:   "2025-01-01",
		EndDate:     "2025-12-31",
		TotalAmount: "500",
		Status:      model.LeaseActive,
	})
	require.NoError(t, err)

	assert.Equal(t, model.PropertyLeased, db.properties[0].Status)
	assert.Empty(t, page.AvailableProperties.Snapshot().Items)
	rows := page.List.Snapshot().Items
	require.Len(t, rows, 1)
	assert.Equal(t, l.ID, rows[0].ID)
	require.NotNil(t, rows[0].Property)
	assert.Equal(t, "1 Waigani Dr", rows[0].Property.Address)
	assert.Equal(t, []string{l.ID}, notes.ids)
}

func TestUnmountedPageSubmitOnlyInserts(t *testing.T) {
	db := newMemDB()
	pid, cid := seedLeaseData(t, db)
	page := NewLeasesPage(memLeases{db}, memProperties{db}, memClients{db}, nil, nil)

	l, err := page.Submit(context.Background(), LeaseForm{
		PropertyID:  pid,
		ClientID:    cid,
		StartDate:   "2025-01-01",
		EndDate:     "2025-12-31",
		TotalAmount: "500",
		Status:      model.LeasePending,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, l.ID)
	assert.Len(t, db.leases, 1)
	assert.Zero(t, db.reads)
	assert.Equal(t, Idle, page.List.Snapshot().State)
}

func TestLeaseInsertFailureLeavesPropertyUntouched(t *testing.T) {
	db := newMemDB()
	_, cid := seedLeaseData(t, db)
	notes := &noteTaker{}
	page := NewLeasesPage(memLeases{db}, memProperties{db}, memClients{db}, notes, nil)
	ctx := context.Background()
	require.NoError(t, page.Mount(ctx))

	_, err := page.Submit(ctx, LeaseForm{
		PropertyID:  "missing",
		ClientID:    cid,
		StartDate:   "2025-01-01",
		EndDate:     "2024-01-01",
		TotalAmount: "500",
		Status:      model.LeaseActive,
	})
	assert.True(t, errors.Is(err, errNoParent))
	assert.Equal(t, model.PropertyAvailable, db.properties[0].Status)
	assert.Empty(t, notes.ids)
	assert.Equal(t, errNoParent.Error(), page.Modal.Scope().Alert)
}

func TestLeasesPageUnmountStopsOptionLists(t *testing.T) {
	db := newMemDB()
	page := NewLeasesPage(memLeases{db}, memProperties{db}, memClients{db}, nil, nil)
	require.NoError(t, page.Mount(context.Background()))

	page.Unmount()
	assert.False(t, page.List.Mounted())
	assert.False(t, page.AvailableProperties.Mounted())
	assert.False(t, page.ClientOptions.Mounted())
}
