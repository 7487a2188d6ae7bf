package view

import (
	"context"

	"github.com/iliyamo/propconsole/internal/model"
)

// PropertyStore is the properties table as the views use it.
type PropertyStore interface {
	List(ctx context.Context) ([]model.Property, error)
	Count(ctx context.Context) (int, error)
	ListOptionsByStatus(ctx context.Context, status string) ([]model.PropertyOption, error)
	Create(ctx context.Context, p *model.Property) error
}

// ClientStore is the clients table as the views use it.
type ClientStore interface {
	List(ctx context.Context) ([]model.Client, error)
	Count(ctx context.Context) (int, error)
	ListOptions(ctx context.Context) ([]model.ClientOption, error)
	Create(ctx context.Context, c *model.Client) error
}

// LeaseStore is the leases table as the views use it.  Create must apply
// the active-lease property update atomically with the insert.
type LeaseStore interface {
	ListDetailed(ctx context.Context) ([]model.Lease, error)
	ListAmounts(ctx context.Context) ([]model.LeaseAmount, error)
	Create(ctx context.Context, l *model.Lease) error
}

// LeaseNotifier is told about every lease that was created.
type LeaseNotifier interface {
	LeaseCreated(ctx context.Context, l model.Lease)
}

// Deps bundles what a Workspace needs.  Notifier and Observer are optional.
type Deps struct {
	Properties PropertyStore
	Clients    ClientStore
	Leases     LeaseStore
	Notifier   LeaseNotifier
	Observer   Observer
}
