package view

import (
	"context"
	"errors"

	"github.com/iliyamo/propconsole/internal/model"
)

// PropertiesPage lists properties and creates new ones.
type PropertiesPage = Page[model.Property, PropertyForm]

// ClientsPage lists clients and creates new ones.
type ClientsPage = Page[model.Client, ClientForm]

func NewPropertiesPage(store PropertyStore, obs Observer) *PropertiesPage {
	return newPage("properties", "Add New Property", store.List, DefaultPropertyForm,
		func(ctx context.Context, f PropertyForm) (model.Property, error) {
			p, err := f.Property()
			if err != nil {
				return model.Property{}, err
			}
			err = store.Create(ctx, &p)
			return p, err
		}, obs)
}

func NewClientsPage(store ClientStore, obs Observer) *ClientsPage {
	return newPage("clients", "Add New Client", store.List, DefaultClientForm,
		func(ctx context.Context, f ClientForm) (model.Client, error) {
			c, err := f.Client()
			if err != nil {
				return model.Client{}, err
			}
			err = store.Create(ctx, &c)
			return c, err
		}, obs)
}

// LeasesPage lists leases with their property and client embedded and
// keeps the two reference lists the creation form selects from.
type LeasesPage struct {
	*Page[model.Lease, LeaseForm]
	AvailableProperties *ListView[model.PropertyOption]
	ClientOptions       *ListView[model.ClientOption]
}

func NewLeasesPage(leases LeaseStore, props PropertyStore, clients ClientStore, notify LeaseNotifier, obs Observer) *LeasesPage {
	lp := &LeasesPage{
		AvailableProperties: NewListView("lease_property_options", func(ctx context.Context) ([]model.PropertyOption, error) {
			return props.ListOptionsByStatus(ctx, model.PropertyAvailable)
		}, obs),
		ClientOptions: NewListView("lease_client_options", clients.ListOptions, obs),
	}
	lp.Page = newPage("leases", "Create New Lease", leases.ListDetailed, DefaultLeaseForm,
		func(ctx context.Context, f LeaseForm) (model.Lease, error) {
			l, err := f.Lease()
			if err != nil {
				return model.Lease{}, err
			}
			if err := leases.Create(ctx, &l); err != nil {
				return model.Lease{}, err
			}
			if notify != nil {
				notify.LeaseCreated(ctx, l)
			}
			return l, nil
		}, obs)
	lp.Page.reload = lp.loadOptions
	return lp
}

// loadOptions reloads both reference lists.  They are independent reads;
// the first error is returned after both ran.
func (lp *LeasesPage) loadOptions(ctx context.Context) error {
	errProps := lp.AvailableProperties.Mount(ctx)
	errClients := lp.ClientOptions.Mount(ctx)
	return errors.Join(errProps, errClients)
}

// Unmount cancels the lease list and the option lists.
func (lp *LeasesPage) Unmount() {
	lp.Page.Unmount()
	lp.AvailableProperties.Unmount()
	lp.ClientOptions.Unmount()
}
