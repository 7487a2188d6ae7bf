package view

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/propconsole/internal/model"
)

// Stats is one point-in-time snapshot of the dashboard aggregates.
type Stats struct {
	TotalProperties int     `json:"totalProperties"`
	TotalClients    int     `json:"totalClients"`
	ActiveLeases    int     `json:"activeLeases"`
	TotalRevenue    float64 `json:"totalRevenue"`
}

// Tile is one summary card.
type Tile struct {
	Label string
	Value string
	Class string
}

// Tiles renders s as the four dashboard cards.
func (s Stats) Tiles() []Tile {
	return []Tile{
		{Label: "Total Properties", Value: Count(s.TotalProperties), Class: "tile-properties"},
		{Label: "Total Clients", Value: Count(s.TotalClients), Class: "tile-clients"},
		{Label: "Active Leases", Value: Count(s.ActiveLeases), Class: "tile-leases"},
		{Label: "Total Revenue", Value: Currency(s.TotalRevenue), Class: "tile-revenue"},
	}
}

// Aggregate derives the lease figures from (status, total_amount) rows.
// Only active rows count, both for the number and for revenue.  Amounts
// that are missing or not numeric contribute 0.
func Aggregate(rows []model.LeaseAmount) (active int, revenue float64) {
	for _, r := range rows {
		if r.Status != model.LeaseActive {
			continue
		}
		active++
		if r.TotalAmount == nil {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(*r.TotalAmount), 64)
		if err != nil {
			continue
		}
		revenue += v
	}
	return active, revenue
}

type counter interface {
	Count(ctx context.Context) (int, error)
}

type amountLister interface {
	ListAmounts(ctx context.Context) ([]model.LeaseAmount, error)
}

// Dashboard loads the three independent reads in parallel and keeps the
// latest successful Stats.
type Dashboard struct {
	properties counter
	clients    counter
	leases     amountLister
	obs        Observer

	mu      sync.Mutex
	state   State
	stats   Stats
	err     error
	gen     uint64
	mounted bool
}

func NewDashboard(properties, clients counter, leases amountLister, obs Observer) *Dashboard {
	if obs == nil {
		obs = nopObserver{}
	}
	return &Dashboard{properties: properties, clients: clients, leases: leases, obs: obs}
}

// Mount marks the dashboard mounted and loads it.  Every mount is a fresh
// snapshot; there is no live refresh.
func (d *Dashboard) Mount(ctx context.Context) error {
	d.mu.Lock()
	d.mounted = true
	d.gen++
	gen := d.gen
	d.state = Loading
	d.mu.Unlock()

	start := time.Now()
	stats, err := d.load(ctx)
	d.obs.DashboardLoaded(time.Since(start), err)

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.mounted || gen != d.gen {
		return ErrStale
	}
	if err != nil {
		d.state = Failed
		d.err = err
		return err
	}
	d.stats = stats
	d.err = nil
	d.state = Populated
	return nil
}

// Unmount discards any load still in flight.
func (d *Dashboard) Unmount() {
	d.mu.Lock()
	d.mounted = false
	d.gen++
	d.mu.Unlock()
}

func (d *Dashboard) load(ctx context.Context) (Stats, error) {
	var (
		st   Stats
		rows []model.LeaseAmount
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		st.TotalProperties, err = d.properties.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		st.TotalClients, err = d.clients.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		rows, err = d.leases.ListAmounts(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}
	st.ActiveLeases, st.TotalRevenue = Aggregate(rows)
	return st, nil
}

// DashboardSnapshot is a copy of the dashboard state.
type DashboardSnapshot struct {
	State State
	Stats Stats
	Err   error
}

func (d *Dashboard) Snapshot() DashboardSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return DashboardSnapshot{State: d.state, Stats: d.stats, Err: d.err}
}
