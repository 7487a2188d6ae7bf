// Package metrics exposes console activity to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/propconsole/internal/view"
)

// Collector records view outcomes.  It satisfies view.Observer.
type Collector struct {
	reg *prometheus.Registry

	fetches   *prometheus.CounterVec
	creates   *prometheus.CounterVec
	dashboard prometheus.Histogram
}

func New() *Collector {
	c := &Collector{
		reg: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "propconsole_view_fetch_total",
			Help: "list view fetches by view and resulting state",
		}, []string{"view", "state"}),
		creates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "propconsole_create_total",
			Help: "creation form submits by view and outcome",
		}, []string{"view", "outcome"}),
		dashboard: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "propconsole_dashboard_load_seconds",
			Help:    "measures dashboard aggregate latency",
			Buckets: prometheus.DefBuckets,
		}),
	}
	c.reg.MustRegister(c.fetches, c.creates, c.dashboard)
	return c
}

// Gauge registers a gauge read from fn at scrape time.
func (c *Collector) Gauge(name, help string, fn func() float64) {
	c.reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: name, Help: help}, fn))
}

func (c *Collector) FetchDone(v string, st view.State) {
	c.fetches.WithLabelValues(v, st.String()).Inc()
}

func (c *Collector) CreateDone(v string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.creates.WithLabelValues(v, outcome).Inc()
}

func (c *Collector) DashboardLoaded(took time.Duration, _ error) {
	c.dashboard.Observe(took.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

// Registry is exposed for tests.
func (c *Collector) Registry() *prometheus.Registry { return c.reg }
