package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PriceUpdateProducts counts per-product outcomes of bulk price updates.
var PriceUpdateProducts = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "priceapi_price_update_products_total",
	Help: "Per-product bulk price update outcomes, labeled by result.",
}, []string{"result"})

// TitleRefreshRuns counts title refresh job runs, labeled by outcome.
var TitleRefreshRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "priceapi_title_refresh_runs_total",
	Help: "Title refresh job runs, labeled by result.",
}, []string{"result"})
