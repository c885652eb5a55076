// Package observability exports import metrics to Prometheus.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/salesimport/internal/core"
)

const namespace = "salesimport"

// Import outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder implements core.Observer on its own registry.
type Recorder struct {
	registry *prometheus.Registry

	imports  *prometheus.CounterVec
	rows     *prometheus.CounterVec
	entities *prometheus.CounterVec
	duration prometheus.Histogram
	active   prometheus.GaugeFunc
}

// NewRecorder registers the import metrics plus the Go and process
// collectors. activeImports, when non-nil, is exported as a gauge.
func NewRecorder(activeImports func() int) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "Imports finished, by outcome.",
		}, []string{"outcome"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Worksheet rows processed, by outcome.",
		}, []string{"outcome"}),
		entities: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entities_total",
			Help:      "Entities written by imports.",
		}, []string{"entity", "action"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "import_duration_seconds",
			Help:      "Wall time of a whole import.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
	}

	r.registry.MustRegister(
		r.imports, r.rows, r.entities, r.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if activeImports != nil {
		r.active = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "imports_in_progress",
			Help:      "Imports currently holding a slot.",
		}, func() float64 { return float64(activeImports()) })
		r.registry.MustRegister(r.active)
	}
	return r
}

func (r *Recorder) ObserveImport(res *core.ImportResult) {
	outcome := OutcomeSuccess
	if !res.Success {
		outcome = OutcomeFailure
	}
	r.imports.WithLabelValues(outcome).Inc()
	r.duration.Observe(res.Duration.Seconds())

	r.rows.WithLabelValues(OutcomeSuccess).Add(float64(res.SuccessfulRows))
	r.rows.WithLabelValues(OutcomeFailure).Add(float64(res.ErrorRows))

	r.entities.WithLabelValues(core.EntityProduct, "created").Add(float64(res.ProductsCreated))
	r.entities.WithLabelValues(core.EntityProduct, "updated").Add(float64(res.ProductsUpdated))
	r.entities.WithLabelValues(core.EntityCustomer, "created").Add(float64(res.CustomersCreated))
	r.entities.WithLabelValues(core.EntityCustomer, "updated").Add(float64(res.CustomersUpdated))
	r.entities.WithLabelValues(core.EntityCategory, "created").Add(float64(res.CategoriesCreated))
	r.entities.WithLabelValues(core.EntitySale, "created").Add(float64(res.SalesCreated))
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
