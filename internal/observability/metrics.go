package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the Prometheus instruments used by the service.
type Metrics struct {
	DashboardSaves prometheus.Counter
	PruneRuns      *prometheus.CounterVec
	PrunedVersions prometheus.Counter
	VersionCache   *prometheus.CounterVec
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		DashboardSaves: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dashboard_saves_total",
			Help:      "Dashboard saves, each of which records a new version.",
		}),
		PruneRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prune_runs_total",
			Help:      "Retention prune invocations by outcome.",
		}, []string{"outcome"}),
		PrunedVersions: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pruned_versions_total",
			Help:      "Dashboard versions deleted by retention pruning.",
		}),
		VersionCache: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "version_cache_events_total",
			Help:      "Version payload cache lookups by result.",
		}, []string{"result"}),
	}
}

func (m *Metrics) ObservePruneRun(deleted int64, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.PruneRuns.WithLabelValues(outcome).Inc()
	if deleted > 0 {
		m.PrunedVersions.Add(float64(deleted))
	}
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
