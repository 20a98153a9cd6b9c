package metrics

import (
	"slices"

	"github.com/prometheus/client_golang/prometheus"
)

// siteLabel is the constant label identifying the hospital a process serves.
const siteLabel = "site"

// defaultLatencyBuckets are in milliseconds: store calls and gauge refreshes
// over small JSON collections land well under a second.
var defaultLatencyBuckets = []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 1000} //nolint:gochecknoglobals // read-only defaults

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the metric name prefix; "wardwatch" by default.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem sets the second name segment; "compliance" by default.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithLatencyBuckets sets the millisecond buckets of the latency histograms.
// Non-positive and repeated bounds are dropped and the rest sorted; an empty
// result keeps the defaults.
func WithLatencyBuckets(ms ...float64) Option {
	return func(m *Manager) {
		buckets := make([]float64, 0, len(ms))
		for _, b := range ms {
			if b > 0 {
				buckets = append(buckets, b)
			}
		}
		slices.Sort(buckets)
		buckets = slices.Compact(buckets)
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// WithSite labels every metric with the hospital site, so several
// deployments can share one Prometheus.
func WithSite(site string) Option {
	return func(m *Manager) {
		if site != "" {
			m.constLabels[siteLabel] = site
		}
	}
}

// WithPrometheusRegistry registers the collectors on registry instead of the default one.
func WithPrometheusRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}
