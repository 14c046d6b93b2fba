package metrics

import "github.com/prometheus/client_golang/prometheus"

// Option customises a Manager before its collectors are registered.
type Option func(*Manager)

// WithNamespace replaces the "squad" metric name prefix. Empty keeps it.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithMetricsEnabled turns the domain recorders on or off. System and HTTP
// collectors keep recording either way.
func WithMetricsEnabled(enabled bool) Option {
	return func(m *Manager) {
		m.enabled = enabled
	}
}

// WithCustomLabels adds constant labels, such as the deployment environment,
// to every collector.
func WithCustomLabels(labels map[string]string) Option {
	return func(m *Manager) {
		for k, v := range labels {
			m.customLabels[k] = v
		}
	}
}

// WithPrometheusRegistry registers collectors on registry instead of the
// default registerer.
func WithPrometheusRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}
