package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	lookups    *prometheus.CounterVec
	apiErrors  *prometheus.CounterVec
	usersGauge prometheus.GaugeFunc
	cacheGauge prometheus.GaugeFunc
}

// New registers the collectors on reg. registeredUsers and cachedCities are
// sampled at scrape time.
func New(reg prometheus.Registerer, registeredUsers, cachedCities func() int) *Metrics {
	m := &Metrics{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weathernow_lookups_total",
			Help: "Weather lookups by kind and outcome.",
		}, []string{"kind", "result"}),
		apiErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weathernow_http_errors_total",
			Help: "HTTP error responses by status code.",
		}, []string{"code"}),
		usersGauge: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "weathernow_registered_users",
			Help: "Number of registered users.",
		}, func() float64 { return float64(registeredUsers()) }),
		cacheGauge: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "weathernow_cached_cities",
			Help: "Number of cities held in the lookup cache.",
		}, func() float64 { return float64(cachedCities()) }),
	}

	reg.MustRegister(m.lookups, m.apiErrors, m.usersGauge, m.cacheGauge)
	return m
}

// ObserveLookup counts one lookup; result is "ok", "cached" or "error".
func (m *Metrics) ObserveLookup(kind string, err error, cached bool) {
	result := "ok"
	switch {
	case err != nil:
		result = "error"
	case cached:
		result = "cached"
	}
	m.lookups.WithLabelValues(kind, result).Inc()
}

// ObserveHTTPError counts one error response.
func (m *Metrics) ObserveHTTPError(code int) {
	m.apiErrors.WithLabelValues(strconv.Itoa(code)).Inc()
}
