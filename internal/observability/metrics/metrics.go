package metrics

import "github.com/prometheus/client_golang/prometheus"

// StorefrontMetrics exposes counters/histograms for upstream calls and checkout flows.
type StorefrontMetrics struct {
	upstreamTotal   *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	promoTotal      *prometheus.CounterVec
	bookingTotal    *prometheus.CounterVec
}

func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	m := &StorefrontMetrics{
		upstreamTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookit",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Total calls to the experiences API",
		}, []string{"endpoint", "outcome"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bookit",
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Latency of experiences API calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		promoTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookit",
			Subsystem: "checkout",
			Name:      "promo_applications_total",
			Help:      "Promo code applications by result",
		}, []string{"result"}),
		bookingTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookit",
			Subsystem: "checkout",
			Name:      "booking_submissions_total",
			Help:      "Booking submissions by result",
		}, []string{"result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.upstreamTotal, m.upstreamLatency, m.promoTotal, m.bookingTotal)
	return m
}

// ObserveUpstream records one experiences API call.
func (m *StorefrontMetrics) ObserveUpstream(endpoint, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.upstreamTotal.WithLabelValues(endpoint, outcome).Inc()
	m.upstreamLatency.WithLabelValues(endpoint).Observe(seconds)
}

func (m *StorefrontMetrics) ObservePromo(result string) {
	if m == nil {
		return
	}
	m.promoTotal.WithLabelValues(result).Inc()
}

func (m *StorefrontMetrics) ObserveBooking(result string) {
	if m == nil {
		return
	}
	m.bookingTotal.WithLabelValues(result).Inc()
}
