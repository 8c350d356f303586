package metrics

import "github.com/prometheus/client_golang/prometheus"

// SiteMetrics exposes counters/histograms for the website's upstream flows.
type SiteMetrics struct {
	upstreamTotal     *prometheus.CounterVec
	upstreamLatency   *prometheus.HistogramVec
	submissionsTotal  *prometheus.CounterVec
	chatMessagesTotal *prometheus.CounterVec
	wizardTotal       *prometheus.CounterVec
	rateLimitedTotal  prometheus.Counter
}

// Upstream labels.
const (
	UpstreamCalendar = "calendar"
	UpstreamContact  = "contact"
	UpstreamChat     = "chat"
)

func NewSiteMetrics(reg prometheus.Registerer) *SiteMetrics {
	m := &SiteMetrics{
		upstreamTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "harbor",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Total outbound calls to third-party services",
		}, []string{"upstream", "outcome"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "harbor",
			Subsystem: "upstream",
			Name:      "latency_seconds",
			Help:      "Latency of outbound calls to third-party services",
			Buckets:   prometheus.DefBuckets,
		}, []string{"upstream"}),
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "harbor",
			Subsystem: "contact",
			Name:      "submissions_total",
			Help:      "Contact submissions by result",
		}, []string{"result"}),
		chatMessagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "harbor",
			Subsystem: "chat",
			Name:      "messages_total",
			Help:      "Chat widget messages by result",
		}, []string{"result"}),
		wizardTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "harbor",
			Subsystem: "wizard",
			Name:      "transitions_total",
			Help:      "Contact wizard transitions by step and result",
		}, []string{"transition", "result"}),
		rateLimitedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "harbor",
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the API rate limiter",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.upstreamTotal, m.upstreamLatency, m.submissionsTotal, m.chatMessagesTotal, m.wizardTotal, m.rateLimitedTotal)
	return m
}

// ObserveUpstream records one outbound call. outcome is "ok", "rejected" or "error".
func (m *SiteMetrics) ObserveUpstream(upstream, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.upstreamTotal.WithLabelValues(upstream, outcome).Inc()
	m.upstreamLatency.WithLabelValues(upstream).Observe(seconds)
}

func (m *SiteMetrics) ObserveSubmission(result string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(result).Inc()
}

func (m *SiteMetrics) ObserveChat(result string) {
	if m == nil {
		return
	}
	m.chatMessagesTotal.WithLabelValues(result).Inc()
}

func (m *SiteMetrics) ObserveWizard(transition string, ok bool) {
	if m == nil {
		return
	}
	result := "blocked"
	if ok {
		result = "ok"
	}
	m.wizardTotal.WithLabelValues(transition, result).Inc()
}

func (m *SiteMetrics) ObserveRateLimited() {
	if m == nil {
		return
	}
	m.rateLimitedTotal.Inc()
}
