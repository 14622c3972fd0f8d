// Package metrics holds the domain counters exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	shareConsume      *prometheus.CounterVec
	watermarkRenders  *prometheus.CounterVec
	permissionDenials *prometheus.CounterVec
	artifactsSwept    prometheus.Counter
}

// New registers the counters on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		shareConsume: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dataroom_share_consume_total",
			Help: "Share link redemptions by outcome.",
		}, []string{"outcome"}),
		watermarkRenders: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dataroom_watermark_renders_total",
			Help: "Watermark renders by result (watermarked, disabled, skipped, degraded).",
		}, []string{"result"}),
		permissionDenials: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dataroom_permission_denials_total",
			Help: "Capability resolutions that denied everything, by internal reason.",
		}, []string{"reason"}),
		artifactsSwept: f.NewCounter(prometheus.CounterOpts{
			Name: "dataroom_artifacts_swept_total",
			Help: "Temporary renditions removed by the sweeper.",
		}),
	}
}

// Discard returns counters registered on a private registry.
func Discard() *Metrics {
	return New(prometheus.NewRegistry())
}

func (m *Metrics) ShareConsumed(outcome string) {
	if m != nil {
		m.shareConsume.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) Rendered(result string) {
	if m != nil {
		m.watermarkRenders.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) Denied(reason string) {
	if m != nil {
		m.permissionDenials.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) Swept(n int) {
	if m != nil && n > 0 {
		m.artifactsSwept.Add(float64(n))
	}
}
