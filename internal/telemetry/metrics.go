// Package telemetry exposes per-flow NSCC state as Prometheus gauges and
// counters: window and delay gauges plus per-quadrant, Quick Adapt and loss
// recovery counters.
package telemetry

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nscc-project/nscc/internal/congestion"
	"github.com/nscc-project/nscc/internal/protocol"
)

// FlowMetrics holds the Prometheus gauges for one flow.
type FlowMetrics struct {
	Cwnd            prometheus.Gauge
	BDP             prometheus.Gauge
	Maxwnd          prometheus.Gauge
	AvgDelayMicros  prometheus.Gauge
	BaseRTTMicros   prometheus.Gauge
	InFlight        prometheus.Gauge
	RecoveryActive  prometheus.Gauge
	QuickAdaptFires prometheus.Counter
	QuadrantTotal   *prometheus.CounterVec
	QuadrantBytes   *prometheus.CounterVec
}

// NewFlowMetrics registers gauges/counters labeled by flowID on reg. Callers
// running many flows should use a dedicated *prometheus.Registry per run
// (as here) rather than the global default registry, to avoid duplicate
// registration panics across flows.
func NewFlowMetrics(reg prometheus.Registerer, flowID uint64) *FlowMetrics {
	labels := prometheus.Labels{"flow": strconv.FormatUint(flowID, 10)}
	factory := promauto.With(reg)
	return &FlowMetrics{
		Cwnd: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "nscc_cwnd_bytes",
			Help:        "Current congestion window in bytes.",
			ConstLabels: labels,
		}),
		BDP: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "nscc_bdp_bytes",
			Help:        "Current bandwidth-delay product in bytes.",
			ConstLabels: labels,
		}),
		Maxwnd: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "nscc_maxwnd_bytes",
			Help:        "Current maximum congestion window in bytes.",
			ConstLabels: labels,
		}),
		AvgDelayMicros: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "nscc_avg_delay_microseconds",
			Help:        "EWMA queuing delay in microseconds.",
			ConstLabels: labels,
		}),
		BaseRTTMicros: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "nscc_base_rtt_microseconds",
			Help:        "Current base RTT in microseconds.",
			ConstLabels: labels,
		}),
		InFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "nscc_in_flight_bytes",
			Help:        "Bytes currently in flight.",
			ConstLabels: labels,
		}),
		RecoveryActive: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "nscc_loss_recovery_active",
			Help:        "Whether SLEEK loss_recovery_mode is active (1) or not (0).",
			ConstLabels: labels,
		}),
		QuickAdaptFires: factory.NewCounter(prometheus.CounterOpts{
			Name:        "nscc_quick_adapt_fires_total",
			Help:        "Number of Quick Adapt resets fired.",
			ConstLabels: labels,
		}),
		QuadrantTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "nscc_quadrant_total",
			Help:        "ACKs handled per quadrant action.",
			ConstLabels: labels,
		}, []string{"quadrant"}),
		QuadrantBytes: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "nscc_quadrant_bytes_total",
			Help:        "Newly-acked bytes handled per quadrant action.",
			ConstLabels: labels,
		}, []string{"quadrant"}),
	}
}

// Observe updates the gauges from a flow state snapshot.
func (m *FlowMetrics) Observe(s congestion.Stats) {
	m.Cwnd.Set(float64(s.Cwnd))
	m.BDP.Set(float64(s.BDP))
	m.Maxwnd.Set(float64(s.Maxwnd))
	m.AvgDelayMicros.Set(float64(s.AvgDelay) / 1e6)
	m.BaseRTTMicros.Set(float64(s.BaseRTT) / 1e6)
	m.InFlight.Set(float64(s.InFlight))
	if s.InRecovery {
		m.RecoveryActive.Set(1)
	} else {
		m.RecoveryActive.Set(0)
	}
}

// ObserveFulfill records one fulfill-adjustment trace record into the
// per-quadrant counters.
func (m *FlowMetrics) ObserveFulfill(r congestion.FulfillRecord) {
	m.QuadrantTotal.WithLabelValues(r.Quadrant.String()).Inc()
	for q, bytes := range r.ActionBytes {
		if bytes > 0 {
			m.QuadrantBytes.WithLabelValues(protocol.Quadrant(q).String()).Add(float64(bytes))
		}
	}
}

// ObserveQuickAdapt records one QA firing.
func (m *FlowMetrics) ObserveQuickAdapt(congestion.QARecord) {
	m.QuickAdaptFires.Inc()
}

