package congestion

import "github.com/nscc-project/nscc/internal/protocol"

// DelayEstimator tracks per-flow base RTT and the slow EWMA of queuing
// delay. base_rtt only ever shrinks, and the two timescales serve different
// consumers: raw delay feeds the quadrant classifier, the EWMA feeds
// decrease sizing.
type DelayEstimator struct {
	baseRTT  protocol.Picoseconds
	avgDelay protocol.Picoseconds
	params   *Params
}

// NewDelayEstimator seeds base_rtt from the topology oracle's measurement.
func NewDelayEstimator(initialBaseRTT protocol.Picoseconds, params *Params) *DelayEstimator {
	return &DelayEstimator{baseRTT: initialBaseRTT, params: params}
}

// BaseRTT returns the current (monotonically non-increasing) base RTT.
func (d *DelayEstimator) BaseRTT() protocol.Picoseconds { return d.baseRTT }

// AvgDelay returns the current EWMA of queuing delay.
func (d *DelayEstimator) AvgDelay() protocol.Picoseconds { return d.avgDelay }

// Sample is one ACK's (or NACK's) delay observation fed to the estimator.
type Sample struct {
	RawRTT protocol.Picoseconds
	ECN    bool
}

// Update computes raw_delay, shrinks base_rtt if this RTT beat it, then
// feeds the three-case EWMA rule. It reports whether base_rtt shrank, so
// the caller can recompute bdp/maxwnd and reclamp cwnd in the same handler.
func (d *DelayEstimator) Update(s Sample) (rawDelay protocol.Picoseconds, baseRTTShrank bool) {
	if s.RawRTT < d.baseRTT {
		// base_rtt is monotonically non-increasing, deliberately: raising
		// it back up after a route change would let one inflated sample
		// poison the queuing-delay estimate for the rest of the flow. The
		// cost is that a genuinely longer new route keeps reading as
		// queuing delay until the flow ends (DESIGN.md).
		d.baseRTT = s.RawRTT
		baseRTTShrank = true
	}

	rawDelay = s.RawRTT - d.baseRTT
	if rawDelay < 0 {
		rawDelay = 0
	}

	d.feedEWMA(rawDelay, s.ECN)
	return rawDelay, baseRTTShrank
}

// feedEWMA picks the sample fed to the filter. A high delay without an ECN
// mark usually means one hot path in a sprayed fabric, so it is discounted
// rather than allowed to inflate the average that sizes decreases; an
// extreme delay is trusted outright regardless.
func (d *DelayEstimator) feedEWMA(rawDelay protocol.Picoseconds, ecn bool) {
	var sample protocol.Picoseconds
	switch {
	case rawDelay > 5*d.baseRTT: // extreme, trust it outright
		sample = rawDelay
	case !ecn && rawDelay > d.params.TargetQdelay: // discount a hot path
		sample = protocol.Picoseconds(0.25 * float64(d.baseRTT))
	default:
		sample = rawDelay
	}

	g := d.params.DelayAlpha
	d.avgDelay = protocol.Picoseconds((1-g)*float64(d.avgDelay) + g*float64(sample))
}
