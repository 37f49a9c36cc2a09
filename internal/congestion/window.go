package congestion

import "github.com/nscc-project/nscc/internal/protocol"

// Window owns cwnd and the batched increase/immediate decrease machinery.
// Increases accumulate in incBytes until Fulfill fires; decreases apply
// immediately, rate-limited to once per base_rtt.
type Window struct {
	cwnd      protocol.ByteCount
	minCwnd   protocol.ByteCount
	maxwnd    protocol.ByteCount
	incBytes  float64 // never negative
	receivedBytes protocol.ByteCount
	lastAdjustTime protocol.Picoseconds
	lastDecTime    protocol.Picoseconds
	haveLastDecTime bool
}

// NewWindow starts cwnd at its floor of 1 MTU.
func NewWindow(maxwnd protocol.ByteCount, mtu protocol.ByteCount, now protocol.Picoseconds) *Window {
	w := &Window{
		minCwnd:        mtu,
		maxwnd:         maxwnd,
		lastAdjustTime: now,
	}
	w.cwnd = w.minCwnd
	return w
}

// Cwnd returns the current congestion window.
func (w *Window) Cwnd() protocol.ByteCount { return w.cwnd }

// PendingIncBytes reports the scaled increase accumulated since the last
// fulfill, for the trace record.
func (w *Window) PendingIncBytes() float64 { return w.incBytes }

// SetMaxwnd updates the ceiling (e.g. after base_rtt shrinks) and reclamps
// cwnd downward if needed.
func (w *Window) SetMaxwnd(maxwnd protocol.ByteCount) {
	w.maxwnd = maxwnd
	w.clamp()
}

// clamp enforces min_cwnd <= cwnd <= maxwnd after every mutation.
func (w *Window) clamp() {
	if w.cwnd < w.minCwnd {
		w.cwnd = w.minCwnd
	}
	if w.cwnd > w.maxwnd {
		w.cwnd = w.maxwnd
	}
}

// ResetTo hard-sets cwnd, used by Quick Adapt. SLEEK never mutates cwnd
// directly.
func (w *Window) ResetTo(cwnd protocol.ByteCount) {
	w.cwnd = cwnd
	w.clamp()
}

// FairIncrease accumulates inc_bytes += fi * N.
func (w *Window) FairIncrease(params *Params, newlyAcked protocol.ByteCount) {
	w.incBytes += params.FI * float64(newlyAcked)
}

// ProportionalIncrease accumulates inc_bytes += alpha * N *
// (target - raw_delay): a linear ramp, maximal at delay=0 and zero at the
// target, so growth never overshoots past equilibrium.
func (w *Window) ProportionalIncrease(params *Params, newlyAcked protocol.ByteCount, rawDelay protocol.Picoseconds) {
	headroom := float64(params.TargetQdelay - rawDelay)
	w.incBytes += params.Alpha * float64(newlyAcked) * headroom
}

// FastIncrease applies cwnd += N * fi_scale directly, bypassing the fulfill
// buffer entirely.
func (w *Window) FastIncrease(params *Params, newlyAcked protocol.ByteCount) {
	w.cwnd += protocol.ByteCount(float64(newlyAcked) * params.FIScale)
	w.clamp()
}

// MultiplicativeDecrease cuts cwnd in proportion to the excess delay
// fraction, at most once per base_rtt. avgDelay must be the EWMA delay,
// never the raw per-packet sample: raw delay selects the action, the EWMA
// sizes the cut, and collapsing the two loses the dual-timescale split.
func (w *Window) MultiplicativeDecrease(params *Params, avgDelay protocol.Picoseconds, baseRTT protocol.Picoseconds, now protocol.Picoseconds) (applied bool) {
	if w.haveLastDecTime && now-w.lastDecTime < baseRTT {
		return false
	}
	d, t := float64(avgDelay), float64(params.TargetQdelay)
	if d <= t {
		return false
	}
	excessFraction := (d - t) / d // structurally in [0, 1)
	cutFraction := params.Gamma * excessFraction
	factor := 1 - cutFraction
	if factor < 0.5 {
		factor = 0.5 // a single step never cuts more than half
	}
	w.cwnd = protocol.ByteCount(float64(w.cwnd) * factor)
	w.clamp()
	w.lastDecTime = now
	w.haveLastDecTime = true
	return true
}

// NOOP makes no window change. Kept as an explicit method so every quadrant
// has a matching, traceable call site.
func (w *Window) NOOP() {}

// AccountReceived feeds the fulfill trigger's byte counter; FulfillDue
// checks it together with the other trigger (elapsed time).
func (w *Window) AccountReceived(n protocol.ByteCount) {
	w.receivedBytes += n
}

// FulfillDue reports whether either fulfill trigger (bytes received or
// elapsed time) has fired.
func (w *Window) FulfillDue(params *Params, now protocol.Picoseconds) bool {
	return w.receivedBytes > params.AdjustBytesThreshold ||
		now-w.lastAdjustTime > params.AdjustPeriodThreshold
}

// Fulfill applies the periodic batch adjustment: cwnd += inc_bytes/cwnd +
// eta, then resets the accumulators. The division by cwnd is the fairness
// primitive: two flows accumulating the same inc_bytes receive inversely
// proportional nudges, driving them toward a common share. eta guarantees
// forward progress even when inc_bytes rounds to zero.
func (w *Window) Fulfill(params *Params, now protocol.Picoseconds) {
	if w.cwnd > 0 {
		w.cwnd += protocol.ByteCount(w.incBytes/float64(w.cwnd) + params.Eta)
	}
	w.incBytes = 0
	w.receivedBytes = 0
	w.lastAdjustTime = now
	w.clamp()
}
