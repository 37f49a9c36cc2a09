package congestion

import "github.com/nscc-project/nscc/internal/protocol"

// DefaultQAGate is the default underperformance gate: a flow counts as
// starved when it achieved less than maxwnd >> 3 = maxwnd/8 per interval.
const DefaultQAGate = 3

// QuickAdapt implements the emergency window reset: periodically (or
// opportunistically on NACK / severe delay) compare achieved bytes against a
// fraction of maxwnd, and on fire, collapse cwnd to recently achieved
// throughput while masking stale in-flight feedback.
type QuickAdapt struct {
	gate int // qa_gate in [0,4]

	achievedBytes protocol.ByteCount
	lastEvalTime  protocol.Picoseconds
	evalInterval  protocol.Picoseconds

	bytesToIgnore protocol.ByteCount
	bytesIgnored  protocol.ByteCount

	trigger bool // set by NACK/timeout, consumed on next eval
}

// NewQuickAdapt seeds the interval timer at flow init. evalInterval is
// base_rtt + target_Qdelay and must be recomputed by the caller whenever
// base_rtt shrinks.
func NewQuickAdapt(gate int, evalInterval protocol.Picoseconds, now protocol.Picoseconds) *QuickAdapt {
	return &QuickAdapt{gate: gate, evalInterval: evalInterval, lastEvalTime: now}
}

// SetEvalInterval updates qa_eval_interval, e.g. after base_rtt shrinks.
func (q *QuickAdapt) SetEvalInterval(d protocol.Picoseconds) { q.evalInterval = d }

// AccountAcked feeds achieved_bytes and, while the stale-feedback mask is
// active, drains bytes_to_ignore. It returns whether this ACK's bytes were
// (at least partly) masked, in which case the caller must skip the quadrant
// pipeline for this ACK entirely.
func (q *QuickAdapt) AccountAcked(newlyAcked protocol.ByteCount) (masked bool) {
	q.achievedBytes += newlyAcked
	if q.bytesIgnored < q.bytesToIgnore {
		q.bytesIgnored += newlyAcked
		return true
	}
	return false
}

// SetTrigger marks an opportunistic evaluation request from a NACK or
// timeout.
func (q *QuickAdapt) SetTrigger() { q.trigger = true }

// MaybeEvaluate fires the reset when something bad happened (timer, loss
// trigger, severe delay) AND the flow is severely underperforming — both
// guards, so it only fires in real emergencies. Callers pass
// whether a timer-driven evaluation boundary was reached (timerDue), the
// current raw_delay, qa_threshold, maxwnd, the flow's current in-flight
// bytes, and now. On fire it resets cwnd via reset, masks in_flight bytes of
// future feedback, and restarts the interval timer.
func (q *QuickAdapt) MaybeEvaluate(timerDue bool, rawDelay, qaThreshold protocol.Picoseconds, maxwnd, inFlight protocol.ByteCount, now protocol.Picoseconds, reset func(achieved protocol.ByteCount)) (fired bool) {
	severeDelay := rawDelay > qaThreshold
	loss := q.trigger
	if !timerDue && !loss && !severeDelay {
		return false
	}

	underperforming := q.achievedBytes < maxwnd>>uint(q.gate)
	if !underperforming {
		q.resetInterval(now)
		return false
	}

	reset(q.achievedBytes)
	q.bytesToIgnore = inFlight
	q.bytesIgnored = 0
	q.resetInterval(now)
	return true
}

func (q *QuickAdapt) resetInterval(now protocol.Picoseconds) {
	q.achievedBytes = 0
	q.lastEvalTime = now
	q.trigger = false
}

// TimerDue reports whether the eval interval elapsed since the last
// evaluation.
func (q *QuickAdapt) TimerDue(now protocol.Picoseconds) bool {
	return now-q.lastEvalTime >= q.evalInterval
}

// BytesToIgnore and BytesIgnored expose the stale-feedback mask state for
// the trace sink and tests.
func (q *QuickAdapt) BytesToIgnore() protocol.ByteCount { return q.bytesToIgnore }
func (q *QuickAdapt) BytesIgnored() protocol.ByteCount  { return q.bytesIgnored }
