package congestion

import "github.com/nscc-project/nscc/internal/protocol"

// fastIncreaseThreshold is the raw-delay ceiling under which bytes count
// toward the fast-increase qualification counter.
const fastIncreaseThreshold protocol.Picoseconds = protocol.Microsecond

// FastIncreaseTracker accumulates newly-acked bytes while raw_delay stays
// below 1us; once the run exceeds one cwnd's worth, it switches into
// fast-increase mode until the first non-qualifying ACK.
type FastIncreaseTracker struct {
	qualifyingBytes protocol.ByteCount
	active          bool
}

// Observe feeds one ACK's (rawDelay, newlyAcked, cwnd) to the tracker and
// reports whether this ACK should be handled as fast-increase.
func (f *FastIncreaseTracker) Observe(rawDelay protocol.Picoseconds, newlyAcked, cwnd protocol.ByteCount) bool {
	if rawDelay >= fastIncreaseThreshold {
		f.qualifyingBytes = 0
		f.active = false
		return false
	}
	f.qualifyingBytes += newlyAcked
	if f.qualifyingBytes > cwnd {
		f.active = true
	}
	return f.active
}

// Classify maps (ecn, rawDelay, target) to one of the four steady-state
// quadrants. Fast-increase is layered on top by the caller
// (FastIncreaseTracker), since it is a run-length qualification, not a pure
// function of the current ACK alone. Classification uses the raw per-packet
// delay so the sender reacts within one ACK to fresh conditions.
func Classify(ecn bool, rawDelay, target protocol.Picoseconds) protocol.Quadrant {
	switch {
	case !ecn && rawDelay < target:
		return protocol.QuadrantProportionalIncrease
	case !ecn: // rawDelay >= target
		return protocol.QuadrantFairIncrease
	case rawDelay < target:
		return protocol.QuadrantNOOP
	default: // ecn && rawDelay >= target
		return protocol.QuadrantMultiplicativeDecrease
	}
}
