package congestion

import (
	"github.com/nscc-project/nscc/internal/collab"
	"github.com/nscc-project/nscc/internal/protocol"
)

// loss detector tuning constants. The 1.5 factor adds margin above one full
// path rotation; lower false-positives, higher delays detection by a full
// window.
const (
	lossRetxFactor = 1.5
	minRetxCfg     = 5
)

// Sleek is the cwnd-scaled, probe-augmented loss detector. A fixed dup-ack
// count would false-positive constantly under per-packet spraying
// reordering; the threshold instead rides with the reorder horizon (cwnd).
type Sleek struct {
	// outOfOrderCount accumulates the newly-acked bytes of out-of-order ACKs,
	// not a packet tally: reorderThreshold is computed in bytes (avg_pkt_size
	// and cwnd are both byte quantities), so the comparison must share units.
	outOfOrderCount protocol.ByteCount

	inRecovery     bool
	recoverySeqno  protocol.PacketNumber
	rtx            collab.RetransmissionQueue

	highestSent   protocol.PacketNumber
	cumulativeAck protocol.PacketNumber

	lastActivity      protocol.Picoseconds
	probeQuietPeriod  protocol.Picoseconds
	probeScheduled    bool
}

// NewSleek wires the loss detector to the flow's retransmission queue
// collaborator.
func NewSleek(rtx collab.RetransmissionQueue) *Sleek {
	return &Sleek{rtx: rtx, cumulativeAck: protocol.InvalidPacketNumber}
}

// InRecovery reports loss_recovery_mode for observability.
func (s *Sleek) InRecovery() bool { return s.inRecovery }

// RecoverySeqno returns the sequence number recovery will exit at.
func (s *Sleek) RecoverySeqno() protocol.PacketNumber { return s.recoverySeqno }

// OnPacketSent tracks highest_sent for later recovery-seqno bookkeeping.
func (s *Sleek) OnPacketSent(pn protocol.PacketNumber) {
	if pn > s.highestSent {
		s.highestSent = pn
	}
}

// OnAck processes one ACK's sequence info: inOrder reports whether pn is
// the expected in-order successor of cumulative_ack. newlyAcked feeds the
// byte-denominated reorder counter; avgPktSize and cwnd size the reorder
// threshold; maxwnd bounds it.
func (s *Sleek) OnAck(pn protocol.PacketNumber, inOrder bool, newlyAcked, avgPktSize, cwnd, maxwnd protocol.ByteCount, unackedBelow func(protocol.PacketNumber) []protocol.PacketNumber) {
	// cumulative_ack tracks contiguous in-order progress, never the max
	// packet number seen: a reordered ACK above recovery_seqno must not
	// end recovery while lower segments are still missing.
	if inOrder && pn > s.cumulativeAck {
		s.cumulativeAck = pn
	}

	if !inOrder {
		s.outOfOrderCount += newlyAcked
	}

	threshold := reorderThreshold(avgPktSize, cwnd, maxwnd)
	if !s.inRecovery && s.rtx.IsEmpty() && protocol.ByteCount(s.outOfOrderCount) >= threshold {
		s.enterRecovery(unackedBelow)
	}

	if s.inRecovery && s.cumulativeAck >= s.recoverySeqno {
		s.exitRecovery()
	}
}

// reorderThreshold computes
// max(min_retx_cfg * avg_pkt_size, min(loss_retx_factor * cwnd, maxwnd)).
func reorderThreshold(avgPktSize, cwnd, maxwnd protocol.ByteCount) protocol.ByteCount {
	scaled := protocol.ByteCount(lossRetxFactor * float64(cwnd))
	if scaled > maxwnd {
		scaled = maxwnd
	}
	floor := protocol.ByteCount(minRetxCfg) * avgPktSize
	if floor > scaled {
		return floor
	}
	return scaled
}

func (s *Sleek) enterRecovery(unackedBelow func(protocol.PacketNumber) []protocol.PacketNumber) {
	s.inRecovery = true
	s.recoverySeqno = s.highestSent

	if unackedBelow == nil {
		return
	}
	for _, pn := range unackedBelow(s.recoverySeqno) {
		s.rtx.Push(pn, pn)
	}
}

func (s *Sleek) exitRecovery() {
	s.inRecovery = false
	s.outOfOrderCount = 0
}

// OnNack records an explicitly trimmed segment. The loss is certain, not
// inferred, so the segment goes straight to the retransmission queue, and
// its size counts toward the reorder threshold like any other
// out-of-sequence feedback.
func (s *Sleek) OnNack(pn protocol.PacketNumber, size protocol.ByteCount) {
	s.outOfOrderCount += size
	s.rtx.Push(pn, pn)
}

// ProbeDue reports whether a quiet interval of base_rtt+target_Qdelay has
// elapsed with data outstanding.
func (s *Sleek) ProbeDue(now protocol.Picoseconds, outstandingData bool) bool {
	if !outstandingData || s.probeScheduled {
		return false
	}
	return now-s.lastActivity >= s.probeQuietPeriod
}

// SetProbeQuietPeriod configures the quiet interval (base_rtt+target_Qdelay).
func (s *Sleek) SetProbeQuietPeriod(d protocol.Picoseconds) { s.probeQuietPeriod = d }

// MarkProbeScheduled records that a probe is in flight; ProbeDue stays false
// until OnProbeAck clears it.
func (s *Sleek) MarkProbeScheduled() { s.probeScheduled = true }

// NoteActivity resets the quiet-interval clock; Flow calls it on every ACK.
func (s *Sleek) NoteActivity(now protocol.Picoseconds) { s.lastActivity = now }

// OnProbeAck processes a probe response. If raw_delay < target_Qdelay, the
// pipe has drained and any still-missing packets behind it are deemed lost.
func (s *Sleek) OnProbeAck(rawDelay, target protocol.Picoseconds, missingBehindProbe []protocol.PacketNumber) {
	s.probeScheduled = false
	if rawDelay < target {
		for _, pn := range missingBehindProbe {
			s.rtx.Push(pn, pn)
		}
	}
}
