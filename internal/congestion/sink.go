// Package congestion implements the NSCC per-flow sender algorithm: the
// scaling oracle, delay estimator, window controller, quadrant classifier,
// Quick Adapt and the SLEEK loss detector, one concern per file, fused by
// the Flow type in this file into a single per-flow event entry point.
package congestion

import (
	"fmt"
	"math"

	"github.com/nscc-project/nscc/internal/collab"
	"github.com/nscc-project/nscc/internal/protocol"
)

// FlowID identifies a flow to the trace sink and diagnostics.
type FlowID uint64

// TraceSink is the optional structured-event collaborator. The qlog package
// implements it; congestion never imports qlog directly to avoid a cycle.
type TraceSink interface {
	RecordFulfill(FulfillRecord)
	RecordQuickAdapt(QARecord)
}

// FulfillRecord is one trace record per fulfill adjustment.
// ActionBytes is indexed by protocol.Quadrant and holds the newly-acked
// bytes each action handled since the previous fulfill; IncBytes is the
// scaled increase that was pending when this fulfill fired.
type FulfillRecord struct {
	Time        protocol.Picoseconds
	Flow        FlowID
	Cwnd        protocol.ByteCount
	InFlight    protocol.ByteCount
	BDP         protocol.ByteCount
	Maxwnd      protocol.ByteCount
	AvgDelay    protocol.Picoseconds
	RawDelay    protocol.Picoseconds
	Target      protocol.Picoseconds
	BaseRTT     protocol.Picoseconds
	ECN         bool
	Quadrant    protocol.Quadrant
	IncBytes    protocol.ByteCount
	ActionBytes [protocol.NumQuadrants]protocol.ByteCount
}

// QARecord is the separate record type for Quick Adapt firings.
type QARecord struct {
	Time          protocol.Picoseconds
	Flow          FlowID
	CwndBefore    protocol.ByteCount
	CwndAfter     protocol.ByteCount
	BytesToIgnore protocol.ByteCount
}

// FatalError is an invariant violation that must abort the flow cleanly
// rather than silently corrupt state.
type FatalError struct {
	Flow FlowID
	Msg  string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("nscc: flow %d: fatal: %s", e.Flow, e.Msg)
}

// Flow is the per-flow sender state machine. All per-flow state lives on
// this struct for the flow's lifetime; the Params bundle is shared by
// reference across flows and never mutated.
type Flow struct {
	id     FlowID
	params *Params

	pathID     uint32
	linkspeed  uint64
	multiplier float64 // maxwnd = multiplier * bdp, in [1.25, 1.5]

	delay *DelayEstimator
	win   *Window
	qa    *QuickAdapt
	sleek *Sleek
	fast  FastIncreaseTracker

	bdp             protocol.ByteCount
	inFlight        protocol.ByteCount
	outstandingData bool

	// actionBytes accumulates newly-acked bytes per quadrant action between
	// fulfill adjustments, for the trace record's per-action counters.
	actionBytes [protocol.NumQuadrants]protocol.ByteCount

	refineBaseRTTOnNACK bool // whether NACK RTT samples may shrink base_rtt

	multipath collab.MultipathEngine
	trace     TraceSink
	logger    Logger

	terminal bool // teardown marker; events after this are dropped
}

// FlowConfig bundles the per-flow construction inputs.
type FlowConfig struct {
	ID         FlowID
	PathID     uint32
	Params     *Params
	InitialBaseRTT protocol.Picoseconds
	Linkspeed  uint64
	Multiplier float64 // clamp-checked to [1.25, 1.5] by caller (nscc.Config)
	QAGate     int // qa_gate in [0,4]; caller defaults to DefaultQAGate
	RefineBaseRTTOnNACK bool
	Multipath  collab.MultipathEngine
	RTX        collab.RetransmissionQueue
	Trace      TraceSink
	Logger     Logger // nil means discard all debug logging
	Now        protocol.Picoseconds
}

// NewFlow constructs a flow and derives the initial bdp/maxwnd from the
// seeded base_rtt and link speed.
func NewFlow(cfg FlowConfig) *Flow {
	logger := cfg.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	f := &Flow{
		id:                  cfg.ID,
		params:              cfg.Params,
		pathID:              cfg.PathID,
		linkspeed:           cfg.Linkspeed,
		multiplier:          cfg.Multiplier,
		refineBaseRTTOnNACK: cfg.RefineBaseRTTOnNACK,
		multipath:           cfg.Multipath,
		trace:               cfg.Trace,
		logger:              logger,
	}
	f.delay = NewDelayEstimator(cfg.InitialBaseRTT, cfg.Params)
	f.recomputeBDP()
	f.win = NewWindow(f.maxwnd(), cfg.Params.MTU, cfg.Now)
	f.qa = NewQuickAdapt(cfg.QAGate, f.qaEvalInterval(), cfg.Now)
	f.sleek = NewSleek(cfg.RTX)
	f.sleek.SetProbeQuietPeriod(f.qaEvalInterval())
	return f
}

// recomputeBDP maintains bdp = round(base_rtt * linkspeed / 8).
func (f *Flow) recomputeBDP() {
	f.bdp = protocol.ByteCount(math.Round(float64(f.delay.BaseRTT()) * float64(f.linkspeed) / 8 / float64(protocol.Second)))
}

func (f *Flow) maxwnd() protocol.ByteCount {
	return protocol.ByteCount(f.multiplier * float64(f.bdp))
}

func (f *Flow) qaEvalInterval() protocol.Picoseconds {
	return f.delay.BaseRTT() + f.params.TargetQdelay
}

// Stats is a read-only snapshot for telemetry/trace consumers: one shared
// read path instead of duplicated field plumbing.
type Stats struct {
	Cwnd     protocol.ByteCount
	BDP      protocol.ByteCount
	Maxwnd   protocol.ByteCount
	BaseRTT  protocol.Picoseconds
	AvgDelay protocol.Picoseconds
	InFlight protocol.ByteCount
	InRecovery bool
}

func (f *Flow) Stats() Stats {
	return Stats{
		Cwnd:       f.win.Cwnd(),
		BDP:        f.bdp,
		Maxwnd:     f.maxwnd(),
		BaseRTT:    f.delay.BaseRTT(),
		AvgDelay:   f.delay.AvgDelay(),
		InFlight:   f.inFlight,
		InRecovery: f.sleek.InRecovery(),
	}
}

// Close marks the flow terminal; subsequent events are dropped. Pending
// timers should be cancelled by the caller via the HostNIC collaborator
// using the flow's own handles before calling Close.
func (f *Flow) Close() { f.terminal = true }

// OnPacketSent records a send for in-flight and SLEEK bookkeeping.
func (f *Flow) OnPacketSent(pn protocol.PacketNumber, size protocol.ByteCount) {
	if f.terminal {
		return
	}
	f.inFlight += size
	f.outstandingData = true
	f.sleek.OnPacketSent(pn)
}

// AckInput bundles one ACK's observations for OnAck: the raw RTT sample,
// the echoed ECN bit, newly-acked bytes and sequence info.
type AckInput struct {
	PacketNumber   protocol.PacketNumber
	InOrder        bool
	RawRTT         protocol.Picoseconds
	ECN            bool
	NewlyAcked     protocol.ByteCount
	AvgPktSize     protocol.ByteCount
	Now            protocol.Picoseconds
	UnackedBelow   func(protocol.PacketNumber) []protocol.PacketNumber
	OutstandingData bool
}

// OnAck is the single entry point for ACK events. It refines the delay
// estimate, classifies the quadrant, mutates the window, feeds Quick Adapt
// and finally notifies the multipath engine, in that order.
func (f *Flow) OnAck(in AckInput) {
	if f.terminal {
		return
	}

	f.inFlight -= in.NewlyAcked
	if f.inFlight < 0 {
		f.inFlight = 0
	}
	f.sleek.NoteActivity(in.Now)
	f.sleek.OnAck(in.PacketNumber, in.InOrder, in.NewlyAcked, in.AvgPktSize, f.win.Cwnd(), f.maxwnd(), in.UnackedBelow)

	masked := f.qa.AccountAcked(in.NewlyAcked)

	oldBaseRTT := f.delay.BaseRTT()
	rawDelay, baseRTTShrank := f.delay.Update(Sample{RawRTT: in.RawRTT, ECN: in.ECN})
	if baseRTTShrank {
		f.recomputeBDP()
		f.win.SetMaxwnd(f.maxwnd()) // may clamp cwnd downward
		f.qa.SetEvalInterval(f.qaEvalInterval())
		f.sleek.SetProbeQuietPeriod(f.qaEvalInterval())
		f.logger.LogBaseRTTShrink(oldBaseRTT, f.delay.BaseRTT())
	}

	var quadrant protocol.Quadrant
	cwndBefore := f.win.Cwnd()
	wasInRecovery := f.sleek.InRecovery()
	if masked {
		// Stale-feedback mask active: no quadrant action while it drains.
		quadrant = protocol.QuadrantQuickAdapt
	} else if f.fast.Observe(rawDelay, in.NewlyAcked, f.win.Cwnd()) {
		quadrant = protocol.QuadrantFastIncrease
		f.win.FastIncrease(f.params, in.NewlyAcked)
	} else {
		//gcassert:inline
		quadrant = Classify(in.ECN, rawDelay, f.params.TargetQdelay)
		switch quadrant {
		case protocol.QuadrantFairIncrease:
			f.win.FairIncrease(f.params, in.NewlyAcked)
		case protocol.QuadrantProportionalIncrease:
			f.win.ProportionalIncrease(f.params, in.NewlyAcked, rawDelay)
		case protocol.QuadrantNOOP:
			f.win.NOOP()
		case protocol.QuadrantMultiplicativeDecrease:
			f.win.MultiplicativeDecrease(f.params, f.delay.AvgDelay(), f.delay.BaseRTT(), in.Now)
		}
		f.win.AccountReceived(in.NewlyAcked)
	}
	f.actionBytes[quadrant] += in.NewlyAcked
	f.outstandingData = in.OutstandingData || f.inFlight > 0
	f.logger.LogQuadrant(quadrant, rawDelay, f.params.TargetQdelay, in.ECN)
	if after := f.win.Cwnd(); after != cwndBefore {
		f.logger.LogCwndChange(quadrant.String(), cwndBefore, after)
	}
	if !wasInRecovery && f.sleek.InRecovery() {
		f.logger.LogRecoveryEntered(f.sleek.RecoverySeqno())
	}

	if !masked {
		// The stale-feedback mask suppresses the whole window controller,
		// fulfill adjustment included: a masked ACK must not let the
		// time-based fulfill trigger fire either, even though that trigger
		// is independent of Window.receivedBytes.
		f.maybeFulfill(in.Now, rawDelay, in.ECN, quadrant)
	}
	f.maybeQuickAdapt(false, rawDelay, in.Now)

	f.assertInvariants()
	if f.terminal {
		return
	}

	if in.ECN {
		f.multipath.Notify(f.pathID, protocol.PathECN)
	} else {
		f.multipath.Notify(f.pathID, protocol.PathGood)
	}
}

func (f *Flow) maybeFulfill(now, rawDelay protocol.Picoseconds, ecn bool, quadrant protocol.Quadrant) {
	if !f.win.FulfillDue(f.params, now) {
		return
	}
	pendingInc := f.win.PendingIncBytes()
	//gcassert:inline
	f.win.Fulfill(f.params, now)
	if f.trace != nil {
		f.trace.RecordFulfill(FulfillRecord{
			Time:        now,
			Flow:        f.id,
			Cwnd:        f.win.Cwnd(),
			InFlight:    f.inFlight,
			BDP:         f.bdp,
			Maxwnd:      f.maxwnd(),
			AvgDelay:    f.delay.AvgDelay(),
			RawDelay:    rawDelay,
			Target:      f.params.TargetQdelay,
			BaseRTT:     f.delay.BaseRTT(),
			ECN:         ecn,
			Quadrant:    quadrant,
			IncBytes:    protocol.ByteCount(pendingInc),
			ActionBytes: f.actionBytes,
		})
	}
	f.actionBytes = [protocol.NumQuadrants]protocol.ByteCount{}
}

func (f *Flow) maybeQuickAdapt(forceTrigger bool, rawDelay, now protocol.Picoseconds) {
	if forceTrigger {
		f.qa.SetTrigger()
	}
	timerDue := f.qa.TimerDue(now)
	before := f.win.Cwnd()
	fired := f.qa.MaybeEvaluate(timerDue, rawDelay, f.params.QAThreshold, f.maxwnd(), f.inFlight, now, func(achieved protocol.ByteCount) {
		f.win.ResetTo(achieved)
	})
	if fired {
		f.logger.LogQuickAdapt(before, f.win.Cwnd(), f.qa.BytesToIgnore())
		if f.trace != nil {
			f.trace.RecordQuickAdapt(QARecord{
				Time:          now,
				Flow:          f.id,
				CwndBefore:    before,
				CwndAfter:     f.win.Cwnd(),
				BytesToIgnore: f.qa.BytesToIgnore(),
			})
		}
	}
}

// OnNack is the entry point for NACK events, typically from packet trimming
// at a congested switch.
func (f *Flow) OnNack(rawRTT protocol.Picoseconds, pn protocol.PacketNumber, now protocol.Picoseconds) {
	if f.terminal {
		return
	}
	if f.refineBaseRTTOnNACK {
		// Trimmed packets can carry unusual forwarding delays, so a NACK
		// RTT sample is not always a trustworthy base_rtt candidate.
		if _, shrank := f.delay.Update(Sample{RawRTT: rawRTT}); shrank {
			f.recomputeBDP()
			f.win.SetMaxwnd(f.maxwnd())
			f.qa.SetEvalInterval(f.qaEvalInterval())
			f.sleek.SetProbeQuietPeriod(f.qaEvalInterval())
		}
	}
	// A trim carries only the header, so the dropped payload's size is not
	// echoed back; account one MTU, the size of the data segment that was
	// cut.
	f.sleek.OnNack(pn, f.params.MTU)
	f.maybeQuickAdapt(true, 0, now)
	f.multipath.Notify(f.pathID, protocol.PathNACK)
}

// OnProbeAck is the entry point for probe responses.
func (f *Flow) OnProbeAck(rawDelay protocol.Picoseconds, missingBehindProbe []protocol.PacketNumber) {
	if f.terminal {
		return
	}
	f.sleek.OnProbeAck(rawDelay, f.params.TargetQdelay, missingBehindProbe)
}

// ProbeDue reports whether the SLEEK probe channel wants a probe sent: data
// is outstanding and a quiet interval of base_rtt+target_Qdelay has elapsed.
// Building and sending the probe segment is the caller's job (the wire
// format is a black box here); the caller confirms the send with
// MarkProbeScheduled so ProbeDue stays false until the response arrives.
func (f *Flow) ProbeDue(now protocol.Picoseconds) bool {
	if f.terminal {
		return false
	}
	return f.sleek.ProbeDue(now, f.outstandingData)
}

// MarkProbeScheduled records that the caller sent the probe ProbeDue asked
// for. OnProbeAck clears it when the response comes back.
func (f *Flow) MarkProbeScheduled() {
	if f.terminal {
		return
	}
	f.sleek.MarkProbeScheduled()
}

// OnTimeout is the entry point for send-path timeouts.
func (f *Flow) OnTimeout(now protocol.Picoseconds) {
	if f.terminal {
		return
	}
	f.maybeQuickAdapt(true, 0, now)
	f.multipath.Notify(f.pathID, protocol.PathTimeout)
}

// assertInvariants aborts the flow cleanly with a diagnostic on an
// out-of-bounds window rather than silently corrupting state.
func (f *Flow) assertInvariants() {
	cwnd, maxwnd := f.win.Cwnd(), f.maxwnd()
	if cwnd > maxwnd || cwnd < f.win.minCwnd {
		msg := fmt.Sprintf("cwnd %d out of bounds [%d,%d]", cwnd, f.win.minCwnd, maxwnd)
		f.terminal = true
		f.logger.LogFatal(msg)
		panic(&FatalError{Flow: f.id, Msg: msg})
	}
}
