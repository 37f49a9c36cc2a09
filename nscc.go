// Package nscc implements the Network-aware Sender Congestion Control core:
// the per-flow sender-side algorithm that decides, on every acknowledgement,
// how to update a congestion window over a multipath, ECN- and
// trimming-aware datacenter fabric that sprays packets across equal-cost
// paths.
package nscc

import (
	"sync"
	"time"

	"github.com/nscc-project/nscc/internal/collab"
	"github.com/nscc-project/nscc/internal/congestion"
	"github.com/nscc-project/nscc/internal/protocol"
)

// Public aliases for the external collaborator contracts, so callers never
// need (and in fact cannot) import this module's internal packages
// directly.
type (
	HostNIC             = collab.HostNIC
	TopologyOracle      = collab.TopologyOracle
	MultipathEngine     = collab.MultipathEngine
	RetransmissionQueue = collab.RetransmissionQueue
	TraceSink           = congestion.TraceSink
	FulfillRecord       = congestion.FulfillRecord
	QARecord            = congestion.QARecord
	Logger              = congestion.Logger
)

// Sender owns the process-wide Scaling Oracle bundle and mints Flows that
// share it by reference. Concrete collaborators (host/NIC, topology oracle,
// multipath engine) are supplied once here rather than per flow, the way a
// single transport is shared across connections.
type Sender struct {
	cfg    Config
	host   collab.HostNIC
	topo   collab.TopologyOracle
	mpath  collab.MultipathEngine
	trace  congestion.TraceSink
	logger congestion.Logger

	mu         sync.Mutex
	params     *congestion.Params
	paramsSet  bool
	nextFlowID uint64
}

// NewSender validates cfg and constructs a Sender. The Scaling Oracle bundle
// is not derived yet: the first call to NewFlow derives it from that flow's
// topology diameter, which it passes as both inputs of SelectNetworkRTT. No
// measured path RTT exists at that point, so the bundle never reflects one.
// trace and logger are both optional collaborators; either may be nil.
func NewSender(cfg Config, host collab.HostNIC, topo collab.TopologyOracle, mpath collab.MultipathEngine, trace congestion.TraceSink, logger congestion.Logger) (*Sender, error) {
	if err := validateConfig(&cfg); err != nil {
		return nil, &FlowError{Class: ClassFatal, Err: err}
	}
	return &Sender{
		cfg:    populateConfig(&cfg),
		host:   host,
		topo:   topo,
		mpath:  mpath,
		trace:  trace,
		logger: logger,
	}, nil
}

// Flow wraps an internal/congestion.Flow, translating fatal invariant
// violations (which the internal layer signals via panic, since a handler
// must abort cleanly rather than propagate a normal error return
// mid-mutation) into a returned *FlowError at the public boundary.
type Flow struct {
	id    congestion.FlowID
	inner *congestion.Flow
}

// ID returns this flow's identifier.
func (f *Flow) ID() uint64 { return uint64(f.id) }

// Stats is a public, time.Duration-based mirror of the internal Stats
// snapshot, so callers outside this module never need to name an internal
// package type.
type Stats struct {
	Cwnd       int64
	BDP        int64
	Maxwnd     int64
	BaseRTT    time.Duration
	AvgDelay   time.Duration
	InFlight   int64
	InRecovery bool
}

// Stats returns a read-only snapshot of the flow's state.
func (f *Flow) Stats() Stats {
	s := f.inner.Stats()
	return Stats{
		Cwnd:       int64(s.Cwnd),
		BDP:        int64(s.BDP),
		Maxwnd:     int64(s.Maxwnd),
		BaseRTT:    time.Duration(s.BaseRTT / protocol.Nanosecond),
		AvgDelay:   time.Duration(s.AvgDelay / protocol.Nanosecond),
		InFlight:   int64(s.InFlight),
		InRecovery: s.InRecovery,
	}
}

// Close tears the flow down. The caller is responsible for cancelling any
// outstanding HostNIC timers for this flow; NSCC core events after Close
// are silently dropped, never crash.
func (f *Flow) Close() { f.inner.Close() }

// NewFlow derives (on first call) or reuses the Scaling Oracle bundle, seeds
// base_rtt from the topology oracle, and constructs a new per-flow state
// machine.
func (s *Sender) NewFlow(src, dst string, rtx collab.RetransmissionQueue) (*Flow, error) {
	diameter := s.topo.TwoPointRTT(src, dst)

	s.mu.Lock()
	if !s.paramsSet {
		networkRTT := congestion.SelectNetworkRTT(diameter, diameter)
		p := congestion.DeriveParams(congestion.OracleInput{
			Linkspeed:       s.host.Linkspeed(),
			NetworkRTT:      networkRTT,
			TargetQdelay:    protocol.Picoseconds(s.cfg.TargetQdelay.Nanoseconds()) * protocol.Nanosecond,
			TrimmingEnabled: s.cfg.TrimmingEnabled,
			MTU:             protocol.ByteCount(s.cfg.MTU),
		})
		s.params = &p
		s.paramsSet = true
	}
	params := s.params
	// FlowID is a deterministic fingerprint of src, dst and this Sender's flow
	// counter, so it depends on the order of NewFlow calls: the same sequence
	// of calls yields the same ids across process restarts.
	id := congestion.FlowID(collab.FingerprintFlow(src, dst, uint16(s.nextFlowID), 0))
	s.nextFlowID++
	s.mu.Unlock()

	now := s.host.Now()
	inner := congestion.NewFlow(congestion.FlowConfig{
		ID:                  id,
		PathID:              0,
		Params:              params,
		InitialBaseRTT:      diameter,
		Linkspeed:           s.host.Linkspeed(),
		Multiplier:          s.cfg.Multiplier,
		QAGate:              *s.cfg.QAGate,
		RefineBaseRTTOnNACK: *s.cfg.RefineBaseRTTOnNACK,
		Multipath:           s.mpath,
		RTX:                 rtx,
		Trace:               s.trace,
		Logger:              s.logger,
		Now:                 protocol.Picoseconds(now),
	})
	return &Flow{id: id, inner: inner}, nil
}

// AckInput is the public, time.Duration-based mirror of
// internal/congestion.AckInput; callers outside this module cannot import
// the internal package directly, so OnAck accepts this instead and
// converts.
type AckInput struct {
	PacketNumber    int64
	InOrder         bool
	RawRTT          time.Duration
	ECN             bool
	NewlyAcked      int
	AvgPktSize      int
	Now             time.Duration
	UnackedBelow    func(below int64) []int64
	OutstandingData bool
}

// OnAck is the single entry point for ACK events. A recovered panic from a
// fatal invariant violation is returned as a *FlowError rather than
// propagated: the core never raises exceptions to callers for normal
// operation.
func (f *Flow) OnAck(in AckInput) (err error) {
	defer func() { err = recoverFatal(recover()) }()
	var unacked func(protocol.PacketNumber) []protocol.PacketNumber
	if in.UnackedBelow != nil {
		unacked = func(below protocol.PacketNumber) []protocol.PacketNumber {
			raw := in.UnackedBelow(int64(below))
			out := make([]protocol.PacketNumber, len(raw))
			for i, v := range raw {
				out[i] = protocol.PacketNumber(v)
			}
			return out
		}
	} else {
		unacked = func(protocol.PacketNumber) []protocol.PacketNumber { return nil }
	}
	f.inner.OnAck(congestion.AckInput{
		PacketNumber:    protocol.PacketNumber(in.PacketNumber),
		InOrder:         in.InOrder,
		RawRTT:          protocol.Picoseconds(in.RawRTT.Nanoseconds()) * protocol.Nanosecond,
		ECN:             in.ECN,
		NewlyAcked:      protocol.ByteCount(in.NewlyAcked),
		AvgPktSize:      protocol.ByteCount(in.AvgPktSize),
		Now:             protocol.Picoseconds(in.Now.Nanoseconds()) * protocol.Nanosecond,
		UnackedBelow:    unacked,
		OutstandingData: in.OutstandingData,
	})
	return nil
}

// OnNack is the entry point for NACK events.
func (f *Flow) OnNack(rawRTT time.Duration, pn int64, now time.Duration) (err error) {
	defer func() { err = recoverFatal(recover()) }()
	f.inner.OnNack(
		protocol.Picoseconds(rawRTT.Nanoseconds())*protocol.Nanosecond,
		protocol.PacketNumber(pn),
		protocol.Picoseconds(now.Nanoseconds())*protocol.Nanosecond,
	)
	return nil
}

// OnProbeAck is the entry point for probe responses.
func (f *Flow) OnProbeAck(rawDelay time.Duration, missingBehindProbe []int64) (err error) {
	defer func() { err = recoverFatal(recover()) }()
	pns := make([]protocol.PacketNumber, len(missingBehindProbe))
	for i, v := range missingBehindProbe {
		pns[i] = protocol.PacketNumber(v)
	}
	f.inner.OnProbeAck(protocol.Picoseconds(rawDelay.Nanoseconds())*protocol.Nanosecond, pns)
	return nil
}

// OnTimeout is the entry point for send-path timeouts.
func (f *Flow) OnTimeout(now time.Duration) (err error) {
	defer func() { err = recoverFatal(recover()) }()
	f.inner.OnTimeout(protocol.Picoseconds(now.Nanoseconds()) * protocol.Nanosecond)
	return nil
}

// OnPacketSent records a send for in-flight and SLEEK bookkeeping.
func (f *Flow) OnPacketSent(pn int64, size int) {
	f.inner.OnPacketSent(protocol.PacketNumber(pn), protocol.ByteCount(size))
}

// ProbeDue reports whether the loss detector's probe channel wants a probe
// sent. The caller builds and sends the probe segment itself, confirms with
// MarkProbeScheduled, and feeds the response back through OnProbeAck.
func (f *Flow) ProbeDue(now time.Duration) bool {
	return f.inner.ProbeDue(protocol.Picoseconds(now.Nanoseconds()) * protocol.Nanosecond)
}

// MarkProbeScheduled records that the caller sent the probe ProbeDue asked for.
func (f *Flow) MarkProbeScheduled() { f.inner.MarkProbeScheduled() }

func recoverFatal(r any) error {
	if r == nil {
		return nil
	}
	if fe, ok := r.(error); ok {
		return &FlowError{Class: ClassFatal, Err: fe}
	}
	panic(r) // not one of ours: a genuine programmer bug, keep crashing
}
