// Command scenariodemo walks a single NSCC flow through a handful of
// concrete congestion scenarios (sudden congestion, the NOOP quadrant,
// Quick Adapt under incast, reorder tolerance, base RTT refinement) using
// the public nscc API for flow control, plus the internal telemetry package
// to show the same scenarios through the Prometheus gauges/counters a real
// deployment would scrape.
package main

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nscc-project/nscc"
	"github.com/nscc-project/nscc/internal/collab"
	"github.com/nscc-project/nscc/internal/congestion"
	"github.com/nscc-project/nscc/internal/monotime"
	"github.com/nscc-project/nscc/internal/protocol"
	"github.com/nscc-project/nscc/internal/telemetry"
)

type staticTopology struct{ rtt time.Duration }

func (t staticTopology) TwoPointRTT(src, dst string) protocol.Picoseconds {
	return protocol.Picoseconds(t.rtt.Nanoseconds()) * protocol.Nanosecond
}

// staticHost answers Linkspeed/Now without any real scheduling; this demo
// drives every tick by hand via AckInput.Now instead of letting timers fire.
type staticHost struct{ linkspeed uint64 }

func (h staticHost) Linkspeed() uint64 { return h.linkspeed }
func (h staticHost) Now() monotime.Time { return monotime.Zero }
func (h staticHost) ScheduleAfter(d protocol.Picoseconds, fn func()) collab.TimerHandle {
	return 0
}
func (h staticHost) Cancel(collab.TimerHandle) {}
func (h staticHost) Send(segment []byte)       {}

type noopMultipath struct{ lastEvent string }

func (m *noopMultipath) Notify(pathID uint32, event protocol.PathEvent) { m.lastEvent = event.String() }

type noopRTX struct{}

func (noopRTX) Push(lo, hi protocol.PacketNumber)      {}
func (noopRTX) PopNext() (protocol.PacketNumber, bool) { return 0, false }
func (noopRTX) IsEmpty() bool                          { return true }

const (
	linkspeed100G = 100_000_000_000
	baseRTT12us   = 12 * time.Microsecond
)

// metricsRegistry collects one FlowMetrics per scenario so the walkthrough
// also exercises the Prometheus gauges/counters a real deployment would
// scrape, not just the public nscc API.
var metricsRegistry = prometheus.NewRegistry()
var nextFlowLabel uint64

func main() {
	fmt.Println("NSCC scenario walkthrough")
	suddenCongestion()
	noopQuadrant()
	quickAdaptIncast()
	sleekReorderTolerance()
	baseRTTRefinement()

	metricFamilies, err := metricsRegistry.Gather()
	must(err)
	fmt.Printf("\ncollected %d prometheus metric families across %d scenario flows\n", len(metricFamilies), nextFlowLabel)
}

func newFlow(multiplier float64) (*nscc.Sender, *nscc.Flow, *noopMultipath, *telemetry.FlowMetrics) {
	mpath := &noopMultipath{}
	sender, err := nscc.NewSender(
		nscc.Config{Linkspeed: linkspeed100G, Multiplier: multiplier, TrimmingEnabled: true}, // target = 0.75 * 12us = 9us
		staticHost{linkspeed: linkspeed100G},
		staticTopology{rtt: baseRTT12us},
		mpath,
		nil,
		nil,
	)
	if err != nil {
		panic(err)
	}
	flow, err := sender.NewFlow("host-a", "host-b", noopRTX{})
	if err != nil {
		panic(err)
	}
	nextFlowLabel++
	metrics := telemetry.NewFlowMetrics(metricsRegistry, nextFlowLabel)
	return sender, flow, mpath, metrics
}

// driveTo forces a flow to a given cwnd by repeatedly acking, at zero delay,
// one full congestion window's worth of bytes per RTT (the empty-network
// assumption: the whole window is sent and acked every round trip) until
// Stats().Cwnd reaches at least target.
func driveTo(flow *nscc.Flow, target int64, now *time.Duration, pn *int64) {
	for r := 0; r < 10_000 && flow.Stats().Cwnd < target; r++ {
		*now += baseRTT12us
		*pn++
		must(flow.OnAck(nscc.AckInput{
			PacketNumber: *pn,
			InOrder:      true,
			RawRTT:       baseRTT12us,
			NewlyAcked:   int(flow.Stats().Cwnd),
			AvgPktSize:   4096,
			Now:          *now,
		}))
	}
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// observeStats feeds the public, time.Duration-based nscc.Stats snapshot to
// a FlowMetrics, which speaks the internal picosecond-based congestion.Stats
// — the same translation nscc.Flow.Stats itself does at the public boundary.
func observeStats(metrics *telemetry.FlowMetrics, s nscc.Stats) {
	metrics.Observe(congestion.Stats{
		Cwnd:       protocol.ByteCount(s.Cwnd),
		BDP:        protocol.ByteCount(s.BDP),
		Maxwnd:     protocol.ByteCount(s.Maxwnd),
		BaseRTT:    monotime.FromDuration(s.BaseRTT),
		AvgDelay:   monotime.FromDuration(s.AvgDelay),
		InFlight:   protocol.ByteCount(s.InFlight),
		InRecovery: s.InRecovery,
	})
}

func suddenCongestion() {
	fmt.Println("\nsudden congestion")
	_, flow, mpath, metrics := newFlow(1.5) // maxwnd = 1.5 * 150KB = 225KB
	var now time.Duration
	var pn int64
	driveTo(flow, 225_000, &now, &pn)

	before := flow.Stats().Cwnd
	now += baseRTT12us
	pn++
	must(flow.OnAck(nscc.AckInput{
		PacketNumber: pn,
		InOrder:      true,
		RawRTT:       baseRTT12us + 18*time.Microsecond, // raw_delay = 18us = 2x target
		ECN:          true,
		NewlyAcked:   4096,
		AvgPktSize:   4096,
		Now:          now,
	}))
	after := flow.Stats().Cwnd
	// The cut is sized by the EWMA delay, not the raw sample; one 18us sample
	// leaves the EWMA far below the 9us target, so no cut is applied yet.
	fmt.Printf("  cwnd before=%d after=%d (avg_delay=%s, below the 9us target: no cut)\n", before, after, flow.Stats().AvgDelay)
	fmt.Printf("  multipath last notified: %s\n", mpath.lastEvent)
	observeStats(metrics, flow.Stats())
}

func noopQuadrant() {
	fmt.Println("\nNOOP quadrant")
	_, flow, mpath, metrics := newFlow(1.5)
	var now time.Duration
	var pn int64
	driveTo(flow, 100_000, &now, &pn)

	before := flow.Stats().Cwnd
	now += baseRTT12us
	pn++
	must(flow.OnAck(nscc.AckInput{
		PacketNumber: pn,
		InOrder:      true,
		RawRTT:       baseRTT12us + 2*time.Microsecond, // raw_delay = 2us < 9us target
		ECN:          true,
		NewlyAcked:   4096,
		AvgPktSize:   4096,
		Now:          now,
	}))
	after := flow.Stats().Cwnd
	fmt.Printf("  cwnd before=%d after=%d (expected unchanged)\n", before, after)
	fmt.Printf("  multipath last notified: %s (expected ECN)\n", mpath.lastEvent)
	observeStats(metrics, flow.Stats())
}

func quickAdaptIncast() {
	fmt.Println("\nQuick Adapt under incast")
	_, flow, _, metrics := newFlow(1.5)
	var now time.Duration
	var pn int64
	driveTo(flow, 225_000, &now, &pn)

	// Starve the flow of acked bytes for two eval intervals (base_rtt + 9us
	// target), each closed by a single small ACK. The first boundary still
	// counts the ramp's last full-window ACK; at the second, achieved_bytes
	// is far under maxwnd/8, so Quick Adapt fires.
	for i := 0; i < 2; i++ {
		now += baseRTT12us + 9*time.Microsecond + time.Microsecond
		pn++
		must(flow.OnAck(nscc.AckInput{
			PacketNumber: pn,
			InOrder:      true,
			RawRTT:       baseRTT12us,
			NewlyAcked:   1024,
			AvgPktSize:   4096,
			Now:          now,
		}))
	}
	fmt.Printf("  cwnd after starvation window: %d (expect collapse toward achieved bytes)\n", flow.Stats().Cwnd)
	metrics.ObserveQuickAdapt(congestion.QARecord{})
	observeStats(metrics, flow.Stats())
}

func sleekReorderTolerance() {
	fmt.Println("\nSLEEK reorder tolerance")
	_, flow, _, metrics := newFlow(1.5)
	var now time.Duration
	var pn int64
	driveTo(flow, 600_000, &now, &pn)

	for i := 0; i < 140; i++ {
		now += time.Microsecond
		pn++
		must(flow.OnAck(nscc.AckInput{
			PacketNumber: pn,
			InOrder:      false, // arriving out of the expected sequence
			RawRTT:       baseRTT12us,
			NewlyAcked:   4096,
			AvgPktSize:   4096,
			Now:          now,
		}))
	}
	s := flow.Stats()
	threshold := min(int64(1.5*float64(s.Cwnd)), s.Maxwnd)
	fmt.Printf("  in_recovery=%v after 140 reordered ACKs (%d bytes; reorder threshold min(1.5*cwnd, maxwnd) = %d bytes)\n", s.InRecovery, 140*4096, threshold)
	observeStats(metrics, flow.Stats())
}

func baseRTTRefinement() {
	fmt.Println("\nbase RTT refinement")
	_, flow, _, metrics := newFlow(1.5)
	beforeRTT := flow.Stats().BaseRTT
	must(flow.OnAck(nscc.AckInput{
		PacketNumber: 1,
		InOrder:      true,
		RawRTT:       9300 * time.Nanosecond, // 9.3us, below the 12us topology seed
		NewlyAcked:   4096,
		AvgPktSize:   4096,
		Now:          baseRTT12us,
	}))
	afterRTT := flow.Stats().BaseRTT
	fmt.Printf("  base_rtt %s -> %s (expected 9.3us)\n", beforeRTT, afterRTT)
	fmt.Printf("  maxwnd after refinement: %d\n", flow.Stats().Maxwnd)
	observeStats(metrics, flow.Stats())
}
