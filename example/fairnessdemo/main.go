// Command fairnessdemo drives several independent NSCC flows concurrently
// against a synthetic empty network and reports Jain's fairness index over
// their converged congestion windows. Each flow runs on its own goroutine
// with no cross-flow synchronization beyond the errgroup barrier at the
// end: flows share no mutable state and require no ordering between them.
package main

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nscc-project/nscc"
	"github.com/nscc-project/nscc/internal/hostsim"
	"github.com/nscc-project/nscc/internal/monotime"
	"github.com/nscc-project/nscc/internal/protocol"
)

// staticTopology answers every TwoPointRTT with the same worst-case diameter.
type staticTopology struct{ rtt protocol.Picoseconds }

func (t staticTopology) TwoPointRTT(src, dst string) protocol.Picoseconds { return t.rtt }

// noopMultipath discards path feedback; this demo isn't exercising path
// steering, only the window dynamics.
type noopMultipath struct{}

func (noopMultipath) Notify(pathID uint32, event protocol.PathEvent) {}

// noopRTX is an always-empty retransmission queue; this demo injects no
// loss, only an empty network.
type noopRTX struct{}

func (noopRTX) Push(lo, hi protocol.PacketNumber)      {}
func (noopRTX) PopNext() (protocol.PacketNumber, bool) { return 0, false }
func (noopRTX) IsEmpty() bool                          { return true }

const (
	numFlows  = 4
	linkspeed = 100_000_000_000 // 100 Gbps
	baseRTT   = 12 * protocol.Microsecond
	rounds    = 200
)

func main() {
	host := hostsim.NewPacer(linkspeed, monotime.NewRealClock())
	sender, err := nscc.NewSender(nscc.Config{Linkspeed: linkspeed}, host, staticTopology{rtt: baseRTT}, noopMultipath{}, nil, nil)
	if err != nil {
		panic(err)
	}

	cwnds := make([]int64, numFlows)
	var g errgroup.Group
	for i := 0; i < numFlows; i++ {
		i := i
		g.Go(func() error {
			flow, err := sender.NewFlow("host-a", fmt.Sprintf("host-b-%d", i), noopRTX{})
			if err != nil {
				return err
			}
			var now time.Duration
			var pn int64
			for r := 0; r < rounds; r++ {
				now += 12 * time.Microsecond
				pn++
				if err := flow.OnAck(nscc.AckInput{
					PacketNumber: pn,
					InOrder:      true,
					RawRTT:       12 * time.Microsecond,
					NewlyAcked:   4096,
					AvgPktSize:   4096,
					Now:          now,
				}); err != nil {
					return err
				}
			}
			cwnds[i] = flow.Stats().Cwnd
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		panic(err)
	}

	fmt.Printf("converged windows: %v\n", cwnds)
	fmt.Printf("Jain's fairness index: %.4f\n", jainIndex(cwnds))
}

// jainIndex computes Jain's fairness index over a set of throughputs/windows:
// (sum x)^2 / (n * sum x^2), in (0,1], 1 meaning perfectly fair.
func jainIndex(xs []int64) float64 {
	var sum, sumSq float64
	for _, x := range xs {
		sum += float64(x)
		sumSq += float64(x) * float64(x)
	}
	if sumSq == 0 {
		return 1
	}
	return math.Pow(sum, 2) / (float64(len(xs)) * sumSq)
}
