// Package collab defines the external collaborator contracts the NSCC core
// consumes. The core depends only on these interfaces; concrete host/NIC,
// topology, multipath and retransmission implementations live outside this
// module.
package collab

//go:generate mockgen -source=interfaces.go -destination=mocks/interfaces_mock.go -package=mocks

import (
	"github.com/nscc-project/nscc/internal/monotime"
	"github.com/nscc-project/nscc/internal/protocol"
)

// TimerHandle identifies a scheduled callback so it can be cancelled.
type TimerHandle uint64

// HostNIC is the host/NIC interface consumed by the core.
type HostNIC interface {
	// Linkspeed returns the NIC's negotiated rate in bits per second.
	Linkspeed() uint64
	// Now returns the current monotonic instant.
	Now() monotime.Time
	// ScheduleAfter arranges for fn to run after d elapses and returns a
	// handle that Cancel can later use. The core never blocks on this.
	ScheduleAfter(d protocol.Picoseconds, fn func()) TimerHandle
	// Cancel aborts a previously scheduled callback; it is a no-op if the
	// callback already fired or was already cancelled.
	Cancel(h TimerHandle)
	// Send hands a segment to the NIC for transmission; the core never
	// blocks on this and treats the wire format as a black box.
	Send(segment []byte)
}

// TopologyOracle is consulted once per flow at connection init.
type TopologyOracle interface {
	// TwoPointRTT returns the round-trip propagation and per-hop
	// serialization delay between src and dst, used to seed base_rtt.
	TwoPointRTT(src, dst string) protocol.Picoseconds
}

// MultipathEngine is notified on every ACK/NACK/timeout. The core only
// calls Notify; path selection policy lives entirely in the engine.
type MultipathEngine interface {
	Notify(pathID uint32, event protocol.PathEvent)
}

// RetransmissionQueue is the black-box rtx queue consumed by the loss
// detector.
type RetransmissionQueue interface {
	Push(lo, hi protocol.PacketNumber)
	PopNext() (protocol.PacketNumber, bool)
	IsEmpty() bool
}
