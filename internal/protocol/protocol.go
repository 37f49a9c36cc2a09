// Package protocol collects the small value types shared across the NSCC
// core, so ByteCount, PacketNumber and friends live in one place instead of
// scattering type aliases across packages.
package protocol

import "fmt"

// ByteCount is a number of bytes.
type ByteCount int64

// MaxByteCount is the largest representable ByteCount, used as a sentinel
// "no limit yet" value.
const MaxByteCount ByteCount = 1<<62 - 1

// PacketNumber is a QUIC-style monotonically increasing packet identifier.
// The core only needs it as an ordering token for sequence cursors
// (highest_sent, cumulative_ack, recovery_seqno).
type PacketNumber int64

// InvalidPacketNumber marks a cursor that has never been set.
const InvalidPacketNumber PacketNumber = -1

// Picoseconds is a duration or absolute monotonic timestamp at picosecond
// resolution, the clock granularity of the whole core.
type Picoseconds int64

const (
	Nanosecond  Picoseconds = 1000
	Microsecond             = 1000 * Nanosecond
	Millisecond             = 1000 * Microsecond
	Second                  = 1000 * Millisecond
)

func (p Picoseconds) String() string {
	return fmt.Sprintf("%dps", int64(p))
}

// MTU is the assumed maximum transmission unit in bytes.
const MTU ByteCount = 4096

// ECN is the echoed ECN codepoint; the sender only cares whether it
// indicates congestion experienced.
type ECN uint8

const (
	ECNNon ECN = iota
	ECNECT0
	ECNECT1
	ECNCE
)

// Marked reports whether this ECN codepoint is a congestion-experienced
// mark, as opposed to a not-ECT or ECT(0)/ECT(1) capability signal.
func (e ECN) Marked() bool {
	return e == ECNCE
}

func (e ECN) String() string {
	switch e {
	case ECNNon:
		return "not-ECT"
	case ECNECT0:
		return "ECT(0)"
	case ECNECT1:
		return "ECT(1)"
	case ECNCE:
		return "CE"
	default:
		return "unknown"
	}
}

// PathEvent is the feedback class reported to the multipath engine per
// ACK/NACK/timeout.
type PathEvent uint8

const (
	PathGood PathEvent = iota
	PathECN
	PathNACK
	PathTimeout
)

func (e PathEvent) String() string {
	switch e {
	case PathGood:
		return "GOOD"
	case PathECN:
		return "ECN"
	case PathNACK:
		return "NACK"
	case PathTimeout:
		return "TIMEOUT"
	default:
		return "UNKNOWN"
	}
}
