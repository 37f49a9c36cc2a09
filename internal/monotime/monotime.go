// Package monotime provides a monotonic picosecond clock abstraction,
// decoupling the congestion control code from wall-clock concerns so tests
// can drive a fake clock deterministically.
package monotime

import (
	"time"

	"github.com/nscc-project/nscc/internal/protocol"
)

// Time is an opaque monotonic instant at picosecond resolution.
type Time int64

// Zero is the unset instant.
const Zero Time = 0

// Sub returns the signed picosecond distance t - u.
func (t Time) Sub(u Time) protocol.Picoseconds {
	return protocol.Picoseconds(t - u)
}

// Add advances t by d picoseconds.
func (t Time) Add(d protocol.Picoseconds) Time {
	return t + Time(d)
}

// Before reports whether t precedes u.
func (t Time) Before(u Time) bool { return t < u }

// After reports whether t follows u.
func (t Time) After(u Time) bool { return t > u }

// IsZero reports whether t is the unset instant.
func (t Time) IsZero() bool { return t == Zero }

// FromDuration converts a standard library duration to picoseconds, for
// collaborators (host/NIC, topology oracle) that still speak time.Duration.
func FromDuration(d time.Duration) protocol.Picoseconds {
	return protocol.Picoseconds(d.Nanoseconds()) * protocol.Nanosecond
}

// Clock is the collaborator interface for reading the current monotonic
// instant.
type Clock interface {
	Now() Time
}

// RealClock reads the process monotonic clock via time.Now(), normalized to
// an epoch fixed when NewRealClock is called so picosecond arithmetic never
// overflows int64 across long-running processes.
type RealClock struct {
	epoch time.Time
}

// NewRealClock returns a Clock anchored to the current instant.
func NewRealClock() *RealClock {
	return &RealClock{epoch: time.Now()}
}

func (c *RealClock) Now() Time {
	return Time(time.Since(c.epoch).Nanoseconds()) * Time(protocol.Nanosecond)
}
