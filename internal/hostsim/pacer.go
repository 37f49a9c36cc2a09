// Package hostsim provides a synthetic HostNIC collaborator for examples
// and tests: a token-bucket pacer standing in for a real NIC's link rate
// and send path, built on golang.org/x/time/rate.
package hostsim

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/nscc-project/nscc/internal/collab"
	"github.com/nscc-project/nscc/internal/monotime"
	"github.com/nscc-project/nscc/internal/protocol"
)

// Pacer throttles synthetic sends to a configured link rate. It is not a
// transport: Send just records bytes and lets the limiter account for them.
type Pacer struct {
	linkspeed uint64
	limiter   *rate.Limiter
	clock     monotime.Clock

	mu      sync.Mutex
	timers  map[collab.TimerHandle]*time.Timer
	nextID  collab.TimerHandle
}

var _ collab.HostNIC = (*Pacer)(nil)

// NewPacer builds a Pacer rate-limited to linkspeed bits/sec, with a burst
// of one MTU so a single full-size segment is never itself rate-limited.
func NewPacer(linkspeed uint64, clock monotime.Clock) *Pacer {
	bytesPerSec := float64(linkspeed) / 8
	return &Pacer{
		linkspeed: linkspeed,
		limiter:   rate.NewLimiter(rate.Limit(bytesPerSec), int(protocol.MTU)),
		clock:     clock,
		timers:    make(map[collab.TimerHandle]*time.Timer),
	}
}

func (p *Pacer) Linkspeed() uint64        { return p.linkspeed }
func (p *Pacer) Now() monotime.Time       { return p.clock.Now() }

// ScheduleAfter arranges fn to run after d elapses using a real-time timer.
// Examples only: production deployments drive this from their own event
// loop.
func (p *Pacer) ScheduleAfter(d protocol.Picoseconds, fn func()) collab.TimerHandle {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	id := p.nextID
	p.timers[id] = time.AfterFunc(time.Duration(d/protocol.Nanosecond)*time.Nanosecond, fn)
	return id
}

// Cancel aborts a previously scheduled callback.
func (p *Pacer) Cancel(h collab.TimerHandle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.timers[h]; ok {
		t.Stop()
		delete(p.timers, h)
	}
}

// Send blocks the caller's goroutine (not any NSCC handler) until the
// token bucket admits len(segment) bytes at the configured link rate.
func (p *Pacer) Send(segment []byte) {
	_ = p.limiter.WaitN(context.Background(), max(1, len(segment)))
}
