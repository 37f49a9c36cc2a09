// Package qlog is an optional structured trace sink: one record per fulfill
// adjustment plus a separate record type for Quick Adapt firings, written
// as newline-delimited JSON through a producer/recorder split.
package qlog

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/nscc-project/nscc/internal/congestion"
)

// EventKind distinguishes the two record types this sink emits.
type EventKind string

const (
	EventFulfill   EventKind = "fulfill_adjustment"
	EventQuickAdapt EventKind = "quick_adapt"
)

// Event is the on-the-wire JSON shape written to the trace. Exactly one of
// Fulfill/QuickAdapt is populated, selected by Kind — a tagged union so both
// record types flow through one producer.
type Event struct {
	Kind       EventKind              `json:"kind"`
	Fulfill    *congestion.FulfillRecord `json:"fulfill,omitempty"`
	QuickAdapt *congestion.QARecord      `json:"quick_adapt,omitempty"`
}

// Trace is a structured event sink writing newline-delimited JSON over a
// configurable writer. Safe for concurrent use by multiple flows: flows
// share no other mutable state, but writes to the sink itself are
// serialized.
type Trace struct {
	mu sync.Mutex
	w  io.Writer
	enc *json.Encoder
}

// NewTrace wraps w as a structured trace sink. A nil w discards all events,
// useful for tests that only want the in-memory RecordingTrace below.
func NewTrace(w io.Writer) *Trace {
	t := &Trace{w: w}
	if w != nil {
		t.enc = json.NewEncoder(w)
	}
	return t
}

var _ congestion.TraceSink = (*Trace)(nil)

// RecordFulfill implements congestion.TraceSink.
func (t *Trace) RecordFulfill(r congestion.FulfillRecord) {
	t.write(Event{Kind: EventFulfill, Fulfill: &r})
}

// RecordQuickAdapt implements congestion.TraceSink.
func (t *Trace) RecordQuickAdapt(r congestion.QARecord) {
	t.write(Event{Kind: EventQuickAdapt, QuickAdapt: &r})
}

func (t *Trace) write(e Event) {
	if t.enc == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	_ = t.enc.Encode(e) // best-effort: a write failure never blocks or aborts the caller
}

// RecordingTrace is an in-memory TraceSink used by tests: it keeps records
// in plain slices rather than serializing them, so assertions can read
// structured fields directly.
type RecordingTrace struct {
	mu          sync.Mutex
	Fulfills    []congestion.FulfillRecord
	QuickAdapts []congestion.QARecord
}

var _ congestion.TraceSink = (*RecordingTrace)(nil)

func (r *RecordingTrace) RecordFulfill(rec congestion.FulfillRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Fulfills = append(r.Fulfills, rec)
}

func (r *RecordingTrace) RecordQuickAdapt(rec congestion.QARecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.QuickAdapts = append(r.QuickAdapts, rec)
}
