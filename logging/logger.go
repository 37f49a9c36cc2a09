// Package logging provides per-flow debug output for the NSCC core: a
// stdlib *log.Logger wrapped with a per-flow prefix and an enable gate,
// rather than pulling in an external logging library. This package only
// observes core state, never mutates it, so stdlib log is the right tool
// (see DESIGN.md).
package logging

import (
	"fmt"
	"log"
	"os"

	"github.com/nscc-project/nscc/internal/congestion"
	"github.com/nscc-project/nscc/internal/protocol"
)

// FlowLogger is one logging instance per flow.
type FlowLogger struct {
	logger  *log.Logger
	enabled bool
	flowID  uint64
}

var _ congestion.Logger = (*FlowLogger)(nil)

// NewFlowLogger creates a logger for flowID, active only when enabled.
func NewFlowLogger(flowID uint64, enabled bool) *FlowLogger {
	return &FlowLogger{
		logger:  log.New(os.Stderr, fmt.Sprintf("[nscc:%d] ", flowID), log.LstdFlags|log.Lmicroseconds),
		enabled: enabled,
		flowID:  flowID,
	}
}

// LogQuadrant logs the action selected by the classifier for one ACK.
func (l *FlowLogger) LogQuadrant(quadrant protocol.Quadrant, rawDelay, target protocol.Picoseconds, ecn bool) {
	if !l.enabled {
		return
	}
	l.logger.Printf("quadrant=%s raw_delay=%s target=%s ecn=%v", quadrant, rawDelay, target, ecn)
}

// LogCwndChange logs a congestion window mutation.
func (l *FlowLogger) LogCwndChange(reason string, before, after protocol.ByteCount) {
	if !l.enabled {
		return
	}
	l.logger.Printf("cwnd change (%s): %d -> %d", reason, before, after)
}

// LogQuickAdapt logs a QA firing.
func (l *FlowLogger) LogQuickAdapt(cwndBefore, cwndAfter, bytesToIgnore protocol.ByteCount) {
	if !l.enabled {
		return
	}
	l.logger.Printf("quick adapt fired: cwnd %d -> %d, masking next %d bytes", cwndBefore, cwndAfter, bytesToIgnore)
}

// LogRecoveryEntered logs SLEEK entering loss_recovery_mode.
func (l *FlowLogger) LogRecoveryEntered(recoverySeqno protocol.PacketNumber) {
	if !l.enabled {
		return
	}
	l.logger.Printf("entered loss recovery: recovery_seqno=%d", recoverySeqno)
}

// LogBaseRTTShrink logs a base_rtt refinement.
func (l *FlowLogger) LogBaseRTTShrink(before, after protocol.Picoseconds) {
	if !l.enabled {
		return
	}
	l.logger.Printf("base_rtt refined: %s -> %s", before, after)
}

// LogFatal logs a fatal invariant violation before the flow aborts.
func (l *FlowLogger) LogFatal(msg string) {
	l.logger.Printf("FATAL: %s", msg)
}
