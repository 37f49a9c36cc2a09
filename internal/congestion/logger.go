package congestion

import "github.com/nscc-project/nscc/internal/protocol"

// Logger is the optional debug-log collaborator. A *logging.FlowLogger
// implements this; the congestion package only depends on the interface,
// the same separation it keeps from TraceSink, so this package never
// imports the concrete logging package.
type Logger interface {
	LogQuadrant(quadrant protocol.Quadrant, rawDelay, target protocol.Picoseconds, ecn bool)
	LogCwndChange(reason string, before, after protocol.ByteCount)
	LogQuickAdapt(cwndBefore, cwndAfter, bytesToIgnore protocol.ByteCount)
	LogRecoveryEntered(recoverySeqno protocol.PacketNumber)
	LogBaseRTTShrink(before, after protocol.Picoseconds)
	LogFatal(msg string)
}

// noopLogger discards every call, used when a flow is constructed with no
// logger so call sites never need a nil check.
type noopLogger struct{}

func (noopLogger) LogQuadrant(protocol.Quadrant, protocol.Picoseconds, protocol.Picoseconds, bool) {}
func (noopLogger) LogCwndChange(string, protocol.ByteCount, protocol.ByteCount)                    {}
func (noopLogger) LogQuickAdapt(protocol.ByteCount, protocol.ByteCount, protocol.ByteCount)        {}
func (noopLogger) LogRecoveryEntered(protocol.PacketNumber)                                        {}
func (noopLogger) LogBaseRTTShrink(protocol.Picoseconds, protocol.Picoseconds)                     {}
func (noopLogger) LogFatal(string)                                                                 {}
