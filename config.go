package nscc

import (
	"fmt"
	"time"

	"github.com/nscc-project/nscc/internal/congestion"
	"github.com/nscc-project/nscc/internal/protocol"
)

// Config collects the per-flow tunables and the defaults that govern them.
type Config struct {
	// Linkspeed is the NIC's negotiated rate in bits per second. Required.
	Linkspeed uint64

	// TargetQdelay is an explicit override for the target queuing delay.
	// Zero means "apply the priority rule": 0.75*network_rtt under
	// TrimmingEnabled, else network_rtt.
	TargetQdelay time.Duration

	// TrimmingEnabled selects the default TargetQdelay when TargetQdelay
	// is unset.
	TrimmingEnabled bool

	// Multiplier sets maxwnd = Multiplier * bdp. Must be in [1.25, 1.5];
	// zero defaults to 1.25.
	Multiplier float64

	// QAGate controls how aggressively Quick Adapt treats a flow as
	// underperforming, in {0..4}; nil defaults to congestion.DefaultQAGate
	// (3). A pointer because 0 is itself a valid gate value and cannot
	// double as an "unset" sentinel.
	QAGate *int

	// RefineBaseRTTOnNACK controls whether NACK-derived RTT samples also
	// refine base_rtt. Defaults to true. Documented risk: trimmed packets
	// can carry unusual forwarding delays, so a NACK RTT sample is not
	// always a trustworthy base_rtt candidate. There is no flag to allow
	// base_rtt to increase; it is monotonically non-increasing by design.
	RefineBaseRTTOnNACK *bool

	// MTU overrides the assumed maximum transmission unit; zero defaults
	// to protocol.MTU (4096 bytes).
	MTU int
}

// validateConfig treats nil as valid (meaning "use every default"), and
// reports cross-field constraint violations with a descriptive error rather
// than silently clamping them.
func validateConfig(c *Config) error {
	if c == nil {
		return nil
	}
	if c.Linkspeed == 0 {
		return fmt.Errorf("nscc: Config.Linkspeed must be set")
	}
	if c.Multiplier != 0 && (c.Multiplier < 1.25 || c.Multiplier > 1.5) {
		return fmt.Errorf("nscc: Config.Multiplier %v out of range [1.25, 1.5]", c.Multiplier)
	}
	if c.QAGate != nil && (*c.QAGate < 0 || *c.QAGate > 4) {
		return fmt.Errorf("nscc: Config.QAGate %d out of range [0, 4]", *c.QAGate)
	}
	if c.TargetQdelay < 0 {
		return fmt.Errorf("nscc: Config.TargetQdelay must not be negative")
	}
	return nil
}

// populateConfig fills in documented defaults for every unset field.
func populateConfig(c *Config) Config {
	var out Config
	if c != nil {
		out = *c
	}
	if out.Multiplier == 0 {
		out.Multiplier = 1.25
	}
	if out.QAGate == nil {
		g := congestion.DefaultQAGate
		out.QAGate = &g
	}
	if out.RefineBaseRTTOnNACK == nil {
		t := true
		out.RefineBaseRTTOnNACK = &t
	}
	if out.MTU == 0 {
		out.MTU = int(protocol.MTU)
	}
	return out
}
