package congestion

import "github.com/nscc-project/nscc/internal/protocol"

// refLinkspeed and refRTT define the reference network the parameter bundle
// is scaled against. Their absolute values are arbitrary (~100 Gbps / 12us);
// only the ratios derived from them matter, so the scaling shape is
// invariant across real networks.
const (
	refLinkspeed uint64                  = 100_000_000_000 // 100 Gbps
	refRTT       protocol.Picoseconds    = 12 * protocol.Microsecond
	gamma        float64                 = 0.8
	delayAlpha   float64                 = 1.0 / 80.0
	adjustBytesThresholdMTUs             = 8
)

// Params is the immutable, process-wide parameter bundle derived once at
// init; every flow shares it by reference thereafter, so no synchronization
// is needed.
type Params struct {
	Alpha                 float64 // proportional-increase gain
	FI                     float64 // fair-increase constant
	Eta                    float64 // per-fulfill additive nudge
	FIScale                float64 // fast-increase multiplier
	Gamma                  float64 // decrease aggressiveness
	DelayAlpha             float64 // EWMA weight
	TargetQdelay           protocol.Picoseconds
	QAThreshold            protocol.Picoseconds
	AdjustBytesThreshold   protocol.ByteCount
	AdjustPeriodThreshold  protocol.Picoseconds
	MTU                    protocol.ByteCount
}

// OracleInput collects the actual-network quantities the derivation needs:
// linkspeed, the flow's network RTT, an optional explicit target delay
// override, and the trimming feature flag.
type OracleInput struct {
	Linkspeed          uint64
	NetworkRTT         protocol.Picoseconds
	TargetQdelay       protocol.Picoseconds // zero means "use priority rule"
	TrimmingEnabled    bool
	MTU                protocol.ByteCount
}

// targetQdelay picks the target queuing delay in priority order: explicit
// override, else 0.75x network_rtt under trimming, else network_rtt.
func targetQdelay(in OracleInput) protocol.Picoseconds {
	if in.TargetQdelay > 0 {
		return in.TargetQdelay
	}
	if in.TrimmingEnabled {
		return protocol.Picoseconds(float64(in.NetworkRTT) * 0.75)
	}
	return in.NetworkRTT
}

// SelectNetworkRTT prefers the first flow's actually-measured path RTT over
// the topology diameter when the measurement is available and no larger
// than the diameter (a larger
// measured RTT usually means a congested first sample, not a better
// estimate of the uncongested diameter).
func SelectNetworkRTT(diameter, measured protocol.Picoseconds) protocol.Picoseconds {
	if measured > 0 && measured <= diameter {
		return measured
	}
	return diameter
}

// DeriveParams computes the parameter bundle from the actual network
// described by in. Two ratios (the bdp scale a, the delay scale b) encode
// the entire network; with b proportional to the target, the shape of the
// proportional response is invariant across network sizes and only the
// equilibrium point shifts.
func DeriveParams(in OracleInput) Params {
	mtu := in.MTU
	if mtu == 0 {
		mtu = protocol.MTU
	}
	refBDP := float64(refLinkspeed) * float64(refRTT) / 8
	actualBDP := float64(in.Linkspeed) * float64(in.NetworkRTT) / 8

	a := actualBDP / refBDP
	target := targetQdelay(in)
	b := float64(target) / float64(refRTT)

	mss := float64(mtu)
	alpha := 4 * mss * a * b / float64(target)
	fi := 5 * mss * a
	eta := 0.15 * mss * a
	fiScale := 0.25 * a

	return Params{
		Alpha:                alpha,
		FI:                   fi,
		Eta:                  eta,
		FIScale:              fiScale,
		Gamma:                gamma,
		DelayAlpha:           delayAlpha,
		TargetQdelay:         target,
		QAThreshold:          protocol.Picoseconds(4 * float64(target)),
		AdjustBytesThreshold: protocol.ByteCount(adjustBytesThresholdMTUs) * mtu,
		AdjustPeriodThreshold: in.NetworkRTT,
		MTU:                  mtu,
	}
}
