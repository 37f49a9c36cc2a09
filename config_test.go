package nscc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nscc-project/nscc/internal/congestion"
	"github.com/nscc-project/nscc/internal/protocol"
)

func TestValidateConfig(t *testing.T) {
	badGate := 5
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{"nil config is valid", nil, false},
		{"zero value Config requires Linkspeed", &Config{}, true},
		{"valid minimal config", &Config{Linkspeed: 100_000_000_000}, false},
		{"multiplier below range", &Config{Linkspeed: 1, Multiplier: 1.0}, true},
		{"multiplier above range", &Config{Linkspeed: 1, Multiplier: 2.0}, true},
		{"multiplier at lower bound", &Config{Linkspeed: 1, Multiplier: 1.25}, false},
		{"multiplier at upper bound", &Config{Linkspeed: 1, Multiplier: 1.5}, false},
		{"qa gate out of range", &Config{Linkspeed: 1, QAGate: &badGate}, true},
		{"negative target qdelay", &Config{Linkspeed: 1, TargetQdelay: -time.Microsecond}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfig(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestPopulateConfig_Defaults(t *testing.T) {
	out := populateConfig(&Config{Linkspeed: 100_000_000_000})

	require.Equal(t, 1.25, out.Multiplier)
	require.NotNil(t, out.QAGate)
	require.Equal(t, congestion.DefaultQAGate, *out.QAGate)
	require.NotNil(t, out.RefineBaseRTTOnNACK)
	require.True(t, *out.RefineBaseRTTOnNACK)
	require.Equal(t, int(protocol.MTU), out.MTU)
}

func TestPopulateConfig_PreservesExplicitValues(t *testing.T) {
	gate := 1
	refine := false
	in := &Config{Linkspeed: 1, Multiplier: 1.4, QAGate: &gate, RefineBaseRTTOnNACK: &refine, MTU: 1500}

	out := populateConfig(in)

	require.Equal(t, 1.4, out.Multiplier)
	require.Equal(t, 1, *out.QAGate)
	require.False(t, *out.RefineBaseRTTOnNACK)
	require.Equal(t, 1500, out.MTU)
}

func TestPopulateConfig_NilInput(t *testing.T) {
	out := populateConfig(nil)
	require.Equal(t, 1.25, out.Multiplier)
}
