package congestion

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nscc-project/nscc/internal/protocol"
)

func TestQuickAdapt_AccountAckedMasksStaleFeedback(t *testing.T) {
	q := NewQuickAdapt(DefaultQAGate, 100*protocol.Microsecond, 0)
	q.bytesToIgnore = 5_000

	require.True(t, q.AccountAcked(3_000), "first 3000 bytes of 5000 masked")
	require.True(t, q.AccountAcked(1_000), "4000/5000 still masked")
	require.True(t, q.AccountAcked(2_000), "4000 < 5000 on arrival: an ACK that exhausts the mask partway is still masked")
	require.Equal(t, protocol.ByteCount(6_000), q.achievedBytes)
}

func TestQuickAdapt_FireOnTimerWhenUnderperforming(t *testing.T) {
	q := NewQuickAdapt(3, 100*protocol.Microsecond, 0) // gate=3 -> threshold = maxwnd/8
	q.achievedBytes = 1_000

	var resetTo protocol.ByteCount
	fired := q.MaybeEvaluate(true, 0, 1*protocol.Millisecond, 100_000, 2_000, 50*protocol.Microsecond,
		func(achieved protocol.ByteCount) { resetTo = achieved })

	require.True(t, fired, "achieved 1000 < maxwnd/8=12500")
	require.Equal(t, protocol.ByteCount(1_000), resetTo)
	require.Equal(t, protocol.ByteCount(2_000), q.BytesToIgnore(), "in-flight bytes are masked after a fire")
}

func TestQuickAdapt_NoFireWhenPerformingWell(t *testing.T) {
	q := NewQuickAdapt(3, 100*protocol.Microsecond, 0)
	q.achievedBytes = 50_000 // > maxwnd/8 = 12500

	fired := q.MaybeEvaluate(true, 0, 1*protocol.Millisecond, 100_000, 0, 50*protocol.Microsecond,
		func(protocol.ByteCount) { t.Fatal("reset must not be called when not underperforming") })
	require.False(t, fired)
}

func TestQuickAdapt_NoFireWithoutAnyTrigger(t *testing.T) {
	q := NewQuickAdapt(3, 100*protocol.Microsecond, 0)
	q.achievedBytes = 0 // would fire if any trigger were active

	fired := q.MaybeEvaluate(false, 0, 1*protocol.Millisecond, 100_000, 0, 50*protocol.Microsecond,
		func(protocol.ByteCount) { t.Fatal("reset must not fire with no trigger") })
	require.False(t, fired)
}

func TestQuickAdapt_FiresOnSevereDelayEvenWithoutTimer(t *testing.T) {
	q := NewQuickAdapt(3, 1*protocol.Second, 0) // timer far in the future
	q.achievedBytes = 100

	fired := q.MaybeEvaluate(false, 10*protocol.Millisecond, 1*protocol.Millisecond, 100_000, 0, 1*protocol.Microsecond,
		func(protocol.ByteCount) {})
	require.True(t, fired, "raw_delay exceeding qa_threshold should fire independent of the timer")
}

func TestQuickAdapt_SetTriggerFiresOpportunistically(t *testing.T) {
	q := NewQuickAdapt(3, 1*protocol.Second, 0)
	q.achievedBytes = 100
	q.SetTrigger()

	fired := q.MaybeEvaluate(false, 0, 1*protocol.Millisecond, 100_000, 0, 1*protocol.Microsecond, func(protocol.ByteCount) {})
	require.True(t, fired)
}

func TestQuickAdapt_TimerDue(t *testing.T) {
	q := NewQuickAdapt(3, 100*protocol.Microsecond, 0)
	require.False(t, q.TimerDue(99*protocol.Microsecond))
	require.True(t, q.TimerDue(100*protocol.Microsecond))
}
