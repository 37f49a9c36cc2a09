package qlog

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nscc-project/nscc/internal/congestion"
	"github.com/nscc-project/nscc/internal/protocol"
)

func TestTrace_RecordFulfillWritesNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTrace(&buf)

	tr.RecordFulfill(congestion.FulfillRecord{
		Time: 42, Flow: 1, Cwnd: 10_000, Quadrant: protocol.QuadrantFairIncrease,
	})
	tr.RecordQuickAdapt(congestion.QARecord{Time: 43, Flow: 1, CwndBefore: 10_000, CwndAfter: 1_000})

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first Event
	require.NoError(t, json.Unmarshal(lines[0], &first))
	require.Equal(t, EventFulfill, first.Kind)
	require.NotNil(t, first.Fulfill)
	require.Nil(t, first.QuickAdapt)
	require.Equal(t, protocol.ByteCount(10_000), first.Fulfill.Cwnd)

	var second Event
	require.NoError(t, json.Unmarshal(lines[1], &second))
	require.Equal(t, EventQuickAdapt, second.Kind)
	require.NotNil(t, second.QuickAdapt)
	require.Nil(t, second.Fulfill)
}

func TestTrace_NilWriterDiscardsEvents(t *testing.T) {
	tr := NewTrace(nil)
	require.NotPanics(t, func() {
		tr.RecordFulfill(congestion.FulfillRecord{Time: 1})
		tr.RecordQuickAdapt(congestion.QARecord{Time: 1})
	})
}

func TestRecordingTrace_KeepsStructuredRecords(t *testing.T) {
	rt := &RecordingTrace{}
	rt.RecordFulfill(congestion.FulfillRecord{Time: 1, Cwnd: 100})
	rt.RecordFulfill(congestion.FulfillRecord{Time: 2, Cwnd: 200})
	rt.RecordQuickAdapt(congestion.QARecord{Time: 3, CwndBefore: 200, CwndAfter: 50})

	require.Len(t, rt.Fulfills, 2)
	require.Len(t, rt.QuickAdapts, 1)
	require.Equal(t, protocol.ByteCount(200), rt.Fulfills[1].Cwnd)
	require.Equal(t, protocol.ByteCount(50), rt.QuickAdapts[0].CwndAfter)
}
