/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: decoder_test.go
Description: Tests for the tolerant sequence decoder. Covers the reference capture, rule
priority on overlapping constants, anomaly flags, flush behaviour and bit conservation.
*/

package inference_test

import (
	"strings"
	"testing"

	"github.com/kleascm/irprobe/pkg/inference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decodeSample builds a model and decodes the same timings
func decodeSample(t *testing.T, timings []int, margin int) (*inference.ProtocolModel, *inference.DecodeTrace) {
	t.Helper()
	model, err := inference.Build(timings, margin, nil)
	require.NoError(t, err)
	return model, inference.Decode(timings, model, nil)
}

// TestDecodeSampleCapture tests the reference capture end to end
func TestDecodeSampleCapture(t *testing.T) {
	_, trace := decodeSample(t, sampleCapture, 200)

	assert.Equal(t, "1110101100000000", trace.Bits)
	assert.Equal(t, 16, trace.TotalBits())
	assert.Zero(t, trace.Unknowns())
	require.Len(t, trace.Steps, len(sampleCapture))

	require.Len(t, trace.Fragments, 2)
	assert.Equal(t, "11101011", trace.Fragments[0].Bits)
	assert.Equal(t, inference.BoundaryHeaderSpace, trace.Fragments[0].Boundary)
	assert.Equal(t, "00000000", trace.Fragments[1].Bits)
	assert.Equal(t, inference.BoundaryEnd, trace.Fragments[1].Boundary)

	// The second header space arrives straight after a bit mark.
	anomalies := trace.Anomalies()
	require.Len(t, anomalies, 1)
	assert.Equal(t, 20, anomalies[0].Position)
	assert.Equal(t, inference.AnomalyUnexpectedHeaderSpace, anomalies[0].Anomaly)

	assert.Equal(t, "HDR_MARK+HDR_SPACE+DATA(8)+HDR_SPACE+DATA(8)", trace.Layout())
	assert.Equal(t, inference.StateHeaderMark, trace.Steps[0].State)
	assert.Equal(t, inference.StateHeaderSpace, trace.Steps[1].State)
	assert.Equal(t, inference.StateBitMark, trace.Steps[2].State)
	assert.Equal(t, inference.StateBitSpace, trace.Steps[3].State)
	assert.Equal(t, "1", trace.Steps[3].Bit)
}

// TestDecodeGapFlushesFragments tests rule 6 and end-of-input flushing
func TestDecodeGapFlushesFragments(t *testing.T) {
	timings := []int{
		9000, 4500, 560, 560, 560, 1690, 560, 40000,
		9000, 4500, 560, 1690, 560, 39900, 560, 560, 560,
	}
	model, trace := decodeSample(t, timings, 200)
	require.Len(t, model.Gaps, 1)

	// 560 at position 15 (odd) is a bit mark; 560 at 16 is a zero space.
	assert.Equal(t, "01"+"1"+"0", trace.Bits)
	require.Len(t, trace.Fragments, 3)
	assert.Equal(t, "01", trace.Fragments[0].Bits)
	assert.Equal(t, inference.BoundaryGap, trace.Fragments[0].Boundary)
	assert.Equal(t, "1", trace.Fragments[1].Bits)
	assert.Equal(t, inference.BoundaryGap, trace.Fragments[1].Boundary)
	assert.Equal(t, "0", trace.Fragments[2].Bits)
	assert.Equal(t, inference.BoundaryEnd, trace.Fragments[2].Boundary)

	// The bit mark after the second gap has no header space or bit space before it.
	anomalies := trace.Anomalies()
	require.Len(t, anomalies, 1)
	assert.Equal(t, 15, anomalies[0].Position)
	assert.Equal(t, inference.AnomalyUnexpectedBitMark, anomalies[0].Anomaly)
	assert.Equal(t, "HDR_MARK+HDR_SPACE+DATA(2)+GAP(40000)+HDR_MARK+HDR_SPACE+DATA(1)+GAP(39900)+DATA(1)", trace.Layout())
}

// TestDecodeGapFlushesEmptyAccumulator tests that a gap straight after the header still
// closes a zero-length fragment
func TestDecodeGapFlushesEmptyAccumulator(t *testing.T) {
	timings := []int{9000, 4500, 40000, 560, 1690, 560}
	model := &inference.ProtocolModel{
		HdrMark: 9000, BitMark: 560, HdrSpace: 4500, OneSpace: 1690, ZeroSpace: 560,
		Gaps: []inference.Gap{{Value: 40000}}, Margin: 200, SpaceEncoded: true,
	}
	trace := inference.Decode(timings, model, nil)

	require.Len(t, trace.Fragments, 2)
	assert.Equal(t, "", trace.Fragments[0].Bits)
	assert.Equal(t, inference.BoundaryGap, trace.Fragments[0].Boundary)
	assert.Equal(t, "010", trace.Fragments[1].Bits)
	assert.Equal(t, inference.BoundaryEnd, trace.Fragments[1].Boundary)
	assert.Equal(t, "HDR_MARK+HDR_SPACE+DATA(0)+GAP(40000)+DATA(3)", trace.Layout())

	// Nothing after the gap is preceded by its expected state.
	anomalies := trace.Anomalies()
	require.Len(t, anomalies, 4)
	assert.Equal(t, 3, anomalies[0].Position)
	assert.Equal(t, inference.AnomalyUnexpectedGap, anomalies[0].Anomaly)
	assert.Equal(t, inference.AnomalyUnexpectedZeroSpace, anomalies[1].Anomaly)
	assert.Equal(t, inference.AnomalyUnexpectedOneSpace, anomalies[2].Anomaly)
	assert.Equal(t, inference.AnomalyUnexpectedZeroSpace, anomalies[3].Anomaly)
}

// TestDecodeEndFlushesEmptyFragment tests that a trailing boundary leaves an empty fragment
func TestDecodeEndFlushesEmptyFragment(t *testing.T) {
	timings := []int{9000, 4500, 560, 1690, 560, 560, 560, 40000}
	model := &inference.ProtocolModel{
		HdrMark: 9000, BitMark: 560, HdrSpace: 4500, OneSpace: 1690, ZeroSpace: 560,
		Gaps: []inference.Gap{{Value: 40000}}, Margin: 200, SpaceEncoded: true,
	}
	trace := inference.Decode(timings, model, nil)

	require.Len(t, trace.Fragments, 2)
	assert.Equal(t, "10", trace.Fragments[0].Bits)
	assert.Equal(t, "", trace.Fragments[1].Bits)
	assert.Equal(t, inference.BoundaryEnd, trace.Fragments[1].Boundary)
}

// TestDecodeHeaderMarkFlushesPendingBits tests rule 1 flushing a fragment in progress
func TestDecodeHeaderMarkFlushesPendingBits(t *testing.T) {
	model := &inference.ProtocolModel{
		HdrMark: 9000, BitMark: 560, HdrSpace: 4500, OneSpace: 1690, ZeroSpace: 560,
		Margin: 200, SpaceEncoded: true,
	}
	timings := []int{9000, 4500, 560, 1690, 9000, 4500, 560, 560, 560}
	trace := inference.Decode(timings, model, nil)

	require.Len(t, trace.Fragments, 2)
	assert.Equal(t, "1", trace.Fragments[0].Bits)
	assert.Equal(t, inference.BoundaryHeaderMark, trace.Fragments[0].Boundary)
	assert.Equal(t, 5, trace.Fragments[0].End)
	assert.Equal(t, "0", trace.Fragments[1].Bits)
	assert.Empty(t, trace.Anomalies())

	kinds := make([]inference.SegmentKind, 0)
	for _, s := range trace.Segments {
		kinds = append(kinds, s.Kind)
	}
	assert.Equal(t, []inference.SegmentKind{
		inference.SegmentHeaderMark, inference.SegmentHeaderSpace, inference.SegmentData,
		inference.SegmentHeaderMark, inference.SegmentHeaderSpace, inference.SegmentData,
	}, kinds)
}

// TestDecodePriorityHeaderVersusBitMark tests that a value matching both marks reads as data
func TestDecodePriorityHeaderVersusBitMark(t *testing.T) {
	model := &inference.ProtocolModel{
		HdrMark: 600, BitMark: 600, HdrSpace: 4000, OneSpace: 1600, ZeroSpace: 600,
		Margin: 200, SpaceEncoded: true,
	}
	trace := inference.Decode([]int{600, 4000, 600, 1600}, model, nil)

	assert.Equal(t, inference.StateBitMark, trace.Steps[0].State)
	assert.Equal(t, inference.AnomalyUnexpectedBitMark, trace.Steps[0].Anomaly)
	assert.Equal(t, inference.StateHeaderSpace, trace.Steps[1].State)
	assert.Equal(t, inference.AnomalyUnexpectedHeaderSpace, trace.Steps[1].Anomaly)
	assert.Equal(t, "1", trace.Bits)
}

// TestDecodePriorityHeaderSpaceVersusOneSpace tests that an overlapping space reads as a one
func TestDecodePriorityHeaderSpaceVersusOneSpace(t *testing.T) {
	model := &inference.ProtocolModel{
		HdrMark: 9000, BitMark: 560, HdrSpace: 1700, OneSpace: 1690, ZeroSpace: 560,
		Margin: 200, SpaceEncoded: true,
	}
	trace := inference.Decode([]int{9000, 1600, 560, 1695}, model, nil)

	// 1600 matches both; rule 2 is guarded so it becomes a one bit.
	assert.Equal(t, inference.StateBitSpace, trace.Steps[1].State)
	assert.Equal(t, inference.AnomalyUnexpectedOneSpace, trace.Steps[1].Anomaly)
	// 1695 only matches the header space.
	assert.Equal(t, inference.StateHeaderSpace, trace.Steps[3].State)
}

// TestDecodeParityAdvisory tests that a mark-sized value at an even position is not a mark
func TestDecodeParityAdvisory(t *testing.T) {
	model := &inference.ProtocolModel{
		HdrMark: 9000, BitMark: 560, HdrSpace: 4500, OneSpace: 1690, ZeroSpace: 400,
		Margin: 100, SpaceEncoded: true,
	}
	trace := inference.Decode([]int{9000, 9000, 560, 560}, model, nil)

	assert.Equal(t, inference.StateUnknown, trace.Steps[1].State)
	assert.Equal(t, inference.AnomalyUnknownTiming, trace.Steps[1].Anomaly)
	assert.Equal(t, inference.StateBitMark, trace.Steps[2].State)
	assert.Equal(t, inference.StateUnknown, trace.Steps[3].State)
	assert.Equal(t, 2, trace.Unknowns())
	assert.Equal(t, "", trace.Bits)
}

// TestDecodeUnexpectedDataAndGap tests anomaly flags for out-of-order data and gaps
func TestDecodeUnexpectedDataAndGap(t *testing.T) {
	model := &inference.ProtocolModel{
		HdrMark: 9000, BitMark: 560, HdrSpace: 4500, OneSpace: 1690, ZeroSpace: 560,
		Gaps: []inference.Gap{{Value: 40000}}, Margin: 200, SpaceEncoded: true,
	}
	rec := inference.NewRecorder()
	trace := inference.Decode([]int{7000, 560, 7000, 1690, 7000, 40000}, model, rec)

	assert.Equal(t, inference.AnomalyUnknownTiming, trace.Steps[0].Anomaly)
	assert.Equal(t, inference.AnomalyUnexpectedZeroSpace, trace.Steps[1].Anomaly)
	assert.Equal(t, inference.AnomalyUnexpectedOneSpace, trace.Steps[3].Anomaly)
	assert.Equal(t, inference.AnomalyUnexpectedGap, trace.Steps[5].Anomaly)
	assert.Equal(t, "01", trace.Bits)

	assert.Len(t, rec.OfKind(inference.EventAnomaly), 6)
	assert.Len(t, rec.OfKind(inference.EventClassification), 6)
	assert.Len(t, rec.OfKind(inference.EventSummary), 1)
}

// TestDecodeExactlyOneRuleFires tests that every value produces exactly one step
// and that the chosen state follows the priority order
func TestDecodeExactlyOneRuleFires(t *testing.T) {
	model := &inference.ProtocolModel{
		HdrMark: 9000, BitMark: 600, HdrSpace: 4500, OneSpace: 1700, ZeroSpace: 600,
		Gaps: []inference.Gap{{Value: 40000}, {Value: 4600}}, Margin: 300, SpaceEncoded: true,
	}
	for v := -100; v <= 41000; v += 37 {
		for _, position := range []int{1, 2} {
			timings := []int{v}
			if position == 2 {
				timings = []int{0, v}
			}
			trace := inference.Decode(timings, model, nil)
			require.Len(t, trace.Steps, len(timings))
			got := trace.Steps[len(timings)-1].State
			assert.Equal(t, expectedState(model, v, position%2 == 1), got, "value %d position %d", v, position)
		}
	}
}

// expectedState restates the priority order independently of the decoder
func expectedState(m *inference.ProtocolModel, v int, odd bool) inference.State {
	if m.IsHdrMark(v) && odd && !m.IsBitMark(v) {
		return inference.StateHeaderMark
	}
	if m.IsHdrSpace(v) && !m.IsOneSpace(v) {
		return inference.StateHeaderSpace
	}
	if m.IsBitMark(v) && odd {
		return inference.StateBitMark
	}
	if m.IsZeroSpace(v) || m.IsOneSpace(v) {
		return inference.StateBitSpace
	}
	if m.IsGap(v) {
		return inference.StateGapSpace
	}
	return inference.StateUnknown
}

// TestDecodeBitConservation tests that fragments account for every bit and
// never split a mark/space data pair
func TestDecodeBitConservation(t *testing.T) {
	captures := [][]int{
		sampleCapture,
		{9000, 4500, 560, 560, 560, 1690, 560, 40000, 9000, 4500, 560, 1690, 560, 39900, 560, 560, 560},
		{9000, 4500, 560, 1690, 560, 560, 560, 1690, 560, 560, 9000, 2250, 560, 1690, 560, 560, 560, 1690, 560},
	}
	for _, capture := range captures {
		_, trace := decodeSample(t, capture, 200)

		var joined strings.Builder
		sum := 0
		for _, f := range trace.Fragments {
			joined.WriteString(f.Bits)
			sum += f.Len()
		}
		assert.Equal(t, trace.TotalBits(), sum)
		assert.Equal(t, trace.Bits, joined.String())

		bitSteps := 0
		for _, s := range trace.Steps {
			if s.Bit != "" {
				bitSteps++
			}
		}
		assert.Equal(t, bitSteps, trace.TotalBits())

		for _, f := range trace.Fragments {
			if f.Len() == 0 {
				continue
			}
			// Every data space in the fragment lies before its closing boundary.
			assert.Less(t, f.Start, f.End+1)
			assert.Contains(t, []inference.Boundary{
				inference.BoundaryHeaderMark, inference.BoundaryHeaderSpace,
				inference.BoundaryGap, inference.BoundaryEnd,
			}, f.Boundary)
		}
	}
}
