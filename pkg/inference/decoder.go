/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: decoder.go
Description: Tolerant sequence decoder. Walks the original timing capture once, classifies
every sample against the protocol model in a fixed priority order, accumulates data bits
and records header/gap framing. Unexpected framing and unclassifiable values are kept as
anomalies in the trace and never stop decoding.
*/

package inference

import (
	"fmt"
	"strings"
)

// State is the decoder's view of the most recently classified sample
type State int

const (
	StateInit State = iota
	StateHeaderMark
	StateHeaderSpace
	StateBitMark
	StateBitSpace
	StateGapSpace
	StateUnknown
)

// String returns the state's trace label
func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateHeaderMark:
		return "HEADER_MARK"
	case StateHeaderSpace:
		return "HEADER_SPACE"
	case StateBitMark:
		return "BIT_MARK"
	case StateBitSpace:
		return "BIT_SPACE"
	case StateGapSpace:
		return "GAP_SPACE"
	case StateUnknown:
		return "UNKNOWN"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarshalText encodes the state by its trace label
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Anomaly flags a sample where the decoder's expectations broke down
type Anomaly string

const (
	AnomalyNone                  Anomaly = ""
	AnomalyUnexpectedHeaderSpace Anomaly = "unexpected_header_space"
	AnomalyUnexpectedBitMark     Anomaly = "unexpected_bit_mark"
	AnomalyUnexpectedZeroSpace   Anomaly = "unexpected_zero_space"
	AnomalyUnexpectedOneSpace    Anomaly = "unexpected_one_space"
	AnomalyUnexpectedGap         Anomaly = "unexpected_gap"
	AnomalyUnknownTiming         Anomaly = "unknown_timing"
)

// Boundary is the framing event that closed a fragment
type Boundary string

const (
	BoundaryHeaderMark  Boundary = "header_mark"
	BoundaryHeaderSpace Boundary = "header_space"
	BoundaryGap         Boundary = "gap"
	BoundaryEnd         Boundary = "end"
)

// SegmentKind is one structural element of the recovered message layout
type SegmentKind string

const (
	SegmentHeaderMark  SegmentKind = "header_mark"
	SegmentHeaderSpace SegmentKind = "header_space"
	SegmentData        SegmentKind = "data"
	SegmentGap         SegmentKind = "gap"
)

// Segment is a code-generation side effect of decoding, in message order
type Segment struct {
	Kind     SegmentKind `json:"kind" yaml:"kind"`
	Fragment int         `json:"fragment" yaml:"fragment"`               // Index into Fragments for data segments
	Value    int         `json:"value,omitempty" yaml:"value,omitempty"` // Observed duration for gap segments
}

// Step records how one sample was classified
type Step struct {
	Position int     `json:"position" yaml:"position"` // 1-indexed; odd = mark, even = space
	Value    int     `json:"value" yaml:"value"`
	State    State   `json:"state" yaml:"state"`
	Bit      string  `json:"bit,omitempty" yaml:"bit,omitempty"`
	Anomaly  Anomaly `json:"anomaly,omitempty" yaml:"anomaly,omitempty"`
}

// DecodeTrace is the decoder's structural output
type DecodeTrace struct {
	Steps     []Step     `json:"steps" yaml:"steps"`
	Fragments []Fragment `json:"fragments" yaml:"fragments"`
	Segments  []Segment  `json:"segments" yaml:"segments"`
	Bits      string     `json:"bits" yaml:"bits"` // Concatenation of all fragments
}

// TotalBits returns the number of recovered bits
func (t *DecodeTrace) TotalBits() int {
	return len(t.Bits)
}

// Anomalies returns the steps that carry an anomaly flag
func (t *DecodeTrace) Anomalies() []Step {
	out := make([]Step, 0)
	for _, s := range t.Steps {
		if s.Anomaly != AnomalyNone {
			out = append(out, s)
		}
	}
	return out
}

// Unknowns returns the number of samples that matched no constant
func (t *DecodeTrace) Unknowns() int {
	n := 0
	for _, s := range t.Steps {
		if s.State == StateUnknown {
			n++
		}
	}
	return n
}

// Layout renders the framing as a compact one-line summary, e.g.
// "HDR_MARK+HDR_SPACE+DATA(8)+UNEXPECTED->HDR_SPACE+DATA(8)"
func (t *DecodeTrace) Layout() string {
	var b strings.Builder
	for i, seg := range t.Segments {
		if i > 0 {
			b.WriteString("+")
		}
		switch seg.Kind {
		case SegmentHeaderMark:
			b.WriteString("HDR_MARK")
		case SegmentHeaderSpace:
			b.WriteString("HDR_SPACE")
		case SegmentData:
			fmt.Fprintf(&b, "DATA(%d)", len(t.Fragments[seg.Fragment].Bits))
		case SegmentGap:
			fmt.Fprintf(&b, "GAP(%d)", seg.Value)
		}
	}
	return b.String()
}

// accumulator collects data bits between framing boundaries
type accumulator struct {
	bits  strings.Builder
	start int
}

// Append adds a bit after the ones already collected (MSB first as stored)
func (a *accumulator) Append(bit byte, position int) {
	if a.bits.Len() == 0 {
		a.start = position
	}
	a.bits.WriteByte(bit)
}

// Empty reports whether no bit has been collected since the last flush
func (a *accumulator) Empty() bool {
	return a.bits.Len() == 0
}

// Flush returns the collected bits and clears the accumulator
func (a *accumulator) Flush() (string, int) {
	bits, start := a.bits.String(), a.start
	a.bits.Reset()
	a.start = 0
	return bits, start
}

// decoder holds the per-call state of one Decode run
type decoder struct {
	model *ProtocolModel
	sink  Sink
	trace *DecodeTrace
	acc   accumulator
	last  State
}

// Decode walks timings in order and classifies each sample against model.
// The priority order of the rules is fixed and decides whether an ambiguous
// value is read as framing or data:
//
//  1. header mark (odd position, not also a bit mark)
//  2. header space (not also a one space)
//  3. bit mark (odd position)
//  4. zero space
//  5. one space
//  6. gap
//  7. unknown
//
// Decode never fails; anomalies are recorded in the returned trace.
func Decode(timings []int, model *ProtocolModel, sink Sink) *DecodeTrace {
	d := &decoder{
		model: model,
		sink:  orDiscard(sink),
		trace: &DecodeTrace{
			Steps:     make([]Step, 0, len(timings)),
			Fragments: make([]Fragment, 0, 4),
			Segments:  make([]Segment, 0, 8),
		},
		last: StateInit,
	}

	for i, usecs := range timings {
		d.step(i+1, usecs)
	}
	d.flush(len(timings), BoundaryEnd)

	d.sink.Emit(Event{
		Kind:    EventSummary,
		Message: "Total Nr. of suspected bits",
		Fields: map[string]interface{}{
			"bits":      d.trace.TotalBits(),
			"fragments": len(d.trace.Fragments),
			"anomalies": len(d.trace.Anomalies()),
		},
	})
	return d.trace
}

// step applies the first matching rule to one sample
func (d *decoder) step(position, usecs int) {
	m := d.model
	odd := isMarkPosition(position)
	s := Step{Position: position, Value: usecs}

	switch {
	case m.IsHdrMark(usecs) && odd && !m.IsBitMark(usecs):
		if !d.acc.Empty() {
			d.flush(position, BoundaryHeaderMark)
		}
		s.State = StateHeaderMark
		d.segment(Segment{Kind: SegmentHeaderMark})

	case m.IsHdrSpace(usecs) && !m.IsOneSpace(usecs):
		if d.last != StateHeaderMark {
			if !d.acc.Empty() {
				d.flush(position, BoundaryHeaderSpace)
			}
			s.Anomaly = AnomalyUnexpectedHeaderSpace
		}
		s.State = StateHeaderSpace
		d.segment(Segment{Kind: SegmentHeaderSpace})

	case m.IsBitMark(usecs) && odd:
		if d.last != StateHeaderSpace && d.last != StateBitSpace {
			s.Anomaly = AnomalyUnexpectedBitMark
		}
		s.State = StateBitMark

	case m.IsZeroSpace(usecs):
		if d.last != StateBitMark {
			s.Anomaly = AnomalyUnexpectedZeroSpace
		}
		s.State = StateBitSpace
		s.Bit = "0"
		d.acc.Append('0', position)

	case m.IsOneSpace(usecs):
		if d.last != StateBitMark {
			s.Anomaly = AnomalyUnexpectedOneSpace
		}
		s.State = StateBitSpace
		s.Bit = "1"
		d.acc.Append('1', position)

	case m.IsGap(usecs):
		if d.last != StateBitMark {
			s.Anomaly = AnomalyUnexpectedGap
		}
		s.State = StateGapSpace
		d.flush(position, BoundaryGap)
		d.segment(Segment{Kind: SegmentGap, Value: usecs})

	default:
		s.State = StateUnknown
		s.Anomaly = AnomalyUnknownTiming
	}

	d.last = s.State
	d.trace.Steps = append(d.trace.Steps, s)

	d.sink.Emit(Event{
		Kind:    EventClassification,
		Message: s.State.String(),
		Fields:  map[string]interface{}{"position": position, "usecs": usecs, "bit": s.Bit},
	})
	if s.Anomaly != AnomalyNone {
		d.sink.Emit(Event{
			Kind:    EventAnomaly,
			Message: string(s.Anomaly),
			Fields:  map[string]interface{}{"position": position, "usecs": usecs, "state": s.State.String()},
		})
	}
}

// flush moves the accumulated bits into a fragment, even when there are none
func (d *decoder) flush(position int, boundary Boundary) {
	bits, start := d.acc.Flush()
	if bits == "" {
		start = position
	}
	frag := Fragment{Bits: bits, Start: start, End: position, Boundary: boundary}

	idx := len(d.trace.Fragments)
	d.trace.Fragments = append(d.trace.Fragments, frag)
	d.trace.Bits += bits
	d.segment(Segment{Kind: SegmentData, Fragment: idx})

	d.sink.Emit(Event{
		Kind:    EventFragment,
		Message: "Data fragment",
		Fields: map[string]interface{}{
			"bits":     frag.Len(),
			"binary":   frag.Bits,
			"hex":      frag.HexMSB(),
			"boundary": string(boundary),
		},
	})
}

func (d *decoder) segment(seg Segment) {
	d.trace.Segments = append(d.trace.Segments, seg)
}
