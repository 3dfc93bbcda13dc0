/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: model.go
Description: Protocol model derivation. Splits a timing capture into marks and spaces,
bucketizes each side and names the resulting candidates: header mark/space, bit mark,
one/zero space and any inter-frame gaps. Exposes the one-sided classification
predicates used by the sequence decoder.
*/

package inference

import (
	"fmt"

	"github.com/kleascm/irprobe/pkg/timing"
)

// minSpaceBuckets is the number of space candidates needed to name the
// zero, one and header spaces
const minSpaceBuckets = 3

// Gap is an inter-frame space candidate
type Gap struct {
	Value   int `json:"value" yaml:"value"`     // Bucket representative, used for matching
	Average int `json:"average" yaml:"average"` // Mean of the bucket's samples, for reporting
	Samples int `json:"samples" yaml:"samples"` // Number of samples in the bucket
}

// ProtocolModel holds the named constants inferred from one capture.
// It is immutable once Build returns.
type ProtocolModel struct {
	HdrMark      int            `json:"hdr_mark" yaml:"hdr_mark"`
	BitMark      int            `json:"bit_mark" yaml:"bit_mark"`
	HdrSpace     int            `json:"hdr_space" yaml:"hdr_space"`
	OneSpace     int            `json:"one_space" yaml:"one_space"`
	ZeroSpace    int            `json:"zero_space" yaml:"zero_space"`
	Gaps         []Gap          `json:"gaps" yaml:"gaps"` // Descending; possibly empty
	Margin       int            `json:"margin" yaml:"margin"`
	SpaceEncoded bool           `json:"space_encoded" yaml:"space_encoded"`
	MarkBuckets  []timing.Bucket `json:"mark_buckets" yaml:"mark_buckets"`
	SpaceBuckets []timing.Bucket `json:"space_buckets" yaml:"space_buckets"`
}

// Match reports whether seen is no more than margin below expected and not above it.
// Captured pulses are accurate or slightly short, never long, so the window is one-sided.
func Match(seen, expected, margin int) bool {
	return seen <= expected && seen > expected-margin
}

// SplitTimings separates a capture by 1-indexed parity: odd positions are
// marks, even positions are spaces
func SplitTimings(timings []int) (marks, spaces []int) {
	marks = make([]int, 0, len(timings)/2+1)
	spaces = make([]int, 0, len(timings)/2)
	for i, usecs := range timings {
		if isMarkPosition(i + 1) {
			marks = append(marks, usecs)
		} else {
			spaces = append(spaces, usecs)
		}
	}
	return marks, spaces
}

// Build derives a ProtocolModel from a timing capture.
// It fails with ErrInsufficientData for captures of 3 samples or fewer (before
// margin and sample validation) or with fewer than 3 space candidates, and with
// ErrUnsupportedEncoding when the capture does not look space encoded.
func Build(timings []int, margin int, sink Sink) (*ProtocolModel, error) {
	sink = orDiscard(sink)

	if len(timings) <= minSpaceBuckets {
		return nil, fmt.Errorf("%w: need at least 4 timing samples, got %d", ErrInsufficientData, len(timings))
	}
	if err := validate(timings, margin); err != nil {
		return nil, err
	}

	marks, spaces := SplitTimings(timings)
	markBuckets := timing.Bucketize(marks, margin)
	spaceBuckets := timing.Bucketize(spaces, margin)

	sink.Emit(Event{
		Kind:    EventBuckets,
		Message: "Potential mark candidates",
		Fields:  map[string]interface{}{"margin": margin, "candidates": timing.Representatives(markBuckets)},
	})
	sink.Emit(Event{
		Kind:    EventBuckets,
		Message: "Potential space candidates",
		Fields:  map[string]interface{}{"margin": margin, "candidates": timing.Representatives(spaceBuckets)},
	})

	model := &ProtocolModel{
		Margin:       margin,
		SpaceEncoded: len(spaceBuckets) > len(markBuckets),
		MarkBuckets:  markBuckets,
		SpaceBuckets: spaceBuckets,
	}

	if !model.SpaceEncoded {
		sink.Emit(Event{
			Kind:    EventEncoding,
			Message: "Looks like it is mark encoded",
			Fields:  map[string]interface{}{"mark_buckets": len(markBuckets), "space_buckets": len(spaceBuckets)},
		})
		return nil, fmt.Errorf("%w: %d mark candidates vs %d space candidates",
			ErrUnsupportedEncoding, len(markBuckets), len(spaceBuckets))
	}
	sink.Emit(Event{
		Kind:    EventEncoding,
		Message: "Looks like it uses space encoding",
		Fields:  map[string]interface{}{"mark_buckets": len(markBuckets), "space_buckets": len(spaceBuckets)},
	})

	// Largest mark is likely the header, the smallest the bit mark.
	model.HdrMark = markBuckets[0].Representative
	model.BitMark = markBuckets[len(markBuckets)-1].Representative

	if len(spaceBuckets) < minSpaceBuckets {
		return nil, fmt.Errorf("%w: need at least %d space candidates, got %d",
			ErrInsufficientData, minSpaceBuckets, len(spaceBuckets))
	}

	// Pop from the tail: zero space, one space, header space. Whatever is left
	// over is larger and becomes a gap candidate.
	remaining := spaceBuckets
	pop := func() int {
		last := remaining[len(remaining)-1]
		remaining = remaining[:len(remaining)-1]
		return last.Representative
	}
	model.ZeroSpace = pop()
	model.OneSpace = pop()
	model.HdrSpace = pop()

	model.Gaps = make([]Gap, 0, len(remaining))
	for _, b := range remaining {
		model.Gaps = append(model.Gaps, Gap{Value: b.Representative, Average: b.Average(), Samples: b.Len()})
	}

	for _, c := range model.Constants() {
		sink.Emit(Event{
			Kind:    EventConstant,
			Message: c.Name,
			Fields:  map[string]interface{}{"name": c.Name, "value": c.Value, "average": c.Average},
		})
	}

	return model, nil
}

// validate rejects captures and margins the core cannot reason about
func validate(timings []int, margin int) error {
	if margin < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMargin, margin)
	}
	for i, usecs := range timings {
		if usecs < 0 {
			return fmt.Errorf("%w: negative duration %d at position %d", ErrMalformedInput, usecs, i+1)
		}
	}
	return nil
}

// Constant is a named protocol value, in the order it is usually reported
type Constant struct {
	Name    string `json:"name" yaml:"name"`
	Value   int    `json:"value" yaml:"value"`
	Average int    `json:"average" yaml:"average"`
}

// Constants lists the model's named values: header mark, bit mark, each gap,
// then header, one and zero spaces
func (m *ProtocolModel) Constants() []Constant {
	avg := func(buckets []timing.Bucket, rep int) int {
		for _, b := range buckets {
			if b.Representative == rep {
				return b.Average()
			}
		}
		return rep
	}

	out := []Constant{
		{Name: "HDR_MARK", Value: m.HdrMark, Average: avg(m.MarkBuckets, m.HdrMark)},
		{Name: "BIT_MARK", Value: m.BitMark, Average: avg(m.MarkBuckets, m.BitMark)},
	}
	for i, g := range m.Gaps {
		out = append(out, Constant{Name: fmt.Sprintf("SPACE_GAP%d", i+1), Value: g.Value, Average: g.Average})
	}
	out = append(out,
		Constant{Name: "HDR_SPACE", Value: m.HdrSpace, Average: avg(m.SpaceBuckets, m.HdrSpace)},
		Constant{Name: "ONE_SPACE", Value: m.OneSpace, Average: avg(m.SpaceBuckets, m.OneSpace)},
		Constant{Name: "ZERO_SPACE", Value: m.ZeroSpace, Average: avg(m.SpaceBuckets, m.ZeroSpace)},
	)
	return out
}

// IsHdrMark reports whether usecs matches the header mark
func (m *ProtocolModel) IsHdrMark(usecs int) bool {
	return Match(usecs, m.HdrMark, m.Margin)
}

// IsHdrSpace reports whether usecs matches the header space
func (m *ProtocolModel) IsHdrSpace(usecs int) bool {
	return Match(usecs, m.HdrSpace, m.Margin)
}

// IsBitMark reports whether usecs matches the bit mark
func (m *ProtocolModel) IsBitMark(usecs int) bool {
	return Match(usecs, m.BitMark, m.Margin)
}

// IsOneSpace reports whether usecs matches the one space
func (m *ProtocolModel) IsOneSpace(usecs int) bool {
	return Match(usecs, m.OneSpace, m.Margin)
}

// IsZeroSpace reports whether usecs matches the zero space
func (m *ProtocolModel) IsZeroSpace(usecs int) bool {
	return Match(usecs, m.ZeroSpace, m.Margin)
}

// IsGap reports whether usecs matches any gap candidate
func (m *ProtocolModel) IsGap(usecs int) bool {
	for _, g := range m.Gaps {
		if Match(usecs, g.Value, m.Margin) {
			return true
		}
	}
	return false
}

// isMarkPosition reports whether a 1-indexed position holds a mark
func isMarkPosition(position int) bool {
	return position%2 == 1
}
