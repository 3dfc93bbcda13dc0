/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: inference.go
Description: Main entry point for IR protocol inference. Runs the full pipeline over one
capture: bucketize marks and spaces, derive the protocol model, decode the sequence and
fingerprint the result. Every call is independent; nothing is shared between analyses.
*/

package inference

import (
	"fmt"
	"time"
)

// DefaultMargin is the default matching margin in microseconds
const DefaultMargin = 200

// Analysis is the complete result of inferring one capture
type Analysis struct {
	Timings     []int          `json:"timings" yaml:"timings"`
	Margin      int            `json:"margin" yaml:"margin"`
	Model       *ProtocolModel `json:"model" yaml:"model"`
	Trace       *DecodeTrace   `json:"trace" yaml:"trace"`
	Fingerprint Fingerprint    `json:"fingerprint" yaml:"fingerprint"`
	Duration    time.Duration  `json:"duration" yaml:"duration"`
}

// Analyze runs the inference pipeline over timings with the given margin.
// Model errors (ErrInsufficientData, ErrUnsupportedEncoding, ErrMalformedInput,
// ErrInvalidMargin) are returned as-is and no decoding is attempted.
func Analyze(timings []int, margin int, sink Sink) (*Analysis, error) {
	start := time.Now()
	sink = orDiscard(sink)

	if len(timings) == 0 {
		return nil, fmt.Errorf("%w: empty timing sequence", ErrMalformedInput)
	}

	model, err := Build(timings, margin, sink)
	if err != nil {
		return nil, err
	}

	trace := Decode(timings, model, sink)

	return &Analysis{
		Timings:     append([]int(nil), timings...),
		Margin:      margin,
		Model:       model,
		Trace:       trace,
		Fingerprint: FingerprintCapture(timings, model),
		Duration:    time.Since(start),
	}, nil
}
