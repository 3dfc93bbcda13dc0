/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: pronto.go
Description: Pronto hex code conversion. Encodes a raw mark/space timing sequence as a
learned Pronto code for a given carrier frequency. Independent of the inference core;
it only shares the raw timing input.
*/

package pronto

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kleascm/irprobe/pkg/inference"
)

const (
	// DefaultEndSpace completes a sequence that ends on a mark, in microseconds
	DefaultEndSpace = 100000

	// DefaultHertz is the most common consumer IR carrier
	DefaultHertz = 38000

	// carrierFactor converts a frequency to a Pronto carrier code
	carrierFactor = 0.241246

	preambleModulated   = 0x0000
	preambleUnmodulated = 0x0100
	maxField            = 0xFFFF
)

var (
	// ErrInvalidFrequency is returned for a carrier frequency that is not positive
	ErrInvalidFrequency = errors.New("pronto: carrier frequency must be positive")

	// ErrEmptySequence is returned when there is nothing to encode
	ErrEmptySequence = errors.New("pronto: empty timing sequence")

	// ErrFieldOverflow is returned when a value does not fit a 16 bit field
	ErrFieldOverflow = errors.New("pronto: value does not fit a 16 bit field")

	// ErrNegativeDuration is returned for a negative timing; it is also malformed input
	ErrNegativeDuration = fmt.Errorf("pronto: negative duration: %w", inference.ErrMalformedInput)
)

// Options controls the conversion
type Options struct {
	Hertz       int  `json:"hertz" yaml:"hertz" mapstructure:"hertz"`
	EndSpace    int  `json:"end_space" yaml:"end_space" mapstructure:"end_space"` // 0 selects DefaultEndSpace
	Repeat      bool `json:"repeat" yaml:"repeat" mapstructure:"repeat"`          // Place pairs in the repeat section
	Unmodulated bool `json:"unmodulated" yaml:"unmodulated" mapstructure:"unmodulated"`
}

// Code is a converted Pronto code
type Code struct {
	Preamble    uint16   `json:"preamble" yaml:"preamble"`
	Carrier     uint16   `json:"carrier" yaml:"carrier"`
	BurstPairs  uint16   `json:"burst_pairs" yaml:"burst_pairs"`
	RepeatPairs uint16   `json:"repeat_pairs" yaml:"repeat_pairs"`
	Durations   []uint16 `json:"durations" yaml:"durations"` // In carrier periods
	Padded      bool     `json:"padded" yaml:"padded"`       // EndSpace was appended
	Period      float64  `json:"period_usecs" yaml:"period_usecs"`
}

// Fields returns every 16 bit field in order
func (c *Code) Fields() []uint16 {
	out := make([]uint16, 0, 4+len(c.Durations))
	out = append(out, c.Preamble, c.Carrier, c.BurstPairs, c.RepeatPairs)
	return append(out, c.Durations...)
}

// String renders the code as upper-case hex fields separated by single spaces
func (c *Code) String() string {
	fields := c.Fields()
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%04X", f)
	}
	return strings.Join(parts, " ")
}

// CarrierCode returns the Pronto frequency code for hertz
func CarrierCode(hertz int) int {
	return int(1000000.0 / (float64(hertz) * carrierFactor))
}

// Convert encodes timings as a Pronto code
func Convert(timings []int, opts Options) (*Code, error) {
	if opts.Hertz <= 0 {
		return nil, fmt.Errorf("%w: %d Hz", ErrInvalidFrequency, opts.Hertz)
	}
	if len(timings) == 0 {
		return nil, ErrEmptySequence
	}
	endSpace := opts.EndSpace
	if endSpace <= 0 {
		endSpace = DefaultEndSpace
	}

	seq := append([]int(nil), timings...)
	padded := false
	if len(seq)%2 == 1 {
		seq = append(seq, endSpace)
		padded = true
	}

	carrier := CarrierCode(opts.Hertz)
	if carrier > maxField {
		return nil, fmt.Errorf("%w: carrier code %d for %d Hz", ErrFieldOverflow, carrier, opts.Hertz)
	}
	pairs := len(seq) / 2
	if pairs > maxField {
		return nil, fmt.Errorf("%w: %d pairs", ErrFieldOverflow, pairs)
	}

	code := &Code{
		Preamble:  preambleModulated,
		Carrier:   uint16(carrier),
		Durations: make([]uint16, len(seq)),
		Padded:    padded,
		Period:    1000000.0 / float64(opts.Hertz),
	}
	if opts.Unmodulated {
		code.Preamble = preambleUnmodulated
	}
	if opts.Repeat {
		code.RepeatPairs = uint16(pairs)
	} else {
		code.BurstPairs = uint16(pairs)
	}

	for i, usecs := range seq {
		if usecs < 0 {
			return nil, fmt.Errorf("%w: %d at position %d", ErrNegativeDuration, usecs, i+1)
		}
		periods := int64(usecs) * int64(opts.Hertz) / 1000000
		if periods > maxField {
			return nil, fmt.Errorf("%w: %d usecs at position %d", ErrFieldOverflow, usecs, i+1)
		}
		code.Durations[i] = uint16(periods)
	}
	return code, nil
}
