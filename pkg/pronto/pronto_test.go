/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: pronto_test.go
Description: Tests for Pronto code conversion.
*/

package pronto_test

import (
	"testing"

	"github.com/kleascm/irprobe/pkg/inference"
	"github.com/kleascm/irprobe/pkg/pronto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sequence = []int{20100, 20472, 15092, 30704, 20102, 20472, 15086}

// TestConvertVectors tests known good codes
func TestConvertVectors(t *testing.T) {
	tests := []struct {
		name string
		opts pronto.Options
		want string
	}{
		{"38kHz", pronto.Options{Hertz: 38000},
			"0000 006D 0004 0000 02FB 0309 023D 048E 02FB 0309 023D 0ED8"},
		{"36kHz", pronto.Options{Hertz: 36000},
			"0000 0073 0004 0000 02D3 02E0 021F 0451 02D3 02E0 021F 0E10"},
		{"57.6kHz", pronto.Options{Hertz: 57600},
			"0000 0047 0004 0000 0485 049B 0365 06E8 0485 049B 0364 1680"},
		{"repeat", pronto.Options{Hertz: 38000, Repeat: true, EndSpace: 30000},
			"0000 006D 0000 0004 02FB 0309 023D 048E 02FB 0309 023D 0474"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := pronto.Convert(sequence, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, code.String())
			assert.True(t, code.Padded)
		})
	}
}

// TestConvertEvenLength tests that an even sequence is not padded
func TestConvertEvenLength(t *testing.T) {
	code, err := pronto.Convert([]int{9000, 4500}, pronto.Options{Hertz: 38000})
	require.NoError(t, err)
	assert.False(t, code.Padded)
	assert.Equal(t, uint16(1), code.BurstPairs)
	assert.Equal(t, "0000 006D 0001 0000 0156 00AB", code.String())
}

// TestConvertUnmodulated tests the unmodulated preamble
func TestConvertUnmodulated(t *testing.T) {
	code, err := pronto.Convert([]int{9000, 4500}, pronto.Options{Hertz: 38000, Unmodulated: true})
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0100), code.Fields()[0])
}

// TestConvertDoesNotMutateInput tests that padding works on a copy
func TestConvertDoesNotMutateInput(t *testing.T) {
	in := append([]int(nil), sequence...)
	_, err := pronto.Convert(in, pronto.Options{Hertz: 38000})
	require.NoError(t, err)
	assert.Equal(t, sequence, in)
}

// TestConvertErrors tests rejected input
func TestConvertErrors(t *testing.T) {
	_, err := pronto.Convert(sequence, pronto.Options{Hertz: 0})
	assert.ErrorIs(t, err, pronto.ErrInvalidFrequency)

	_, err = pronto.Convert(sequence, pronto.Options{Hertz: -38000})
	assert.ErrorIs(t, err, pronto.ErrInvalidFrequency)

	_, err = pronto.Convert(nil, pronto.Options{Hertz: 38000})
	assert.ErrorIs(t, err, pronto.ErrEmptySequence)

	_, err = pronto.Convert([]int{2000000, 10}, pronto.Options{Hertz: 38000})
	assert.ErrorIs(t, err, pronto.ErrFieldOverflow)

	_, err = pronto.Convert([]int{10, 10}, pronto.Options{Hertz: 1})
	assert.ErrorIs(t, err, pronto.ErrFieldOverflow, "carrier code overflows at 1 Hz")

	_, err = pronto.Convert([]int{10, -10}, pronto.Options{Hertz: 38000})
	assert.ErrorIs(t, err, pronto.ErrNegativeDuration)
	assert.ErrorIs(t, err, inference.ErrMalformedInput)
	assert.Contains(t, err.Error(), "position 2")
}

// TestCarrierCode tests the frequency code
func TestCarrierCode(t *testing.T) {
	assert.Equal(t, 0x6D, pronto.CarrierCode(38000))
	assert.Equal(t, 0x73, pronto.CarrierCode(36000))
	assert.Equal(t, 0x47, pronto.CarrierCode(57600))
}
