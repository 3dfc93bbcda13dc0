/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: errors.go
Description: Error kinds surfaced by protocol inference. All of them are terminal for
the current analysis; decode anomalies are not errors and live in the trace instead.
*/

package inference

import "errors"

var (
	// ErrInsufficientData is returned for fewer than 4 timing samples, or fewer
	// than 3 space buckets once space encoding has been detected
	ErrInsufficientData = errors.New("insufficient data")

	// ErrUnsupportedEncoding is returned for captures that look mark encoded
	ErrUnsupportedEncoding = errors.New("unsupported encoding: mark-encoded protocols are not modeled")

	// ErrMalformedInput is returned for sequences that are not clean lists of
	// non-negative durations
	ErrMalformedInput = errors.New("malformed input")

	// ErrInvalidMargin is returned for a negative matching margin
	ErrInvalidMargin = errors.New("invalid margin")
)
