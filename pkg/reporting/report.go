/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: report.go
Description: Report model for one capture analysis. Flattens the inference result and
the optional code skeleton into a render-friendly structure shared by every output
format.
*/

package reporting

import (
	"time"

	"github.com/google/uuid"
	"github.com/kleascm/irprobe/pkg/codegen"
	"github.com/kleascm/irprobe/pkg/inference"
	"github.com/kleascm/irprobe/pkg/timing"
)

// Options controls report construction
type Options struct {
	Title   string // Defaults to "IR Capture Analysis"
	Source  string // Where the capture came from, e.g. a file name or "stdin"
	Version string
	Color   bool // Colour and syntax highlighting in text output
}

// Report is a complete, render-ready analysis report
type Report struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	Version     string    `json:"version,omitempty" yaml:"version,omitempty"`
	Source      string    `json:"source,omitempty" yaml:"source,omitempty"`
	Fingerprint string    `json:"fingerprint" yaml:"fingerprint"`

	Capture      CaptureStats         `json:"capture" yaml:"capture"`
	MarkBuckets  []BucketRow          `json:"mark_buckets" yaml:"mark_buckets"`
	SpaceBuckets []BucketRow          `json:"space_buckets" yaml:"space_buckets"`
	Constants    []inference.Constant `json:"constants" yaml:"constants"`
	Fragments    []FragmentRow        `json:"fragments" yaml:"fragments"`
	Anomalies    []AnomalyRow         `json:"anomalies" yaml:"anomalies"`
	TotalBits    int                  `json:"total_bits" yaml:"total_bits"`
	Bits         string               `json:"bits" yaml:"bits"`
	Layout       string               `json:"layout" yaml:"layout"`

	Code     []string          `json:"code,omitempty" yaml:"code,omitempty"`
	Skeleton *codegen.Skeleton `json:"-" yaml:"-"`

	color bool
}

// CaptureStats summarises the raw input
type CaptureStats struct {
	Samples  int    `json:"samples" yaml:"samples"`
	Marks    int    `json:"marks" yaml:"marks"`
	Spaces   int    `json:"spaces" yaml:"spaces"`
	Margin   int    `json:"margin" yaml:"margin"`
	Unknowns int    `json:"unknowns" yaml:"unknowns"`
	Duration string `json:"analysis_time" yaml:"analysis_time"`
}

// BucketRow is one timing candidate
type BucketRow struct {
	Representative int `json:"representative" yaml:"representative"`
	Count          int `json:"count" yaml:"count"`
	Min            int `json:"min" yaml:"min"`
	Average        int `json:"average" yaml:"average"`
}

// FragmentRow is one decoded fragment with every value view
type FragmentRow struct {
	Index    int    `json:"index" yaml:"index"`
	Bits     int    `json:"bits" yaml:"bits"`
	Binary    string `json:"binary" yaml:"binary"`
	BinaryLSB string `json:"binary_lsb" yaml:"binary_lsb"`
	Boundary  string `json:"boundary" yaml:"boundary"`
	Start     int    `json:"start" yaml:"start"`
	End       int    `json:"end" yaml:"end"`
	HexMSB    string `json:"hex_msb" yaml:"hex_msb"`
	HexLSB    string `json:"hex_lsb" yaml:"hex_lsb"`
	DecMSB    string `json:"dec_msb" yaml:"dec_msb"`
	DecLSB    string `json:"dec_lsb" yaml:"dec_lsb"`
}

// AnomalyRow is one flagged sample
type AnomalyRow struct {
	Position int    `json:"position" yaml:"position"`
	Value    int    `json:"value" yaml:"value"`
	State    string `json:"state" yaml:"state"`
	Kind     string `json:"kind" yaml:"kind"`
}

// New builds a report. skeleton may be nil when no code was generated.
func New(analysis *inference.Analysis, skeleton *codegen.Skeleton, opts Options) *Report {
	title := opts.Title
	if title == "" {
		title = "IR Capture Analysis"
	}
	model, trace := analysis.Model, analysis.Trace
	marks, spaces := inference.SplitTimings(analysis.Timings)

	r := &Report{
		ID:          uuid.New().String(),
		Title:       title,
		GeneratedAt: time.Now(),
		Version:     opts.Version,
		Source:      opts.Source,
		Fingerprint: analysis.Fingerprint.String(),
		Capture: CaptureStats{
			Samples:  len(analysis.Timings),
			Marks:    len(marks),
			Spaces:   len(spaces),
			Margin:   analysis.Margin,
			Unknowns: trace.Unknowns(),
			Duration: analysis.Duration.String(),
		},
		MarkBuckets:  bucketRows(model.MarkBuckets),
		SpaceBuckets: bucketRows(model.SpaceBuckets),
		Constants:    model.Constants(),
		Fragments:    make([]FragmentRow, 0, len(trace.Fragments)),
		Anomalies:    make([]AnomalyRow, 0),
		TotalBits:    trace.TotalBits(),
		Bits:         trace.Bits,
		Layout:       trace.Layout(),
		Skeleton:     skeleton,
		color:        opts.Color,
	}

	for i, f := range trace.Fragments {
		if f.Len() == 0 {
			continue
		}
		r.Fragments = append(r.Fragments, FragmentRow{
			Index:     i,
			Bits:      f.Len(),
			Binary:    f.Bits,
			BinaryLSB: f.Reversed(),
			Boundary:  string(f.Boundary),
			Start:     f.Start,
			End:       f.End,
			HexMSB:    f.HexMSB(),
			HexLSB:    f.HexLSB(),
			DecMSB:    f.DecMSB(),
			DecLSB:    f.DecLSB(),
		})
	}
	for _, s := range trace.Anomalies() {
		r.Anomalies = append(r.Anomalies, AnomalyRow{
			Position: s.Position,
			Value:    s.Value,
			State:    s.State.String(),
			Kind:     string(s.Anomaly),
		})
	}
	if skeleton != nil {
		r.Code = skeleton.Lines()
	}
	return r
}

func bucketRows(buckets []timing.Bucket) []BucketRow {
	rows := make([]BucketRow, len(buckets))
	for i, b := range buckets {
		rows[i] = BucketRow{
			Representative: b.Representative,
			Count:          b.Len(),
			Min:            b.Min(),
			Average:        b.Average(),
		}
	}
	return rows
}
