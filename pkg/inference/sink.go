/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: sink.go
Description: Reporting sink contract for the inference pipeline. Components emit
structured, sequential events to a caller-owned sink; the caller decides whether they
are printed, logged or discarded.
*/

package inference

// EventKind identifies what an emitted event describes
type EventKind string

const (
	EventBuckets        EventKind = "buckets"
	EventEncoding       EventKind = "encoding"
	EventConstant       EventKind = "constant"
	EventClassification EventKind = "classification"
	EventAnomaly        EventKind = "anomaly"
	EventFragment       EventKind = "fragment"
	EventSummary        EventKind = "summary"
)

// Event is a single structured report emitted during analysis
type Event struct {
	Kind    EventKind              `json:"kind"`
	Message string                 `json:"message"`
	Fields  map[string]interface{} `json:"fields,omitempty"`
}

// Sink receives analysis events in the order they happen
type Sink interface {
	Emit(event Event)
}

// SinkFunc adapts a plain function to the Sink interface
type SinkFunc func(event Event)

// Emit calls f(event)
func (f SinkFunc) Emit(event Event) {
	f(event)
}

type discardSink struct{}

func (discardSink) Emit(Event) {}

// DiscardSink drops every event
var DiscardSink Sink = discardSink{}

// Recorder is an in-memory sink that keeps every event it receives.
// A Recorder belongs to one analysis and is not safe for concurrent use.
type Recorder struct {
	Events []Event
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{Events: make([]Event, 0, 64)}
}

// Emit appends the event
func (r *Recorder) Emit(event Event) {
	r.Events = append(r.Events, event)
}

// OfKind returns the recorded events of one kind, in emission order
func (r *Recorder) OfKind(kind EventKind) []Event {
	out := make([]Event, 0)
	for _, e := range r.Events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// orDiscard lets every component accept a nil sink
func orDiscard(sink Sink) Sink {
	if sink == nil {
		return DiscardSink
	}
	return sink
}
