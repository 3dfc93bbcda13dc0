/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: sink.go
Description: Bridge from inference events to structured logrus entries.
*/

package logging

import (
	"github.com/kleascm/irprobe/pkg/inference"
	"github.com/sirupsen/logrus"
)

// EventSink writes inference events to a logrus logger.
// Per-sample classifications log at debug level, anomalies at warn, everything else at info.
type EventSink struct {
	logger *logrus.Logger
	fields logrus.Fields
}

// NewEventSink creates a sink; fields are attached to every entry
func NewEventSink(logger *logrus.Logger, fields logrus.Fields) *EventSink {
	return &EventSink{logger: logger, fields: fields}
}

// Emit implements inference.Sink
func (s *EventSink) Emit(event inference.Event) {
	entry := s.logger.WithFields(s.fields).WithField("event", string(event.Kind))
	if len(event.Fields) > 0 {
		entry = entry.WithFields(logrus.Fields(event.Fields))
	}

	switch event.Kind {
	case inference.EventClassification:
		entry.Debug(event.Message)
	case inference.EventAnomaly:
		entry.Warn(event.Message)
	default:
		entry.Info(event.Message)
	}
}
