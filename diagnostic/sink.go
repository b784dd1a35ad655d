// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package diagnostic records the warnings and errors a migration run
// emits, so callers and tests can inspect them after the fact instead
// of scraping log output. Events are mirrored to the supplied loggo
// logger as they are recorded.
package diagnostic

import (
	"fmt"

	"github.com/juju/loggo"
)

// Level classifies a recorded event.
type Level int8

const (
	Info Level = iota
	Warning
	Error
)

// String is part of the fmt.Stringer interface.
func (l Level) String() string {
	switch l {
	case Info:
		return "INFO"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Event is one recorded diagnostic.
type Event struct {
	Level   Level
	Message string
}

// Sink accumulates the diagnostics of a single run. It is not safe for
// concurrent use; runs are strictly sequential.
type Sink struct {
	logger loggo.Logger
	events []Event
}

// NewSink returns a sink mirroring events to the given logger.
func NewSink(logger loggo.Logger) *Sink {
	return &Sink{logger: logger}
}

// Infof records an informational event.
func (s *Sink) Infof(format string, args ...interface{}) {
	s.logger.Infof(format, args...)
	s.record(Info, format, args...)
}

// Warningf records a warning.
func (s *Sink) Warningf(format string, args ...interface{}) {
	s.logger.Warningf(format, args...)
	s.record(Warning, format, args...)
}

// Errorf records an error-level event.
func (s *Sink) Errorf(format string, args ...interface{}) {
	s.logger.Errorf(format, args...)
	s.record(Error, format, args...)
}

func (s *Sink) record(level Level, format string, args ...interface{}) {
	s.events = append(s.events, Event{
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	})
}

// Events returns every recorded event in order.
func (s *Sink) Events() []Event {
	return append([]Event(nil), s.events...)
}

// Warnings returns the messages of the recorded warnings, in order.
func (s *Sink) Warnings() []string {
	return s.messages(Warning)
}

// Errors returns the messages of the recorded errors, in order.
func (s *Sink) Errors() []string {
	return s.messages(Error)
}

func (s *Sink) messages(level Level) []string {
	var out []string
	for _, e := range s.events {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

// Failed reports whether any error-level event was recorded.
func (s *Sink) Failed() bool {
	for _, e := range s.events {
		if e.Level == Error {
			return true
		}
	}
	return false
}
