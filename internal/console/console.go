// Package console carries the diagnostic event stream emitted by the WLD
// decoder. The decoder writes through an injected Sink and never reads it
// back; consumers (CLI, server, tests) decide what to do with the events.
package console

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// Level classifies a console event.
type Level int

const (
	Info Level = iota
	Warn
	Error
	Success
)

func (l Level) String() string {
	switch l {
	case Info:
		return "info"
	case Warn:
		return "warn"
	case Error:
		return "error"
	case Success:
		return "success"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Sink receives one pre-formatted event. Implementations must not block on
// the decoder's account and must not panic.
type Sink func(level Level, msg string)

// Discard drops every event. Used when the caller passes a nil sink.
func Discard(Level, string) {}

// Tee fans one event out to every given sink, in order.
func Tee(sinks ...Sink) Sink {
	return func(level Level, msg string) {
		for _, s := range sinks {
			if s != nil {
				s(level, msg)
			}
		}
	}
}

// MarshalJSON renders the level as its lowercase name.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// Event is one recorded console entry.
type Event struct {
	Level   Level  `json:"level"`
	Message string `json:"msg"`
}

// Recorder accumulates events in memory. Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Sink returns the recording sink bound to r.
func (r *Recorder) Sink() Sink {
	return func(level Level, msg string) {
		r.mu.Lock()
		r.events = append(r.events, Event{Level: level, Message: msg})
		r.mu.Unlock()
	}
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// NewWriterSink returns a sink that prints "[LEVEL] message" lines.
// Write errors are ignored; the sink is fire-and-forget by contract.
func NewWriterSink(w io.Writer) Sink {
	var mu sync.Mutex
	return func(level Level, msg string) {
		mu.Lock()
		fmt.Fprintf(w, "[%s] %s\n", level, msg)
		mu.Unlock()
	}
}
