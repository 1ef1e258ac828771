package ics

import (
	"errors"
	"fmt"
)

// ErrNoEvent is returned by Decode when the calendar holds no VEVENT.
var ErrNoEvent = errors.New("calendar contains no VEVENT")

var errMissingProp = errors.New("property is missing")

// SerializationError reports a problem that leaves no safe default: a
// missing structural field, an unparseable start time, or an encode/write
// failure.
type SerializationError struct {
	Field string // event field involved, empty for encode/write failures
	Err   error
}

func (e *SerializationError) Error() string {
	if e.Field == "" {
		return "serialize event: " + e.Err.Error()
	}
	return fmt.Sprintf("serialize event: %s: %v", e.Field, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// Warning is a non-fatal degradation: the event is still produced, but a
// value was replaced by a fallback or dropped.
type Warning struct {
	Field   string
	Message string
}

func (w Warning) String() string {
	return w.Field + ": " + w.Message
}
