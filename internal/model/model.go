package model

import (
	"sort"
	"time"
)

// Field names as the language model is instructed to emit them. These are the
// keys of EventFields.
const (
	FieldTitle       = "Title"
	FieldDescription = "Description"
	FieldStartTime   = "Start Time"
	FieldDuration    = "Duration"
	FieldLocation    = "Location"
	FieldAllDay      = "All Day"
	FieldRecurrence  = "Recurrence"
)

// RequiredFields lists the fields every extracted event must carry, in the
// order they are reported when missing.
var RequiredFields = []string{FieldTitle, FieldDescription, FieldStartTime, FieldDuration}

// AllFields is the full schema in prompt order.
var AllFields = []string{
	FieldTitle,
	FieldDescription,
	FieldStartTime,
	FieldDuration,
	FieldLocation,
	FieldAllDay,
	FieldRecurrence,
}

// EventFields maps a field name to its raw string value. It is the only
// contract between the extractor and the calendar serializer.
type EventFields map[string]string

// Get returns the value for name and whether it was present.
func (f EventFields) Get(name string) (string, bool) {
	v, ok := f[name]
	return v, ok
}

// GetOr returns the value for name, or def if the field is absent.
func (f EventFields) GetOr(name, def string) string {
	if v, ok := f[name]; ok {
		return v
	}
	return def
}

// Missing returns the required fields absent from f, in RequiredFields order.
func (f EventFields) Missing() []string {
	var out []string
	for _, name := range RequiredFields {
		if _, ok := f[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}

// Names returns the field names present in f, sorted.
func (f EventFields) Names() []string {
	out := make([]string, 0, len(f))
	for k := range f {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// RecurrencePart is a single KEY=VALUE pair of a recurrence rule. Values holds
// one element for every key except BYDAY, which is split on commas.
type RecurrencePart struct {
	Key    string
	Values []string
}

// RecurrenceRule is an RRULE as an ordered list of parts.
type RecurrenceRule []RecurrencePart

// Get returns the values for key, or nil if the rule does not carry it.
func (r RecurrenceRule) Get(key string) []string {
	for _, p := range r {
		if p.Key == key {
			return p.Values
		}
	}
	return nil
}

// Event is a single calendar event ready to be encoded. It is built once per
// invocation and not mutated afterwards.
type Event struct {
	UID   string
	Stamp time.Time // DTSTAMP

	Summary     string
	Description string
	Location    string // empty means no LOCATION property

	AllDay bool

	// Start is timezone-aware. For all-day events only its calendar date is
	// meaningful.
	Start    time.Time
	Duration time.Duration

	Recurrence RecurrenceRule // nil means no RRULE
}
