package ics

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	appLog "icsgen/internal/log"
	"icsgen/internal/model"
)

const icalLocalTimestamp = "20060102T150405"

// Serializer builds a single VEVENT from EventFields and writes it as an
// iCalendar file.
type Serializer struct {
	location  *time.Location
	prodID    string
	now       func() time.Time
	newUID    func() string
	onWarning func(Warning)
}

// Option customises a Serializer.
type Option func(*Serializer)

// WithDefaultLocation sets the zone for start times without one and for the
// unknown-zone fallback.
func WithDefaultLocation(loc *time.Location) Option {
	return func(s *Serializer) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithProdID sets the service name embedded in PRODID.
func WithProdID(service string) Option {
	return func(s *Serializer) {
		if service != "" {
			s.prodID = service
		}
	}
}

// WithClock replaces time.Now for DTSTAMP.
func WithClock(now func() time.Time) Option {
	return func(s *Serializer) {
		if now != nil {
			s.now = now
		}
	}
}

// WithUIDGenerator replaces the random UID source.
func WithUIDGenerator(gen func() string) Option {
	return func(s *Serializer) {
		if gen != nil {
			s.newUID = gen
		}
	}
}

// WithWarningHandler receives every non-fatal warning produced by Serialize.
// The default handler logs at WARN level.
func WithWarningHandler(fn func(Warning)) Option {
	return func(s *Serializer) {
		if fn != nil {
			s.onWarning = fn
		}
	}
}

// NewSerializer returns a Serializer defaulting to America/New_York.
func NewSerializer(opts ...Option) *Serializer {
	s := &Serializer{
		prodID: "icsgen",
		now:    time.Now,
		newUID: uuid.NewString,
		onWarning: func(w Warning) {
			appLog.Warn("event degraded", "field", w.Field, "detail", w.Message)
		},
	}
	if loc, err := time.LoadLocation("America/New_York"); err == nil {
		s.location = loc
	} else {
		s.location = time.UTC
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Build resolves fields into an Event. Warnings describe fallbacks that were
// applied; an error means no event can be produced.
func (s *Serializer) Build(fields model.EventFields) (*model.Event, []Warning, error) {
	title, ok := fields.Get(model.FieldTitle)
	if !ok {
		return nil, nil, &SerializationError{Field: model.FieldTitle, Err: errors.New("field is missing")}
	}
	description, ok := fields.Get(model.FieldDescription)
	if !ok {
		return nil, nil, &SerializationError{Field: model.FieldDescription, Err: errors.New("field is missing")}
	}
	rawStart, ok := fields.Get(model.FieldStartTime)
	if !ok {
		return nil, nil, &SerializationError{Field: model.FieldStartTime, Err: errors.New("field is missing")}
	}

	allDay := strings.EqualFold(strings.TrimSpace(fields.GetOr(model.FieldAllDay, "false")), "true")

	var warnings []Warning

	start, ws, err := ResolveStart(rawStart, allDay, s.location)
	warnings = append(warnings, ws...)
	if err != nil {
		return nil, warnings, &SerializationError{Field: model.FieldStartTime, Err: err}
	}

	rawDuration, present := fields.Get(model.FieldDuration)
	duration, ws := ResolveDuration(rawDuration, present, allDay)
	warnings = append(warnings, ws...)
	if allDay {
		if days := RoundToDays(duration); days != duration {
			warnings = append(warnings, Warning{
				Field:   model.FieldDuration,
				Message: fmt.Sprintf("all-day event: rounding %s to %s", FormatDuration(duration), FormatDayDuration(days)),
			})
			duration = days
		}
	}

	ev := &model.Event{
		UID:         s.newUID(),
		Stamp:       s.now().UTC(),
		Summary:     stripCR(title),
		Description: stripCR(description),
		Location:    stripCR(strings.TrimSpace(fields[model.FieldLocation])),
		AllDay:      allDay,
		Start:       start,
		Duration:    duration,
	}

	if raw := strings.TrimSpace(fields[model.FieldRecurrence]); raw != "" {
		rule, err := ParseRecurrence(raw)
		if err != nil {
			warnings = append(warnings, Warning{
				Field:   model.FieldRecurrence,
				Message: fmt.Sprintf("ignoring recurrence %q: %v", raw, err),
			})
		} else {
			ev.Recurrence = rule
		}
	}

	return ev, warnings, nil
}

// Calendar wraps ev into a VCALENDAR holding exactly one VEVENT.
func (s *Serializer) Calendar(ev *model.Event) *ical.Calendar {
	cal := ical.NewCalendarFor(s.prodID)

	ve := cal.AddEvent(ev.UID)
	ve.SetDtStampTime(ev.Stamp)
	ve.SetSummary(stripCR(ev.Summary))
	ve.SetDescription(stripCR(ev.Description))

	switch {
	case ev.AllDay:
		ve.SetAllDayStartAt(ev.Start)
	case ev.Start.Location() == time.UTC:
		ve.SetStartAt(ev.Start)
	default:
		ve.SetProperty(ical.ComponentPropertyDtStart, ev.Start.Format(icalLocalTimestamp),
			&ical.KeyValues{Key: string(ical.ParameterTzid), Value: []string{ev.Start.Location().String()}})
	}

	if ev.AllDay {
		ve.SetProperty(ical.ComponentProperty(ical.PropertyDuration), FormatDayDuration(RoundToDays(ev.Duration)))
	} else {
		ve.SetProperty(ical.ComponentProperty(ical.PropertyDuration), FormatDuration(ev.Duration))
	}

	if ev.Location != "" {
		ve.SetLocation(stripCR(ev.Location))
	}
	if len(ev.Recurrence) > 0 {
		ve.AddRrule(FormatRecurrence(ev.Recurrence))
	}
	return cal
}

// Encode writes ev as an iCalendar object to w.
func (s *Serializer) Encode(ev *model.Event, w io.Writer) error {
	if err := s.Calendar(ev).SerializeTo(w, ical.WithNewLineWindows); err != nil {
		return &SerializationError{Err: fmt.Errorf("encode calendar: %w", err)}
	}
	return nil
}

// Marshal returns the encoded calendar for ev.
func (s *Serializer) Marshal(ev *model.Event) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.Encode(ev, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Serialize builds the event, reports warnings, and writes the encoded
// calendar to path in a single write. It returns path.
func (s *Serializer) Serialize(fields model.EventFields, path string) (string, error) {
	ev, warnings, err := s.Build(fields)
	for _, w := range warnings {
		s.onWarning(w)
	}
	if err != nil {
		return "", err
	}

	data, err := s.Marshal(ev)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &SerializationError{Err: fmt.Errorf("write %s: %w", path, err)}
	}

	appLog.Debug("calendar written", "path", path, "uid", ev.UID, "all_day", ev.AllDay, "bytes", len(data))
	return path, nil
}

// stripCR drops carriage returns so CRLF input becomes a single escaped
// newline. TEXT escaping itself happens when the property is serialized.
func stripCR(s string) string {
	return strings.ReplaceAll(s, "\r", "")
}
