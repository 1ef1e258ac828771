package ics

import (
	"fmt"
	"io"
	"time"

	goical "github.com/emersion/go-ical"

	"icsgen/internal/model"
)

// Decode reads the first VEVENT of an iCalendar stream back into an Event.
// DATE values and floating times are interpreted in defaultLoc.
// The stream is parsed with emersion/go-ical, not the library that encodes it.
func Decode(r io.Reader, defaultLoc *time.Location) (*model.Event, error) {
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}

	cal, err := goical.NewDecoder(r).Decode()
	if err != nil {
		return nil, fmt.Errorf("decode calendar: %w", err)
	}

	events := cal.Events()
	if len(events) == 0 {
		return nil, ErrNoEvent
	}
	ve := events[0]

	var out model.Event

	if out.UID, err = ve.Props.Text(goical.PropUID); err != nil {
		return nil, fmt.Errorf("decode UID: %w", err)
	}
	if out.Summary, err = ve.Props.Text(goical.PropSummary); err != nil {
		return nil, fmt.Errorf("decode SUMMARY: %w", err)
	}
	if out.Description, err = ve.Props.Text(goical.PropDescription); err != nil {
		return nil, fmt.Errorf("decode DESCRIPTION: %w", err)
	}
	if out.Location, err = ve.Props.Text(goical.PropLocation); err != nil {
		return nil, fmt.Errorf("decode LOCATION: %w", err)
	}

	if stamp := ve.Props.Get(goical.PropDateTimeStamp); stamp != nil {
		if out.Stamp, err = stamp.DateTime(time.UTC); err != nil {
			return nil, fmt.Errorf("decode DTSTAMP: %w", err)
		}
	}

	dtStart := ve.Props.Get(goical.PropDateTimeStart)
	if dtStart == nil {
		return nil, fmt.Errorf("decode DTSTART: %w", errMissingProp)
	}
	out.AllDay = dtStart.ValueType() == goical.ValueDate
	if out.Start, err = dtStart.DateTime(defaultLoc); err != nil {
		return nil, fmt.Errorf("decode DTSTART: %w", err)
	}

	if dur := ve.Props.Get(goical.PropDuration); dur != nil {
		if out.Duration, err = dur.Duration(); err != nil {
			return nil, fmt.Errorf("decode DURATION: %w", err)
		}
	}

	if rr := ve.Props.Get(goical.PropRecurrenceRule); rr != nil {
		if out.Recurrence, err = ParseRecurrence(rr.Value); err != nil {
			return nil, fmt.Errorf("decode RRULE: %w", err)
		}
	}

	return &out, nil
}
