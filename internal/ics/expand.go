package ics

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"icsgen/internal/model"
)

// maxPreviewOccurrences caps Occurrences regardless of the requested count.
const maxPreviewOccurrences = 500

// Occurrences returns up to n start times of ev, beginning at DTSTART. A
// non-recurring event yields just its start. All-day occurrences are
// normalized to midnight in the start's zone.
func Occurrences(ev *model.Event, n int) ([]time.Time, error) {
	if n <= 0 {
		return nil, nil
	}
	if n > maxPreviewOccurrences {
		n = maxPreviewOccurrences
	}

	start := ev.Start
	if ev.AllDay {
		start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	}
	if len(ev.Recurrence) == 0 {
		return []time.Time{start}, nil
	}

	raw := FormatRecurrence(ev.Recurrence)
	opt, err := rrule.StrToROptionInLocation(raw, start.Location())
	if err != nil {
		return nil, fmt.Errorf("expand RRULE %q: %w", raw, err)
	}
	opt.Dtstart = start

	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("expand RRULE %q: %w", raw, err)
	}

	out := make([]time.Time, 0, n)
	next := r.Iterator()
	for len(out) < n {
		t, ok := next()
		if !ok {
			break
		}
		out = append(out, t)
	}
	return out, nil
}
