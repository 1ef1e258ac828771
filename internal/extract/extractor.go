package extract

import (
	"context"
	"time"

	"icsgen/internal/llm"
	appLog "icsgen/internal/log"
	"icsgen/internal/model"
)

// Extractor turns a free-text prompt into EventFields with one completion call.
type Extractor struct {
	completer llm.Completer
	location  *time.Location
	now       func() time.Time
}

// Option customises an Extractor.
type Option func(*Extractor)

// WithLocation sets the zone used for the default reference time.
func WithLocation(loc *time.Location) Option {
	return func(e *Extractor) {
		if loc != nil {
			e.location = loc
		}
	}
}

// WithClock replaces time.Now for computing the default reference time.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		if now != nil {
			e.now = now
		}
	}
}

// New creates an Extractor backed by c. The default location is
// America/New_York, or UTC if the zone database is unavailable.
func New(c llm.Completer, opts ...Option) *Extractor {
	e := &Extractor{
		completer: c,
		now:       time.Now,
	}
	if loc, err := time.LoadLocation("America/New_York"); err == nil {
		e.location = loc
	} else {
		e.location = time.UTC
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ReferenceTime returns "now" in the extractor's location.
func (e *Extractor) ReferenceTime() time.Time {
	return e.now().In(e.location)
}

// Extract asks the completer for event details and parses its reply. A zero
// ref means ReferenceTime(). Values are returned verbatim; only the presence
// of the required fields is checked.
func (e *Extractor) Extract(ctx context.Context, prompt string, ref time.Time) (model.EventFields, error) {
	if ref.IsZero() {
		ref = e.ReferenceTime()
	}

	system := BuildSystemPrompt(ref)
	appLog.Debug("requesting event details", "reference_time", ref.Format(ReferenceLayout), "zone", ref.Location().String())

	reply, err := e.completer.Complete(ctx, system, prompt)
	if err != nil {
		return nil, &ExtractionError{Err: err}
	}

	fields := ParseReply(reply)
	if missing := fields.Missing(); len(missing) > 0 {
		appLog.Debug("model reply missing fields", "missing", missing, "reply", reply)
		return nil, &ExtractionError{Missing: missing, Parsed: fields.Names()}
	}

	appLog.Debug("event details extracted", "fields", fields.Names())
	return fields, nil
}
