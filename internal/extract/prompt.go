package extract

import (
	"fmt"
	"time"
)

// ReferenceLayout is how the reference time is rendered in the instruction.
const ReferenceLayout = "2006-01-02 15:04"

const systemPromptTemplate = `You are an event planning assistant. The current time is %s (%s time).
Given a prompt, generate event details in the following format, one field per line,
each line exactly "FieldName: value" and nothing else:
Title: [Event Title]
Description: [Event Description]
Start Time: [YYYY-MM-DD HH:MM] (if a timezone is specified in the prompt, append its IANA name as a space-separated value, e.g. "2024-03-17 14:00 America/Los_Angeles")
Duration: [hours, as a number, e.g. 1 or 1.5]
Location: [Event Location, leave empty if none is mentioned]
All Day: [true/false] (true for all-day events, false for timed events)
Recurrence: [RRULE or empty] (only for repeating events, semicolon-separated KEY=VALUE pairs, e.g. "FREQ=WEEKLY;BYDAY=MO,TH;UNTIL=20240430" or "FREQ=DAILY;COUNT=5")

When generating times, use the current time as reference. For example:
- "tomorrow at 2 PM" should be the next day at 2 PM
- "next Monday at 10 AM" should be the next Monday at 10 AM
- "in 2 hours" should be current time + 2 hours
- "all day meeting tomorrow" should set All Day to true and Start Time to tomorrow's date at 00:00

Do not add any other text, headings or formatting.`

// BuildSystemPrompt renders the schema-constraining instruction anchored at ref.
func BuildSystemPrompt(ref time.Time) string {
	return fmt.Sprintf(systemPromptTemplate, ref.Format(ReferenceLayout), ref.Location().String())
}
