package ics

import (
	"errors"
	"fmt"
	"strings"

	"icsgen/internal/model"
)

// Values a model writes when an event does not repeat.
var noRecurrence = map[string]bool{
	"none": true,
	"n/a":  true,
	"no":   true,
	"-":    true,
}

// ParseRecurrence parses a semicolon-separated KEY=VALUE rule. BYDAY is split
// on commas; every other value is kept literally. An optional "RRULE:" prefix
// is stripped. A nil rule with a nil error means "does not repeat".
//
// A rule fails to parse when a part lacks '=' or a key or value is empty or
// not a valid token. Keys are not checked against each other.
func ParseRecurrence(raw string) (model.RecurrenceRule, error) {
	s := strings.TrimSpace(raw)
	if len(s) >= 6 && strings.EqualFold(s[:6], "RRULE:") {
		s = strings.TrimSpace(s[6:])
	}
	if s == "" || noRecurrence[strings.ToLower(s)] {
		return nil, nil
	}

	var rule model.RecurrenceRule

	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("recurrence part %q is not KEY=VALUE", part)
		}
		key = strings.ToUpper(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if !isToken(key) {
			return nil, fmt.Errorf("recurrence part %q has an invalid key", part)
		}
		if value == "" {
			return nil, fmt.Errorf("recurrence key %s has no value", key)
		}
		values := []string{value}
		if key == "BYDAY" {
			values = splitList(value)
			if len(values) == 0 {
				return nil, fmt.Errorf("recurrence key BYDAY has no days")
			}
		}
		rule = append(rule, model.RecurrencePart{Key: key, Values: values})
	}

	if len(rule) == 0 {
		return nil, errors.New("empty recurrence rule")
	}
	return rule, nil
}

// FormatRecurrence renders rule back into RRULE value syntax, preserving part
// order.
func FormatRecurrence(rule model.RecurrenceRule) string {
	parts := make([]string, 0, len(rule))
	for _, p := range rule {
		parts = append(parts, p.Key+"="+strings.Join(p.Values, ","))
	}
	return strings.Join(parts, ";")
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func isToken(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
		default:
			return false
		}
	}
	return true
}
