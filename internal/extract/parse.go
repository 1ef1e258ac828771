package extract

import (
	"strings"

	"icsgen/internal/model"
)

// Line is one recognised "Name: value" line of a model reply.
type Line struct {
	Number int // 1-based line number within the reply
	Name   string
	Value  string
}

// Tokenize scans a reply and returns the lines that have the field shape.
//
// Rules, applied per line:
//   - blank lines are skipped;
//   - lines without a colon are skipped;
//   - the line is split on its first colon only, so values may contain colons;
//   - name and value are trimmed of surrounding whitespace;
//   - lines whose name or value is empty after trimming are skipped.
func Tokenize(reply string) []Line {
	var out []Line

	for i, raw := range strings.Split(reply, "\n") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		name, value, ok := strings.Cut(raw, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if name == "" || value == "" {
			continue
		}
		out = append(out, Line{Number: i + 1, Name: name, Value: value})
	}
	return out
}

// ParseReply folds the tokenized lines into EventFields. When a field name
// repeats, the later line wins.
func ParseReply(reply string) model.EventFields {
	fields := make(model.EventFields)
	for _, l := range Tokenize(reply) {
		fields[l.Name] = l.Value
	}
	return fields
}
