package extract

import (
	"fmt"
	"strings"
)

// ExtractionError reports that no usable event could be recovered: either the
// completion call failed (Err is set) or required fields were missing from
// the reply.
type ExtractionError struct {
	Missing []string
	Parsed  []string
	Err     error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return "extract event details: " + e.Err.Error()
	}
	parsed := "none"
	if len(e.Parsed) > 0 {
		parsed = strings.Join(e.Parsed, ", ")
	}
	return fmt.Sprintf("extract event details: missing required fields: %s (parsed fields: %s)",
		strings.Join(e.Missing, ", "), parsed)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
