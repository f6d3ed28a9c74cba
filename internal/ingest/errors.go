package ingest

import (
	"fmt"
	"strings"
)

// SchemaError reports required input columns that could not be mapped from
// the header row, or an input unreadable at the structural level. It is
// fatal: the run aborts before any row is processed.
type SchemaError struct {
	Missing []string
	Cause   error
}

func (e *SchemaError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("input schema: missing required column(s): %s", strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("input schema: %v", e.Cause)
}

func (e *SchemaError) Unwrap() error { return e.Cause }
