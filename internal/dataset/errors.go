package dataset

import (
	"errors"
	"fmt"
)

// ErrEmptyDataset is returned by operations invoked on a zero-row table.
var ErrEmptyDataset = errors.New("dataset contains no rows")

// MalformedInputError reports a raw payload record that is missing a
// required field. It carries enough position information to locate the
// offending entry in the source payload.
type MalformedInputError struct {
	RecordIndex int    // index of the record in the raw payload
	CountIndex  int    // index of the count entry within the record, -1 for record-level problems
	Reason      string // which field is missing or invalid
}

func (e *MalformedInputError) Error() string {
	if e.CountIndex < 0 {
		return fmt.Sprintf("malformed input: record %d: %s", e.RecordIndex, e.Reason)
	}
	return fmt.Sprintf("malformed input: record %d, count %d: %s", e.RecordIndex, e.CountIndex, e.Reason)
}
