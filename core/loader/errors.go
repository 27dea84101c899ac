package loader

import (
	"fmt"
	"strings"

	"github.com/kilianp07/manmonths/core/model"
)

// MissingColumnError is returned when the header lacks a required column.
type MissingColumnError struct {
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("input must contain the columns: %s", strings.Join(e.Columns, ", "))
}

// NoValidDataError is returned when every row was skipped.
type NoValidDataError struct {
	Rows     int
	Warnings []model.Warning
}

func (e *NoValidDataError) Error() string {
	return fmt.Sprintf("no valid project rows found (%d rows read, %d warnings)", e.Rows, len(e.Warnings))
}
