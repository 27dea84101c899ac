package period

import "fmt"

// DateFormatError reports date text matching none of the supported forms.
type DateFormatError struct {
	Text string
}

func (e *DateFormatError) Error() string {
	return fmt.Sprintf("unsupported date format: %q (expected YYYY, M/YYYY, D/M/YYYY or Σήμερα as end date)", e.Text)
}

// PeriodFormatError reports period text that cannot be turned into an
// inclusive date range. Err holds the underlying date error, if any.
type PeriodFormatError struct {
	Text string
	Err  error
}

func (e *PeriodFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid period %q: %v", e.Text, e.Err)
	}
	return fmt.Sprintf("invalid period %q: expected YYYY or START-END", e.Text)
}

func (e *PeriodFormatError) Unwrap() error { return e.Err }
