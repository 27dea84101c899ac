package loader

import (
	"strings"

	"github.com/kilianp07/manmonths/core/model"
)

const (
	// PeriodColumn is the default header of the period text column.
	PeriodColumn = "ΧΡΟΝΙΚΟ ΔΙΑΣΤΗΜΑ"
	// UnitsColumn is the default header of the person-month column.
	UnitsColumn = "ΑΝΘΡΩΠΟΜΗΝΕΣ"
)

// Columns names the two required header labels. Labels match exactly after
// trimming surrounding space.
type Columns struct {
	Period string `json:"period_column"`
	Units  string `json:"units_column"`
}

// DefaultColumns returns the stock header labels.
func DefaultColumns() Columns {
	return Columns{Period: PeriodColumn, Units: UnitsColumn}
}

// Row is one raw data row. Number is the 1-based sheet row, the header
// being row 1.
type Row struct {
	Number int
	Period string
	Units  string
}

// Index resolves the column positions of cols in header.
func Index(header []string, cols Columns) (period, units int, err error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.TrimSpace(h)
		if _, ok := pos[key]; !ok {
			pos[key] = i
		}
	}
	var missing []string
	period, okP := pos[cols.Period]
	if !okP {
		missing = append(missing, cols.Period)
	}
	units, okU := pos[cols.Units]
	if !okU {
		missing = append(missing, cols.Units)
	}
	if len(missing) > 0 {
		return 0, 0, &MissingColumnError{Columns: missing}
	}
	return period, units, nil
}

// RowsFromTable extracts the period and units cells of every data row.
func RowsFromTable(t *model.Table, cols Columns) ([]Row, error) {
	pi, ui, err := Index(t.Header, cols)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(t.Rows))
	for i := range t.Rows {
		rows = append(rows, Row{
			Number: i + 2,
			Period: t.Cell(i, pi),
			Units:  t.Cell(i, ui),
		})
	}
	return rows, nil
}
