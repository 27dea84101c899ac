package model

// Table is a raw row-oriented input grid: a header row followed by data
// rows, all as display strings.
type Table struct {
	Name   string     `json:"name"`
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Cell returns the value at data row i, column j, or "" when the row is
// shorter than j.
func (t *Table) Cell(i, j int) string {
	if i < 0 || i >= len(t.Rows) || j < 0 || j >= len(t.Rows[i]) {
		return ""
	}
	return t.Rows[i][j]
}

// Width returns the widest row length including the header.
func (t *Table) Width() int {
	w := len(t.Header)
	for _, r := range t.Rows {
		if len(r) > w {
			w = len(r)
		}
	}
	return w
}

// Warning describes an input row that was skipped without aborting the run.
type Warning struct {
	Row  int    `json:"row"`
	Text string `json:"text"`
	Err  error  `json:"-"`
}

func (w Warning) String() string {
	if w.Err != nil {
		return w.Err.Error()
	}
	return w.Text
}
