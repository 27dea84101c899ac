package model

import "sort"

// Result is the complete outcome of one allocation run. It is the only
// value handed to rendering sinks.
type Result struct {
	Projects   []*Project        `json:"projects"`
	Capacity   int               `json:"capacity"`
	YearTotals map[int]int       `json:"year_totals"`
	Owners     map[YearMonth]int `json:"-"`
	Years      []int             `json:"years"`
	Months     []YearMonth       `json:"months"`
	Source     *Table            `json:"-"`
	Warnings   []Warning         `json:"warnings,omitempty"`
}

// Owner returns the project owning slot, if any.
func (r *Result) Owner(slot YearMonth) (int, bool) {
	id, ok := r.Owners[slot]
	return id, ok
}

// Year returns the units allocated in year y.
func (r *Result) Year(y int) int { return r.YearTotals[y] }

// ProjectsByID returns the projects ordered by input order.
func (r *Result) ProjectsByID() []*Project {
	out := make([]*Project, len(r.Projects))
	copy(out, r.Projects)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
