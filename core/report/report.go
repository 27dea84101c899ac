// Package report derives read-only summaries from an allocation result.
package report

import (
	"github.com/kilianp07/manmonths/core/model"
)

// YearSummary is the allocation state of one year.
type YearSummary struct {
	Year       int  `json:"year"`
	Total      int  `json:"total"`
	Capacity   int  `json:"capacity"`
	AtCapacity bool `json:"at_capacity"`
	// Overage is Total-Capacity when Total exceeds Capacity, else 0.
	Overage int `json:"overage,omitempty"`
}

// Shortfall describes a project that did not receive every unit.
type Shortfall struct {
	ProjectID   int      `json:"project_id"`
	Row         int      `json:"row"`
	Period      string   `json:"period"`
	Requested   int      `json:"requested"`
	Allocated   int      `json:"allocated"`
	Unallocated int      `json:"unallocated"`
	Reasons     []string `json:"reasons"`
	ReasonText  string   `json:"reason_text"`
}

// Report aggregates an allocation result for display.
type Report struct {
	Capacity       int           `json:"capacity"`
	Projects       int           `json:"projects"`
	Requested      int           `json:"requested"`
	Allocated      int           `json:"allocated"`
	Unallocated    int           `json:"unallocated"`
	Years          []YearSummary `json:"years"`
	Shortfalls     []Shortfall   `json:"shortfalls"`
	FullyAllocated bool          `json:"fully_allocated"`
}

// ReasonSeparator joins shortfall reasons for display.
const ReasonSeparator = "; "

// Build summarises res without modifying it.
func Build(res *model.Result) Report {
	rep := Report{
		Capacity:   res.Capacity,
		Projects:   len(res.Projects),
		Years:      make([]YearSummary, 0, len(res.Years)),
		Shortfalls: []Shortfall{},
	}
	for _, y := range res.Years {
		total := res.YearTotals[y]
		ys := YearSummary{Year: y, Total: total, Capacity: res.Capacity, AtCapacity: total >= res.Capacity}
		if total > res.Capacity {
			ys.Overage = total - res.Capacity
		}
		rep.Years = append(rep.Years, ys)
	}
	for _, p := range res.Projects {
		rep.Requested += p.Requested
		rep.Allocated += p.Allocated
		rep.Unallocated += p.Unallocated
		if p.Unallocated <= 0 {
			continue
		}
		rep.Shortfalls = append(rep.Shortfalls, Shortfall{
			ProjectID:   p.ID,
			Row:         p.Row,
			Period:      p.PeriodText,
			Requested:   p.Requested,
			Allocated:   p.Allocated,
			Unallocated: p.Unallocated,
			Reasons:     p.Reasons.List(),
			ReasonText:  p.Reasons.Join(ReasonSeparator),
		})
	}
	rep.FullyAllocated = len(rep.Shortfalls) == 0
	return rep
}

// Overages returns the years allocated beyond capacity.
func (r Report) Overages() map[int]int {
	out := make(map[int]int)
	for _, y := range r.Years {
		if y.Overage > 0 {
			out[y.Year] = y.Overage
		}
	}
	return out
}

// AtCapacity lists the years that reached capacity.
func (r Report) AtCapacity() []int {
	var out []int
	for _, y := range r.Years {
		if y.AtCapacity {
			out = append(out, y.Year)
		}
	}
	return out
}
