package model

import (
	"fmt"
	"time"
)

// Period is an inclusive date interval derived from period text. Start and
// End are truncated to midnight and Start never follows End.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Project is one validated input row. Allocated and Unallocated are only
// changed through Claim so that their sum always equals Requested.
type Project struct {
	ID          int         `json:"id"`
	Row         int         `json:"row"`
	PeriodText  string      `json:"period"`
	Period      Period      `json:"-"`
	Requested   int         `json:"requested"`
	Months      []YearMonth `json:"eligible_months"`
	Allocated   int         `json:"allocated"`
	Unallocated int         `json:"unallocated"`
	Slots       []YearMonth `json:"slots"`
	Reasons     Reasons     `json:"reasons"`
}

// NewProject returns a project with counters initialised to (0, requested).
func NewProject(id, row int, text string, p Period, requested int, months []YearMonth) *Project {
	return &Project{
		ID:          id,
		Row:         row,
		PeriodText:  text,
		Period:      p,
		Requested:   requested,
		Months:      months,
		Unallocated: requested,
	}
}

// Satisfied reports whether every requested unit has been placed.
func (p *Project) Satisfied() bool { return p.Allocated >= p.Requested }

// Claim records one unit placed in slot.
func (p *Project) Claim(slot YearMonth) error {
	if p.Satisfied() {
		return fmt.Errorf("project %d already fully allocated", p.ID)
	}
	p.Allocated++
	p.Unallocated--
	p.Slots = append(p.Slots, slot)
	return nil
}

// Block records why a unit could not be placed.
func (p *Project) Block(reason string) { p.Reasons.Add(reason) }

// Holds reports whether the project claimed slot.
func (p *Project) Holds(slot YearMonth) bool {
	for _, s := range p.Slots {
		if s == slot {
			return true
		}
	}
	return false
}
