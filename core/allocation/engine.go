// Package allocation places person-month units into (year, month) slots
// with a single greedy pass.
package allocation

import (
	"fmt"
	"sort"

	corelogger "github.com/kilianp07/manmonths/core/logger"
	"github.com/kilianp07/manmonths/core/model"
)

// Engine assigns units to slots. Each slot holds one project and each year
// accepts at most Config.MaxYearlyCapacity units. Claims are never undone,
// so the outcome depends on the order projects are given in.
type Engine struct {
	cfg Config
	log corelogger.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for per-project debug output.
func WithLogger(l corelogger.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New validates cfg and returns an Engine.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{cfg: cfg}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

// Capacity returns the configured yearly ceiling.
func (e *Engine) Capacity() int { return e.cfg.MaxYearlyCapacity }

// CapacityReason is recorded when a year has no capacity left.
func CapacityReason(year int) string {
	return fmt.Sprintf("Year %d capacity reached", year)
}

// OwnedReason is recorded when a slot already belongs to another project.
func OwnedReason(slot model.YearMonth, owner int) string {
	return fmt.Sprintf("Month %d/%d already allocated by Project %d", int(slot.Month), slot.Year, owner)
}

// Allocate runs the greedy pass over projects in the order given, mutating
// their counters and reasons. Ledgers are built fresh on every call.
func (e *Engine) Allocate(projects []*model.Project) *model.Result {
	res := &model.Result{
		Projects:   projects,
		Capacity:   e.cfg.MaxYearlyCapacity,
		YearTotals: make(map[int]int),
		Owners:     make(map[model.YearMonth]int),
	}
	touched := make(map[model.YearMonth]struct{})
	for _, p := range projects {
		for _, m := range p.Months {
			touched[m] = struct{}{}
			if _, ok := res.YearTotals[m.Year]; !ok {
				res.YearTotals[m.Year] = 0
			}
		}
	}
	for m := range touched {
		res.Months = append(res.Months, m)
	}
	model.SortYearMonths(res.Months)
	for y := range res.YearTotals {
		res.Years = append(res.Years, y)
	}
	sort.Ints(res.Years)

	for _, p := range projects {
		e.allocateProject(p, res)
	}
	return res
}

func (e *Engine) allocateProject(p *model.Project, res *model.Result) {
	for _, slot := range model.Chronological(p.Months) {
		if p.Satisfied() {
			break
		}
		if res.YearTotals[slot.Year] >= e.cfg.MaxYearlyCapacity {
			p.Block(CapacityReason(slot.Year))
			capacityBlocks.Inc()
			continue
		}
		if owner, taken := res.Owners[slot]; taken {
			p.Block(OwnedReason(slot, owner))
			slotConflicts.Inc()
			continue
		}
		if err := p.Claim(slot); err != nil {
			// Unreachable: Satisfied was checked above.
			break
		}
		res.Owners[slot] = p.ID
		res.YearTotals[slot.Year]++
		unitsClaimed.Inc()
	}
	if e.log != nil {
		e.log.Debugw("project allocated", map[string]any{
			"project":     p.ID,
			"period":      p.PeriodText,
			"requested":   p.Requested,
			"allocated":   p.Allocated,
			"unallocated": p.Unallocated,
		})
	}
}
