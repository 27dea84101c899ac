// Package history keeps an audit log of allocation runs. Records are
// written after each run and served back by the runs API; the engine never
// reads them.
package history

import (
	"context"
	"time"

	"github.com/kilianp07/manmonths/core/model"
	"github.com/kilianp07/manmonths/core/report"
)

// ProjectAllocation is the persisted outcome of one project.
type ProjectAllocation struct {
	ProjectID   int      `json:"project_id"`
	Row         int      `json:"row"`
	Period      string   `json:"period"`
	Requested   int      `json:"requested"`
	Allocated   int      `json:"allocated"`
	Unallocated int      `json:"unallocated"`
	Slots       []string `json:"slots"`
	Reasons     []string `json:"reasons,omitempty"`
}

// RunRecord captures one allocation run.
type RunRecord struct {
	ID          string              `json:"id"`
	Timestamp   time.Time           `json:"timestamp"`
	Source      string              `json:"source"`
	Capacity    int                 `json:"capacity"`
	Summary     report.Report       `json:"summary"`
	Allocations []ProjectAllocation `json:"allocations"`
}

// HasShortfall reports whether any project was left with unallocated units.
func (r RunRecord) HasShortfall() bool {
	return r.Summary.Unallocated > 0
}

// NewRecord builds a record from a finished run. Allocations follow input
// order.
func NewRecord(id, source string, ts time.Time, res *model.Result, rep report.Report) RunRecord {
	rec := RunRecord{
		ID:        id,
		Timestamp: ts,
		Source:    source,
		Capacity:  res.Capacity,
		Summary:   rep,
	}
	for _, p := range res.ProjectsByID() {
		slots := make([]string, len(p.Slots))
		for i, s := range p.Slots {
			slots[i] = s.String()
		}
		rec.Allocations = append(rec.Allocations, ProjectAllocation{
			ProjectID:   p.ID,
			Row:         p.Row,
			Period:      p.PeriodText,
			Requested:   p.Requested,
			Allocated:   p.Allocated,
			Unallocated: p.Unallocated,
			Slots:       slots,
			Reasons:     p.Reasons.List(),
		})
	}
	return rec
}

// Query defines filters for retrieving records. Zero values match all.
type Query struct {
	Start         time.Time
	End           time.Time
	Source        string
	ShortfallOnly bool
}

// Match reports whether rec satisfies every filter of q.
func (q Query) Match(rec RunRecord) bool {
	if !q.Start.IsZero() && rec.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && rec.Timestamp.After(q.End) {
		return false
	}
	if q.Source != "" && rec.Source != q.Source {
		return false
	}
	if q.ShortfallOnly && !rec.HasShortfall() {
		return false
	}
	return true
}

// Store persists RunRecords and supports querying.
type Store interface {
	Append(ctx context.Context, rec RunRecord) error
	Query(ctx context.Context, q Query) ([]RunRecord, error)
	Close() error
}

// NopStore discards every record.
type NopStore struct{}

func (NopStore) Append(context.Context, RunRecord) error           { return nil }
func (NopStore) Query(context.Context, Query) ([]RunRecord, error) { return nil, nil }
func (NopStore) Close() error                                      { return nil }
