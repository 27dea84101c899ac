// Package loader validates raw input rows into schedulable projects.
package loader

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	corelogger "github.com/kilianp07/manmonths/core/logger"
	"github.com/kilianp07/manmonths/core/model"
	"github.com/kilianp07/manmonths/core/period"
)

// Batch is the outcome of loading one input table.
type Batch struct {
	// Projects are in input order.
	Projects []*model.Project
	// Months is every distinct slot touched by a project, ascending.
	Months   []model.YearMonth
	Years    []int
	Warnings []model.Warning
	Read     int
}

// Loader turns rows into projects. A nil Parser uses the wall clock.
type Loader struct {
	Parser *period.Parser
	Log    corelogger.Logger
}

// Load validates rows. Blank periods and zero units are skipped silently;
// unparseable periods and negative units produce warnings. An error is
// returned only when no row survives.
func (l *Loader) Load(rows []Row) (*Batch, error) {
	parser := l.Parser
	if parser == nil {
		parser = period.NewParser()
	}
	b := &Batch{Read: len(rows)}
	touched := make(map[model.YearMonth]struct{})

	for _, r := range rows {
		text := strings.TrimSpace(r.Period)
		units := coerceUnits(r.Units)
		if text == "" || units == 0 {
			continue
		}
		if units < 0 {
			l.warn(b, r, fmt.Errorf("row %d: person-months must be positive, got %d", r.Number, units))
			continue
		}
		p, err := parser.ParsePeriod(text)
		if err != nil {
			l.warn(b, r, fmt.Errorf("row %d: %w", r.Number, err))
			continue
		}
		months := period.Months(p)
		if len(months) == 0 {
			l.warn(b, r, fmt.Errorf("row %d: period %q has no months", r.Number, text))
			continue
		}
		b.Projects = append(b.Projects, model.NewProject(len(b.Projects), r.Number, text, p, units, months))
		for _, m := range months {
			touched[m] = struct{}{}
		}
	}

	if len(b.Projects) == 0 {
		return nil, &NoValidDataError{Rows: len(rows), Warnings: b.Warnings}
	}

	years := make(map[int]struct{})
	for m := range touched {
		b.Months = append(b.Months, m)
		years[m.Year] = struct{}{}
	}
	model.SortYearMonths(b.Months)
	for y := range years {
		b.Years = append(b.Years, y)
	}
	sort.Ints(b.Years)
	return b, nil
}

func (l *Loader) warn(b *Batch, r Row, err error) {
	b.Warnings = append(b.Warnings, model.Warning{Row: r.Number, Text: r.Period, Err: err})
	if l.Log != nil {
		l.Log.Warnf("skipping %v", err)
	}
}

// ScheduleOrder returns a copy of projects ordered by ascending number of
// eligible months. Ties keep input order.
func ScheduleOrder(projects []*model.Project) []*model.Project {
	out := make([]*model.Project, len(projects))
	copy(out, projects)
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].Months) < len(out[j].Months)
	})
	return out
}

// coerceUnits reads an integer unit count. Decimal spreadsheet values are
// truncated toward zero. Anything unreadable counts as zero.
func coerceUnits(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return 0
	}
	return int(f)
}

// IsRowError reports whether err is a row-level parse problem rather than a
// structural failure.
func IsRowError(err error) bool {
	var dfe *period.DateFormatError
	var pfe *period.PeriodFormatError
	return errors.As(err, &dfe) || errors.As(err, &pfe)
}
