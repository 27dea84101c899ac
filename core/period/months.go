package period

import (
	"time"

	"github.com/kilianp07/manmonths/core/model"
)

// MonthRange lists every calendar month touched by [start, end], both ends
// included, regardless of day of month. It is empty when start's month
// follows end's month.
func MonthRange(start, end time.Time) []model.YearMonth {
	cur := model.Of(start)
	last := model.Of(end)
	var out []model.YearMonth
	for !last.Before(cur) {
		out = append(out, cur)
		cur = cur.Next()
	}
	return out
}

// Months is MonthRange applied to a parsed period.
func Months(p model.Period) []model.YearMonth { return MonthRange(p.Start, p.End) }
