package model

import (
	"fmt"
	"sort"
	"time"
)

// YearMonth identifies a single allocation slot. Each slot accepts at most
// one project.
type YearMonth struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// Of returns the slot containing t.
func Of(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// Before reports whether ym is chronologically earlier than other.
func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

// Next returns the following calendar month.
func (ym YearMonth) Next() YearMonth {
	if ym.Month == time.December {
		return YearMonth{Year: ym.Year + 1, Month: time.January}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month + 1}
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// SortYearMonths orders the slice ascending by (year, month) in place.
func SortYearMonths(list []YearMonth) {
	sort.Slice(list, func(i, j int) bool { return list[i].Before(list[j]) })
}

// Chronological returns a sorted copy of list, leaving list untouched.
func Chronological(list []YearMonth) []YearMonth {
	out := make([]YearMonth, len(list))
	copy(out, list)
	SortYearMonths(out)
	return out
}
