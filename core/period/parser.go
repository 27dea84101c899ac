// Package period turns free-text period descriptions into date ranges and
// month sequences.
package period

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/manmonths/core/model"
)

var (
	yearRe      = regexp.MustCompile(`^\d{4}$`)
	monthYearRe = regexp.MustCompile(`^(\d{1,2})/(\d{4})$`)
	fullDateRe  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)

	// todayKeywords are matched case-insensitively as substrings.
	todayKeywords = []string{"σήμερα", "σημερα", "simera"}

	dashReplacer = strings.NewReplacer("—", "-", "–", "-")
)

// Parser resolves period text. Now is consulted for the "today" keyword.
type Parser struct {
	Now func() time.Time
}

// NewParser returns a Parser using the wall clock.
func NewParser() *Parser { return &Parser{Now: time.Now} }

var defaultParser = NewParser()

// ParseDate parses text with the default parser.
func ParseDate(text string, isStart bool) (time.Time, error) {
	return defaultParser.ParseDate(text, isStart)
}

// ParsePeriod parses text with the default parser.
func ParsePeriod(text string) (model.Period, error) {
	return defaultParser.ParsePeriod(text)
}

// ParseDate resolves one side of a period. Partial dates expand to the
// first day when isStart is set and to the last day otherwise. The today
// keyword is only honoured as an end date.
func (p *Parser) ParseDate(text string, isStart bool) (time.Time, error) {
	text = strings.TrimSpace(text)

	if !isStart && isToday(text) {
		return p.today(), nil
	}

	if yearRe.MatchString(text) {
		y, _ := strconv.Atoi(text)
		if isStart {
			return date(y, time.January, 1), nil
		}
		return date(y, time.December, 31), nil
	}

	if m := monthYearRe.FindStringSubmatch(text); m != nil {
		month, _ := strconv.Atoi(m[1])
		y, _ := strconv.Atoi(m[2])
		if month < 1 || month > 12 {
			return time.Time{}, &DateFormatError{Text: text}
		}
		first := date(y, time.Month(month), 1)
		if isStart {
			return first, nil
		}
		return first.AddDate(0, 1, -1), nil
	}

	if m := fullDateRe.FindStringSubmatch(text); m != nil {
		d, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		y, _ := strconv.Atoi(m[3])
		t := date(y, time.Month(month), d)
		// time.Date normalises overflow; reject anything it had to move.
		if month < 1 || month > 12 || t.Day() != d || int(t.Month()) != month {
			return time.Time{}, &DateFormatError{Text: text}
		}
		return t, nil
	}

	return time.Time{}, &DateFormatError{Text: text}
}

// ParsePeriod resolves "YYYY" as a whole year and "START-END" as two dates.
// Em and en dashes are accepted as separators.
func (p *Parser) ParsePeriod(text string) (model.Period, error) {
	cleaned := strings.TrimSpace(dashReplacer.Replace(text))

	if yearRe.MatchString(cleaned) {
		start, _ := p.ParseDate(cleaned, true)
		end, _ := p.ParseDate(cleaned, false)
		return model.Period{Start: start, End: end}, nil
	}

	parts := strings.Split(cleaned, "-")
	if len(parts) != 2 {
		return model.Period{}, &PeriodFormatError{Text: text}
	}
	start, err := p.ParseDate(parts[0], true)
	if err != nil {
		return model.Period{}, &PeriodFormatError{Text: text, Err: err}
	}
	end, err := p.ParseDate(parts[1], false)
	if err != nil {
		return model.Period{}, &PeriodFormatError{Text: text, Err: err}
	}
	if start.After(end) {
		return model.Period{}, &PeriodFormatError{Text: text, Err: fmt.Errorf("start %s is after end %s", start.Format("02/01/2006"), end.Format("02/01/2006"))}
	}
	return model.Period{Start: start, End: end}, nil
}

func (p *Parser) today() time.Time {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	t := now()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func isToday(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range todayKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
