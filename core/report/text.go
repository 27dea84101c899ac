package report

import (
	"fmt"
	"io"
)

// WriteText prints the plain-text allocation summary.
func WriteText(w io.Writer, rep Report) error {
	pr := &printer{w: w}
	pr.line("--- Allocation Summary ---")
	pr.line("Max yearly capacity per year: %d person-months", rep.Capacity)
	pr.line("")
	pr.line("Yearly Person-Month Totals:")
	for _, y := range rep.Years {
		status := ""
		switch {
		case y.Overage > 0:
			status = fmt.Sprintf(" (OVER CAPACITY by %d)", y.Overage)
		case y.AtCapacity:
			status = " (Capacity Reached)"
		}
		pr.line("  Year %d: %d%s", y.Year, y.Total, status)
	}
	pr.line("")
	if rep.FullyAllocated {
		pr.line("All person-months were allocated successfully.")
		return pr.err
	}
	pr.line("Projects with Unallocated Person-Months:")
	for _, s := range rep.Shortfalls {
		pr.line("  Period: %s, Original AM: %d, Allocated AM: %d, Unallocated AM: %d",
			s.Period, s.Requested, s.Allocated, s.Unallocated)
		if s.ReasonText != "" {
			pr.line("    Reasons for unallocation: %s", s.ReasonText)
		}
	}
	return pr.err
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}
