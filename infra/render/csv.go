package render

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/kilianp07/manmonths/core/model"
	"github.com/kilianp07/manmonths/core/report"
)

// CSV writes one line per project in input order.
type CSV struct{}

func (CSV) Extension() string { return "csv" }

func (CSV) Render(w io.Writer, res *model.Result) error {
	cw := csv.NewWriter(w)
	header := []string{"project_id", "row", "period", "requested", "allocated", "unallocated", "slots", "reasons"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, p := range res.ProjectsByID() {
		slots := make([]string, len(p.Slots))
		for i, s := range p.Slots {
			slots[i] = s.String()
		}
		rec := []string{
			strconv.Itoa(p.ID),
			strconv.Itoa(p.Row),
			p.PeriodText,
			strconv.Itoa(p.Requested),
			strconv.Itoa(p.Allocated),
			strconv.Itoa(p.Unallocated),
			strings.Join(slots, " "),
			p.Reasons.Join(report.ReasonSeparator),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
