package scenarios

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/manmonths/core/allocation"
	"github.com/kilianp07/manmonths/core/loader"
	coremetrics "github.com/kilianp07/manmonths/core/metrics"
	"github.com/kilianp07/manmonths/core/model"
	"github.com/kilianp07/manmonths/core/period"
	"github.com/kilianp07/manmonths/core/report"
	"github.com/kilianp07/manmonths/infra/logger"
	"github.com/kilianp07/manmonths/infra/metrics"
)

// RunScenario loads, allocates and checks sc, recording the run in a
// private Prometheus registry.
func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}

	clock, err := sc.Clock()
	if err != nil {
		t.Fatal(err)
	}
	ld := loader.Loader{Parser: &period.Parser{Now: clock}, Log: logger.NopLogger{}}
	batch, err := ld.Load(sc.LoaderRows())
	if sc.Expected.Error != "" {
		if got := errorKind(err); got != sc.Expected.Error {
			t.Fatalf("scenario %s expected error %q, got %v", sc.Name, sc.Expected.Error, err)
		}
		return
	}
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	engine, err := allocation.New(allocation.Config{MaxYearlyCapacity: sc.Capacity})
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	res := engine.Allocate(loader.ScheduleOrder(batch.Projects))
	res.Warnings = batch.Warnings
	rep := report.Build(res)

	if err := sink.RecordRun(coremetrics.RunEvent{
		RunID:       sc.Name,
		Source:      sc.Name,
		Capacity:    rep.Capacity,
		Projects:    rep.Projects,
		Requested:   rep.Requested,
		Allocated:   rep.Allocated,
		Unallocated: rep.Unallocated,
		Shortfalls:  len(rep.Shortfalls),
		Warnings:    len(res.Warnings),
		YearTotals:  res.YearTotals,
		Time:        time.Unix(0, 0),
	}); err != nil {
		t.Fatalf("record: %v", err)
	}

	checkResult(t, sc, res, rep)
	if got := unitsMetric(t, reg, "allocated"); int(got) != sc.Expected.Allocated {
		t.Errorf("scenario %s: allocated metric %v, want %d", sc.Name, got, sc.Expected.Allocated)
	}
}

func checkResult(t *testing.T, sc *Scenario, res *model.Result, rep report.Report) {
	t.Helper()
	if rep.Allocated != sc.Expected.Allocated || rep.Unallocated != sc.Expected.Unallocated {
		t.Errorf("scenario %s: allocated/unallocated %d/%d, want %d/%d",
			sc.Name, rep.Allocated, rep.Unallocated, sc.Expected.Allocated, sc.Expected.Unallocated)
	}
	var warned []int
	for _, w := range res.Warnings {
		warned = append(warned, w.Row)
	}
	if !equalInts(warned, sc.Expected.Warnings) {
		t.Errorf("scenario %s: warnings on rows %v, want %v", sc.Name, warned, sc.Expected.Warnings)
	}
	for year, want := range sc.Expected.Years {
		if got := res.Year(year); got != want {
			t.Errorf("scenario %s: year %d total %d, want %d", sc.Name, year, got, want)
		}
		if got := res.Year(year); got > res.Capacity {
			t.Errorf("scenario %s: year %d exceeds capacity", sc.Name, year)
		}
	}
	byRow := make(map[int]*model.Project, len(res.Projects))
	for _, p := range res.Projects {
		byRow[p.Row] = p
		if p.Allocated+p.Unallocated != p.Requested {
			t.Errorf("scenario %s: row %d counters do not add up", sc.Name, p.Row)
		}
	}
	for row, want := range sc.Expected.Projects {
		p, ok := byRow[row]
		if !ok {
			t.Errorf("scenario %s: no project for row %d", sc.Name, row)
			continue
		}
		if p.Allocated != want.Allocated || p.Unallocated != want.Unallocated {
			t.Errorf("scenario %s: row %d got %d/%d, want %d/%d",
				sc.Name, row, p.Allocated, p.Unallocated, want.Allocated, want.Unallocated)
		}
		if want.Slots != nil {
			slots := make([]string, len(p.Slots))
			for i, s := range p.Slots {
				slots[i] = s.String()
			}
			if !equalStrings(slots, want.Slots) {
				t.Errorf("scenario %s: row %d slots %v, want %v", sc.Name, row, slots, want.Slots)
			}
		}
		if want.Reasons != nil && !equalStrings(p.Reasons.List(), want.Reasons) {
			t.Errorf("scenario %s: row %d reasons %v, want %v", sc.Name, row, p.Reasons.List(), want.Reasons)
		}
	}
}

func unitsMetric(t *testing.T, g prometheus.Gatherer, state string) float64 {
	t.Helper()
	families, err := g.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "allocation_units_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "state" && lp.GetValue() == state {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func errorKind(err error) string {
	var mc *loader.MissingColumnError
	var nv *loader.NoValidDataError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &mc):
		return "missing_column"
	case errors.As(err, &nv):
		return "no_valid_data"
	default:
		return err.Error()
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
