package render

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/manmonths/core/allocation"
	"github.com/kilianp07/manmonths/core/factory"
	"github.com/kilianp07/manmonths/core/loader"
	"github.com/kilianp07/manmonths/core/model"
	"github.com/kilianp07/manmonths/core/period"
)

// sampleResult allocates four projects at capacity 11:
// D(1/2024, 1) B(1/2023-2/2023, 2) A(2023, 3) C(2024, 11) in schedule order.
func sampleResult(t *testing.T) *model.Result {
	t.Helper()
	tbl := &model.Table{
		Name:   "projects",
		Header: []string{"ΤΙΤΛΟΣ", "ΧΡΟΝΙΚΟ ΔΙΑΣΤΗΜΑ", "ΑΝΘΡΩΠΟΜΗΝΕΣ"},
		Rows: [][]string{
			{"A", "2023", "3"},
			{"B", "1/2023-2/2023", "2"},
			{"C", "2024", "11"},
			{"D", "1/2024", "1"},
		},
	}
	rows, err := loader.RowsFromTable(tbl, loader.DefaultColumns())
	require.NoError(t, err)
	l := &loader.Loader{Parser: &period.Parser{Now: func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }}}
	batch, err := l.Load(rows)
	require.NoError(t, err)
	eng, err := allocation.New(allocation.Config{MaxYearlyCapacity: 11})
	require.NoError(t, err)
	res := eng.Allocate(loader.ScheduleOrder(batch.Projects))
	res.Source = tbl
	res.Warnings = batch.Warnings
	return res
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "projects_ΚΑΤΑΝΟΜΗ ΑΜ.xlsx", OutputName("/data/projects.xlsx", "xlsx"))
	assert.Equal(t, "in_ΚΑΤΑΝΟΜΗ ΑΜ.csv", OutputName("in.csv", ".csv"))
}

func TestRegistryBuiltins(t *testing.T) {
	assert.Equal(t, []string{"csv", "json", "xlsx"}, Names())

	rs, err := NewAll([]factory.ModuleConfig{
		{Type: "xlsx", Conf: map[string]any{"analysis_sheet": "Grid"}},
		{Type: "csv"},
		{Type: "json", Conf: map[string]any{"indent": "true"}},
	})
	require.NoError(t, err)
	require.Len(t, rs, 3)
	assert.Equal(t, "Grid", rs[0].(*XLSX).AnalysisSheet())
	assert.Equal(t, "csv", rs[1].Extension())
	assert.Equal(t, JSON{Indent: true}, rs[2])

	_, err = NewAll([]factory.ModuleConfig{{Type: "pdf"}})
	assert.Error(t, err)
}

func TestCSVRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSV{}.Render(&buf, sampleResult(t)))

	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 5)
	assert.Equal(t, "project_id", recs[0][0])
	assert.Equal(t, []string{"1", "3", "1/2023-2/2023", "2", "2", "0", "2023-01 2023-02", ""}, recs[2])
	c := recs[3]
	assert.Equal(t, "2024", c[2])
	assert.Equal(t, "10", c[4])
	assert.Equal(t, "1", c[5])
	assert.Equal(t, "Month 1/2024 already allocated by Project 3; Year 2024 capacity reached", c[7])
}

func TestJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON{Indent: true}.Render(&buf, sampleResult(t)))

	var doc struct {
		Report struct {
			Capacity    int  `json:"capacity"`
			Allocated   int  `json:"allocated"`
			Unallocated int  `json:"unallocated"`
			Full        bool `json:"fully_allocated"`
		} `json:"report"`
		Projects []struct {
			ID      int      `json:"id"`
			Period  string   `json:"period"`
			Reasons []string `json:"reasons"`
		} `json:"projects"`
		Warnings []any `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, 11, doc.Report.Capacity)
	assert.Equal(t, 16, doc.Report.Allocated)
	assert.Equal(t, 1, doc.Report.Unallocated)
	assert.False(t, doc.Report.Full)
	require.Len(t, doc.Projects, 4)
	assert.Equal(t, 0, doc.Projects[0].ID)
	assert.Len(t, doc.Projects[2].Reasons, 2)
	assert.NotNil(t, doc.Warnings)
}

func TestPalette(t *testing.T) {
	assert.Equal(t, YearColor(0), YearColor(len(yearPalette)))
	assert.True(t, IsLight("FFFF00"))
	assert.False(t, IsLight("#000000"))
	assert.Equal(t, "FFFFFF", FontColor("264478"))
	assert.Equal(t, "000000", FontColor("FFC000"))
}
